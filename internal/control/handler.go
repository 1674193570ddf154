// SPDX-License-Identifier: EPL-2.0

package control

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ik5/spdifbridge"
	"github.com/ik5/spdifbridge/spdif"
)

// Bridge is the part of the pipeline the control surface drives.
type Bridge interface {
	Stats() spdifbridge.Stats
	SetVolume(v int) int
	SetSampleRate(rate int) error
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	bridge Bridge
	log    *zap.Logger
}

// NewHandlers creates handlers acting on b.
func NewHandlers(b Bridge, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}

	return &Handlers{bridge: b, log: log}
}

type volumeRequest struct {
	Volume *int `json:"volume"`
}

type volumeResponse struct {
	Volume int `json:"volume"`
}

type sampleRateRequest struct {
	SampleRate int `json:"sample_rate"`
}

type sampleRateResponse struct {
	SampleRate int `json:"sample_rate"`
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// Stats handles GET /stats.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.bridge.Stats())
}

// GetVolume handles GET /volume.
func (h *Handlers) GetVolume(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, volumeResponse{Volume: h.bridge.Stats().Volume})
}

// PutVolume handles PUT /volume. Values outside [0, 100] are clamped.
func (h *Handlers) PutVolume(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Volume == nil {
		writeError(w, http.StatusBadRequest, "body must be {\"volume\": <0-100>}")
		return
	}

	v := h.bridge.SetVolume(*req.Volume)
	writeJSON(w, http.StatusOK, volumeResponse{Volume: v})
}

// PutSampleRate handles PUT /sample-rate.
func (h *Handlers) PutSampleRate(w http.ResponseWriter, r *http.Request) {
	var req sampleRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "body must be {\"sample_rate\": <hz>}")
		return
	}

	if err := h.bridge.SetSampleRate(req.SampleRate); err != nil {
		if errors.Is(err, spdif.ErrInvalidSampleRate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		h.log.Error("sample rate change failed", zap.Int("sample_rate", req.SampleRate), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "sample rate change failed")
		return
	}

	writeJSON(w, http.StatusOK, sampleRateResponse{SampleRate: req.SampleRate})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
