// SPDX-License-Identifier: EPL-2.0

package output

import (
	"fmt"
	"time"
)

// Sink is the hardware output for raw PCM. Write blocks until all of p is
// accepted or timeout elapses; a negative timeout waits forever.
type Sink interface {
	Write(p []byte, timeout time.Duration) (int, error)
}

// Encoder is the biphase-mark encoder fed by the encoded path.
type Encoder interface {
	Encode(p []byte) error
}

// Path is one output strategy. Process may modify item in place.
type Path interface {
	Process(item []byte, volume int) error
	Name() string
}

// Path names used in configuration.
const (
	PathPCM   = "pcm"
	PathSPDIF = "spdif"
)

// PCMPath writes PCM straight to a sink, optionally converted to unsigned
// samples for a DAC. Volume is not applied.
type PCMPath struct {
	sink    Sink
	dcBias  bool
	timeout time.Duration
}

// NewPCMPath returns the raw path writing to sink.
func NewPCMPath(sink Sink, dcBias bool, timeout time.Duration) *PCMPath {
	return &PCMPath{
		sink:    sink,
		dcBias:  dcBias,
		timeout: timeout,
	}
}

func (p *PCMPath) Name() string { return PathPCM }

func (p *PCMPath) Process(item []byte, _ int) error {
	if p.dcBias {
		ApplyDCBias(item)
	}

	n, err := p.sink.Write(item, p.timeout)
	if err != nil {
		return fmt.Errorf("pcm sink: %w", err)
	}
	if n != len(item) {
		return fmt.Errorf("pcm sink: %w: wrote %d of %d bytes", ErrShortWrite, n, len(item))
	}

	return nil
}

// EncodedPath scales the volume and hands the block to the encoder.
type EncodedPath struct {
	enc Encoder
}

// NewEncodedPath returns the path feeding enc.
func NewEncodedPath(enc Encoder) *EncodedPath {
	return &EncodedPath{enc: enc}
}

func (p *EncodedPath) Name() string { return PathSPDIF }

func (p *EncodedPath) Process(item []byte, volume int) error {
	ScaleVolume(item, volume)

	if err := p.enc.Encode(item); err != nil {
		return fmt.Errorf("spdif encoder: %w", err)
	}

	return nil
}
