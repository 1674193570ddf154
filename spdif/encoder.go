// SPDX-License-Identifier: EPL-2.0

package spdif

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sub-frame preambles, as serial words. The byte at syncOffset holds the
// preamble itself.
const (
	PreambleB uint32 = 0xcce8cccc // block start
	PreambleM uint32 = 0xcce2cccc // left channel
	PreambleW uint32 = 0xcce4cccc // right channel

	preambleMW = PreambleM ^ PreambleW
	syncOffset = 2
	syncFlip   = (PreambleB ^ PreambleM) >> (8 * syncOffset) & 0xff
	syncMask   = syncFlip << (8 * syncOffset)
)

// Driver is the serial bus the encoded frames go to. Write blocks until the
// whole frame is accepted or timeout elapses.
type Driver interface {
	Install(cfg ClockConfig) error
	Uninstall() error
	Write(p []byte, timeout time.Duration) (int, error)
}

// Encoder packs PCM into biphase-mark frames and writes each full frame to
// the driver.
//
// The frame buffer holds FrameWords serial words. Even words carry the
// preambles, odd words the audio. Word 0 is the sync anchor: its preamble
// byte is flipped between B and M on every flush.
//
// Encoder is safe for concurrent use; Encode and SetSampleRate serialize on
// an internal lock.
type Encoder struct {
	mtx sync.Mutex

	drv     Driver
	log     *zap.Logger
	timeout time.Duration

	frame [FrameWords]uint32
	out   [FrameSize]byte
	ptr   int
	carry byte // VUCP of the last sub-frame, lands in word 0 of the next frame

	clock     ClockConfig
	installed bool

	flushes uint64
	samples uint64
}

// NewEncoder returns an Encoder writing to drv. timeout bounds every frame
// write; pass a negative value to wait forever. Init must be called before
// Encode.
func NewEncoder(drv Driver, log *zap.Logger, timeout time.Duration) *Encoder {
	if log == nil {
		log = zap.NewNop()
	}

	return &Encoder{
		drv:     drv,
		log:     log,
		timeout: timeout,
		ptr:     1,
		carry:   vucpEven,
	}
}

// Init validates rate, reinstalls the driver with the derived clock and
// primes the frame buffer with idle sub-frames. Calling it again tears the
// driver down first.
func (e *Encoder) Init(rate int) error {
	clk, err := DeriveClock(rate)
	if err != nil {
		return err
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.install(clk)
}

// SetSampleRate switches the bus to a new PCM rate. The clock generator
// cannot be retuned in place, so the driver is uninstalled and installed
// again; the rate is validated before the driver is touched.
func (e *Encoder) SetSampleRate(rate int) error {
	clk, err := DeriveClock(rate)
	if err != nil {
		return err
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.log.Info("spdif sample rate change",
		zap.Int("from", e.clock.SampleRate),
		zap.Int("to", rate),
	)

	return e.install(clk)
}

// Encode appends little-endian 16-bit samples to the frame and flushes every
// time the frame fills up.
func (e *Encoder) Encode(p []byte) error {
	if len(p)%4 != 0 {
		return fmt.Errorf("%w: %d bytes", ErrUnaligned, len(p))
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	if !e.installed {
		return ErrNotInitialized
	}

	for i := 0; i < len(p); i += 2 {
		w, vucp := EncodeSample(binary.LittleEndian.Uint16(p[i:]))
		e.frame[e.ptr] = w

		next := e.ptr + 1
		if next < FrameWords {
			e.frame[next] = e.frame[next]&0x00ffffff | uint32(vucp)<<24
		} else {
			e.carry = vucp
		}

		e.ptr += 2
		e.samples++

		if e.ptr >= FrameWords {
			if err := e.flush(); err != nil {
				return err
			}
		}
	}

	return nil
}

// Clock returns the clock the driver is currently installed with.
func (e *Encoder) Clock() ClockConfig {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.clock
}

// Flushes is the number of frames written to the driver.
func (e *Encoder) Flushes() uint64 {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.flushes
}

// Close uninstalls the driver.
func (e *Encoder) Close() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if !e.installed {
		return nil
	}
	e.installed = false

	if err := e.drv.Uninstall(); err != nil {
		return fmt.Errorf("uninstall driver: %w", err)
	}

	return nil
}

func (e *Encoder) install(clk ClockConfig) error {
	if e.installed {
		e.installed = false
		if err := e.drv.Uninstall(); err != nil {
			return fmt.Errorf("uninstall driver: %w", err)
		}
	}

	if err := e.drv.Install(clk); err != nil {
		return fmt.Errorf("install driver: %w", err)
	}

	e.installed = true
	e.clock = clk
	e.prime()

	e.log.Info("spdif driver installed",
		zap.Int("sample_rate", clk.SampleRate),
		zap.Int("bit_clock", clk.BitClock),
		zap.Int("master_clock", clk.MasterClock),
	)

	return nil
}

// prime fills the frame with idle sub-frames: alternating M and W preambles
// and encoded silence.
func (e *Encoder) prime() {
	silence, _ := EncodeSample(0)

	mw := PreambleW
	for i := 0; i < FrameWords; i += 2 {
		mw ^= preambleMW
		e.frame[i] = mw
		e.frame[i+1] = silence
	}

	e.ptr = 1
	e.carry = vucpEven
}

func (e *Encoder) flush() error {
	e.frame[0] ^= syncMask

	for i, w := range e.frame {
		binary.LittleEndian.PutUint32(e.out[i*4:], w)
	}

	_, err := e.drv.Write(e.out[:], e.timeout)

	e.ptr = 1
	e.frame[0] = e.frame[0]&0x00ffffff | uint32(e.carry)<<24
	e.flushes++

	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	return nil
}
