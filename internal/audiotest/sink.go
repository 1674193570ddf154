// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"github.com/ik5/spdifbridge/spdif"
)

// ErrSinkFailed is returned by a RecordingSink set to fail.
var ErrSinkFailed = errors.New("audiotest: sink failed")

// RecordingSink captures every write. It satisfies both the PCM sink and the
// S/PDIF driver interfaces.
type RecordingSink struct {
	mtx       sync.Mutex
	writes    [][]byte
	installs  int
	uninstall int
	rates     []int
	fail      bool
	block     chan struct{}
}

// NewRecordingSink returns an empty sink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Fail makes every later Write return ErrSinkFailed.
func (s *RecordingSink) Fail(fail bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.fail = fail
}

// Block makes Write wait until the returned function is called.
func (s *RecordingSink) Block() (release func()) {
	ch := make(chan struct{})

	s.mtx.Lock()
	s.block = ch
	s.mtx.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mtx.Lock()
			s.block = nil
			s.mtx.Unlock()
			close(ch)
		})
	}
}

func (s *RecordingSink) Write(p []byte, timeout time.Duration) (int, error) {
	s.mtx.Lock()
	ch := s.block
	s.mtx.Unlock()

	if ch != nil {
		if timeout < 0 {
			<-ch
		} else {
			select {
			case <-ch:
			case <-time.After(timeout):
				return 0, ErrSinkFailed
			}
		}
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.fail {
		return 0, ErrSinkFailed
	}

	s.writes = append(s.writes, bytes.Clone(p))

	return len(p), nil
}

// SetSampleRate records rate.
func (s *RecordingSink) SetSampleRate(rate int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.rates = append(s.rates, rate)

	return nil
}

// Install records the clock's sample rate.
func (s *RecordingSink) Install(clock spdif.ClockConfig) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.installs++
	s.rates = append(s.rates, clock.SampleRate)

	return nil
}

// Installs counts Install calls.
func (s *RecordingSink) Installs() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.installs
}

// Uninstalls counts Uninstall calls.
func (s *RecordingSink) Uninstalls() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.uninstall
}

// Uninstall counts calls.
func (s *RecordingSink) Uninstall() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.uninstall++

	return nil
}

// Writes returns a copy of every accepted write.
func (s *RecordingSink) Writes() [][]byte {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return append([][]byte(nil), s.writes...)
}

// Bytes returns all accepted data concatenated.
func (s *RecordingSink) Bytes() []byte {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return bytes.Join(s.writes, nil)
}

// Rates lists the sample rates passed to SetSampleRate and Install.
func (s *RecordingSink) Rates() []int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return append([]int(nil), s.rates...)
}
