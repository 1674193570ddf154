// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ik5/spdifbridge"
	"github.com/ik5/spdifbridge/audio"
	"github.com/ik5/spdifbridge/formats/aiff"
	"github.com/ik5/spdifbridge/formats/wav"
	"github.com/ik5/spdifbridge/sink"
	"github.com/ik5/spdifbridge/sink/portaudio"
)

func newRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})

	return reg
}

// fileSource closes the file together with the decoded source.
type fileSource struct {
	audio.Source
	f *os.File
}

func (s fileSource) Close() error {
	return errors.Join(s.Source.Close(), s.f.Close())
}

// openSource builds the producer input. Tones run at rate.
func openSource(cfg spdifbridge.SourceConfig, rate int) (audio.Source, error) {
	switch cfg.Kind {
	case spdifbridge.SourceTone:
		src, err := audio.NewToneSource(rate, 2, cfg.ToneFrequency, cfg.ToneAmplitude, cfg.ToneSeconds*rate)
		if err != nil {
			return nil, fmt.Errorf("tone source: %w", err)
		}
		return src, nil

	case spdifbridge.SourceFile:
		dec, err := newRegistry().ForPath(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", spdifbridge.ErrUnknownSource, err)
		}

		f, err := os.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open source: %w", err)
		}

		src, err := dec.Decode(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("decode %s: %w", cfg.Path, err)
		}

		return fileSource{Source: src, f: f}, nil

	default:
		return nil, fmt.Errorf("%w: %q", spdifbridge.ErrUnknownSource, cfg.Kind)
	}
}

// openSink builds the hardware stand-in and a function releasing it.
func openSink(cfg spdifbridge.SinkConfig, rate int, log *zap.Logger) (spdifbridge.Sink, func() error, error) {
	var opts []sink.Option
	opts = append(opts, sink.WithLogger(log.Named("sink")))
	if cfg.Paced {
		opts = append(opts, sink.WithPacing())
	}

	switch cfg.Kind {
	case spdifbridge.SinkDiscard:
		return &sink.Discard{}, func() error { return nil }, nil

	case spdifbridge.SinkStdout:
		return sink.NewWriter(os.Stdout, opts...), func() error { return nil }, nil

	case spdifbridge.SinkFile:
		f, err := os.Create(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("create sink file: %w", err)
		}
		w := sink.NewWriter(f, opts...)
		return w, w.Close, nil

	case spdifbridge.SinkWAV:
		f, err := os.Create(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("create wav file: %w", err)
		}
		enc := wav.NewEncoder(f, rate)
		return enc, func() error {
			return errors.Join(enc.Close(), f.Close())
		}, nil

	case spdifbridge.SinkPortAudio:
		pa, err := portaudio.New(cfg.FramesPerBuffer, log.Named("portaudio"))
		if err != nil {
			return nil, nil, err
		}
		return pa, pa.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", spdifbridge.ErrUnknownSink, cfg.Kind)
	}
}
