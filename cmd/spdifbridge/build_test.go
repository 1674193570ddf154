// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/ik5/spdifbridge"
	"github.com/ik5/spdifbridge/formats/wav"
	"github.com/ik5/spdifbridge/output"
	"github.com/ik5/spdifbridge/spdif"
	"github.com/ik5/spdifbridge/utils"
)

func writeWAV(t *testing.T, path string, rate int, samples []int16) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	p := make([]byte, 2*len(samples))
	utils.PutInt16LE(p, samples)

	enc := wav.NewEncoder(f, rate)
	if _, err := enc.Write(p, 0); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestOpenSource_Tone(t *testing.T) {
	t.Parallel()

	src, err := openSource(spdifbridge.SourceConfig{
		Kind:          spdifbridge.SourceTone,
		ToneFrequency: 1000,
		ToneAmplitude: 0.5,
		ToneSeconds:   1,
	}, 8000)
	if err != nil {
		t.Fatalf("openSource() error = %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 8000 || src.Channels() != 2 {
		t.Errorf("source = %d Hz, %d channels, want 8000 Hz stereo", src.SampleRate(), src.Channels())
	}

	total := 0
	buf := make([]int16, 1024)
	for {
		n, err := src.ReadSamples(buf)
		total += n
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	if total != 16000 {
		t.Errorf("read %d samples, want 16000", total)
	}
}

func TestOpenSource_WAVFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "in.wav")
	writeWAV(t, path, 32000, []int16{1, -1, 2, -2, 3, -3})

	src, err := openSource(spdifbridge.SourceConfig{Kind: spdifbridge.SourceFile, Path: path}, 44100)
	if err != nil {
		t.Fatalf("openSource() error = %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 32000 {
		t.Errorf("SampleRate() = %d, want the file rate 32000", src.SampleRate())
	}
}

func TestOpenSource_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  spdifbridge.SourceConfig
		want error
	}{
		{
			name: "unknown extension",
			cfg:  spdifbridge.SourceConfig{Kind: spdifbridge.SourceFile, Path: filepath.Join(dir, "song.mp3")},
			want: spdifbridge.ErrUnknownSource,
		},
		{
			name: "missing file",
			cfg:  spdifbridge.SourceConfig{Kind: spdifbridge.SourceFile, Path: filepath.Join(dir, "gone.wav")},
			want: os.ErrNotExist,
		},
		{
			name: "unknown kind",
			cfg:  spdifbridge.SourceConfig{Kind: "a2dp"},
			want: spdifbridge.ErrUnknownSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := openSource(tt.cfg, 44100); !errors.Is(err, tt.want) {
				t.Errorf("openSource() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOpenSink(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name       string
		cfg        spdifbridge.SinkConfig
		wantDriver bool
	}{
		{name: "discard", cfg: spdifbridge.SinkConfig{Kind: spdifbridge.SinkDiscard}, wantDriver: true},
		{name: "stdout", cfg: spdifbridge.SinkConfig{Kind: spdifbridge.SinkStdout}, wantDriver: true},
		{name: "file", cfg: spdifbridge.SinkConfig{Kind: spdifbridge.SinkFile, Path: filepath.Join(dir, "out.spdif")}, wantDriver: true},
		{name: "wav", cfg: spdifbridge.SinkConfig{Kind: spdifbridge.SinkWAV, Path: filepath.Join(dir, "out.wav")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, closeSink, err := openSink(tt.cfg, 44100, zap.NewNop())
			if err != nil {
				t.Fatalf("openSink() error = %v", err)
			}
			defer func() {
				if err := closeSink(); err != nil {
					t.Errorf("close sink: %v", err)
				}
			}()

			if _, ok := s.(spdif.Driver); ok != tt.wantDriver {
				t.Errorf("%T implements spdif.Driver = %v, want %v", s, ok, tt.wantDriver)
			}
		})
	}
}

func TestOpenSink_Unknown(t *testing.T) {
	t.Parallel()

	if _, _, err := openSink(spdifbridge.SinkConfig{Kind: "alsa"}, 44100, zap.NewNop()); !errors.Is(err, spdifbridge.ErrUnknownSink) {
		t.Errorf("openSink() error = %v, want %v", err, spdifbridge.ErrUnknownSink)
	}
}

func TestRun_ToneToFile(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "tone.spdif")

	cfg := spdifbridge.DefaultConfig()
	cfg.Pipeline.SampleRate = 8000
	cfg.Pipeline.SendTimeoutMS = -1
	cfg.Source.ToneSeconds = 1
	cfg.Source.Paced = false
	cfg.Sink = spdifbridge.SinkConfig{Kind: spdifbridge.SinkFile, Path: out}

	if err := run(context.Background(), cfg, zap.NewNop()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 || info.Size()%spdif.FrameSize != 0 {
		t.Errorf("output is %d bytes, want a whole number of %d-byte frames", info.Size(), spdif.FrameSize)
	}
}

func TestRun_WAVCapture(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")

	samples := make([]int16, 2*4000)
	for i := range samples {
		samples[i] = int16(i)
	}
	writeWAV(t, in, 16000, samples)

	cfg := spdifbridge.DefaultConfig()
	cfg.Pipeline.OutputPath = output.PathPCM
	cfg.Pipeline.SendTimeoutMS = -1
	cfg.Source = spdifbridge.SourceConfig{Kind: spdifbridge.SourceFile, Path: in, BlockFrames: 256}
	cfg.Sink = spdifbridge.SinkConfig{Kind: spdifbridge.SinkWAV, Path: out}

	if err := run(context.Background(), cfg, zap.NewNop()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open capture: %v", err)
	}
	defer f.Close()

	src, err := wav.Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if src.SampleRate() != 16000 {
		t.Errorf("capture rate = %d, want 16000", src.SampleRate())
	}
}
