// SPDX-License-Identifier: EPL-2.0

// Package spdifbridge reconciles a bursty PCM source with a fixed-rate
// digital audio output.
//
// A radio link delivers decoded audio at a rate that is nominally, but never
// exactly, the rate of the output clock. Left alone, the buffer between the
// two either runs dry or overflows. The [Pipeline] sits in between and
// nudges the stream by single samples so the buffer hovers near a target
// fill level:
//
//	producer -> stream.Writer -> ringbuf.Buffer -> output.Loop -> sink
//	            (drift)                            (pcm | spdif)
//
// # Quick Start
//
//	cfg := spdifbridge.DefaultConfig()
//	p, err := spdifbridge.New(cfg.Pipeline, sink.NewWriter(f), spdifbridge.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	go p.Run(ctx)
//
//	src, _ := audio.NewToneSource(44100, 2, 1000, 0.5, 0)
//	_, err = spdifbridge.Feed(ctx, p, src, spdifbridge.FeedOptions{Paced: true})
//
// # Output Paths
//
// The pcm path hands raw samples to the sink, optionally shifted to
// unsigned for an internal DAC. The spdif path scales by the software
// volume and encodes biphase-mark S/PDIF frames; its sink must also
// implement spdif.Driver so the bus clock can be installed.
//
// # Configuration
//
// [Load] reads YAML over [DefaultConfig]:
//
//	pipeline:
//	  buffer_capacity: 16384
//	  averaging_range: 200
//	  thresholds: [15, 25, 35, 45, 55]
//	  mode: hysteresis
//	  output_path: spdif
//	  volume: 80
//	  sample_rate: 44100
//	source:
//	  kind: file
//	  path: music.wav
//	sink:
//	  kind: file
//	  path: out.spdif
//	  paced: true
//	control:
//	  enabled: true
//	  addr: ":8090"
//	logging:
//	  level: debug
//
// See the subpackages for the individual stages.
package spdifbridge
