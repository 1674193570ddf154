// SPDX-License-Identifier: EPL-2.0

package spdifbridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/ik5/spdifbridge/audio"
	"github.com/ik5/spdifbridge/ringbuf"
	"github.com/ik5/spdifbridge/utils"
)

// FeedOptions shapes how Feed delivers blocks.
type FeedOptions struct {
	// BlockFrames is the number of stereo frames per block. Zero uses
	// DefaultBlockFrames.
	BlockFrames int
	// Paced holds delivery to the source sample rate. Unpaced feeds run as
	// fast as the writer accepts.
	Paced bool
	// Burst delivers this many blocks back to back before a paced pause,
	// the way a radio link hands over packets.
	Burst int
	Log   *zap.Logger
}

// FeedStats reports what a Feed delivered.
type FeedStats struct {
	Blocks  uint64
	Bytes   uint64
	Dropped uint64
	Frames  uint64
}

// Feed reads src until EOF or ctx is done, up-mixes it to stereo and writes
// little-endian blocks to w. Blocks rejected with ErrBackpressure are
// counted and skipped. A closed ring or a done ctx ends the feed without an
// error; any other write error ends it with one. Feed does not close src.
func Feed(ctx context.Context, w io.Writer, src audio.Source, opts FeedOptions) (FeedStats, error) {
	var st FeedStats

	if opts.BlockFrames <= 0 {
		opts.BlockFrames = DefaultBlockFrames
	}
	if opts.Burst < 1 {
		opts.Burst = 1
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	mixer, err := audio.NewStereoMixer(src)
	if err != nil {
		return st, fmt.Errorf("stereo mixer: %w", err)
	}

	rate := src.SampleRate()
	if opts.Paced && rate <= 0 {
		return st, fmt.Errorf("%w: source rate %d", ErrInvalidConfig, rate)
	}

	samples := make([]int16, 2*opts.BlockFrames)
	block := make([]byte, 4*opts.BlockFrames)
	start := time.Now()

	log.Debug("feed started",
		zap.Int("sample_rate", rate),
		zap.Int("source_channels", src.Channels()),
		zap.Int("block_frames", opts.BlockFrames),
	)

	for {
		if err := ctx.Err(); err != nil {
			return st, nil
		}

		n, rerr := mixer.ReadSamples(samples)
		n &^= 1
		if n > 0 {
			size := 2 * utils.PutInt16LE(block, samples[:n])

			_, werr := w.Write(block[:size])
			switch {
			case werr == nil:
				st.Blocks++
				st.Bytes += uint64(size)
			case errors.Is(werr, ErrBackpressure):
				st.Dropped++
			case ctx.Err() != nil, errors.Is(werr, ringbuf.ErrClosed):
				// the consumer shut the ring down
				log.Debug("feed stopped", zap.Uint64("blocks", st.Blocks))
				return st, nil
			default:
				return st, fmt.Errorf("write block: %w", werr)
			}
			st.Frames += uint64(n / 2)

			if opts.Paced && (st.Blocks+st.Dropped)%uint64(opts.Burst) == 0 {
				due := start.Add(time.Duration(st.Frames) * time.Second / time.Duration(rate))
				if err := sleepUntil(ctx, due); err != nil {
					return st, nil
				}
			}
		}

		if errors.Is(rerr, io.EOF) {
			log.Debug("feed finished",
				zap.Uint64("blocks", st.Blocks),
				zap.Uint64("dropped", st.Dropped),
			)
			return st, nil
		}
		if rerr != nil {
			return st, fmt.Errorf("read source: %w", rerr)
		}
	}
}

func sleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
