// SPDX-License-Identifier: EPL-2.0

// Command spdifbridge feeds a file or a test tone through the clock-domain
// reconciliation pipeline into a sink, with an optional HTTP control API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/spdifbridge"
	"github.com/ik5/spdifbridge/internal/control"
)

var version = "dev"

func main() {
	cfgPath := flag.String("config", "", "path to the YAML config; defaults are used when empty")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg := spdifbridge.DefaultConfig()
	if *cfgPath != "" {
		var err error
		if cfg, err = spdifbridge.Load(*cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}

	log, err := spdifbridge.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received signal, shutting down", zap.Stringer("signal", sig))
		cancel()
	}()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("spdifbridge failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(ctx context.Context, cfg spdifbridge.Config, log *zap.Logger) error {
	src, err := openSource(cfg.Source, cfg.Pipeline.SampleRate)
	if err != nil {
		return err
	}
	defer src.Close()

	// the stream rate is whatever the source delivers
	cfg.Pipeline.SampleRate = src.SampleRate()

	out, closeSink, err := openSink(cfg.Sink, cfg.Pipeline.SampleRate, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSink(); err != nil {
			log.Warn("sink close failed", zap.Error(err))
		}
	}()

	p, err := spdifbridge.New(cfg.Pipeline, out, spdifbridge.WithLogger(log))
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	log = log.With(zap.String("pipeline_id", p.ID()))

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return p.Run(ctx)
	})

	g.Go(func() error {
		// the consumer drains what is left once the feed is over
		defer stop()

		st, err := spdifbridge.Feed(ctx, p, src, spdifbridge.FeedOptions{
			BlockFrames: cfg.Source.BlockFrames,
			Paced:       cfg.Source.Paced,
			Burst:       cfg.Source.Burst,
			Log:         log.Named("feed"),
		})
		log.Info("source finished",
			zap.Uint64("blocks", st.Blocks),
			zap.Uint64("bytes", st.Bytes),
			zap.Uint64("dropped", st.Dropped),
		)
		if err != nil {
			return fmt.Errorf("feed: %w", err)
		}
		return nil
	})

	if cfg.Control.Enabled {
		srv := control.NewServer(cfg.Control.Addr,
			control.NewRouter(control.NewHandlers(p, log), log.Named("control")))

		g.Go(func() error {
			log.Info("control API listening", zap.String("addr", cfg.Control.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("control server: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()

	st := p.Stats()
	log.Info("pipeline summary",
		zap.Uint64("blocks_written", st.BlocksWritten),
		zap.Uint64("backpressure", st.Backpressure),
		zap.Uint64("samples_dropped", st.SamplesDropped),
		zap.Uint64("samples_duplicated", st.SamplesDuplicated),
		zap.Uint64("items_out", st.ItemsOut),
		zap.Uint64("output_failures", st.OutputFailures),
		zap.Uint64("frames_flushed", st.FramesFlushed),
	)

	if cerr := p.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}

	return err
}
