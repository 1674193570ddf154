// SPDX-License-Identifier: EPL-2.0

package spdifbridge

import (
	"errors"

	"github.com/ik5/spdifbridge/stream"
)

var (
	// ErrBackpressure indicates a block was rejected because the ring buffer stayed full
	ErrBackpressure = stream.ErrBackpressure

	// ErrAllocation indicates a side-channel copy of a block could not be made
	ErrAllocation = errors.New("cannot allocate block copy")

	// ErrInvalidConfig indicates a configuration value out of range
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownOutputPath indicates an output path other than pcm or spdif
	ErrUnknownOutputPath = errors.New("unknown output path")

	// ErrUnknownSource indicates a source kind the CLI cannot build
	ErrUnknownSource = errors.New("unknown source kind")

	// ErrUnknownSink indicates a sink kind the CLI cannot build
	ErrUnknownSink = errors.New("unknown sink kind")

	// ErrNotDriver indicates the spdif path was given a sink without Install and Uninstall
	ErrNotDriver = errors.New("sink cannot drive the spdif bus")

	// ErrPipelineClosed indicates an operation on a closed pipeline
	ErrPipelineClosed = errors.New("pipeline closed")

	// ErrAlreadyRunning indicates Run was called twice
	ErrAlreadyRunning = errors.New("pipeline already running")
)
