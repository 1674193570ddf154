// SPDX-License-Identifier: EPL-2.0

// Package sink provides hardware stand-ins for the output side of the
// pipeline.
//
// [Writer] turns any io.Writer into a blocking sink. With pacing enabled it
// accepts bytes at the rate the clock would drain them, so a file or a pipe
// behaves like an I2S peripheral. [Discard] drops everything.
//
// Both satisfy the spdif.Driver interface and the output.Sink interface.
// Sub-package portaudio plays raw PCM through the default sound card.
package sink
