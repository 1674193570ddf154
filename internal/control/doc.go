// SPDX-License-Identifier: EPL-2.0

// Package control serves a small HTTP API for a running pipeline: health,
// stats, volume and sample rate, plus the prometheus metrics.
package control
