// SPDX-License-Identifier: EPL-2.0

// Package ratecontrol decides how many samples to duplicate or drop so a
// bursty producer can feed a fixed-rate output clock.
//
// The controller keeps an integer moving average of the ring buffer
// occupancy:
//
//	avg = ((A-1)*avg + occupancy) / A
//
// and expresses it as a fill percentage where 100 means half of the buffer
// capacity. The average starts at a quarter of the capacity (25%).
//
// # Hysteresis
//
// The default mode walks the drift adjustment one level at a time over
// {+1, 0, -1, -2, -3} using five ascending thresholds T:
//
//	if drift != +1 && pct < T[-drift]  { drift++ }
//	else if drift != -3 && pct > T[2-drift] { drift-- }
//
// Leaving a level needs the average to move past a threshold that is two
// slots away from the one used to enter it, so a level is held while the fill
// stays inside its band.
//
// # Threshold fallback
//
// ModeThreshold is the older two-threshold rule. It answers +1 below T[0],
// -1 above T[2] and 0 otherwise. It is a separate mode and never mixes with
// the hysteresis state.
//
// # Diagnostics
//
// Every decision change, and otherwise one observation in LogEvery, emits a
// zap Info line "rate control" with the fill percentage and drift.
package ratecontrol
