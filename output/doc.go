// SPDX-License-Identifier: EPL-2.0

// Package output drains the ring buffer into the hardware.
//
// A [Loop] blocks on the ring buffer, hands every item to a [Path] and
// returns the item afterwards. Two paths exist:
//
//   - [PCMPath] writes raw samples to a [Sink], optionally shifted by half
//     scale for DACs that want unsigned input.
//   - [EncodedPath] applies the software volume and feeds the S/PDIF
//     encoder.
//
// Volume only affects the encoded path. It is stored atomically, so a
// control surface can change it while the loop runs.
package output
