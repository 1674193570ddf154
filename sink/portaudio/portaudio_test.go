// SPDX-License-Identifier: EPL-2.0

package portaudio

import (
	"github.com/ik5/spdifbridge/output"
	"github.com/ik5/spdifbridge/spdif"
)

var (
	_ output.Sink  = (*Sink)(nil)
	_ spdif.Driver = (*Sink)(nil)
)
