// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import "github.com/bheeshma/bheeshma/internal/errclass"

// classifyCallErr maps an error returned by a wrapped platform call to a
// short classification string suitable for signal metadata, delegating
// to [errclass.New].
func classifyCallErr(err error) string {
	return errclass.New(err)
}
