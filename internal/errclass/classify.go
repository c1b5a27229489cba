//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/common/errclass/errclass.go
//

// Package errclass classifies host-API errors into short, stable strings
// suitable for structured logging and reports.
//
// Covers the broader set of errors an env/fs/net/http/exec facade can
// observe (EACCES, ENOENT, EEXIST, ENOTDIR, EISDIR) in addition to the
// network errnos a socket-only classifier would handle.
package errclass

import (
	"context"
	"errors"
	"net"
	"os"
)

// New classifies err into a short label, or "" if err is nil.
//
// Unrecognized errors classify as "UNKNOWN" rather than "", distinguishing
// "no error" from "an error we cannot name precisely" in logs and reports.
func New(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "ETIMEDOUT"
	}
	if errors.Is(err, context.Canceled) {
		return "ECANCELED"
	}
	if errors.Is(err, os.ErrNotExist) {
		return "ENOENT"
	}
	if errors.Is(err, os.ErrExist) {
		return "EEXIST"
	}
	if errors.Is(err, os.ErrPermission) {
		return "EACCES"
	}
	if errors.Is(err, net.ErrClosed) {
		return "ECONNRESET"
	}

	if label, ok := classifyErrno(err); ok {
		return label
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "ETIMEDOUT"
	}

	return "UNKNOWN"
}
