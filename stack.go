// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import "runtime"

// maxStackDepth bounds how many frames captureStack walks, matching
// spec.md's note that only a bounded number of call-stack frames are
// needed to find the nearest node_modules boundary.
const maxStackDepth = 32

// captureStack walks the Go call stack starting above captureStack's own
// caller and returns it as [StackFrame] values ordered innermost-first,
// the same order the Attribution Engine expects to walk.
func captureStack() []StackFrame {
	pcs := make([]uintptr, maxStackDepth)
	// skip=3: runtime.Callers, captureStack, and the facade method that
	// called captureStack.
	n := runtime.Callers(3, pcs)
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs[:n])
	var out []StackFrame
	for {
		frame, more := frames.Next()
		out = append(out, StackFrame{
			Path:     frame.File,
			Function: frame.Function,
			Line:     frame.Line,
		})
		if !more {
			break
		}
	}
	return out
}
