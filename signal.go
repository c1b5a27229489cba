// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"fmt"
	"log/slog"
	"time"
)

// SignalType identifies the kind of runtime behavior a [Signal] records.
//
// SignalType is a closed enumeration: the only valid values are the
// constants declared below. [validateMetadata] rejects anything else.
type SignalType string

const (
	// EnvAccess records a read, write, or membership test of an
	// environment variable.
	EnvAccess SignalType = "EnvAccess"

	// FsRead records a filesystem read operation.
	FsRead SignalType = "FsRead"

	// FsWrite records a filesystem write operation.
	FsWrite SignalType = "FsWrite"

	// NetConnect records a raw TCP/UDP dial.
	NetConnect SignalType = "NetConnect"

	// HttpRequest records a plaintext HTTP request.
	HttpRequest SignalType = "HttpRequest"

	// HttpsRequest records a TLS-protected HTTP request.
	HttpsRequest SignalType = "HttpsRequest"

	// ShellExec records a child-process creation.
	ShellExec SignalType = "ShellExec"
)

// maxMetadataStringLen is the length past which a string metadata value is
// truncated in the report projection (see [projectedMetadata]).
const maxMetadataStringLen = 500

// truncationSuffix is appended to any metadata string truncated for a report.
const truncationSuffix = "…[TRUNCATED]"

// PackageIdentity names a specific version of a third-party package.
//
// Two identities with the same Name and different Version are distinct:
// they are scored and reported separately.
type PackageIdentity struct {
	// Name is the package name, possibly scoped (e.g. "@acme/lib").
	Name string

	// Version is the resolved manifest version, or "unknown" when the
	// manifest did not declare one.
	Version string
}

// Key returns the canonical "name@version" string used as a map key
// throughout the scoring and reporting subsystems.
func (p PackageIdentity) Key() string {
	return fmt.Sprintf("%s@%s", p.Name, p.Version)
}

// StackFrame is a single entry of a captured call stack.
//
// Path is the source file path associated with the frame, used by the
// Attribution Engine to locate a package manifest. Function and Line are
// retained for optional inclusion in reports but play no role in
// attribution.
type StackFrame struct {
	Path     string
	Function string
	Line     int
}

// Signal is an immutable observation of a runtime behavior by third-party
// code.
//
// A Signal is only ever constructed by [NewSignal], which validates the
// metadata for the given Type before returning a value. Once constructed,
// a Signal must not be mutated; every field is read-only by convention
// (Go has no const struct fields, so this is enforced by discipline and
// by never exposing a mutating method).
type Signal struct {
	// Timestamp is the UTC instant the signal was captured.
	Timestamp time.Time

	// Type is the kind of behavior observed.
	Type SignalType

	// Package is the attributed package identity. A Signal with a nil
	// Package must never be appended to a buffer: unattributed events
	// are dropped before they are constructed, per spec.
	Package *PackageIdentity

	// Metadata holds type-specific fields; see [validateMetadata] for
	// the required keys per [SignalType].
	Metadata map[string]any

	// Stack is the call stack captured at the point of interception.
	Stack []StackFrame
}

// NewSignal constructs a [Signal], validating metadata against the
// requirements for typ.
//
// now is injected so callers (in particular the interception hooks'
// [monitorContext.emit]) can use a [Config.TimeNow] override for
// deterministic tests.
//
// An invalid SignalType or a metadata map missing a required key is a
// direct API misuse: per the error-handling design this is the one
// class of fatal error the monitor ever raises.
func NewSignal(now time.Time, typ SignalType, pkg *PackageIdentity, metadata map[string]any, stack []StackFrame) (Signal, error) {
	if err := validateMetadata(typ, metadata); err != nil {
		return Signal{}, fmt.Errorf("bheeshma: invalid signal: %w", err)
	}
	return Signal{
		Timestamp: now.UTC(),
		Type:      typ,
		Package:   pkg,
		Metadata:  metadata,
		Stack:     stack,
	}, nil
}

// validateMetadataErr is returned by [validateMetadata].
type validateMetadataErr struct {
	typ    SignalType
	reason string
}

func (e *validateMetadataErr) Error() string {
	return fmt.Sprintf("signal type %q: %s", e.typ, e.reason)
}

// validateMetadata enforces the required metadata keys for typ, per the
// table in the data model.
func validateMetadata(typ SignalType, md map[string]any) error {
	require := func(keys ...string) error {
		for _, k := range keys {
			if _, ok := md[k]; !ok {
				return &validateMetadataErr{typ, fmt.Sprintf("missing required metadata key %q", k)}
			}
		}
		return nil
	}
	switch typ {
	case EnvAccess:
		return require("variable")
	case FsRead, FsWrite:
		return require("path", "operation")
	case NetConnect:
		return require("host", "port", "protocol")
	case HttpRequest, HttpsRequest:
		return require("url", "method", "host", "port", "path", "headers")
	case ShellExec:
		return require("command", "operation")
	default:
		return &validateMetadataErr{typ, "unknown signal type"}
	}
}

// debugAssertSignal checks typ and md with [validateMetadata] and, when
// they are invalid, logs a Warn to logger. It never panics and is not
// tied to any build tag; [NewSignal] already rejects invalid metadata by
// returning an error.
func debugAssertSignal(logger SLogger, typ SignalType, md map[string]any) {
	if err := validateMetadata(typ, md); err != nil {
		logger.Warn("invalid signal metadata", slog.String("type", string(typ)), slog.Any("err", err))
	}
}

// projectedMetadata returns a copy of md with every string value over
// [maxMetadataStringLen] truncated, as required by the report projection.
func projectedMetadata(md map[string]any) map[string]any {
	out := make(map[string]any, len(md))
	for k, v := range md {
		if s, ok := v.(string); ok && len(s) > maxMetadataStringLen {
			out[k] = s[:maxMetadataStringLen] + truncationSuffix
			continue
		}
		out[k] = v
	}
	return out
}
