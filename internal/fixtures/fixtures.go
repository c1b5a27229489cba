// SPDX-License-Identifier: GPL-3.0-or-later

// Package fixtures provides helpers for constructing fake node_modules
// trees used to test the Attribution Engine deterministically.
package fixtures

import (
	"os"
	"path/filepath"
)

// WritePackage creates <root>/node_modules/<name>/package.json with the
// given version and returns the absolute path to a fake entry-point file
// inside that package directory, suitable for use as a [StackFrame].Path.
//
// name may be scoped ("@scope/name"); the on-disk layout follows npm's
// own convention of a nested "@scope/name" directory.
func WritePackage(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, root, name, version string) string {
	t.Helper()
	pkgDir := filepath.Join(root, "node_modules", filepath.FromSlash(name))
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	manifest := `{"name":"` + name + `","version":"` + version + `"}`
	if err := os.WriteFile(filepath.Join(pkgDir, "package.json"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return filepath.Join(pkgDir, "index.js")
}
