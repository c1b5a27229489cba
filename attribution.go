// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// nodeModulesSegment is the literal path component the Attribution Engine
// walks stack frames for. The monitored ecosystem is npm-style, so this
// name is not configurable.
const nodeModulesSegment = "node_modules"

// manifest is the subset of package.json fields the Attribution Engine
// needs.
type manifest struct {
	Version string `json:"version"`
}

// Attributor resolves a captured call stack to the third-party package
// responsible for it, or reports that none could be determined.
//
// Implementations must never return an error to callers: all I/O and
// parse failures collapse to "unresolvable" (false).
type Attributor interface {
	Identify(stack []StackFrame) (*PackageIdentity, bool)
}

// AttributorFunc adapts a function to the [Attributor] interface, mirroring
// the ErrClassifierFunc idiom used throughout this codebase.
type AttributorFunc func(stack []StackFrame) (*PackageIdentity, bool)

// Identify implements [Attributor].
func (f AttributorFunc) Identify(stack []StackFrame) (*PackageIdentity, bool) {
	return f(stack)
}

// Engine is the Attribution Engine: it maps captured stacks to package
// identities using on-disk package.json manifests, with a process-wide
// manifest cache.
//
// The zero value is not usable; construct with [NewEngine].
type Engine struct {
	logger SLogger

	mu    sync.RWMutex
	cache map[string]*manifest // keyed by absolute package directory
}

// NewEngine returns a ready-to-use [*Engine].
func NewEngine(logger SLogger) *Engine {
	if logger == nil {
		logger = DefaultSLogger()
	}
	return &Engine{
		logger: logger,
		cache:  make(map[string]*manifest),
	}
}

var _ Attributor = &Engine{}

// Identify implements [Attributor].
//
// It walks stack frames in order; the first frame that resolves to a
// package (a node_modules ancestor with a readable, parseable
// package.json) wins. Frames under no node_modules ancestor, or whose
// manifest cannot be read or parsed, are treated as first-party /
// unresolvable and skipped — never an error.
func (e *Engine) Identify(stack []StackFrame) (*PackageIdentity, bool) {
	for _, frame := range stack {
		pkgDir, name, ok := splitNodeModulesPath(frame.Path)
		if !ok {
			continue
		}
		m, ok := e.resolveManifest(pkgDir)
		if !ok {
			continue
		}
		version := m.Version
		if version == "" {
			version = "unknown"
		}
		return &PackageIdentity{Name: name, Version: version}, true
	}
	return nil, false
}

// resolveManifest returns the cached or freshly parsed manifest for
// pkgDir, or false if it cannot be read or parsed.
func (e *Engine) resolveManifest(pkgDir string) (*manifest, bool) {
	e.mu.RLock()
	if m, ok := e.cache[pkgDir]; ok {
		e.mu.RUnlock()
		return m, m != nil
	}
	e.mu.RUnlock()

	m := readManifest(pkgDir)

	e.mu.Lock()
	e.cache[pkgDir] = m
	e.mu.Unlock()

	return m, m != nil
}

// readManifest reads and parses <pkgDir>/package.json. A missing or
// malformed manifest returns nil, which [resolveManifest] caches as a
// negative result so repeated lookups for the same broken directory stay
// O(1).
func readManifest(pkgDir string) *manifest {
	data, err := os.ReadFile(filepath.Join(pkgDir, "package.json"))
	if err != nil {
		return nil
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return &m
}

// InvalidateCache drops every cached manifest for pkgDir and its
// descendants. Used by [Engine.WatchInvalidation] and available directly
// for hosts that know a package tree under pkgDir changed (e.g. after
// `npm install`).
func (e *Engine) InvalidateCache(pkgDir string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k := range e.cache {
		if k == pkgDir || strings.HasPrefix(k, pkgDir+string(filepath.Separator)) {
			delete(e.cache, k)
		}
	}
}

// WatchInvalidation watches root and every directory beneath it that
// exists at call time for package.json creations, writes, and removals,
// calling [Engine.InvalidateCache] on the enclosing package directory
// whenever one occurs. Events are handled on a goroutine of its own that
// runs until the returned watcher is closed; watcher errors are ignored.
// It serves hosts that keep a monitor installed across a package
// reinstall (e.g. CI running `npm install` mid-session).
//
// A nil return value never happens on success; callers that don't need
// live invalidation can simply not call this and rely on the cache's
// own per-process lifetime.
func (e *Engine) WatchInvalidation(root string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addWatchRecursive(watcher, root); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != "package.json" {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Create) == 0 {
					continue
				}
				e.InvalidateCache(filepath.Dir(event.Name))
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return watcher, nil
}

// addWatchRecursive registers root and every directory beneath it with
// watcher, matching fsnotify's non-recursive watch model.
func addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

// splitNodeModulesPath locates the rightmost node_modules ancestor in
// path and extracts the package directory and name immediately following
// it:
//
//  1. Find the rightmost "node_modules" path segment. If none, the frame
//     is first-party.
//  2. Read the segment(s) immediately after it: a leading "@scope"
//     segment joins with the next segment to form "@scope/name";
//     otherwise the single following segment is the package name.
//  3. The package directory is the prefix up to and including the
//     package name.
func splitNodeModulesPath(path string) (pkgDir, name string, ok bool) {
	if path == "" {
		return "", "", false
	}
	norm := filepath.ToSlash(path)
	segments := strings.Split(norm, "/")

	idx := -1
	for i, s := range segments {
		if s == nodeModulesSegment {
			idx = i // keep scanning: we want the rightmost occurrence
		}
	}
	if idx < 0 || idx+1 >= len(segments) {
		return "", "", false
	}

	next := segments[idx+1]
	nameEnd := idx + 1
	if strings.HasPrefix(next, "@") {
		if idx+2 >= len(segments) {
			return "", "", false
		}
		name = next + "/" + segments[idx+2]
		nameEnd = idx + 2
	} else {
		name = next
	}

	dirSegments := segments[:nameEnd+1]
	pkgDir = strings.Join(dirSegments, "/")
	return pkgDir, name, true
}
