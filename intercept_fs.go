// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import "os"

// FSFacade wraps filesystem access, emitting [FsRead]/[FsWrite] signals
// when installed. Paths are normalized with [normalizePath] before being
// recorded; arguments that cannot be resolved to a path are observed
// without a path signal, per spec.md's instruction to drop rather than
// guess at unresolvable arguments.
type FSFacade struct {
	ctxHolder
}

// FS is the package-level filesystem facade.
var FS = &FSFacade{}

// ReadFile reads the named file and returns its contents, emitting an
// [FsRead] signal.
func (f *FSFacade) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	f.observe(FsRead, name, "read", err)
	return data, err
}

// ReadDir reads the named directory, emitting an [FsRead] signal.
func (f *FSFacade) ReadDir(name string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(name)
	f.observe(FsRead, name, "readdir", err)
	return entries, err
}

// Readlink returns the destination of the named symbolic link, emitting
// an [FsRead] signal.
func (f *FSFacade) Readlink(name string) (string, error) {
	dest, err := os.Readlink(name)
	f.observe(FsRead, name, "readlink", err)
	return dest, err
}

// Open opens the named file for reading, emitting an [FsRead] signal.
// The returned stream is the real [*os.File]; the facade observes only
// the open itself, matching spec.md's note that streaming reads are
// attributed at open time.
func (f *FSFacade) Open(name string) (*os.File, error) {
	file, err := os.Open(name)
	f.observe(FsRead, name, "read-stream", err)
	return file, err
}

// WriteFile writes data to the named file, creating it if necessary,
// emitting an [FsWrite] signal.
func (f *FSFacade) WriteFile(name string, data []byte, perm os.FileMode) error {
	err := os.WriteFile(name, data, perm)
	f.observe(FsWrite, name, "write", err)
	return err
}

// AppendFile appends data to the named file, creating it if necessary,
// emitting an [FsWrite] signal.
func (f *FSFacade) AppendFile(name string, data []byte, perm os.FileMode) error {
	file, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, perm)
	if err == nil {
		_, werr := file.Write(data)
		cerr := file.Close()
		if werr != nil {
			err = werr
		} else if cerr != nil {
			err = cerr
		}
	}
	f.observe(FsWrite, name, "append", err)
	return err
}

// Create creates or truncates the named file for writing, emitting an
// [FsWrite] signal.
func (f *FSFacade) Create(name string) (*os.File, error) {
	file, err := os.Create(name)
	f.observe(FsWrite, name, "write-stream", err)
	return file, err
}

// Mkdir creates the named directory, emitting an [FsWrite] signal.
func (f *FSFacade) Mkdir(name string, perm os.FileMode) error {
	err := os.Mkdir(name, perm)
	f.observe(FsWrite, name, "mkdir", err)
	return err
}

// Rmdir removes the named empty directory, emitting an [FsWrite] signal.
func (f *FSFacade) Rmdir(name string) error {
	err := os.Remove(name)
	f.observe(FsWrite, name, "rmdir", err)
	return err
}

// Unlink removes the named file, emitting an [FsWrite] signal.
func (f *FSFacade) Unlink(name string) error {
	err := os.Remove(name)
	f.observe(FsWrite, name, "unlink", err)
	return err
}

// Rename renames (moves) oldpath to newpath, emitting a single [FsWrite]
// signal attributed to oldpath, matching spec.md's rule that a rename is
// recorded once against its source path.
func (f *FSFacade) Rename(oldpath, newpath string) error {
	err := os.Rename(oldpath, newpath)
	f.observe(FsWrite, oldpath, "rename", err)
	return err
}

func (f *FSFacade) observe(typ SignalType, path, operation string, callErr error) {
	ctx := f.get()
	if !ctx.hookEnabled(hookFs) {
		return
	}
	norm, ok := normalizePath(path)
	if !ok {
		return
	}
	metadata := map[string]any{"path": norm, "operation": operation}
	if callErr != nil {
		metadata["error"] = classifyCallErr(callErr)
	}
	ctx.emit(typ, captureStack(), metadata)
}
