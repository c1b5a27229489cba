// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath_String(t *testing.T) {
	got, ok := normalizePath("some/relative/path")
	assert.True(t, ok)
	assert.True(t, filepath.IsAbs(got))
}

func TestNormalizePath_ByteSlice(t *testing.T) {
	got, ok := normalizePath([]byte("another/path"))
	assert.True(t, ok)
	assert.True(t, filepath.IsAbs(got))
}

func TestNormalizePath_RejectsEmptyString(t *testing.T) {
	_, ok := normalizePath("")
	assert.False(t, ok)
}

func TestNormalizePath_RejectsUnsupportedType(t *testing.T) {
	_, ok := normalizePath(42)
	assert.False(t, ok)
}

func TestNormalizePath_CleansDotSegments(t *testing.T) {
	got, ok := normalizePath("/a/b/../c/./d")
	assert.True(t, ok)
	assert.Equal(t, "/a/c/d", filepath.ToSlash(got))
}

func TestNormalizePath_Idempotent(t *testing.T) {
	once, ok := normalizePath("/a/b/c")
	assert.True(t, ok)
	twice, ok := normalizePath(once)
	assert.True(t, ok)
	assert.Equal(t, once, twice)
}
