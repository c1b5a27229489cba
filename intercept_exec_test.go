// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withExecContext(t *testing.T, ctx *monitorContext) {
	t.Helper()
	prev := Exec.get()
	Exec.set(ctx)
	t.Cleanup(func() { Exec.set(prev) })
}

func TestExecFacade_CommandEmitsShellExec(t *testing.T) {
	ctx := newTestContext(t, nil)
	withExecContext(t, ctx)

	cmd := Exec.Command(context.Background(), "echo", "hello")
	require.Equal(t, "echo", cmd.Args[0])

	signals := ctx.snapshot()
	require.Len(t, signals, 1)
	assert.Equal(t, ShellExec, signals[0].Type)
	assert.Equal(t, "spawn", signals[0].Metadata["operation"])
	assert.Contains(t, signals[0].Metadata["command"], "echo hello")
}

func TestSanitizeCommand_RedactsPasswordFlag(t *testing.T) {
	got := sanitizeCommand("curl", []string{"--password", "hunter2", "https://example.com"})
	assert.Contains(t, got, redactedHeaderValue)
	assert.NotContains(t, got, "hunter2")
}

func TestSanitizeCommand_RedactsPasswordFlagEqualsForm(t *testing.T) {
	got := sanitizeCommand("curl", []string{"--password=hunter2", "https://example.com"})
	assert.Contains(t, got, redactedHeaderValue)
	assert.NotContains(t, got, "hunter2")
}

func TestSanitizeCommand_RedactsSecretEnvAssignment(t *testing.T) {
	got := sanitizeCommand("sh", []string{"-c", "AWS_SECRET_KEY=abc123 ./run.sh"})
	assert.Contains(t, got, redactedHeaderValue)
	assert.NotContains(t, got, "abc123")
}

func TestSanitizeCommand_TruncatesLongCommands(t *testing.T) {
	got := sanitizeCommand("node", []string{strings.Repeat("a", 500)})
	assert.LessOrEqual(t, len(got), maxSanitizedCommandLen+len(truncationSuffix))
	assert.Contains(t, got, truncationSuffix)
}

func TestSanitizeCommand_LeavesOrdinaryCommandsAlone(t *testing.T) {
	got := sanitizeCommand("node", []string{"index.js"})
	assert.Equal(t, "node index.js", got)
}
