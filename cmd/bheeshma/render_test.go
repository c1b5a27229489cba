// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"testing"
	"time"

	"github.com/bheeshma/bheeshma"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedReportTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRenderReport_JSON(t *testing.T) {
	report := bheeshma.BuildReport(nil, map[string]bheeshma.PackageScore{}, bheeshma.ThreatResult{}, fixedReportTime)
	out, err := renderReport(report, "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version"`)
}

func TestRenderReport_CLIDefault(t *testing.T) {
	report := bheeshma.BuildReport(nil, map[string]bheeshma.PackageScore{}, bheeshma.ThreatResult{}, fixedReportTime)
	out, err := renderReport(report, "")
	require.NoError(t, err)
	assert.Contains(t, out, "bheeshma report")
}

func TestRenderReport_RejectsUnknownFormat(t *testing.T) {
	report := bheeshma.BuildReport(nil, map[string]bheeshma.PackageScore{}, bheeshma.ThreatResult{}, fixedReportTime)
	_, err := renderReport(report, "xml")
	assert.Error(t, err)
}

func TestExitForContextErr_CanceledMapsToSignaled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, exitSignaled, exitForContextErr(ctx))
}
