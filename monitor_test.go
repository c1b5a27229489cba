// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_InstallRejectsInvalidConfig(t *testing.T) {
	m := NewMonitor(DefaultSLogger())
	cfg := DefaultConfig()
	cfg.Thresholds = ThresholdsConfig{Critical: 80, High: 60, Medium: 30} // out of order
	_, err := m.Install(cfg)
	assert.Error(t, err)
}

func TestMonitor_RunProducesReportAndUninstalls(t *testing.T) {
	m := NewMonitor(DefaultSLogger())

	report, err := m.Run(context.Background(), DefaultConfig(), func(ctx context.Context) error {
		_ = os.Getenv("PATH")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, reportWireVersion, report.Version)

	// Uninstalled: subsequent signals should not accumulate.
	assert.Empty(t, m.GetSignals())
}

func TestMonitor_RunPropagatesFnError(t *testing.T) {
	m := NewMonitor(DefaultSLogger())
	sentinel := assert.AnError

	_, err := m.Run(context.Background(), DefaultConfig(), func(ctx context.Context) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestMonitor_GenerateReportDefaultsToText(t *testing.T) {
	m := NewMonitor(DefaultSLogger())
	_, err := m.Install(DefaultConfig())
	require.NoError(t, err)
	defer m.Uninstall()

	out, err := m.GenerateReport("")
	require.NoError(t, err)
	assert.Contains(t, out, "bheeshma report")
}

func TestMonitor_GenerateReportRejectsUnknownFormat(t *testing.T) {
	m := NewMonitor(DefaultSLogger())
	_, err := m.Install(DefaultConfig())
	require.NoError(t, err)
	defer m.Uninstall()

	_, err = m.GenerateReport(ReportFormat("yaml"))
	assert.Error(t, err)
}
