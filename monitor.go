// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Monitor is the top-level façade tying together installation, signal
// capture, scoring, pattern analysis, and reporting. The zero value is
// not usable; construct with [NewMonitor].
type Monitor struct {
	mu      sync.Mutex
	manager *Manager
	cfg     *Config
	logger  SLogger
}

// NewMonitor returns a ready-to-use [*Monitor]. A nil logger uses
// [DefaultSLogger].
func NewMonitor(logger SLogger) *Monitor {
	if logger == nil {
		logger = DefaultSLogger()
	}
	return &Monitor{manager: NewManager(logger), logger: logger}
}

// defaultMonitor is the package-level instance backing the top-level
// [Install]/[Uninstall]/[GetSignals]/[GetScores]/[GenerateReport]
// functions, giving callers ergonomic parity with
// constructing their own [*Monitor] when one default context suffices.
var defaultMonitor = NewMonitor(nil)

// Install activates interception on the default [Monitor]. See
// [Monitor.Install].
func Install(cfg *Config) (*InstallResult, error) { return defaultMonitor.Install(cfg) }

// Uninstall deactivates interception on the default [Monitor]. See
// [Monitor.Uninstall].
func Uninstall() (*UninstallResult, error) { return defaultMonitor.Uninstall() }

// GetSignals returns the default [Monitor]'s captured signals.
func GetSignals() []Signal { return defaultMonitor.GetSignals() }

// GetScores returns the default [Monitor]'s package scores.
func GetScores() map[string]PackageScore { return defaultMonitor.GetScores() }

// GenerateReport renders the default [Monitor]'s current state as a
// report in the given format.
func GenerateReport(format ReportFormat) (string, error) { return defaultMonitor.GenerateReport(format) }

// Install activates the hooks enabled in cfg and begins capturing
// signals. A nil cfg uses [DefaultConfig].
func (m *Monitor) Install(cfg *Config) (*InstallResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("bheeshma: invalid config: %v", errs)
	}
	m.cfg = cfg
	m.logger.Info("installing monitor", "hooks", cfg.Hooks)
	return m.manager.Install(cfg)
}

// Uninstall deactivates every hook and clears the signal buffer.
func (m *Monitor) Uninstall() (*UninstallResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger.Info("uninstalling monitor")
	return m.manager.Uninstall()
}

// GetSignals returns a snapshot of every signal captured since install.
func (m *Monitor) GetSignals() []Signal {
	return m.manager.GetSignals()
}

// GetScores scores every captured signal against the active
// configuration's risk weights and thresholds.
func (m *Monitor) GetScores() map[string]PackageScore {
	m.mu.Lock()
	cfg := m.cfg
	m.mu.Unlock()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return ScoreSignals(m.GetSignals(), cfg.RiskWeights, cfg.Thresholds)
}

// RunAnalysis runs the Pattern Analyzer over every captured signal using
// the active configuration's pattern settings.
func (m *Monitor) RunAnalysis() ThreatResult {
	m.mu.Lock()
	cfg := m.cfg
	m.mu.Unlock()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return AnalyzePatterns(m.GetSignals(), cfg.Patterns, cfg.TimeNow)
}

// GenerateReport builds a [Report] from the monitor's current signals,
// scores, and threat findings, and renders it in format.
func (m *Monitor) GenerateReport(format ReportFormat) (string, error) {
	m.mu.Lock()
	cfg := m.cfg
	m.mu.Unlock()
	now := time.Now
	if cfg != nil && cfg.TimeNow != nil {
		now = cfg.TimeNow
	}

	signals := m.GetSignals()
	scores := m.GetScores()
	threats := m.RunAnalysis()
	report := BuildReport(signals, scores, threats, now())

	switch format {
	case FormatJSON:
		data, err := report.Structured()
		if err != nil {
			return "", fmt.Errorf("bheeshma: rendering report: %w", err)
		}
		return string(data), nil
	case FormatText, "":
		return report.Text(), nil
	default:
		return "", fmt.Errorf("bheeshma: unknown report format %q", format)
	}
}

// Run installs cfg, invokes fn, uninstalls, and returns the resulting
// report — a convenience for one-shot monitoring of a bounded unit of
// work (e.g. a package install or build step), matching spec.md's
// "Monitor(ctx, fn, opts)" ergonomic entry point.
func (m *Monitor) Run(ctx context.Context, cfg *Config, fn func(context.Context) error) (Report, error) {
	if _, err := m.Install(cfg); err != nil {
		return Report{}, err
	}
	defer m.Uninstall()

	runErr := fn(ctx)

	m.mu.Lock()
	activeCfg := m.cfg
	m.mu.Unlock()
	now := time.Now
	if activeCfg != nil && activeCfg.TimeNow != nil {
		now = activeCfg.TimeNow
	}

	signals := m.GetSignals()
	scores := m.GetScores()
	threats := m.RunAnalysis()
	report := BuildReport(signals, scores, threats, now())

	return report, runErr
}
