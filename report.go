// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// reportWireVersion is the stability-tagged version of the structured
// report's JSON shape. Additive changes (new optional fields) bump the
// minor component; breaking changes never happen silently.
const reportWireVersion = "1.0"

// reportMetadataAllowList names the only Signal.Metadata keys carried
// into a report's per-signal projection. This is deliberately narrower
// than a signal's full metadata (which may include redacted header maps,
// URLs, or error classifications): the report is meant for a human or a
// downstream aggregator, not a full-fidelity audit log.
var reportMetadataAllowList = []string{"variable", "path", "operation", "host", "port", "protocol", "command"}

// ReportFormat selects a [Report]'s rendering.
type ReportFormat string

const (
	FormatJSON ReportFormat = "json"
	FormatText ReportFormat = "text"
)

// SignalReport is the report projection of a [Signal].
type SignalReport struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      SignalType     `json:"type"`
	Metadata  map[string]any `json:"metadata"`
}

// PackageReport is the report projection of a [PackageScore], carrying
// its contributing signals.
type PackageReport struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Score       int            `json:"score"`
	RiskLevel   RiskLevel      `json:"riskLevel"`
	SignalCount int            `json:"signalCount"`
	Signals     []SignalReport `json:"signals,omitempty"`
}

// ReportSummary aggregates counts across a [Report].
type ReportSummary struct {
	TotalPackages   int       `json:"totalPackages"`
	TotalSignals    int       `json:"totalSignals"`
	HighestRisk     RiskLevel `json:"highestRisk"`
	ThreatCount     int       `json:"threatCount"`
	HighestSeverity Severity  `json:"highestSeverity,omitempty"`
}

// Report is the structured view of a monitoring run: every scored
// package, the threats detected against it, and summary counts.
type Report struct {
	Version     string          `json:"version"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Packages    []PackageReport `json:"packages"`
	Threats     []ThreatFinding `json:"threats,omitempty"`
	Summary     ReportSummary   `json:"summary"`
}

// BuildReport projects signals, scores, and threats into a [Report].
// generatedAt is injected so tests and [Config.TimeNow]-driven hosts get
// deterministic timestamps.
func BuildReport(signals []Signal, scores map[string]PackageScore, threats ThreatResult, generatedAt time.Time) Report {
	bySignalPackage := make(map[string][]Signal)
	for _, s := range signals {
		if s.Package == nil {
			continue
		}
		key := s.Package.Key()
		bySignalPackage[key] = append(bySignalPackage[key], s)
	}

	packages := make([]PackageReport, 0, len(scores))
	highestRisk := RiskLow
	for key, score := range scores {
		reports := make([]SignalReport, 0, len(bySignalPackage[key]))
		for _, s := range bySignalPackage[key] {
			reports = append(reports, SignalReport{
				Timestamp: s.Timestamp,
				Type:      s.Type,
				Metadata:  projectReportMetadata(s.Metadata),
			})
		}
		packages = append(packages, PackageReport{
			Name:        score.Identity.Name,
			Version:     score.Identity.Version,
			Score:       score.Score,
			RiskLevel:   score.RiskLevel,
			SignalCount: score.SignalCount,
			Signals:     reports,
		})
		if riskRank[score.RiskLevel] > riskRank[highestRisk] {
			highestRisk = score.RiskLevel
		}
	}
	sort.Slice(packages, func(i, j int) bool {
		if packages[i].Score != packages[j].Score {
			return packages[i].Score < packages[j].Score
		}
		return packages[i].Name < packages[j].Name
	})

	if len(packages) == 0 {
		highestRisk = ""
	}

	return Report{
		Version:     reportWireVersion,
		GeneratedAt: generatedAt.UTC(),
		Packages:    packages,
		Threats:     threats.Findings,
		Summary: ReportSummary{
			TotalPackages:   len(packages),
			TotalSignals:    len(signals),
			HighestRisk:     highestRisk,
			ThreatCount:     len(threats.Findings),
			HighestSeverity: threats.HighestSeverity,
		},
	}
}

// riskRank orders risk levels for highest-wins comparisons.
var riskRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// projectReportMetadata keeps only the keys in
// [reportMetadataAllowList], truncating long string values via
// [projectedMetadata].
func projectReportMetadata(md map[string]any) map[string]any {
	truncated := projectedMetadata(md)
	out := make(map[string]any, len(reportMetadataAllowList))
	for _, key := range reportMetadataAllowList {
		if v, ok := truncated[key]; ok {
			out[key] = v
		}
	}
	return out
}

// Structured renders r as indented JSON, per the v1.0 wire format.
func (r Report) Structured() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Text renders r as a human-readable plain-text summary. Color and
// symbol decoration are an external collaborator's job (the CLI), not
// this package's.
func (r Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bheeshma report (generated %s)\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "packages scanned: %d, signals captured: %d, threats: %d\n\n",
		r.Summary.TotalPackages, r.Summary.TotalSignals, r.Summary.ThreatCount)

	for _, pkg := range r.Packages {
		fmt.Fprintf(&b, "[%s] %s@%s — score %d (%d signals)\n",
			pkg.RiskLevel, pkg.Name, pkg.Version, pkg.Score, pkg.SignalCount)
	}

	if len(r.Threats) > 0 {
		b.WriteString("\nthreats:\n")
		for _, f := range r.Threats {
			fmt.Fprintf(&b, "  [%s] %s: %s@%s — %s\n",
				f.Severity, f.Kind, f.Package.Name, f.Package.Version, f.Description)
		}
	}

	return b.String()
}
