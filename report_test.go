// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport_ProjectsAllowListedMetadataOnly(t *testing.T) {
	pkg := PackageIdentity{Name: "evil-lib", Version: "1.0.0"}
	signals := []Signal{
		sig(t, HttpsRequest, pkg, map[string]any{
			"url": "https://example.com/x", "method": "GET", "host": "example.com",
			"port": 443, "path": "/x", "headers": map[string]string{"Authorization": "[REDACTED]"},
			"suspicious": false,
		}),
	}
	scores := ScoreSignals(signals, DefaultConfig().RiskWeights, DefaultConfig().Thresholds)
	report := BuildReport(signals, scores, ThreatResult{}, fixedNow())

	require.Len(t, report.Packages, 1)
	require.Len(t, report.Packages[0].Signals, 1)
	md := report.Packages[0].Signals[0].Metadata
	assert.Equal(t, "example.com", md["host"])
	assert.Contains(t, md, "port")
	assert.Contains(t, md, "path")
	_, hasHeaders := md["headers"]
	assert.False(t, hasHeaders)
	_, hasURL := md["url"]
	assert.False(t, hasURL)
}

func TestBuildReport_SortsPackagesByAscendingScore(t *testing.T) {
	low := PackageIdentity{Name: "risky-lib", Version: "1.0.0"}
	high := PackageIdentity{Name: "clean-lib", Version: "1.0.0"}
	signals := []Signal{
		sig(t, ShellExec, low, map[string]any{"command": "curl evil.com", "operation": "spawn"}),
		sig(t, EnvAccess, high, map[string]any{"variable": "NODE_ENV"}),
	}
	scores := ScoreSignals(signals, DefaultConfig().RiskWeights, DefaultConfig().Thresholds)
	report := BuildReport(signals, scores, ThreatResult{}, fixedNow())

	require.Len(t, report.Packages, 2)
	assert.LessOrEqual(t, report.Packages[0].Score, report.Packages[1].Score)
}

func TestReport_StructuredIsValidJSONWithVersion(t *testing.T) {
	report := BuildReport(nil, map[string]PackageScore{}, ThreatResult{}, fixedNow())
	data, err := report.Structured()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "1.0"`)
}

func TestReport_TextIncludesThreats(t *testing.T) {
	pkg := PackageIdentity{Name: "evil-lib", Version: "1.0.0"}
	threats := ThreatResult{
		Findings: []ThreatFinding{
			{Kind: ThreatCryptoMiner, Severity: SeverityCritical, Package: pkg, Description: "spawned xmrig"},
		},
		HighestSeverity: SeverityCritical,
	}
	report := BuildReport(nil, map[string]PackageScore{}, threats, fixedNow())
	text := report.Text()
	assert.True(t, strings.Contains(text, "CryptoMiner"))
	assert.True(t, strings.Contains(text, "evil-lib"))
}
