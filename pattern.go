// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ThreatKind identifies the category of malicious behavior a
// [ThreatFinding] describes.
type ThreatKind string

const (
	ThreatCryptoMiner ThreatKind = "CryptoMiner"

	// ThreatDataExfiltration marks a single request to a known
	// exfiltration-service host, standalone of any file read.
	ThreatDataExfiltration ThreatKind = "DataExfiltration"

	// ThreatSensitiveFilePlusHttp marks a package that both read a
	// sensitive file and made an http(s) request anywhere in the
	// buffer, regardless of the request's destination.
	ThreatSensitiveFilePlusHttp ThreatKind = "SensitiveFilePlusHttp"

	ThreatBackdoor        ThreatKind = "Backdoor"
	ThreatCredentialTheft ThreatKind = "CredentialTheft"
)

// Severity ranks a [ThreatFinding] from least to most urgent.
type Severity string

const (
	SeverityNone     Severity = "NONE"
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// ThreatFinding is one pattern match against a specific package's
// observed signals.
type ThreatFinding struct {
	ID          string
	Kind        ThreatKind
	Severity    Severity
	Package     PackageIdentity
	Description string
	Evidence    []Signal
	DetectedAt  time.Time
}

// ThreatResult is the outcome of running every enabled detector over a
// signal set.
type ThreatResult struct {
	Findings        []ThreatFinding
	HighestSeverity Severity
	Summary         string
}

// AnalyzePatterns runs every detector enabled in cfg over signals and
// returns their combined findings. now supplies each finding's DetectedAt
// timestamp; a nil now uses [time.Now]. Finding IDs are minted from the
// system clock regardless of now.
func AnalyzePatterns(signals []Signal, cfg PatternsConfig, now func() time.Time) ThreatResult {
	if !cfg.Enabled {
		return ThreatResult{Summary: "pattern analysis disabled"}
	}
	if now == nil {
		now = time.Now
	}

	var findings []ThreatFinding
	if cfg.DetectCryptoMiners {
		findings = append(findings, detectCryptoMiner(signals, now)...)
	}
	if cfg.DetectDataExfiltration {
		findings = append(findings, detectDataExfiltration(signals, now)...)
	}
	if cfg.DetectBackdoors {
		findings = append(findings, detectBackdoor(signals, now)...)
		findings = append(findings, detectCredentialTheft(signals, now)...)
	}

	return ThreatResult{
		Findings:        findings,
		HighestSeverity: highestSeverityCategory(findings),
		Summary:         summarizeFindings(findings),
	}
}

// highestSeverityCategory computes the report-level severity label from
// the set of finding *kinds* present, not from any single finding's own
// Severity field: critical if any crypto-miner or backdoor finding
// exists; else high if any exfiltration or credential-theft finding
// exists; else medium if any finding exists at all; else none.
func highestSeverityCategory(findings []ThreatFinding) Severity {
	if len(findings) == 0 {
		return SeverityNone
	}
	hasCritical, hasHigh := false, false
	for _, f := range findings {
		switch f.Kind {
		case ThreatCryptoMiner, ThreatBackdoor:
			hasCritical = true
		case ThreatDataExfiltration, ThreatSensitiveFilePlusHttp, ThreatCredentialTheft:
			hasHigh = true
		}
	}
	switch {
	case hasCritical:
		return SeverityCritical
	case hasHigh:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

func summarizeFindings(findings []ThreatFinding) string {
	if len(findings) == 0 {
		return "no threats detected"
	}
	counts := make(map[ThreatKind]int)
	for _, f := range findings {
		counts[f.Kind]++
	}
	total := len(findings)
	if total == 1 {
		return "1 finding"
	}
	return fmt.Sprintf("%d findings across %d categories", total, len(counts))
}

// groupByPackage buckets signals by their attributed package's Key(),
// mirroring [ScoreSignals]'s grouping pass.
func groupByPackage(signals []Signal) map[string][]Signal {
	groups := make(map[string][]Signal)
	for _, s := range signals {
		if s.Package == nil {
			continue
		}
		key := s.Package.Key()
		groups[key] = append(groups[key], s)
	}
	return groups
}

func newFinding(kind ThreatKind, severity Severity, pkg PackageIdentity, description string, evidence []Signal, now func() time.Time) ThreatFinding {
	return ThreatFinding{
		ID:          newFindingID(),
		Kind:        kind,
		Severity:    severity,
		Package:     pkg,
		Description: description,
		Evidence:    evidence,
		DetectedAt:  now().UTC(),
	}
}

// newFindingID mints a time-ordered finding identifier. A v7 UUID
// failure (only possible if the system clock is unreadable) falls back
// to a random v4, since a missing ID must never block a finding from
// being reported.
func newFindingID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// detectCryptoMiner matches each signal independently against its own
// severity: a miner process spawn or mining-pool contact is critical on
// its own; a mining-related env var read is high on its own. The
// finding's overall severity is the highest of whichever matched.
func detectCryptoMiner(signals []Signal, now func() time.Time) []ThreatFinding {
	var findings []ThreatFinding
	for key, group := range groupByPackage(signals) {
		var evidence []Signal
		var reasons []string
		severity := Severity("")
		bump := func(s Severity) {
			if severity == "" || severityOutranks(s, severity) {
				severity = s
			}
		}
		for _, s := range group {
			switch s.Type {
			case ShellExec:
				if cmd, ok := s.Metadata["command"].(string); ok {
					if name, hit := containsSubstring(cmd, minerProcessNames); hit {
						evidence = append(evidence, s)
						reasons = append(reasons, "spawned "+name)
						bump(SeverityCritical)
					}
				}
			case HttpRequest, HttpsRequest:
				if host, ok := s.Metadata["host"].(string); ok {
					if pool, hit := containsSubstring(host, miningPoolDomains); hit {
						evidence = append(evidence, s)
						reasons = append(reasons, "contacted mining pool "+pool)
						bump(SeverityCritical)
					}
				}
			case EnvAccess:
				if v, ok := s.Metadata["variable"].(string); ok {
					if _, hit := containsSubstring(v, miningEnvVarNames); hit {
						evidence = append(evidence, s)
						reasons = append(reasons, "read mining pool env var "+v)
						bump(SeverityHigh)
					}
				}
			}
		}
		if len(evidence) == 0 {
			continue
		}
		pkg := group[0].Package
		findings = append(findings, newFinding(ThreatCryptoMiner, severity, *pkg,
			"package "+key+" exhibits crypto-mining behavior: "+joinReasons(reasons), evidence, now))
	}
	return findings
}

// severityOutranks reports whether a is strictly more urgent than b.
func severityOutranks(a, b Severity) bool {
	rank := map[Severity]int{SeverityLow: 0, SeverityMedium: 1, SeverityHigh: 2, SeverityCritical: 3}
	return rank[a] > rank[b]
}

// detectDataExfiltration applies two independent rules: a standalone
// critical finding for any http(s) request to a known exfiltration-service
// host, and a critical correlation finding of kind
// [ThreatSensitiveFilePlusHttp] for any package that both read a sensitive
// file and made an http(s) request anywhere in the buffer, regardless of
// that request's destination.
func detectDataExfiltration(signals []Signal, now func() time.Time) []ThreatFinding {
	var findings []ThreatFinding
	for key, group := range groupByPackage(signals) {
		var sensitiveReads []Signal
		var httpRequests []Signal
		for _, s := range group {
			switch s.Type {
			case FsRead:
				if path, ok := s.Metadata["path"].(string); ok {
					if _, hit := containsSubstring(path, sensitiveFileSubstrings); hit {
						sensitiveReads = append(sensitiveReads, s)
					}
				}
			case HttpRequest, HttpsRequest:
				httpRequests = append(httpRequests, s)
				if host, ok := s.Metadata["host"].(string); ok {
					if svc, hit := containsSubstring(host, exfiltrationServiceSubstrings); hit {
						findings = append(findings, newFinding(ThreatDataExfiltration, SeverityCritical, *s.Package,
							"package "+key+" made an outbound request to known exfiltration service "+svc,
							[]Signal{s}, now))
					}
				}
			}
		}
		if len(sensitiveReads) == 0 || len(httpRequests) == 0 {
			continue
		}
		var paths []string
		for _, r := range sensitiveReads {
			if p, ok := r.Metadata["path"].(string); ok {
				paths = append(paths, p)
			}
		}
		evidence := append(append([]Signal{}, sensitiveReads...), httpRequests...)
		pkg := group[0].Package
		findings = append(findings, newFinding(ThreatSensitiveFilePlusHttp, SeverityCritical, *pkg,
			"package "+key+" read sensitive files ("+strings.Join(paths, ", ")+") then made an outbound HTTP request",
			evidence, now))
	}
	return findings
}

func detectBackdoor(signals []Signal, now func() time.Time) []ThreatFinding {
	var findings []ThreatFinding
	for key, group := range groupByPackage(signals) {
		var evidence []Signal
		var reasons []string
		for _, s := range group {
			switch s.Type {
			case ShellExec:
				if cmd, ok := s.Metadata["command"].(string); ok {
					for _, pattern := range reverseShellPatterns {
						if pattern.MatchString(cmd) {
							evidence = append(evidence, s)
							reasons = append(reasons, "ran reverse-shell-like command")
							break
						}
					}
					if name, hit := containsSubstring(cmd, ratToolNames); hit {
						evidence = append(evidence, s)
						reasons = append(reasons, "spawned tunneling tool "+name)
					}
				}
			case NetConnect:
				if port, ok := s.Metadata["port"].(int); ok && backdoorPorts[port] {
					evidence = append(evidence, s)
					reasons = append(reasons, "connected on backdoor-associated port")
				}
			}
		}
		if len(evidence) == 0 {
			continue
		}
		pkg := group[0].Package
		findings = append(findings, newFinding(ThreatBackdoor, SeverityCritical, *pkg,
			"package "+key+" shows backdoor indicators: "+joinReasons(reasons), evidence, now))
	}
	return findings
}

// detectCredentialTheft matches each `EnvAccess` whose variable is a known
// secret name, and each `FsRead` whose path is a known credential file,
// each contributing evidence to a high-severity finding.
func detectCredentialTheft(signals []Signal, now func() time.Time) []ThreatFinding {
	var findings []ThreatFinding
	for key, group := range groupByPackage(signals) {
		var credentialAccess []Signal
		for _, s := range group {
			switch s.Type {
			case FsRead:
				if path, ok := s.Metadata["path"].(string); ok {
					if _, hit := containsSubstring(path, credentialFileSubstrings); hit {
						credentialAccess = append(credentialAccess, s)
					}
				}
			case EnvAccess:
				if v, ok := s.Metadata["variable"].(string); ok {
					if _, hit := containsSubstring(v, secretEnvNames); hit {
						credentialAccess = append(credentialAccess, s)
					}
				}
			}
		}
		if len(credentialAccess) == 0 {
			continue
		}
		pkg := group[0].Package
		findings = append(findings, newFinding(ThreatCredentialTheft, SeverityHigh, *pkg,
			"package "+key+" accessed credential material", credentialAccess, now))
	}
	return findings
}

func joinReasons(reasons []string) string {
	return strings.Join(reasons, "; ")
}
