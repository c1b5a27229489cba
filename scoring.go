// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

// RiskLevel is a named bucket derived from a package's trust score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// PackageScore is the derived, per-package result of the Scoring Engine.
type PackageScore struct {
	Identity    PackageIdentity
	Score       int
	RiskLevel   RiskLevel
	SignalCount int
	Stats       map[SignalType]int
}

// ScoreSignals groups signals by package identity and computes a
// deterministic trust score for each group, per spec.md §4.4.
//
// Signals with a nil Package are ignored: they should never have reached
// the buffer in the first place, but ScoreSignals is defensive rather
// than panicking on a caller's bug.
//
// weights maps each SignalType to the penalty subtracted from a starting
// score of 100; thresholds classifies the resulting score into a
// [RiskLevel]. The function is pure: identical inputs, including signal
// order, always produce identical output — permuting the buffer does not
// change any package's score or stats.
func ScoreSignals(signals []Signal, weights map[SignalType]int, thresholds ThresholdsConfig) map[string]PackageScore {
	type group struct {
		identity PackageIdentity
		stats    map[SignalType]int
		ordered  []SignalType
	}
	groups := make(map[string]*group)
	order := make([]string, 0)

	for _, s := range signals {
		if s.Package == nil {
			continue
		}
		key := s.Package.Key()
		g, ok := groups[key]
		if !ok {
			g = &group{identity: *s.Package, stats: make(map[SignalType]int)}
			groups[key] = g
			order = append(order, key)
		}
		g.stats[s.Type]++
		g.ordered = append(g.ordered, s.Type)
	}

	out := make(map[string]PackageScore, len(groups))
	for _, key := range order {
		g := groups[key]
		score := 100
		for _, typ := range g.ordered {
			score -= weights[typ]
			if score <= 0 {
				score = 0
				break
			}
		}
		out[key] = PackageScore{
			Identity:    g.identity,
			Score:       score,
			RiskLevel:   classifyRisk(score, thresholds),
			SignalCount: len(g.ordered),
			Stats:       g.stats,
		}
	}
	return out
}

// classifyRisk buckets score into a [RiskLevel] using thresholds as
// lower bounds: LOW >= Medium, MEDIUM in [High, Medium), HIGH in
// [Critical, High), CRITICAL below Critical.
func classifyRisk(score int, thresholds ThresholdsConfig) RiskLevel {
	switch {
	case score >= thresholds.Medium:
		return RiskLow
	case score >= thresholds.High:
		return RiskMedium
	case score >= thresholds.Critical:
		return RiskHigh
	default:
		return RiskCritical
	}
}
