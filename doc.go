// SPDX-License-Identifier: GPL-3.0-or-later

// Package bheeshma watches the environment, filesystem, network, and
// child-process calls a dependency tree makes at runtime, attributes
// each call to the third-party package that made it, and scores and
// reports on what it saw.
//
// The package-level facades [Env], [FS], [Net], [HTTP], and [Exec] wrap
// the corresponding platform APIs; host code calls through them instead
// of [os], [net], [net/http], and [os/exec] directly. [Install] arms
// signal capture on whichever facades a [Config] enables; [Uninstall]
// disarms it again without ever breaking the facades' pass-through
// behavior.
//
// [GetSignals] returns every captured [Signal]; [GetScores] reduces
// them to a per-package [PackageScore] via [ScoreSignals]; and
// [AnalyzePatterns] runs signature- and correlation-based threat
// detection over them, returning a [ThreatResult]. [BuildReport] and
// [Report] tie signals, scores, and threats together into a single
// JSON- or text-renderable view.
//
// For a one-shot "monitor this function call" workflow, see
// [Monitor.Run]. For ergonomic parity with a single default context,
// the package-level [Install], [Uninstall], [GetSignals], [GetScores],
// and [GenerateReport] functions operate against a shared default
// [Monitor].
package bheeshma
