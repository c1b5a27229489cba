// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// configDiscoveryNames is the fixed, priority-ordered list of file names
// searched in the current working directory when no explicit config is
// supplied. ".js" has no meaning in a Go host, so ".yaml" takes its
// place — see SPEC_FULL.md §4.6.
var configDiscoveryNames = []string{
	".bheeshmarc.json",
	".bheeshmarc",
	"bheeshma.config.json",
	"bheeshma.config.yaml",
}

// HooksConfig toggles each interception hook independently.
type HooksConfig struct {
	Env          bool `json:"env" yaml:"env"`
	Fs           bool `json:"fs" yaml:"fs"`
	Net          bool `json:"net" yaml:"net"`
	ChildProcess bool `json:"childProcess" yaml:"childProcess"`
	Http         bool `json:"http" yaml:"http"`
}

// ThresholdsConfig holds the tier boundaries: a score of Medium or more is
// LOW, [High, Medium) is MEDIUM, [Critical, High) is HIGH, and anything
// below Critical is CRITICAL.
type ThresholdsConfig struct {
	Critical int `json:"critical" yaml:"critical"`
	High     int `json:"high" yaml:"high"`
	Medium   int `json:"medium" yaml:"medium"`
}

// PatternsConfig toggles the Pattern Analyzer and its individual
// detectors.
type PatternsConfig struct {
	Enabled                 bool `json:"enabled" yaml:"enabled"`
	DetectCryptoMiners       bool `json:"detectCryptoMiners" yaml:"detectCryptoMiners"`
	DetectDataExfiltration   bool `json:"detectDataExfiltration" yaml:"detectDataExfiltration"`
	DetectBackdoors          bool `json:"detectBackdoors" yaml:"detectBackdoors"`
	DetectObfuscation        bool `json:"detectObfuscation" yaml:"detectObfuscation"`
}

// PerformanceConfig controls buffer sizing and tracking overhead.
type PerformanceConfig struct {
	Track      bool `json:"track" yaml:"track"`
	MaxSignals int  `json:"maxSignals" yaml:"maxSignals"`
}

// OutputConfig controls report rendering (consumed by the external
// report/CLI collaborator; the core Report Builder reads none of these
// fields).
type OutputConfig struct {
	Formats           []string `json:"formats" yaml:"formats"`
	Verbosity         string   `json:"verbosity" yaml:"verbosity"`
	IncludeStackTraces bool    `json:"includeStackTraces" yaml:"includeStackTraces"`
}

// Config is the full external configuration schema from spec.md §6.
//
// Construct defaults with [DefaultConfig]; load from disk or a
// caller-provided object with [LoadConfig] / [LoadConfigFromBytes].
type Config struct {
	Hooks        HooksConfig          `json:"hooks" yaml:"hooks"`
	RiskWeights  map[SignalType]int   `json:"riskWeights" yaml:"riskWeights"`
	Thresholds   ThresholdsConfig     `json:"thresholds" yaml:"thresholds"`
	Whitelist    []string             `json:"whitelist" yaml:"whitelist"`
	Blacklist    []string             `json:"blacklist" yaml:"blacklist"`
	Patterns     PatternsConfig       `json:"patterns" yaml:"patterns"`
	Performance  PerformanceConfig    `json:"performance" yaml:"performance"`
	Output       OutputConfig         `json:"output" yaml:"output"`

	// TimeNow returns the current time; defaulted to [time.Now]. Not
	// part of the JSON/YAML wire schema (it has no serializable form).
	TimeNow func() time.Time `json:"-" yaml:"-"`
}

// DefaultConfig returns a [*Config] with every field set to the defaults
// named in spec.md §4.4 and §4.6.
func DefaultConfig() *Config {
	return &Config{
		Hooks: HooksConfig{
			Env:          true,
			Fs:           true,
			Net:          true,
			ChildProcess: true,
			Http:         true,
		},
		RiskWeights: map[SignalType]int{
			ShellExec:    20,
			FsWrite:      10,
			HttpRequest:  10,
			NetConnect:   8,
			HttpsRequest: 8,
			EnvAccess:    5,
			FsRead:       3,
		},
		Thresholds: ThresholdsConfig{
			Critical: 30,
			High:     60,
			Medium:   80,
		},
		Whitelist: nil,
		Blacklist: nil,
		Patterns: PatternsConfig{
			Enabled:                true,
			DetectCryptoMiners:     true,
			DetectDataExfiltration: true,
			DetectBackdoors:        true,
			DetectObfuscation:      false,
		},
		Performance: PerformanceConfig{
			Track:      false,
			MaxSignals: 100000,
		},
		Output: OutputConfig{
			Formats:            []string{"cli"},
			Verbosity:          "normal",
			IncludeStackTraces: false,
		},
		TimeNow: time.Now,
	}
}

// ConfigError is one validation failure recorded while loading a
// [Config]. Validation never stops at the first error: every applicable
// rule is checked and the full list is returned to the caller.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// validSignalTypes is used to validate riskWeights keys.
var validSignalTypes = map[SignalType]bool{
	EnvAccess:    true,
	FsRead:       true,
	FsWrite:      true,
	NetConnect:   true,
	HttpRequest:  true,
	HttpsRequest: true,
	ShellExec:    true,
}

// Validate checks cfg against every rule in spec.md §4.6 and returns the
// full list of violations (nil if none). A non-nil result does not
// modify cfg; the caller (usually [LoadConfig]) decides to discard it in
// favor of [DefaultConfig].
func (cfg *Config) Validate() []error {
	var errs []error
	add := func(field, reason string) {
		errs = append(errs, &ConfigError{Field: field, Reason: reason})
	}

	for typ, weight := range cfg.RiskWeights {
		if !validSignalTypes[typ] {
			add("riskWeights", fmt.Sprintf("unknown signal type %q", typ))
			continue
		}
		if weight < 0 || weight > 100 {
			add("riskWeights."+string(typ), "weight must be in [0,100]")
		}
	}

	if !(cfg.Thresholds.Critical < cfg.Thresholds.High && cfg.Thresholds.High < cfg.Thresholds.Medium) {
		add("thresholds", "must satisfy critical < high < medium")
	}
	for name, v := range map[string]int{
		"thresholds.critical": cfg.Thresholds.Critical,
		"thresholds.high":     cfg.Thresholds.High,
		"thresholds.medium":   cfg.Thresholds.Medium,
	} {
		if v < 0 || v > 100 {
			add(name, "must be in [0,100]")
		}
	}

	if cfg.Performance.MaxSignals <= 0 {
		add("performance.maxSignals", "must be a positive integer")
	}

	return errs
}

// LoadConfig searches the current working directory for a configuration
// file in the order given by [configDiscoveryNames], merges it onto
// [DefaultConfig], and validates the result.
//
// If no file is found, the defaults are returned with a nil error list.
// If a file is found but fails schema or semantic validation, the
// defaults are returned alongside the accumulated error list — the core
// never operates on an invalid configuration, per spec.md §4.6.
func LoadConfig() (*Config, []error) {
	for _, name := range configDiscoveryNames {
		if strings.Contains(name, "node_modules") {
			continue // refused by construction; kept for documentation
		}
		data, err := os.ReadFile(name)
		if err != nil {
			continue
		}
		return loadConfigFromFile(name, data)
	}
	return DefaultConfig(), nil
}

// loadConfigFromFile dispatches to JSON or YAML decoding based on the
// file's extension and, for extension-less ".bheeshmarc", content
// sniffing (a leading '{' is treated as JSON).
func loadConfigFromFile(name string, data []byte) (*Config, []error) {
	if filepath.Dir(name) != "." {
		return DefaultConfig(), []error{&ConfigError{Field: name, Reason: "config files must live in the current working directory"}}
	}
	ext := filepath.Ext(name)
	isJSON := ext == ".json"
	if ext == "" {
		trimmed := bytes.TrimSpace(data)
		isJSON = len(trimmed) > 0 && trimmed[0] == '{'
	}
	if isJSON {
		return LoadConfigFromBytes(data)
	}
	return loadConfigFromYAML(data)
}

// LoadConfigFromBytes parses raw JSON bytes, validates against the
// bundled JSON Schema and the semantic rules in [Config.Validate], merges
// onto [DefaultConfig], and returns the result.
func LoadConfigFromBytes(data []byte) (*Config, []error) {
	if err := validateAgainstSchema(data); err != nil {
		return DefaultConfig(), []error{err}
	}

	var patch configPatch
	if err := json.Unmarshal(data, &patch); err != nil {
		return DefaultConfig(), []error{fmt.Errorf("config: invalid json: %w", err)}
	}

	cfg := DefaultConfig()
	patch.mergeInto(cfg)

	if errs := cfg.Validate(); len(errs) > 0 {
		return DefaultConfig(), errs
	}
	return cfg, nil
}

// loadConfigFromYAML parses raw YAML bytes by converting to an
// intermediate JSON document and reusing [LoadConfigFromBytes]'s
// schema, merge, and validation path. An empty document yields the
// defaults.
func loadConfigFromYAML(data []byte) (*Config, []error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return DefaultConfig(), []error{fmt.Errorf("config: invalid yaml: %w", err)}
	}
	if doc == nil {
		return DefaultConfig(), nil
	}
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return DefaultConfig(), []error{fmt.Errorf("config: invalid yaml: %w", err)}
	}
	return LoadConfigFromBytes(jsonData)
}

// LoadConfigFromObject validates a caller-constructed [*Config] (e.g. the
// argument to the programmatic install(config) API, normally produced by
// starting from [DefaultConfig] and overriding individual fields). A
// malformed configuration here is, per spec.md §7, the one place direct
// API misuse may raise a fatal error instead of degrading silently.
func LoadConfigFromObject(cfg *Config) (*Config, error) {
	if cfg == nil {
		return DefaultConfig(), nil
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("bheeshma: invalid configuration: %v", errs)
	}
	if cfg.TimeNow == nil {
		cfg.TimeNow = time.Now
	}
	return cfg, nil
}

// configPatch mirrors [Config] but with every field optional (pointers /
// nil-able), so that merging only overwrites fields the caller actually
// set. JSON/YAML unmarshal into this shape before being folded onto the
// defaults field-by-field in mergeInto.
type configPatch struct {
	Hooks       *HooksConfig        `json:"hooks" yaml:"hooks"`
	RiskWeights map[SignalType]int  `json:"riskWeights" yaml:"riskWeights"`
	Thresholds  *ThresholdsConfig   `json:"thresholds" yaml:"thresholds"`
	Whitelist   []string            `json:"whitelist" yaml:"whitelist"`
	Blacklist   []string            `json:"blacklist" yaml:"blacklist"`
	Patterns    *PatternsConfig     `json:"patterns" yaml:"patterns"`
	Performance *PerformanceConfig  `json:"performance" yaml:"performance"`
	Output      *OutputConfig       `json:"output" yaml:"output"`
}

func (p *configPatch) mergeInto(cfg *Config) {
	if p.Hooks != nil {
		cfg.Hooks = *p.Hooks
	}
	if p.RiskWeights != nil {
		cfg.RiskWeights = p.RiskWeights
	}
	if p.Thresholds != nil {
		cfg.Thresholds = *p.Thresholds
	}
	if p.Whitelist != nil {
		cfg.Whitelist = p.Whitelist
	}
	if p.Blacklist != nil {
		cfg.Blacklist = p.Blacklist
	}
	if p.Patterns != nil {
		cfg.Patterns = *p.Patterns
	}
	if p.Performance != nil {
		cfg.Performance = *p.Performance
	}
	if p.Output != nil {
		cfg.Output = *p.Output
	}
}

// configSchema is the bundled JSON Schema document validating the raw
// on-disk JSON configuration shape before it is even unmarshalled into
// [configPatch]. Semantic rules a generic schema cannot express
// (threshold ordering, positive maxSignals) are checked separately in
// [Config.Validate].
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "hooks": {
      "type": "object",
      "properties": {
        "env": {"type": "boolean"},
        "fs": {"type": "boolean"},
        "net": {"type": "boolean"},
        "childProcess": {"type": "boolean"},
        "http": {"type": "boolean"}
      },
      "additionalProperties": false
    },
    "riskWeights": {
      "type": "object",
      "additionalProperties": {"type": "integer", "minimum": 0, "maximum": 100}
    },
    "thresholds": {
      "type": "object",
      "properties": {
        "critical": {"type": "integer", "minimum": 0, "maximum": 100},
        "high": {"type": "integer", "minimum": 0, "maximum": 100},
        "medium": {"type": "integer", "minimum": 0, "maximum": 100}
      },
      "additionalProperties": false
    },
    "whitelist": {"type": "array", "items": {"type": "string"}},
    "blacklist": {"type": "array", "items": {"type": "string"}},
    "patterns": {
      "type": "object",
      "properties": {
        "enabled": {"type": "boolean"},
        "detectCryptoMiners": {"type": "boolean"},
        "detectDataExfiltration": {"type": "boolean"},
        "detectBackdoors": {"type": "boolean"},
        "detectObfuscation": {"type": "boolean"}
      },
      "additionalProperties": false
    },
    "performance": {
      "type": "object",
      "properties": {
        "track": {"type": "boolean"},
        "maxSignals": {"type": "integer", "minimum": 1}
      },
      "additionalProperties": false
    },
    "output": {
      "type": "object",
      "properties": {
        "formats": {"type": "array", "items": {"type": "string"}},
        "verbosity": {"type": "string", "enum": ["quiet", "normal", "verbose"]},
        "includeStackTraces": {"type": "boolean"}
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

// validateAgainstSchema compiles [configSchema] once and validates data
// against it, returning a [ConfigError] describing the first violation
// on failure.
func validateAgainstSchema(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", strings.NewReader(configSchema)); err != nil {
		return fmt.Errorf("config: internal schema error: %w", err)
	}
	schema, err := compiler.Compile("config.schema.json")
	if err != nil {
		return fmt.Errorf("config: internal schema error: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("config: invalid json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return &ConfigError{Field: "schema", Reason: err.Error()}
	}
	return nil
}
