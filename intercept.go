// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"sync"
	"time"
)

// hookName identifies one of the five independently toggled interception
// hooks.
type hookName string

const (
	hookEnv          hookName = "env"
	hookFs           hookName = "fs"
	hookNet          hookName = "net"
	hookHTTP         hookName = "http"
	hookChildProcess hookName = "childProcess"
)

// allHooks lists every hook in a fixed order, used to produce
// deterministically ordered InstallResult/UninstallResult slices.
var allHooks = []hookName{hookEnv, hookFs, hookNet, hookHTTP, hookChildProcess}

// monitorContext is the shared state every interception hook closes over:
// the signal buffer, the Attribution Engine, and the active configuration.
// Per spec.md §9, this replaces the source's global mutable state with an
// explicit context object handed to wrappers at install time.
type monitorContext struct {
	mu         sync.Mutex
	signals    []Signal
	maxSignals int

	attributor Attributor
	logger     SLogger
	timeNow    func() time.Time

	hooksMu sync.RWMutex
	hooks   map[hookName]bool
}

// newMonitorContext returns a [*monitorContext] configured from cfg. A nil
// cfg is treated as [DefaultConfig].
func newMonitorContext(cfg *Config, attributor Attributor, logger SLogger) *monitorContext {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = DefaultSLogger()
	}
	if attributor == nil {
		attributor = NewEngine(logger)
	}
	return &monitorContext{
		maxSignals: cfg.Performance.MaxSignals,
		attributor: attributor,
		logger:     logger,
		timeNow:    cfg.TimeNow,
		hooks: map[hookName]bool{
			hookEnv:          cfg.Hooks.Env,
			hookFs:           cfg.Hooks.Fs,
			hookNet:          cfg.Hooks.Net,
			hookHTTP:         cfg.Hooks.Http,
			hookChildProcess: cfg.Hooks.ChildProcess,
		},
	}
}

// hookEnabled reports whether hook is currently toggled on. A nil ctx
// (the facade was never installed) behaves as if every hook is disabled.
func (c *monitorContext) hookEnabled(h hookName) bool {
	if c == nil {
		return false
	}
	c.hooksMu.RLock()
	defer c.hooksMu.RUnlock()
	return c.hooks[h]
}

// emit constructs a [Signal] by attributing stack and, if attribution
// succeeds, appends it to the buffer. Attribution failures and signal
// construction failures are both silent: emit never returns an error and
// never blocks the wrapped operation that called it, per the Silent
// error-handling category.
func (c *monitorContext) emit(typ SignalType, stack []StackFrame, metadata map[string]any) {
	if c == nil {
		return
	}
	pkg, ok := c.attributor.Identify(stack)
	if !ok {
		return // first-party or unresolvable: never materialized into the buffer
	}

	now := time.Now
	if c.timeNow != nil {
		now = c.timeNow
	}
	signal, err := NewSignal(now(), typ, pkg, metadata, stack)
	if err != nil {
		c.logger.Warn("dropping malformed signal", "type", string(typ), "err", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxSignals > 0 && len(c.signals) >= c.maxSignals {
		return // buffer at capacity: drop rather than grow unbounded
	}
	c.signals = append(c.signals, signal)
	c.logger.Debug("signal captured", "type", string(typ), "package", pkg.Key())
}

// snapshot returns a copy of the buffer's current contents.
func (c *monitorContext) snapshot() []Signal {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Signal, len(c.signals))
	copy(out, c.signals)
	return out
}

// clear empties the buffer.
func (c *monitorContext) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signals = nil
}

// InstallResult is returned by [Manager.Install].
type InstallResult struct {
	Success   bool
	Installed []string
	Failed    []string
}

// UninstallResult is returned by [Manager.Uninstall].
type UninstallResult struct {
	Success     bool
	Uninstalled []string
	Failed      []string
}

// Manager installs and uninstalls the interception hooks against a fixed
// set of package-level facades ([Env], [FS], [Net], [HTTP], [Exec]).
//
// Install is idempotent: calling it again while already installed is a
// no-op that reports every configured hook as already installed. Each
// hook's activation is isolated from the others: one hook failing to
// activate never prevents the rest from installing.
//
// The zero value is not usable; construct with [NewManager].
type Manager struct {
	mu        sync.Mutex
	installed bool
	ctx       *monitorContext
	logger    SLogger
}

// NewManager returns a ready-to-use [*Manager].
func NewManager(logger SLogger) *Manager {
	if logger == nil {
		logger = DefaultSLogger()
	}
	return &Manager{logger: logger}
}

// Install activates the hooks enabled in cfg. A nil cfg uses
// [DefaultConfig]. Calling Install while already installed returns
// success immediately without re-activating anything.
func (m *Manager) Install(cfg *Config) (*InstallResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.installed {
		return &InstallResult{Success: true, Installed: enabledHookNames(m.ctx)}, nil
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	ctx := newMonitorContext(cfg, nil, m.logger)

	var installed, failed []string
	for _, h := range allHooks {
		if !ctx.hooks[h] {
			continue
		}
		if err := activateHook(h, ctx); err != nil {
			failed = append(failed, string(h))
			ctx.hooks[h] = false
			m.logger.Warn("hook failed to install", "hook", string(h), "err", err)
			continue
		}
		installed = append(installed, string(h))
	}

	m.ctx = ctx
	m.installed = true
	attachFacades(ctx)

	return &InstallResult{Success: len(failed) == 0, Installed: installed, Failed: failed}, nil
}

// Uninstall restores every facade to its pre-install state (signal
// emission disabled, still delegating transparently to the real
// platform API) and clears the signal buffer.
func (m *Manager) Uninstall() (*UninstallResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.installed {
		return &UninstallResult{Success: true}, nil
	}

	var uninstalled []string
	for _, h := range allHooks {
		if m.ctx.hooks[h] {
			uninstalled = append(uninstalled, string(h))
		}
	}

	detachFacades()
	m.ctx.clear()
	m.ctx = nil
	m.installed = false

	return &UninstallResult{Success: true, Uninstalled: uninstalled}, nil
}

// GetSignals returns a snapshot copy of the current signal buffer, or nil
// if nothing has been installed yet.
func (m *Manager) GetSignals() []Signal {
	m.mu.Lock()
	ctx := m.ctx
	m.mu.Unlock()
	if ctx == nil {
		return nil
	}
	return ctx.snapshot()
}

// activateHook performs whatever per-hook setup is needed. Every current
// hook is a pure facade attachment with no fallible setup step, so this
// always succeeds; it exists as an explicit extension point and to keep
// Install's per-hook failure isolation real rather than theoretical.
func activateHook(h hookName, ctx *monitorContext) error {
	return nil
}

// enabledHookNames returns the hook names active in ctx, in fixed order.
func enabledHookNames(ctx *monitorContext) []string {
	if ctx == nil {
		return nil
	}
	var out []string
	for _, h := range allHooks {
		if ctx.hooks[h] {
			out = append(out, string(h))
		}
	}
	return out
}

// attachFacades points every package-level facade at ctx, activating
// signal emission for whichever hooks ctx has enabled.
func attachFacades(ctx *monitorContext) {
	Env.set(ctx)
	FS.set(ctx)
	Net.set(ctx)
	HTTP.set(ctx)
	Exec.set(ctx)
}

// detachFacades clears every package-level facade's context, reverting
// to pure pass-through delegation with no signal emission.
func detachFacades() {
	Env.set(nil)
	FS.set(nil)
	Net.set(nil)
	HTTP.set(nil)
	Exec.set(nil)
}
