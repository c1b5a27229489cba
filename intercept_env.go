// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"os"
	"sync"
)

// ctxHolder guards the shared [*monitorContext] a facade forwards signals
// into. A nil held context means the facade is uninstalled: every facade
// method still delegates to the real platform API, it just never emits.
type ctxHolder struct {
	mu  sync.RWMutex
	ctx *monitorContext
}

func (h *ctxHolder) get() *monitorContext {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ctx
}

func (h *ctxHolder) set(ctx *monitorContext) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ctx = ctx
}

// EnvFacade wraps process environment access, emitting [EnvAccess] signals
// for every read when installed. Every method always delegates to the
// real [os] function regardless of installation state: transparency does
// not depend on whether observation is active.
type EnvFacade struct {
	ctxHolder
}

// Env is the package-level environment facade. Host code calls through
// it instead of calling [os.Getenv] directly.
var Env = &EnvFacade{}

// Getenv retrieves the value of the environment variable named by key,
// emitting an [EnvAccess] signal attributed to the caller.
func (f *EnvFacade) Getenv(key string) string {
	val := os.Getenv(key)
	f.observe(key)
	return val
}

// LookupEnv is like [EnvFacade.Getenv] but distinguishes an empty value
// from an unset variable.
func (f *EnvFacade) LookupEnv(key string) (string, bool) {
	val, ok := os.LookupEnv(key)
	f.observe(key)
	return val, ok
}

// Setenv sets the value of the environment variable named by key,
// emitting an [EnvAccess] signal attributed to the caller.
func (f *EnvFacade) Setenv(key, value string) error {
	err := os.Setenv(key, value)
	f.observe(key)
	return err
}

func (f *EnvFacade) observe(key string) {
	ctx := f.get()
	if !ctx.hookEnabled(hookEnv) {
		return
	}
	stack := captureStack()
	ctx.emit(EnvAccess, stack, map[string]any{"variable": key})
}
