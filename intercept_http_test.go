// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withHTTPContext(t *testing.T, ctx *monitorContext) {
	t.Helper()
	prev := HTTP.get()
	HTTP.set(ctx)
	t.Cleanup(func() { HTTP.set(prev) })
}

func TestHTTPFacade_DoEmitsHttpRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx := newTestContext(t, nil)
	withHTTPContext(t, ctx)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/status?token=abc", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")

	resp, err := HTTP.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	signals := ctx.snapshot()
	require.Len(t, signals, 1)
	assert.Equal(t, HttpRequest, signals[0].Type)
	assert.Equal(t, "GET", signals[0].Metadata["method"])
	assert.NotContains(t, signals[0].Metadata["url"], "token=abc")
	headers := signals[0].Metadata["headers"].(map[string]string)
	assert.Equal(t, redactedHeaderValue, headers["Authorization"])
}

func TestBuildSuspicion_DirectIPWithNonStandardPort(t *testing.T) {
	s := buildSuspicion("192.168.1.100", 8080)
	assert.True(t, s.IsIPAddress)
	assert.True(t, s.NonStandardPort)
	assert.Contains(t, s.Indicators, "Direct IP request")
	assert.Contains(t, s.Indicators, "Non-standard port: 8080")
}

func TestBuildSuspicion_PastebinHost(t *testing.T) {
	s := buildSuspicion("pastebin.com", 443)
	assert.True(t, s.PastebinLike)
	assert.False(t, s.IsIPAddress)
}

func TestBuildSuspicion_SuspiciousTLD(t *testing.T) {
	s := buildSuspicion("evil.xyz", 80)
	assert.True(t, s.SuspiciousTld)
}

func TestBuildSuspicion_OrdinaryHostOnStandardPortIsClean(t *testing.T) {
	s := buildSuspicion("registry.npmjs.org", 443)
	assert.False(t, s.IsIPAddress)
	assert.False(t, s.SuspiciousTld)
	assert.False(t, s.NonStandardPort)
	assert.False(t, s.PastebinLike)
	assert.Empty(t, s.Indicators)
}

func TestBuildSuspicion_StandardPort8080IsNotFlagged(t *testing.T) {
	s := buildSuspicion("registry.npmjs.org", 8080)
	assert.False(t, s.NonStandardPort)
}

func TestRedactHeaders_SensitiveHeaderIsRedacted(t *testing.T) {
	h := http.Header{"Authorization": []string{"Bearer secret"}}
	out := redactHeaders(h)
	assert.Equal(t, redactedHeaderValue, out["Authorization"])
}

func TestRedactHeaders_NonSensitiveHeaderBecomesPresent(t *testing.T) {
	h := http.Header{"Content-Type": []string{"application/json"}}
	out := redactHeaders(h)
	assert.Equal(t, presentHeaderValue, out["Content-Type"])
	assert.NotContains(t, out, "application/json")
}
