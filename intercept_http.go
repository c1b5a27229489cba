// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// redactedHeaderNames names the substrings that, when found
// case-insensitively inside a header name, cause its value to be
// redacted before it is recorded in signal metadata.
var redactedHeaderNames = []string{"auth", "token", "key"}

// redactedHeaderValue replaces a sensitive header's value in metadata.
const redactedHeaderValue = "[REDACTED]"

// presentHeaderValue replaces a non-sensitive header's value in metadata:
// its presence is recorded, never its content.
const presentHeaderValue = "[PRESENT]"

// pastebinHostSuffixes names hosts whose presence in a request URL marks
// it suspicious regardless of any other heuristic.
var pastebinHostSuffixes = []string{"pastebin.com", "paste.ee", "hastebin.com", "dpaste.com"}

// suspiciousTLDs names top-level domains flagged as suspicious on their
// own.
var suspiciousTLDs = []string{".tk", ".ml", ".ga", ".cf", ".gq", ".xyz"}

// standardPorts names the ports that do not, on their own, mark a request
// suspicious.
var standardPorts = map[int]bool{80: true, 443: true, 8080: true}

// ipLiteralPattern matches a bare IPv4-literal host.
var ipLiteralPattern = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)

// HTTPFacade wraps outbound HTTP(S) requests, emitting [HttpRequest] or
// [HttpsRequest] signals when installed.
type HTTPFacade struct {
	ctxHolder
	client *http.Client
}

// HTTP is the package-level HTTP facade.
var HTTP = &HTTPFacade{client: http.DefaultClient}

// Do sends req using the wrapped client, emitting an [HttpRequest] or
// [HttpsRequest] signal attributed to the caller.
func (f *HTTPFacade) Do(req *http.Request) (*http.Response, error) {
	client := f.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	f.observe(req, err)
	return resp, err
}

func (f *HTTPFacade) observe(req *http.Request, callErr error) {
	ctx := f.get()
	if !ctx.hookEnabled(hookHTTP) {
		return
	}
	typ := HttpRequest
	if req.URL.Scheme == "https" {
		typ = HttpsRequest
	}

	host, port := splitHostPort(req.URL.Host)
	if port == 0 {
		port = defaultPortFor(req.URL.Scheme)
	}

	metadata := map[string]any{
		"url":        redactQuery(req.URL),
		"method":     req.Method,
		"host":       host,
		"port":       port,
		"path":       req.URL.Path,
		"headers":    redactHeaders(req.Header),
		"suspicious": buildSuspicion(host, port),
	}
	if callErr != nil {
		metadata["error"] = classifyCallErr(callErr)
	}
	ctx.emit(typ, captureStack(), metadata)
}

// redactHeaders returns a copy of header with every value replaced:
// sensitive header names become [redactedHeaderValue], everything else
// becomes [presentHeaderValue]. No header value is ever retained.
func redactHeaders(header http.Header) map[string]string {
	out := make(map[string]string, len(header))
	for name := range header {
		lower := strings.ToLower(name)
		redact := false
		for _, needle := range redactedHeaderNames {
			if strings.Contains(lower, needle) {
				redact = true
				break
			}
		}
		if redact {
			out[name] = redactedHeaderValue
			continue
		}
		out[name] = presentHeaderValue
	}
	return out
}

// redactQuery returns u's string form with its query component dropped,
// since query strings frequently carry tokens or credentials.
func redactQuery(u *url.URL) string {
	clone := *u
	if clone.RawQuery != "" {
		clone.RawQuery = ""
	}
	return clone.String()
}

func defaultPortFor(scheme string) int {
	if scheme == "https" {
		return 443
	}
	return 80
}

// httpSuspicion is the `suspicious` metadata subrecord: each field is an
// independent check, and every check that fires contributes a
// human-readable string to Indicators.
type httpSuspicion struct {
	IsIPAddress     bool     `json:"isIpAddress"`
	SuspiciousTld   bool     `json:"suspiciousTld"`
	NonStandardPort bool     `json:"nonStandardPort"`
	PastebinLike    bool     `json:"pastebinLike"`
	Indicators      []string `json:"indicators"`
}

// buildSuspicion runs the independent destination heuristics against host
// and port: a bare IPv4-literal host, a suspicious TLD, a port outside
// {80, 443, 8080}, and a known paste/exfiltration host.
func buildSuspicion(host string, port int) httpSuspicion {
	var s httpSuspicion
	lowerHost := strings.ToLower(host)

	if ipLiteralPattern.MatchString(host) {
		s.IsIPAddress = true
		s.Indicators = append(s.Indicators, "Direct IP request")
	}
	for _, tld := range suspiciousTLDs {
		if strings.HasSuffix(lowerHost, tld) {
			s.SuspiciousTld = true
			s.Indicators = append(s.Indicators, "Suspicious TLD: "+tld)
			break
		}
	}
	if !standardPorts[port] {
		s.NonStandardPort = true
		s.Indicators = append(s.Indicators, fmt.Sprintf("Non-standard port: %d", port))
	}
	for _, suffix := range pastebinHostSuffixes {
		if strings.Contains(lowerHost, suffix) {
			s.PastebinLike = true
			s.Indicators = append(s.Indicators, "Pastebin-like host: "+suffix)
			break
		}
	}
	return s
}
