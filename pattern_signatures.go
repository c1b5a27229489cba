// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"regexp"
	"strings"
)

// minerProcessNames names crypto-mining binaries commonly spawned by
// compromised postinstall scripts.
var minerProcessNames = []string{
	"xmrig", "minerd", "ethminer", "cpuminer", "ccminer",
	"cryptonight", "nheqminer", "t-rex", "phoenixminer",
}

// miningPoolDomains names mining-pool stratum hosts seen contacted
// directly by name or by HTTP request host.
var miningPoolDomains = []string{
	"pool.minexmr.com", "supportxmr.com", "nanopool.org",
	"2miners.com", "dwarfpool.com", "f2pool.com", "ethermine.org",
}

// miningEnvVarNames names environment variables crypto miners commonly
// read for pool configuration.
var miningEnvVarNames = []string{"STRATUM_URL", "POOL_ADDRESS", "WALLET_ADDRESS", "MINING_POOL"}

// reverseShellPatterns matches command templates characteristic of a
// reverse or bind shell.
var reverseShellPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bash\s+-i\b`),
	regexp.MustCompile(`/dev/tcp/`),
	regexp.MustCompile(`(?i)\bnc\s+-e\b`),
	regexp.MustCompile(`(?i)ncat\s+--exec`),
	regexp.MustCompile(`(?i)socat\s+.*exec`),
	regexp.MustCompile(`(?i)python[23]?\s+-c\s+.*socket`),
}

// ratToolNames names remote-access/tunneling tools commonly abused to
// establish a persistent backdoor.
var ratToolNames = []string{"ngrok", "frp", "chisel", "gost", "bore"}

// backdoorPorts names ports conventionally associated with shells,
// botnets, and tunneling tools rather than legitimate application
// traffic.
var backdoorPorts = map[int]bool{4444: true, 1337: true, 31337: true, 6667: true, 6666: true}

// sensitiveFileSubstrings names path substrings whose read is noteworthy
// regardless of which package performs it.
var sensitiveFileSubstrings = []string{
	"/.ssh/", "/.aws/credentials", "/.env", ".env",
	"/.gnupg/", "id_rsa", "/etc/shadow", "/.docker/config.json",
	"/.npmrc", "/.netrc",
}

// exfiltrationServiceSubstrings names hosts commonly used as ad hoc data
// sinks for exfiltrated data.
var exfiltrationServiceSubstrings = []string{
	"pastebin.com", "transfer.sh", "requestbin.com", "webhook.site",
	"ngrok.io", "file.io", "hastebin.com",
}

// secretEnvNames names environment variables that conventionally hold
// credentials or tokens.
var secretEnvNames = []string{
	"AWS_SECRET_ACCESS_KEY", "AWS_SECRET_KEY", "GITHUB_TOKEN",
	"NPM_TOKEN", "API_KEY", "PRIVATE_KEY", "DATABASE_PASSWORD",
}

// credentialFileSubstrings names path substrings identifying credential
// material on disk.
var credentialFileSubstrings = []string{
	"id_rsa", "id_ed25519", ".pem", ".pfx", "credentials.json", ".aws/credentials", ".npmrc", ".netrc",
}

// containsSubstring reports whether haystack contains any needle,
// case-insensitively, returning the first needle matched.
func containsSubstring(haystack string, needles []string) (string, bool) {
	lower := strings.ToLower(haystack)
	for _, needle := range needles {
		if needle == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(needle)) {
			return needle, true
		}
	}
	return "", false
}
