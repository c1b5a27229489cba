// SPDX-License-Identifier: GPL-3.0-or-later

package bheeshma

import (
	"context"
	"net"
)

// NetFacade wraps outbound TCP/UDP dialing, emitting [NetConnect]
// signals when installed.
type NetFacade struct {
	ctxHolder
}

// Net is the package-level network facade.
var Net = &NetFacade{}

// DialContext dials network/address (e.g. "tcp", "host:port"), emitting
// a [NetConnect] signal attributed to the caller. The dial itself is
// always performed via [net.Dialer], regardless of installation state.
func (f *NetFacade) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, address)
	f.observe(network, address, err)
	return conn, err
}

// Dial is the non-context convenience form of [NetFacade.DialContext].
func (f *NetFacade) Dial(network, address string) (net.Conn, error) {
	return f.DialContext(context.Background(), network, address)
}

func (f *NetFacade) observe(network, address string, callErr error) {
	mctx := f.get()
	if !mctx.hookEnabled(hookNet) {
		return
	}
	host, port := splitHostPort(address)
	metadata := map[string]any{
		"host":     host,
		"port":     port,
		"protocol": network,
	}
	if callErr != nil {
		metadata["error"] = classifyCallErr(callErr)
	}
	mctx.emit(NetConnect, captureStack(), metadata)
}

// splitHostPort splits address into host and port, tolerating addresses
// without a port (returning port 0) rather than failing the signal.
func splitHostPort(address string) (string, int) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return address, 0
	}
	port := 0
	for _, r := range portStr {
		if r < '0' || r > '9' {
			return host, 0
		}
		port = port*10 + int(r-'0')
	}
	return host, port
}
