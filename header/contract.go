// SPDX-License-Identifier: ice License 1.0

package header

import (
	"github.com/gobwas/httphead"
)

// Public API.

type (
	// Origin wraps the single value of an `Origin` header.
	Origin string
	// Key wraps the single value of a `Sec-WebSocket-Key` header.
	Key string
	// Version wraps the single value of a `Sec-WebSocket-Version` header.
	Version string
	// Protocol is the client`s ordered list of `Sec-WebSocket-Protocol` tokens.
	Protocol []string
	// Extensions is the client`s list of `Sec-WebSocket-Extensions` offers, parameters included.
	Extensions []httphead.Option
	// Tokens is a set of HTTP tokens, as carried by `Upgrade` and `Connection` headers.
	Tokens []string
)

const (
	Version13 = Version("13")

	// Canonical MIME forms, as produced by net/textproto.
	OriginCanonical        = "Origin"
	SecKeyCanonical        = "Sec-Websocket-Key"
	SecVersionCanonical    = "Sec-Websocket-Version"
	SecProtocolCanonical   = "Sec-Websocket-Protocol"
	SecExtensionsCanonical = "Sec-Websocket-Extensions"
	UpgradeCanonical       = "Upgrade"
	ConnectionCanonical    = "Connection"
)
