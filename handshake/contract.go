// SPDX-License-Identifier: ice License 1.0

package handshake

import (
	"bufio"
	"net"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/ice-blockchain/wshandshake/header"
)

// Public API.

type (
	// Reason is the machine-readable classification of a handshake-rule violation.
	Reason uint8

	// RequestError is the uniform error for every violated handshake rule.
	// The embedded message is the observable diagnostic, Reason is for branching.
	RequestError struct {
		error
		Reason Reason
	}

	// Headers is the fixed collection of WebSocket-specific headers of one request.
	// Pointer fields are nil when the header was absent or failed its one-value parse.
	Headers struct {
		Key        *header.Key
		Version    *header.Version
		Origin     *header.Origin
		Protocol   header.Protocol
		Extensions header.Extensions
		Upgrade    header.Tokens
		Connection header.Tokens
	}

	// Request is one inbound, not-yet-validated upgrade attempt. It exists only
	// for GET requests and is consumed exactly once, by Accept or Fail.
	Request struct {
		URL        *url.URL
		Headers    Headers
		ProtoMajor int
		ProtoMinor int
		conn       net.Conn
		rw         *bufio.ReadWriter
		consumed   bool
	}

	// Response is the outbound handshake reply, owning the connection the
	// originating Request was read from. A zero Status means the decision
	// is still pending and Send defaults it to 101 Switching Protocols.
	Response struct {
		Header http.Header
		Status int
		conn   net.Conn
		rw     *bufio.ReadWriter
	}
)

const (
	ReasonBadMethod = Reason(iota + 1)
	ReasonUnsupportedHTTPVersion
	ReasonUnsupportedWSVersion
	ReasonMissingKey
	ReasonMissingOrInvalidUpgrade
	ReasonMissingOrInvalidConnection
)

var (
	// ErrRequestConsumed is reported when a Request is used after Accept or Fail.
	ErrRequestConsumed = errors.New("request already consumed")
)

// Private API.

const (
	methodGet = "GET"

	websocketToken  = "websocket"
	upgradeToken    = "Upgrade"
	acceptKeyGUID   = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"
	acceptCanonical = "Sec-Websocket-Accept"
)
