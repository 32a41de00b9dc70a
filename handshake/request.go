// SPDX-License-Identifier: ice License 1.0

package handshake

import (
	"bufio"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/ice-blockchain/wshandshake/header"
)

// Read consumes the request line and header block of an inbound upgrade attempt
// from conn and takes ownership of it. Non-GET requests are rejected before the
// header block is even touched.
func Read(conn net.Conn) (*Request, error) {
	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
	tp := textproto.NewReader(rw.Reader)
	line, err := tp.ReadLine()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read request line")
	}
	method, target, protoMajor, protoMinor, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}
	if method != methodGet {
		return nil, newRequestError(ReasonBadMethod, "request method must be GET")
	}
	mimeHeader, err := tp.ReadMIMEHeader()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read request headers")
	}
	uri, err := url.ParseRequestURI(target)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid request target %q", target)
	}

	return &Request{
		URL:        uri,
		Headers:    parseHeaders(mimeHeader),
		ProtoMajor: protoMajor,
		ProtoMinor: protoMinor,
		conn:       conn,
		rw:         rw,
	}, nil
}

func parseRequestLine(line string) (method, target string, protoMajor, protoMinor int, err error) {
	method, rest, ok1 := strings.Cut(line, " ")
	target, proto, ok2 := strings.Cut(rest, " ")
	if !ok1 || !ok2 {
		return "", "", 0, 0, errors.Errorf("malformed request line %q", line)
	}
	protoMajor, protoMinor, ok := http.ParseHTTPVersion(proto)
	if !ok {
		return "", "", 0, 0, errors.Errorf("malformed HTTP version %q", proto)
	}

	return method, target, protoMajor, protoMinor, nil
}

func parseHeaders(mimeHeader textproto.MIMEHeader) Headers {
	var hdrs Headers
	if key, ok := header.ParseKey(mimeHeader[header.SecKeyCanonical]); ok {
		hdrs.Key = &key
	}
	if version, ok := header.ParseVersion(mimeHeader[header.SecVersionCanonical]); ok {
		hdrs.Version = &version
	}
	if origin, ok := header.ParseOrigin(mimeHeader[header.OriginCanonical]); ok {
		hdrs.Origin = &origin
	}
	hdrs.Protocol = header.ParseProtocol(mimeHeader[header.SecProtocolCanonical])
	hdrs.Extensions = header.ParseExtensions(mimeHeader[header.SecExtensionsCanonical])
	hdrs.Upgrade = header.ParseTokens(mimeHeader[header.UpgradeCanonical])
	hdrs.Connection = header.ParseTokens(mimeHeader[header.ConnectionCanonical])

	return hdrs
}

// Key is a short-cut to obtain the Sec-WebSocket-Key value.
func (r *Request) Key() *header.Key {
	return r.Headers.Key
}

// Version is a short-cut to obtain the Sec-WebSocket-Version value.
func (r *Request) Version() *header.Version {
	return r.Headers.Version
}

// Protocol is a short-cut to obtain the Sec-WebSocket-Protocol token list.
func (r *Request) Protocol() header.Protocol {
	return r.Headers.Protocol
}

// Extensions is a short-cut to obtain the Sec-WebSocket-Extensions offers.
func (r *Request) Extensions() header.Extensions {
	return r.Headers.Extensions
}

// Origin is a short-cut to obtain the Origin value.
func (r *Request) Origin() *header.Origin {
	return r.Headers.Origin
}

// Validate checks the request against the opening-handshake preconditions.
// Checks run in a fixed order and only the first violation is reported.
// Accept calls it internally, call it directly when the specific reason matters.
func (r *Request) Validate() error {
	if r.consumed {
		return errors.WithStack(ErrRequestConsumed)
	}
	if r.ProtoMajor < 1 || (r.ProtoMajor == 1 && r.ProtoMinor < 1) {
		return newRequestError(ReasonUnsupportedHTTPVersion, "unsupported request HTTP version")
	}
	if r.Headers.Version == nil || *r.Headers.Version != header.Version13 {
		return newRequestError(ReasonUnsupportedWSVersion, "unsupported WebSocket version")
	}
	if r.Headers.Key == nil {
		return newRequestError(ReasonMissingKey, "missing Sec-WebSocket-Key header")
	}
	if r.Headers.Upgrade == nil {
		return newRequestError(ReasonMissingOrInvalidUpgrade, "missing Upgrade WebSocket header")
	}
	if !r.Headers.Upgrade.Contains(websocketToken) {
		return newRequestError(ReasonMissingOrInvalidUpgrade, "invalid Upgrade WebSocket header")
	}
	if r.Headers.Connection == nil {
		return newRequestError(ReasonMissingOrInvalidConnection, "missing Connection WebSocket header")
	}
	if !r.Headers.Connection.Contains(upgradeToken) {
		return newRequestError(ReasonMissingOrInvalidConnection, "invalid Connection WebSocket header")
	}

	return nil
}

// Accept consumes the request into a Response, ready to be sent. If the request
// is found to be invalid the specific violation is discarded and it degrades to
// the Fail path. Returns nil if the request was already consumed.
func (r *Request) Accept() *Response {
	if r.consumed {
		return nil
	}
	if err := r.Validate(); err != nil {
		return r.Fail()
	}

	return r.intoResponse()
}

// Fail consumes the request into a minimal 400 Bad Request response that never
// echoes back request-derived headers. Returns nil if the request was already consumed.
func (r *Request) Fail() *Response {
	if r.consumed {
		return nil
	}
	resp := r.intoResponse()
	resp.Status = http.StatusBadRequest
	resp.Header = make(http.Header)

	return resp
}

func (r *Request) intoResponse() *Response {
	resp := newResponse(r)
	r.consumed = true
	r.conn = nil
	r.rw = nil

	return resp
}

func newRequestError(reason Reason, msg string) error {
	return &RequestError{error: errors.New(msg), Reason: reason}
}

func (e *RequestError) Unwrap() error {
	return e.error
}

// ReasonOf extracts the handshake violation Reason out of err, unwrapping as
// needed. It returns 0 for errors that are not RequestErrors.
func ReasonOf(err error) Reason {
	reqErr := new(RequestError)
	if errors.As(err, &reqErr) {
		return reqErr.Reason
	}

	return 0
}
