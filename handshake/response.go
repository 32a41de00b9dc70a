// SPDX-License-Identifier: ice License 1.0

package handshake

import (
	"bufio"
	"crypto/sha1" //nolint:gosec // Mandated by RFC 6455 for Sec-WebSocket-Accept.
	"encoding/base64"
	"fmt"
	"net"
	"net/http"

	"github.com/pkg/errors"

	"github.com/ice-blockchain/wshandshake/header"
)

func newResponse(req *Request) *Response {
	resp := &Response{
		Header: make(http.Header),
		conn:   req.conn,
		rw:     req.rw,
	}
	resp.Header.Set(header.UpgradeCanonical, websocketToken)
	resp.Header.Set(header.ConnectionCanonical, upgradeToken)
	if req.Headers.Key != nil {
		resp.Header.Set(acceptCanonical, acceptKey(*req.Headers.Key))
	}

	return resp
}

// acceptKey derives the Sec-WebSocket-Accept value the client expects back.
func acceptKey(key header.Key) string {
	hash := sha1.New() //nolint:gosec // Mandated by RFC 6455.
	hash.Write(key.Bytes())
	hash.Write([]byte(acceptKeyGUID))

	return base64.StdEncoding.EncodeToString(hash.Sum(nil))
}

// UseProtocol echoes the given subprotocol back to the client. Which one of the
// offered protocols to pick is up to the caller.
func (r *Response) UseProtocol(protocol string) {
	r.Header.Set(header.SecProtocolCanonical, protocol)
}

// Send serializes the status line and header block to the connection. A still
// pending status defaults to 101 Switching Protocols.
func (r *Response) Send() error {
	status := r.Status
	if status == 0 {
		status = http.StatusSwitchingProtocols
	}
	if _, err := fmt.Fprintf(r.rw, "HTTP/1.1 %v %v\r\n", status, http.StatusText(status)); err != nil {
		return errors.Wrap(err, "failed to write status line")
	}
	if err := r.Header.Write(r.rw); err != nil {
		return errors.Wrap(err, "failed to write headers")
	}
	if _, err := r.rw.WriteString("\r\n"); err != nil {
		return errors.Wrap(err, "failed to write header block terminator")
	}

	return errors.Wrap(r.rw.Flush(), "failed to flush response")
}

// Conn releases the underlying connection together with its buffered read and
// write halves, for the frame protocol layer to take over.
func (r *Response) Conn() (net.Conn, *bufio.ReadWriter) {
	return r.conn, r.rw
}
