// SPDX-License-Identifier: ice License 1.0

package handshake_test

import (
	"bufio"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ice-blockchain/wshandshake/handshake"
)

// exchange runs one full handshake over an in-memory connection and returns the
// response head the client observes, up to and including the blank line.
func exchange(t *testing.T, rawRequest string, decide func(*handshake.Request) *handshake.Response) string {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	go func() {
		req, err := handshake.Read(server)
		if err != nil {
			return
		}
		resp := decide(req)
		_ = resp.Send()
	}()
	_, err := client.Write([]byte(rawRequest))
	require.NoError(t, err)

	var head strings.Builder
	reader := bufio.NewReader(client)
	for {
		line, rErr := reader.ReadString('\n')
		require.NoError(t, rErr)
		head.WriteString(line)
		if line == "\r\n" {
			break
		}
	}

	return head.String()
}

func TestSendAcceptedResponse(t *testing.T) {
	t.Parallel()
	head := exchange(t, validUpgradeRequest, func(req *handshake.Request) *handshake.Response {
		return req.Accept()
	})
	assert.True(t, strings.HasPrefix(head, "HTTP/1.1 101 Switching Protocols\r\n"))
	assert.Contains(t, head, "Upgrade: websocket\r\n")
	assert.Contains(t, head, "Connection: Upgrade\r\n")
	assert.Contains(t, head, "Sec-Websocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n")
}

func TestSendFailedResponseIsMinimal(t *testing.T) {
	t.Parallel()
	head := exchange(t, validUpgradeRequest, func(req *handshake.Request) *handshake.Response {
		return req.Fail()
	})
	assert.Equal(t, "HTTP/1.1 400 Bad Request\r\n\r\n", head)
}

func TestSendRejectionForInvalidRequest(t *testing.T) {
	t.Parallel()
	raw := strings.Replace(validUpgradeRequest, "Sec-WebSocket-Version: 13\r\n", "Sec-WebSocket-Version: 8\r\n", 1)
	head := exchange(t, raw, func(req *handshake.Request) *handshake.Response {
		return req.Accept()
	})
	assert.Equal(t, "HTTP/1.1 400 Bad Request\r\n\r\n", head)
}

func TestUseProtocolEcho(t *testing.T) {
	t.Parallel()
	head := exchange(t, validUpgradeRequest, func(req *handshake.Request) *handshake.Response {
		resp := req.Accept()
		resp.UseProtocol(req.Protocol()[0])

		return resp
	})
	assert.Contains(t, head, "Sec-Websocket-Protocol: chat\r\n")
}

func TestExplicitStatusIsKept(t *testing.T) {
	t.Parallel()
	head := exchange(t, validUpgradeRequest, func(req *handshake.Request) *handshake.Response {
		resp := req.Accept()
		resp.Status = http.StatusForbidden

		return resp
	})
	assert.True(t, strings.HasPrefix(head, "HTTP/1.1 403 Forbidden\r\n"))
}

func TestResponseOwnsTheConnection(t *testing.T) {
	t.Parallel()
	req := mustReadRequest(t, validUpgradeRequest)
	resp := req.Accept()
	require.NotNil(t, resp)
	conn, rw := resp.Conn()
	assert.NotNil(t, conn)
	assert.NotNil(t, rw)
}
