// SPDX-License-Identifier: ice License 1.0

package fixture

import (
	"context"
	"net"
	stdlibtime "time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	gorillaws "github.com/gorilla/websocket"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

const (
	dialRetries      = 10
	dialRetryMinWait = 25 * stdlibtime.Millisecond
)

// NewWebsocketClient dials the given ws:// url with the gobwas stack, retrying
// until the server under test starts listening.
func NewWebsocketClient(ctx context.Context, url string) (Client, error) {
	var conn net.Conn
	dial := func() error {
		var err error
		conn, _, _, err = ws.Dialer{}.Dial(ctx, url)

		return err
	}
	retryPolicy := backoff.WithContext(backoff.WithMaxRetries(newDialBackoff(), dialRetries), ctx)
	if err := backoff.Retry(dial, retryPolicy); err != nil {
		return nil, errors.Wrapf(err, "failed to establish websocket conn to %v", url)
	}
	c := &wsocketClient{
		conn:          conn,
		inputMessages: make(chan []byte),
		closeChannel:  make(chan struct{}, 1),
	}
	go c.read(ctx)

	return c, nil
}

// NewGorillaClient dials with the gorilla stack instead, which independently
// verifies the Sec-WebSocket-Accept echo during its client handshake.
func NewGorillaClient(ctx context.Context, url string) (Client, error) {
	var conn *gorillaws.Conn
	dial := func() error {
		var err error
		conn, _, err = gorillaws.DefaultDialer.DialContext(ctx, url, nil) //nolint:bodyclose // Nothing to close on handshake failure.

		return err
	}
	retryPolicy := backoff.WithContext(backoff.WithMaxRetries(newDialBackoff(), dialRetries), ctx)
	if err := backoff.Retry(dial, retryPolicy); err != nil {
		return nil, errors.Wrapf(err, "failed to establish gorilla websocket conn to %v", url)
	}
	c := &gorillaClient{
		conn:          conn,
		inputMessages: make(chan []byte),
	}
	go c.read(ctx)

	return c, nil
}

func newDialBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = dialRetryMinWait

	return bo
}

func (c *wsocketClient) read(ctx context.Context) {
	for ctx.Err() == nil {
		msg, _, err := wsutil.ReadServerData(c.conn)
		if err != nil {
			break
		}
		if len(msg) > 0 {
			c.closedMx.Lock()
			if !c.closed {
				c.inputMessages <- msg
			}
			c.closedMx.Unlock()
		}
	}
}

func (c *wsocketClient) Received() <-chan []byte {
	return c.inputMessages
}

func (c *wsocketClient) WriteMessage(messageType int, data []byte) error {
	select {
	case <-c.closeChannel:
		return nil
	default:
		return errors.Wrap(wsutil.WriteClientMessage(c.conn, ws.OpCode(messageType), data), "client: failed to write data to websocket")
	}
}

func (c *wsocketClient) Close() error {
	c.closedMx.Lock()
	if c.closed {
		c.closedMx.Unlock()

		return nil
	}
	c.closed = true
	close(c.closeChannel)
	close(c.inputMessages)
	c.closedMx.Unlock()

	return multierror.Append(
		wsutil.WriteClientMessage(c.conn, ws.OpClose, ws.NewCloseFrameBody(ws.StatusNormalClosure, "")),
		c.conn.Close(),
	).ErrorOrNil()
}

func (c *gorillaClient) read(ctx context.Context) {
	for ctx.Err() == nil {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		if len(msg) > 0 {
			c.closedMx.Lock()
			if !c.closed {
				c.inputMessages <- msg
			}
			c.closedMx.Unlock()
		}
	}
}

func (c *gorillaClient) Received() <-chan []byte {
	return c.inputMessages
}

func (c *gorillaClient) WriteMessage(messageType int, data []byte) error {
	c.closedMx.Lock()
	defer c.closedMx.Unlock()
	if c.closed {
		return nil
	}

	return errors.Wrap(c.conn.WriteMessage(messageType, data), "client: failed to write data to websocket")
}

func (c *gorillaClient) Close() error {
	c.closedMx.Lock()
	if c.closed {
		c.closedMx.Unlock()

		return nil
	}
	c.closed = true
	close(c.inputMessages)
	c.closedMx.Unlock()
	wErr := c.conn.WriteControl(gorillaws.CloseMessage,
		gorillaws.FormatCloseMessage(gorillaws.CloseNormalClosure, ""), stdlibtime.Now().Add(stdlibtime.Second))
	if wErr != nil && !errors.Is(wErr, gorillaws.ErrCloseSent) {
		return multierror.Append(wErr, c.conn.Close()).ErrorOrNil()
	}

	return c.conn.Close()
}
