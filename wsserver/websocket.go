// SPDX-License-Identifier: ice License 1.0

package wsserver

import (
	"context"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/ice-blockchain/wshandshake/handshake"
)

func initWSConnection(resp *handshake.Response, cfg *Config) *wsConnection {
	conn, rw := resp.Conn()

	return &wsConnection{
		conn:         conn,
		rw:           rw,
		closeChannel: make(chan struct{}, 1),
		readTimeout:  cfg.WSServer.ReadTimeout,
		writeTimeout: cfg.WSServer.WriteTimeout,
	}
}

// Read drains the buffered read half first, so bytes the client pipelined right
// behind its handshake are not lost.
func (w *wsConnection) Read(p []byte) (int, error) {
	return w.rw.Read(p) //nolint:wrapcheck // Proxy.
}

func (w *wsConnection) Write(p []byte) (int, error) {
	return w.conn.Write(p) //nolint:wrapcheck // Proxy.
}

func (w *wsConnection) ReadMessage() (messageType int, p []byte, err error) {
	if w.readTimeout > 0 {
		_ = w.conn.SetReadDeadline(time.Now().Add(w.readTimeout)) //nolint:errcheck // It is not crucial if we ignore it here.
	}
	msgBytes, typ, err := wsutil.ReadClientData(w)

	return int(typ), msgBytes, err //nolint:wrapcheck // Proxy.
}

func (w *wsConnection) WriteMessage(messageType int, data []byte) error {
	var mErr *multierror.Error
	if w.writeTimeout > 0 {
		mErr = multierror.Append(nil, w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout)))
	}

	return errors.Wrap(multierror.Append(mErr,
		wsutil.WriteServerMessage(w, ws.OpCode(messageType), data),
	).ErrorOrNil(), "failed to write message to websocket")
}

func (w *wsConnection) Close() error {
	w.closedMx.Lock()
	if w.closed {
		w.closedMx.Unlock()

		return nil
	}
	w.closed = true
	close(w.closeChannel)
	w.closedMx.Unlock()
	frame := ws.NewCloseFrame(ws.NewCloseFrameBody(ws.StatusNormalClosure, ""))

	return multierror.Append(
		ws.WriteFrame(w.conn, frame),
		w.conn.Close(),
	).ErrorOrNil() //nolint:wrapcheck // Terminal.
}

func newCustomCancelContext(reqCtx context.Context, ch <-chan struct{}) context.Context {
	return customCancelContext{Context: reqCtx, ch: ch}
}

func (c customCancelContext) Done() <-chan struct{} {
	return c.ch
}

func (c customCancelContext) Err() error {
	select {
	case <-c.ch:
		return context.Canceled
	default:
		return nil
	}
}
