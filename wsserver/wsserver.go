// SPDX-License-Identifier: ice License 1.0

package wsserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	appcfg "github.com/ice-blockchain/wshandshake/config"
	"github.com/ice-blockchain/wshandshake/handshake"
	"github.com/ice-blockchain/wshandshake/log"
	"github.com/ice-blockchain/wshandshake/terror"
)

func New(service Service, cfgKey string) Server {
	var cfg Config
	appcfg.MustLoadFromKey(cfgKey, &cfg)

	return &srv{cfg: &cfg, service: service, conns: make(map[*wsConnection]struct{})}
}

func (s *srv) ListenAndServe(ctx context.Context, cancel context.CancelFunc) {
	s.service.Init(ctx, cancel)
	quit := make(chan os.Signal, 1)
	s.quit = quit
	go s.startServer(ctx)
	s.wait(ctx, quit)
	s.shutDown() //nolint:contextcheck // Nope, we want to gracefully shutdown on a different context.
}

func (s *srv) startServer(ctx context.Context) {
	defer log.Info("server stopped listening")
	listener, err := net.Listen("tcp", fmt.Sprintf(":%v", s.cfg.WSServer.Port))
	if err != nil {
		log.Error(errors.Wrapf(err, "failed to listen on port %v", s.cfg.WSServer.Port))
		s.quit <- syscall.SIGTERM

		return
	}
	s.listener = listener
	log.Info(fmt.Sprintf("server started listening on %v...", s.cfg.WSServer.Port))
	for {
		conn, aErr := listener.Accept()
		if aErr != nil {
			if errors.Is(aErr, net.ErrClosed) {
				return
			}
			log.Error(errors.Wrap(aErr, "failed to accept connection"))

			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

//nolint:funlen // Sequential handshake flow.
func (s *srv) handleConn(ctx context.Context, conn net.Conn) {
	connectionID := uuid.NewString()
	req, err := handshake.Read(conn)
	if err != nil {
		log.Error(errors.Wrap(err, "failed to read upgrade request"), "connectionId", connectionID)
		log.Error(errors.Wrap(conn.Close(), "failed to close connection"))

		return
	}
	if vErr := req.Validate(); vErr != nil {
		log.Error(terror.Wrapf(vErr, map[string]any{
			"connectionId": connectionID,
			"reason":       handshake.ReasonOf(vErr),
			"remoteAddr":   conn.RemoteAddr().String(),
		}, "upgrade request validation failed"))
		resp := req.Fail()
		log.Error(errors.Wrap(resp.Send(), "failed to send rejection response"), "connectionId", connectionID)
		log.Error(errors.Wrap(conn.Close(), "failed to close connection"))

		return
	}
	resp := req.Accept()
	if sErr := resp.Send(); sErr != nil {
		log.Error(errors.Wrap(sErr, "failed to send handshake response"), "connectionId", connectionID)
		log.Error(errors.Wrap(conn.Close(), "failed to close connection"))

		return
	}
	log.Debug("websocket session established", "connectionId", connectionID)
	wsocket := initWSConnection(resp, s.cfg)
	s.connsMx.Lock()
	s.conns[wsocket] = struct{}{}
	s.connsMx.Unlock()
	defer func() {
		s.connsMx.Lock()
		delete(s.conns, wsocket)
		s.connsMx.Unlock()
		log.Error(errors.Wrap(wsocket.Close(), "failed to close websocket conn"), "connectionId", connectionID)
	}()
	connCtx := newCustomCancelContext(ctx, wsocket.closeChannel)
	go s.service.Write(connCtx, wsocket)
	s.service.Read(connCtx, wsocket)
}

func (s *srv) wait(ctx context.Context, quit chan os.Signal) {
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case <-quit:
	}
}

func (s *srv) shutDown() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log.Info("shutting down server...")
	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Error(errors.Wrap(err, "server shutdown failed"))
		} else {
			log.Info("server shutdown succeeded")
		}
	}
	s.connsMx.Lock()
	for wsocket := range s.conns {
		log.Error(errors.Wrap(wsocket.Close(), "failed to close websocket conn"))
	}
	s.connsMx.Unlock()
	s.wg.Wait()

	if err := s.service.Close(ctx); err != nil && !errors.Is(err, io.EOF) {
		log.Error(errors.Wrap(err, "state close failed"))
	} else {
		log.Info("state close succeeded")
	}
}
