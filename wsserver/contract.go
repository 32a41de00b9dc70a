// SPDX-License-Identifier: ice License 1.0

package wsserver

import (
	"bufio"
	"context"
	"io"
	"net"
	"os"
	"sync"
	stdlibtime "time"
)

// Public API.

type (
	Server interface {
		// ListenAndServe starts everything and blocks indefinitely.
		ListenAndServe(ctx context.Context, cancel context.CancelFunc)
	}
	WSReader interface {
		ReadMessage() (messageType int, p []byte, err error)
		io.Closer
	}
	WSWriter interface {
		WriteMessage(messageType int, data []byte) error
		io.Closer
	}
	WS interface {
		WSWriter
		WSReader
	}
	// Service is the actual custom behaviour that has to be implemented by users
	// of this package to process the websocket sessions this server accepts.
	Service interface {
		Init(ctx context.Context, cancel context.CancelFunc)
		Read(ctx context.Context, reader WSReader)
		Write(ctx context.Context, writer WSWriter)
		Close(ctx context.Context) error
	}

	Config struct {
		WSServer struct {
			Port         uint16              `yaml:"port"`
			ReadTimeout  stdlibtime.Duration `yaml:"readTimeout"`
			WriteTimeout stdlibtime.Duration `yaml:"writeTimeout"`
		} `yaml:"wsServer"`
		Development bool `yaml:"development"`
	}
)

// Private API.

type (
	srv struct {
		cfg      *Config
		service  Service
		listener net.Listener
		quit     chan<- os.Signal
		conns    map[*wsConnection]struct{}
		connsMx  sync.Mutex
		wg       sync.WaitGroup
	}
	wsConnection struct {
		conn         net.Conn
		rw           *bufio.ReadWriter
		closeChannel chan struct{}
		closed       bool
		closedMx     sync.Mutex
		readTimeout  stdlibtime.Duration
		writeTimeout stdlibtime.Duration
	}
	customCancelContext struct {
		context.Context //nolint:containedctx // Custom implementation.
		ch              <-chan struct{}
	}
)
