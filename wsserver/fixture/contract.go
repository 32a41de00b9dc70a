// SPDX-License-Identifier: ice License 1.0

package fixture

import (
	"net"
	"sync"
	"sync/atomic"

	gorillaws "github.com/gorilla/websocket"

	"github.com/ice-blockchain/wshandshake/wsserver"
)

// Public API.

type (
	MockService struct {
		server         wsserver.Server
		processingFunc func(writer wsserver.WSWriter, in string) error
		ReaderExited   atomic.Uint64
	}
	Client interface {
		Received
		wsserver.WSWriter
	}
	Received interface {
		Received() <-chan []byte
	}
)

// Private API.

const (
	applicationYamlKey = "self"
)

type (
	wsocketClient struct {
		conn          net.Conn
		inputMessages chan []byte
		closeChannel  chan struct{}
		closed        bool
		closedMx      sync.Mutex
	}
	gorillaClient struct {
		conn          *gorillaws.Conn
		inputMessages chan []byte
		closed        bool
		closedMx      sync.Mutex
	}
)
