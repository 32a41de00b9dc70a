// SPDX-License-Identifier: ice License 1.0

package fixture

import (
	"context"

	"github.com/ice-blockchain/wshandshake/log"
	"github.com/ice-blockchain/wshandshake/wsserver"
)

func NewTestServer(ctx context.Context, cancel context.CancelFunc, cfgKeySuffix string, processingFunc func(w wsserver.WSWriter, in string) error) *MockService {
	service := &MockService{processingFunc: processingFunc}
	service.server = wsserver.New(service, applicationYamlKey+cfgKeySuffix)
	go service.server.ListenAndServe(ctx, cancel)

	return service
}

func (m *MockService) Init(_ context.Context, _ context.CancelFunc) {
}

func (m *MockService) Read(ctx context.Context, reader wsserver.WSReader) {
	defer m.ReaderExited.Add(1)
	for ctx.Err() == nil {
		_, msg, err := reader.ReadMessage()
		if err != nil {
			break
		}
		if len(msg) > 0 {
			if w, ok := reader.(wsserver.WS); ok {
				log.Error(m.processingFunc(w, string(msg)), "fixture: processing failed")
			}
		}
	}
}

func (m *MockService) Write(ctx context.Context, _ wsserver.WSWriter) {
	<-ctx.Done()
}

func (m *MockService) Close(_ context.Context) error {
	return nil
}
