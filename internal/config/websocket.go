package config

import (
	"net/http"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader websocket.Upgrader
	// ReadLimit caps a single command frame.
	ReadLimit int64
}

func NewWebSocket() (*WebSocket, error) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	readLimit, err := lookupInt("WS_READ_LIMIT", 64*1024)
	if err != nil {
		return nil, err
	}

	ws := &WebSocket{
		Upgrader:  upgrader,
		ReadLimit: int64(readLimit),
	}

	return ws, nil
}
