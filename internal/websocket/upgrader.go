package websocket

import (
	"net/http"

	"forms-service/internal/config"

	"github.com/gorilla/websocket"
)

// NewUpgrader accepts requests without an Origin header (non-browser clients)
// and the origins the CORS policy admits.
func NewUpgrader(cors config.CORSConfig) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || cors.AllowsOrigin(origin)
		},
	}
}
