package handlers

import (
	"net/http"

	"forms-service/internal/websocket"
	"forms-service/pkg/response"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
)

type WSHandler struct {
	hub           *websocket.Hub
	dispatcher    *websocket.Dispatcher
	authenticator *websocket.Authenticator
	upgrader      *gorilla.Upgrader
}

func NewWSHandler(hub *websocket.Hub, dispatcher *websocket.Dispatcher, authenticator *websocket.Authenticator, upgrader *gorilla.Upgrader) *WSHandler {
	return &WSHandler{
		hub:           hub,
		dispatcher:    dispatcher,
		authenticator: authenticator,
		upgrader:      upgrader,
	}
}

// HandleWebSocket godoc
// @Summary WebSocket connection
// @Description Real-time comments and likes. Frames are {"event": name, "data": payload}.
// @Description The session comes from the signed or plain jwt cookie, the token query parameter or a bearer header.
// @Tags websocket
// @Param token query string false "JWT when no cookie is sent"
// @Success 101 "Switching Protocols - WebSocket connection established"
// @Failure 401 {object} models.ErrorResponse "Authentication failed"
// @Router /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	session, err := h.authenticator.Authenticate(c.Request)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "Authentication failed")
		return
	}
	websocket.ServeWS(h.hub, h.dispatcher, h.upgrader, c.Writer, c.Request, session)
}
