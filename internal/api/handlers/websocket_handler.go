package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"freightmarket-api-server/internal/auth"
	"freightmarket-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Maximum quiet time before a connection is considered dead.
const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub  *socket.Hub
	Auth *auth.Service
}

// clientMessage is what connected clients may send: job room membership
// requests. Everything else pushed on the wire flows server -> client.
type clientMessage struct {
	Action string `json:"action"`
	JobID  string `json:"jobId"`
}

// ServeWs authenticates via the token query parameter (browsers cannot
// set headers on websocket upgrades), registers the connection and runs
// the read loop.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Token is required"})
		return
	}

	claims, err := h.Auth.ParseToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.S().Named("socket").Warnw("failed to upgrade connection", "error", err)
		return
	}

	client := h.Hub.Register(claims.UserID, conn)
	defer func() {
		h.Hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.S().Named("socket").Warnw("unexpected close", "userId", claims.UserID, "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		switch msg.Action {
		case "join_job":
			h.Hub.JoinJob(client, msg.JobID)
		case "leave_job":
			h.Hub.LeaveJob(client, msg.JobID)
		}
	}
}
