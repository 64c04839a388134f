package http

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/service/metrics"
	"github.com/yonnovia/iawashing/pkg/service/realtime"
	"github.com/yonnovia/iawashing/pkg/usecase"
	"github.com/yonnovia/iawashing/pkg/utils/logging"
)

const (
	wsWriteTimeout   = 10 * time.Second
	wsMaxMessageSize = 1024
)

func newUpgrader(origins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(origins, "*") {
				return true
			}
			return slices.Contains(origins, origin)
		},
	}
}

// wsHandler streams the dashboard events of one session. The client only
// receives; anything it sends is discarded.
func wsHandler(hub *realtime.Hub, m *metrics.Recorder, origins []string, pingInterval time.Duration) http.HandlerFunc {
	upgrader := newUpgrader(origins)
	pongWait := pingInterval * 2

	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := model.SessionID(strings.TrimSpace(r.URL.Query().Get("sessionId")))
		if sessionID == "" {
			writeError(w, r, goerr.Wrap(usecase.ErrSessionIDRequired, "websocket subscription"))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already replied to the client.
			logging.From(r.Context()).Warn("websocket upgrade failed", "error", err)
			return
		}
		defer func() {
			if err := conn.Close(); err != nil {
				logging.From(r.Context()).Debug("failed to close websocket", "error", err)
			}
		}()

		sub := hub.Subscribe(sessionID)
		defer sub.Close()

		if m != nil {
			m.WebSocketConnected()
			defer m.WebSocketDisconnected()
		}

		logger := logging.From(r.Context()).With("session_id", sessionID)
		logger.Info("dashboard client connected")
		defer logger.Info("dashboard client disconnected")

		conn.SetReadLimit(wsMaxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-closed:
				return

			case <-r.Context().Done():
				return

			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteJSON(event); err != nil {
					logger.Debug("failed to write dashboard event", "error", err)
					return
				}

			case <-ticker.C:
				deadline := time.Now().Add(wsWriteTimeout)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					logger.Debug("failed to ping dashboard client", "error", err)
					return
				}
			}
		}
	}
}
