package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/coder/websocket"
	"github.com/matheodrd/httphelper/handler"
)

// Subprotocol is the websocket subprotocol spoken on /bridge. Clients that
// offer no subprotocol are accepted too.
const Subprotocol = "positioning-bridge.v1"

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

// clientID reads the host identity from the X-Client-ID header, or from the
// client_id query parameter when the header is absent.
func clientID(r *http.Request) (string, error) {
	id := r.Header.Get("X-Client-ID")
	if id == "" {
		id = r.URL.Query().Get("client_id")
	}
	if id == "" {
		return "", errors.New("missing client_id")
	}
	if !clientIDPattern.MatchString(id) {
		return "", fmt.Errorf("invalid client_id %q", id)
	}
	return id, nil
}

func (s *Server) bridgeHandler() http.HandlerFunc {
	return handler.Handler(func(w http.ResponseWriter, r *http.Request) error {
		id, err := clientID(r)
		if err != nil {
			return handler.NewErrWithStatus(http.StatusBadRequest, err)
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: s.Config.AllowedOrigins,
		})
		if err != nil {
			return handler.NewErrWithStatus(http.StatusInternalServerError, fmt.Errorf("websocket accept: %w", err))
		}
		if len(r.Header.Values("Sec-WebSocket-Protocol")) > 0 && conn.Subprotocol() == "" {
			s.logger.Warn("rejecting bridge client", "clientId", id, "reason", "unsupported subprotocol")
			if err := conn.Close(websocket.StatusPolicyViolation, "unsupported subprotocol"); err != nil {
				s.logger.Debug("failed to close rejected client", "clientId", id, "error", err)
			}
			return nil
		}

		s.logger.Info("bridge client connected", "clientId", id, "subprotocol", conn.Subprotocol(), "remoteAddr", r.RemoteAddr)
		s.WebsocketManager.HandleNewConnection(id, conn)
		return nil
	})
}

// commandsHandler lists the command names a host may send.
func (s *Server) commandsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"commands": s.commands}); err != nil {
		s.logger.Error("failed to write commands", "error", err)
	}
}
