package websocket

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kingarthur-games/avalon-core/internal/auth"
)

// WSHandler handles the websocket receive endpoint for a game.
type WSHandler struct {
	hub         *Hub
	actions     ActionSink
	tokenSecret []byte
}

// NewWSHandler wires a WSHandler to the Hub every Client registers with, the ActionSink every
// decoded action is handed to, and the secret connection-auth tokens are verified against.
func NewWSHandler(hub *Hub, actions ActionSink, tokenSecret []byte) *WSHandler {
	return &WSHandler{hub: hub, actions: actions, tokenSecret: tokenSecret}
}

// HandleGameWebSocket handles GET /ws/games/{game_id}. The client authenticates with the
// connection token issued at JoinGame time (query param token, or Authorization: Bearer); the
// token's claims bind the connection to exactly the (game_id, player_id) pair JoinGame created.
func (h *WSHandler) HandleGameWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	if gameID == "" {
		http.Error(w, "game_id is required", http.StatusBadRequest)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		const prefix = "Bearer "
		if v := r.Header.Get("Authorization"); strings.HasPrefix(v, prefix) {
			token = strings.TrimSpace(v[len(prefix):])
		}
	}
	if token == "" || len(h.tokenSecret) == 0 {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}
	claims, err := auth.VerifyToken(token, h.tokenSecret)
	if err != nil {
		log.Printf("websocket auth: game_id=%s token verification failed: %v", gameID, err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if claims.GameID != gameID {
		http.Error(w, "token is not valid for this game", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	// Background, not r.Context(): the HTTP request ends at the upgrade, but the connection (and
	// the actions it submits) outlives it.
	client := &Client{
		hub:      h.hub,
		conn:     conn,
		send:     make(chan *OutgoingMessage, 256),
		GameID:   claims.GameID,
		PlayerID: claims.PlayerID,
		actions:  h.actions,
		ctx:      context.Background(),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
