package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kingarthur-games/avalon-core/internal/auth"
	"github.com/kingarthur-games/avalon-core/internal/games"
)

// JoinHandler handles the join-game endpoint.
type JoinHandler struct {
	machine     *games.Machine
	tokenSecret []byte
}

// NewJoinHandler wires a JoinHandler to the Machine and the secret used to sign the websocket
// connection token handed back alongside the player's plaintext secret.
func NewJoinHandler(machine *games.Machine, tokenSecret []byte) *JoinHandler {
	return &JoinHandler{machine: machine, tokenSecret: tokenSecret}
}

type joinGameRequest struct {
	Name string `json:"name"`
}

// joinGameResponse is returned exactly once: it is the only time the plaintext secret and
// websocket token are ever sent to a client.
type joinGameResponse struct {
	PlayerID       string `json:"player_id"`
	Name           string `json:"name"`
	Secret         string `json:"secret"`
	WebsocketToken string `json:"websocket_token,omitempty"`
	TokenExpiresAt string `json:"token_expires_at,omitempty"`
}

// JoinGame handles POST /api/games/{game_id}/join.
//
// @Summary      Join game
// @Description  Join a game that has not started yet. Returns the player's id and a plaintext secret that is never shown again.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        game_id  path  string             true  "Game id"
// @Param        body     body  joinGameRequest     true  "Player display name"
// @Success      201      {object}  joinGameResponse
// @Failure      400      {string}  string
// @Failure      409      {string}  string
// @Router       /api/games/{game_id}/join [post]
func (h *JoinHandler) JoinGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")

	var body joinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	action := &games.Action{
		ID:      uuid.NewString(),
		GameID:  gameID,
		Type:    games.ActionJoinGame,
		Payload: map[string]interface{}{"name": body.Name},
	}
	player, secret, err := h.machine.JoinGame(r.Context(), action)
	if err != nil {
		writeGameError(w, r, err)
		return
	}

	resp := joinGameResponse{PlayerID: player.ID, Name: player.Name, Secret: secret}
	if len(h.tokenSecret) > 0 {
		token, expiresAt, err := auth.GenerateToken(gameID, player.ID, h.tokenSecret, auth.DefaultTokenExpiry)
		if err == nil {
			resp.WebsocketToken = token
			resp.TokenExpiresAt = expiresAt.UTC().Format(timeRFC3339)
		}
	}
	writeJSON(w, r, http.StatusCreated, resp)
}

const timeRFC3339 = "2006-01-02T15:04:05Z07:00"
