package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kingarthur-games/avalon-core/internal/games"
)

// EventsHandler handles the event-log read endpoint.
type EventsHandler struct {
	players *games.PlayerService
}

// NewEventsHandler wires an EventsHandler to the PlayerService that verifies the caller's secret.
func NewEventsHandler(players *games.PlayerService) *EventsHandler {
	return &EventsHandler{players: players}
}

// GetEvents handles GET /api/games/{game_id}/players/{player_id}/events?secret=... . It fails
// closed with 400 unless secret matches the player's stored secret (see
// PlayerService.GetEventsForPlayer).
//
// @Summary      Read a player's event log
// @Description  Returns every event visible to player_id: public events plus events naming player_id as a recipient. Requires the player's secret.
// @Tags         events
// @Produce      json
// @Param        game_id    path   string  true  "Game id"
// @Param        player_id  path   string  true  "Player id"
// @Param        secret     query  string  true  "Player secret, returned once by JoinGame"
// @Success      200  {array}   games.Event
// @Failure      400  {string}  string
// @Router       /api/games/{game_id}/players/{player_id}/events [get]
func (h *EventsHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	playerID := chi.URLParam(r, "player_id")
	secret := r.URL.Query().Get("secret")

	events, err := h.players.GetEventsForPlayer(r.Context(), gameID, playerID, secret)
	if err != nil {
		writeGameError(w, r, err)
		return
	}
	if events == nil {
		events = []*games.Event{}
	}
	writeJSON(w, r, http.StatusOK, events)
}
