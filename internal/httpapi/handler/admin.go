package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kingarthur-games/avalon-core/internal/games"
	"github.com/kingarthur-games/avalon-core/internal/store"
)

// AdminHandler handles the admin HTTP surface: creating games, reading a game's public summary,
// and starting a game. "Admin" here means an endpoint with no player-identity contract of its
// own, not a privileged account system — there are no user accounts in this domain (see
// DESIGN.md).
type AdminHandler struct {
	store   *store.Store
	machine *games.Machine
	gameSvc *games.GameService
}

// NewAdminHandler wires an AdminHandler to its collaborators.
func NewAdminHandler(store *store.Store, machine *games.Machine, gameSvc *games.GameService) *AdminHandler {
	return &AdminHandler{store: store, machine: machine, gameSvc: gameSvc}
}

// createGameResponse is the body for POST /api/games.
type createGameResponse struct {
	GameID string `json:"game_id"`
}

// CreateGame handles POST /api/games: allocates a new game id and persists it in GameSetup.
//
// @Summary      Create game
// @Description  Create a new game, in GameSetup, with no players yet.
// @Tags         games
// @Produce      json
// @Success      201  {object}  createGameResponse
// @Failure      500  {string}  string
// @Router       /api/games [post]
func (h *AdminHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	gameID := uuid.NewString()
	if _, err := h.store.CreateGame(r.Context(), gameID); err != nil {
		writeGameError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, createGameResponse{GameID: gameID})
}

// GetGame handles GET /api/games/{game_id}: a read-only projection safe to show before or during
// a game (never roles or secrets; see games.GameSummary).
//
// @Summary      Get game
// @Description  Read a game's public summary: status, state, config, and joined players.
// @Tags         games
// @Produce      json
// @Param        game_id  path      string  true  "Game id"
// @Success      200      {object}  games.GameSummary
// @Failure      404      {string}  string
// @Router       /api/games/{game_id} [get]
func (h *AdminHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	summary, err := h.gameSvc.GetGameSummary(r.Context(), gameID)
	if err != nil {
		writeGameError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

// StartGame handles POST /api/games/{game_id}/start. The request body is the StartGame action's
// payload verbatim: player_ids plus optional assassination_attempts/roles/known_roles overrides.
//
// @Summary      Start game
// @Description  Freeze config, assign roles, and move the game into TeamSelection.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        game_id  path  string  true  "Game id"
// @Success      200      {object}  games.GameSummary
// @Failure      400      {string}  string
// @Failure      409      {string}  string
// @Router       /api/games/{game_id}/start [post]
func (h *AdminHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	action := &games.Action{
		ID:      uuid.NewString(),
		GameID:  gameID,
		Type:    games.ActionStartGame,
		Payload: payload,
	}
	if _, err := h.machine.Handle(r.Context(), action); err != nil {
		writeGameError(w, r, err)
		return
	}

	summary, err := h.gameSvc.GetGameSummary(r.Context(), gameID)
	if err != nil {
		writeGameError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}
