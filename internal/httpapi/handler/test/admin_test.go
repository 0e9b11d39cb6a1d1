package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kingarthur-games/avalon-core/internal/games"
	"github.com/kingarthur-games/avalon-core/internal/httpapi/handler"
	"github.com/kingarthur-games/avalon-core/internal/store"
)

// noopMessenger discards every event; these tests exercise the HTTP/store path only, not live
// fan-out (see internal/websocket for Hub-backed delivery tests).
type noopMessenger struct{}

func (noopMessenger) Broadcast(ctx context.Context, event *games.Event) error { return nil }
func (noopMessenger) Notify(ctx context.Context, playerID string, event *games.Event) error {
	return nil
}

type handlers struct {
	admin  *handler.AdminHandler
	join   *handler.JoinHandler
	events *handler.EventsHandler
}

func setupTestHandlers(t *testing.T) (*handlers, *pgxpool.Pool) {
	t.Helper()
	pool := store.SetupTestDB(t)

	gameStore := store.New(pool)
	eventService := games.NewEventService(gameStore, noopMessenger{})
	playerService := games.NewPlayerService(gameStore, eventService)
	roundService := games.NewRoundService(gameStore, eventService)
	questService := games.NewQuestService(gameStore, eventService)
	gameService := games.NewGameService(gameStore, eventService, playerService)
	machine := games.NewMachine(gameStore, eventService, playerService, roundService, questService, gameService)

	return &handlers{
		admin:  handler.NewAdminHandler(gameStore, machine, gameService),
		join:   handler.NewJoinHandler(machine, []byte("test-secret")),
		events: handler.NewEventsHandler(playerService),
	}, pool
}

func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	ctx := chi.NewRouteContext()
	for k, v := range params {
		ctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, ctx))
}

func TestCreateAndGetGame(t *testing.T) {
	h, pool := setupTestHandlers(t)
	defer pool.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/games", nil)
	w := httptest.NewRecorder()
	h.admin.CreateGame(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		GameID string `json:"game_id"`
	}
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.GameID == "" {
		t.Fatal("expected a non-empty game id")
	}

	getReq := requestWithURLParams(httptest.NewRequest(http.MethodGet, "/api/games/"+created.GameID, nil), map[string]string{"game_id": created.GameID})
	getW := httptest.NewRecorder()
	h.admin.GetGame(getW, getReq)

	if getW.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", getW.Code, getW.Body.String())
	}
	var summary games.GameSummary
	if err := json.NewDecoder(getW.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.ID != created.GameID {
		t.Errorf("expected game id %s, got %s", created.GameID, summary.ID)
	}
	if summary.Status != games.StatusNotStarted {
		t.Errorf("expected StatusNotStarted, got %s", summary.Status)
	}
	if len(summary.Players) != 0 {
		t.Errorf("expected no players yet, got %d", len(summary.Players))
	}
}

func TestGetGame_UnknownGameIs404(t *testing.T) {
	h, pool := setupTestHandlers(t)
	defer pool.Close()

	getReq := requestWithURLParams(httptest.NewRequest(http.MethodGet, "/api/games/does-not-exist", nil), map[string]string{"game_id": "does-not-exist"})
	getW := httptest.NewRecorder()
	h.admin.GetGame(getW, getReq)

	if getW.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d body=%s", getW.Code, getW.Body.String())
	}
}

func TestJoinGameThenReadEvents(t *testing.T) {
	h, pool := setupTestHandlers(t)
	defer pool.Close()

	createW := httptest.NewRecorder()
	h.admin.CreateGame(createW, httptest.NewRequest(http.MethodPost, "/api/games", nil))
	var created struct {
		GameID string `json:"game_id"`
	}
	if err := json.NewDecoder(createW.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	joinBody, _ := json.Marshal(map[string]string{"name": "alice"})
	joinReq := requestWithURLParams(
		httptest.NewRequest(http.MethodPost, "/api/games/"+created.GameID+"/join", bytes.NewReader(joinBody)),
		map[string]string{"game_id": created.GameID},
	)
	joinW := httptest.NewRecorder()
	h.join.JoinGame(joinW, joinReq)

	if joinW.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", joinW.Code, joinW.Body.String())
	}
	var joinResp struct {
		PlayerID       string `json:"player_id"`
		Secret         string `json:"secret"`
		WebsocketToken string `json:"websocket_token"`
	}
	if err := json.NewDecoder(joinW.Body).Decode(&joinResp); err != nil {
		t.Fatalf("decode join response: %v", err)
	}
	if joinResp.PlayerID == "" || joinResp.Secret == "" {
		t.Fatal("expected a player id and secret")
	}
	if joinResp.WebsocketToken == "" {
		t.Error("expected a websocket token since a token secret was configured")
	}

	eventsReq := requestWithURLParams(
		httptest.NewRequest(http.MethodGet, "/api/games/"+created.GameID+"/players/"+joinResp.PlayerID+"/events?secret="+joinResp.Secret, nil),
		map[string]string{"game_id": created.GameID, "player_id": joinResp.PlayerID},
	)
	eventsReq.URL.RawQuery = "secret=" + joinResp.Secret
	eventsW := httptest.NewRecorder()
	h.events.GetEvents(eventsW, eventsReq)

	if eventsW.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", eventsW.Code, eventsW.Body.String())
	}
	var events []*games.Event
	if err := json.NewDecoder(eventsW.Body).Decode(&events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected at least one visible event")
	}
}

func TestGetEvents_WrongSecretIs400(t *testing.T) {
	h, pool := setupTestHandlers(t)
	defer pool.Close()

	createW := httptest.NewRecorder()
	h.admin.CreateGame(createW, httptest.NewRequest(http.MethodPost, "/api/games", nil))
	var created struct {
		GameID string `json:"game_id"`
	}
	if err := json.NewDecoder(createW.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	joinBody, _ := json.Marshal(map[string]string{"name": "alice"})
	joinReq := requestWithURLParams(
		httptest.NewRequest(http.MethodPost, "/api/games/"+created.GameID+"/join", bytes.NewReader(joinBody)),
		map[string]string{"game_id": created.GameID},
	)
	joinW := httptest.NewRecorder()
	h.join.JoinGame(joinW, joinReq)
	var joinResp struct {
		PlayerID string `json:"player_id"`
	}
	if err := json.NewDecoder(joinW.Body).Decode(&joinResp); err != nil {
		t.Fatalf("decode join response: %v", err)
	}

	eventsReq := requestWithURLParams(
		httptest.NewRequest(http.MethodGet, "/api/games/"+created.GameID+"/players/"+joinResp.PlayerID+"/events?secret=wrong", nil),
		map[string]string{"game_id": created.GameID, "player_id": joinResp.PlayerID},
	)
	eventsReq.URL.RawQuery = "secret=wrong"
	eventsW := httptest.NewRecorder()
	h.events.GetEvents(eventsW, eventsReq)

	if eventsW.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d body=%s", eventsW.Code, eventsW.Body.String())
	}
}
