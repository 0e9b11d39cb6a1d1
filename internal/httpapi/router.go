package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/kingarthur-games/avalon-core/internal/games"
	"github.com/kingarthur-games/avalon-core/internal/httpapi/handler"
	"github.com/kingarthur-games/avalon-core/internal/ratelimit"
	"github.com/kingarthur-games/avalon-core/internal/store"
	"github.com/kingarthur-games/avalon-core/internal/websocket"

	_ "github.com/kingarthur-games/avalon-core/docs" // swag-generated docs
)

// NewRouter builds the root HTTP router and starts the process-lifetime websocket Hub. tokenSecret
// signs websocket connection tokens; if empty, JoinGame omits the token and the websocket endpoint
// rejects every connection (see WSHandler). rateLimiter is optional: nil disables rate limiting;
// DefaultRateLimiter applies it to the join and create-game endpoints by IP.
//
// @title            Avalon Core API
// @version          1.0
// @description      Action-driven game state machine for a hidden-role social deduction game.
// @BasePath         /
func NewRouter(pool *pgxpool.Pool, tokenSecret []byte, rateLimiter ratelimit.Limiter) http.Handler {
	if rateLimiter == nil {
		rateLimiter = &ratelimit.Noop{}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", handler.Healthz)
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/", http.StatusMovedPermanently)
	})
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	hub := websocket.NewHub()
	go hub.Run()

	gameStore := store.New(pool)
	eventService := games.NewEventService(gameStore, websocket.NewMessenger(hub))
	playerService := games.NewPlayerService(gameStore, eventService)
	roundService := games.NewRoundService(gameStore, eventService)
	questService := games.NewQuestService(gameStore, eventService)
	gameService := games.NewGameService(gameStore, eventService, playerService)
	machine := games.NewMachine(gameStore, eventService, playerService, roundService, questService, gameService)

	actionHandler := websocket.NewActionHandler(machine)
	wsHandler := websocket.NewWSHandler(hub, actionHandler, tokenSecret)

	adminHandler := handler.NewAdminHandler(gameStore, machine, gameService)
	joinHandler := handler.NewJoinHandler(machine, tokenSecret)
	eventsHandler := handler.NewEventsHandler(playerService)

	rateLimitByIP := RateLimitMiddleware(rateLimiter, RateLimitKeyByIP)

	r.Route("/api/games", func(r chi.Router) {
		r.Use(LimitRequestBody(DefaultMaxBodyBytes))
		r.With(rateLimitByIP).Post("/", adminHandler.CreateGame)
		r.Get("/{game_id}", adminHandler.GetGame)
		r.Post("/{game_id}/start", adminHandler.StartGame)
		r.With(rateLimitByIP).Post("/{game_id}/join", joinHandler.JoinGame)
		r.Get("/{game_id}/players/{player_id}/events", eventsHandler.GetEvents)
	})

	r.Get("/ws/games/{game_id}", wsHandler.HandleGameWebSocket)

	return r
}

// DefaultRateLimiter returns an in-memory rate limiter for create/join: 20 requests per minute
// per IP. Pass nil to NewRouter to disable rate limiting entirely.
func DefaultRateLimiter() ratelimit.Limiter {
	return ratelimit.NewInMemory(20, time.Minute)
}
