package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/kingarthur-games/avalon-core/internal/games"
)

// requestID returns the request ID from chi's context for logging.
func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// writeJSON encodes v as the response body with the given status, logging (but not surfacing)
// an encode failure: the status line has already gone out by the time Encode could fail.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[%s] encode response error: %v", requestID(r), err)
	}
}

// writeGameError translates the games package's error taxonomy into an HTTP status: NotFound ->
// 404, Invalid -> 400, Conflict -> 409, anything else -> 500 (a persistence failure or other bug
// during an otherwise successful handler path).
func writeGameError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *games.NotFoundError
	var invalid *games.InvalidError
	var conflict *games.ConflictError
	switch {
	case errors.As(err, &notFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &invalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &conflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("[%s] internal error: %v", requestID(r), err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
