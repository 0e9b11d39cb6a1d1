// Package store implements games.Store on top of Postgres via pgx, in place of the
// sqlc-generated query layer the original project used: the repository this was built from
// shipped store code that imported a generated internal/db package which was never checked in, so
// these queries are written directly against pgx/v5 while keeping the same per-entity Store
// layout and helper-function conventions.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kingarthur-games/avalon-core/internal/games"
)

// Store is a Postgres-backed implementation of games.Store.
type Store struct {
	pool *pgxpool.Pool
}

// New wires a Store to a connection pool. The caller owns the pool's lifecycle.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ games.Store = (*Store)(nil)

// CreateGame inserts a brand new game row in GameSetup/NotStarted, owned by no players yet.
func (s *Store) CreateGame(ctx context.Context, gameID string) (*games.Game, error) {
	g := &games.Game{
		ID:     gameID,
		Status: games.StatusNotStarted,
		State:  games.StateGameSetup,
	}
	const q = `
		INSERT INTO games (id, status, state, player_ids, current_quest_number, current_round_number, assassination_attempts, version, created_at)
		VALUES ($1, $2, $3, '[]'::jsonb, 0, 0, 0, 1, now())
		RETURNING created_at, version`
	if err := s.pool.QueryRow(ctx, q, gameID, g.Status, g.State).Scan(&g.CreatedAt, &g.Version); err != nil {
		return nil, fmt.Errorf("insert game: %w", err)
	}
	return g, nil
}
