package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Connection records which websocket connection id last authenticated as a given player, so a
// reconnect before the game has started can be distinguished from two tabs racing each other.
type Connection struct {
	GameID       string
	PlayerID     string
	ConnectionID string
}

// UpsertConnection records connectionID as the current connection for playerID, overwriting
// whatever connection id (if any) was previously on file. Reconnection is only meaningful before
// a game starts; callers are expected to reject it afterward.
func (s *Store) UpsertConnection(ctx context.Context, conn Connection) error {
	const q = `
		INSERT INTO connections (game_id, player_id, connection_id, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (game_id, player_id) DO UPDATE SET connection_id = $3, updated_at = now()`
	_, err := s.pool.Exec(ctx, q, mustUUID(conn.GameID), mustUUID(conn.PlayerID), conn.ConnectionID)
	if err != nil {
		return fmt.Errorf("upsert connection for player %s: %w", conn.PlayerID, err)
	}
	return nil
}

// GetConnection returns the connection id currently on file for playerID, or "" if none.
func (s *Store) GetConnection(ctx context.Context, gameID, playerID string) (string, error) {
	const q = `SELECT connection_id FROM connections WHERE game_id = $1 AND player_id = $2`
	var connectionID string
	err := s.pool.QueryRow(ctx, q, mustUUID(gameID), mustUUID(playerID)).Scan(&connectionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("load connection for player %s: %w", playerID, err)
	}
	return connectionID, nil
}

// GetConnectionIDs returns every connection id currently on file for the game, keyed by player id.
// A multi-instance deployment would use this to rebuild its in-memory hub after a restart.
func (s *Store) GetConnectionIDs(ctx context.Context, gameID string) (map[string]string, error) {
	const q = `SELECT player_id, connection_id FROM connections WHERE game_id = $1`
	rows, err := s.pool.Query(ctx, q, mustUUID(gameID))
	if err != nil {
		return nil, fmt.Errorf("load connections for game %s: %w", gameID, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var playerID pgtype.UUID
		var connectionID string
		if err := rows.Scan(&playerID, &connectionID); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		out[uuidToString(playerID)] = connectionID
	}
	return out, rows.Err()
}
