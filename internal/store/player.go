package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kingarthur-games/avalon-core/internal/games"
)

// PutPlayer inserts a new player row.
func (s *Store) PutPlayer(ctx context.Context, player *games.Player) error {
	const q = `
		INSERT INTO players (id, game_id, name, secret_hash, role, known_player_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING created_at`
	role := stringToText(string(player.Role))
	err := s.pool.QueryRow(ctx, q,
		mustUUID(player.ID), mustUUID(player.GameID), player.Name, player.SecretHash, role,
		marshalJSON(player.KnownPlayerIDs),
	).Scan(&player.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert player %s: %w", player.ID, err)
	}
	return nil
}

// UpdatePlayer persists a player's mutable fields (role, known_player_ids).
func (s *Store) UpdatePlayer(ctx context.Context, player *games.Player) error {
	const q = `
		UPDATE players SET role = $2, known_player_ids = $3
		WHERE id = $1`
	role := stringToText(string(player.Role))
	ct, err := s.pool.Exec(ctx, q, mustUUID(player.ID), role, marshalJSON(player.KnownPlayerIDs))
	if err != nil {
		return fmt.Errorf("update player %s: %w", player.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return games.NewNotFoundError("player", player.ID)
	}
	return nil
}

// GetPlayer loads a single player by id, scoped to its game.
func (s *Store) GetPlayer(ctx context.Context, gameID, playerID string) (*games.Player, error) {
	gid, err := stringToUUID(gameID)
	if err != nil {
		return nil, games.NewInvalidError("invalid game id %q", gameID)
	}
	pid, err := stringToUUID(playerID)
	if err != nil {
		return nil, games.NewInvalidError("invalid player id %q", playerID)
	}

	const q = `
		SELECT id, game_id, name, secret_hash, role, known_player_ids, created_at
		FROM players WHERE game_id = $1 AND id = $2`
	p, err := scanPlayer(s.pool.QueryRow(ctx, q, gid, pid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, games.NewNotFoundError("player", playerID)
		}
		return nil, fmt.Errorf("load player %s: %w", playerID, err)
	}
	return p, nil
}

// GetPlayers loads every player in a game, in join order.
func (s *Store) GetPlayers(ctx context.Context, gameID string) ([]*games.Player, error) {
	gid, err := stringToUUID(gameID)
	if err != nil {
		return nil, games.NewInvalidError("invalid game id %q", gameID)
	}

	const q = `
		SELECT id, game_id, name, secret_hash, role, known_player_ids, created_at
		FROM players WHERE game_id = $1 ORDER BY created_at ASC`
	rows, err := s.pool.Query(ctx, q, gid)
	if err != nil {
		return nil, fmt.Errorf("load players for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var out []*games.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayer(row rowScanner) (*games.Player, error) {
	var (
		p                      games.Player
		gameID                 pgtype.UUID
		id                     pgtype.UUID
		role                   pgtype.Text
		knownPlayerIDsRaw      []byte
	)
	if err := row.Scan(&id, &gameID, &p.Name, &p.SecretHash, &role, &knownPlayerIDsRaw, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.ID = uuidToString(id)
	p.GameID = uuidToString(gameID)
	p.Role = games.Role(textToString(role))
	p.KnownPlayerIDs = unmarshalStringSlice(knownPlayerIDsRaw)
	return &p, nil
}
