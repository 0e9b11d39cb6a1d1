package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kingarthur-games/avalon-core/internal/games"
)

// GetGame loads a game by id. An id that is not a valid UUID names no game and is reported as a
// NotFoundError, like an absent one.
func (s *Store) GetGame(ctx context.Context, gameID string) (*games.Game, error) {
	id, err := stringToUUID(gameID)
	if err != nil {
		return nil, games.NewNotFoundError("game", gameID)
	}

	const q = `
		SELECT id, status, state, config, player_ids, leader_id, current_quest_number,
		       current_round_number, assassination_attempts, result, version, created_at, ended_at
		FROM games WHERE id = $1`

	var (
		g                                    games.Game
		leaderID                             pgtype.UUID
		configRaw, playerIDsRaw              []byte
		resultText                           pgtype.Text
		createdAt, endedAt                   pgtype.Timestamptz
	)
	row := s.pool.QueryRow(ctx, q, id)
	if err := row.Scan(&g.ID, &g.Status, &g.State, &configRaw, &playerIDsRaw, &leaderID,
		&g.CurrentQuestNumber, &g.CurrentRoundNumber, &g.AssassinationAttempts, &resultText,
		&g.Version, &createdAt, &endedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, games.NewNotFoundError("game", gameID)
		}
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}

	g.LeaderID = uuidToString(leaderID)
	g.PlayerIDs = unmarshalStringSlice(playerIDsRaw)
	g.Result = games.Winner(textToString(resultText))
	g.CreatedAt = timestamptzToTime(createdAt)
	g.EndedAt = nullableTimestamptzToTimePtr(endedAt)
	g.Config = unmarshalGameConfig(configRaw)
	return &g, nil
}

// UpdateGame persists every mutable field of game, gated on game.Version matching the row's
// current version (the value GetGame populated it with). A mismatch means another request
// committed a change to this game since it was loaded, and is reported as a ConflictError rather
// than silently overwriting the intervening write. On success game.Version is advanced to the
// newly persisted version, so a caller making several UpdateGame calls against the same in-memory
// Game across one Machine.Handle invocation keeps presenting the correct expected version.
func (s *Store) UpdateGame(ctx context.Context, game *games.Game) error {
	leaderID, err := nullableUUID(game.LeaderID)
	if err != nil {
		return games.NewInvalidError("invalid leader id %q", game.LeaderID)
	}

	const q = `
		UPDATE games SET
			status = $2, state = $3, config = $4, player_ids = $5, leader_id = $6,
			current_quest_number = $7, current_round_number = $8, assassination_attempts = $9,
			result = $10, version = version + 1, ended_at = $11
		WHERE id = $1 AND version = $12
		RETURNING version`

	result := stringToText(string(game.Result))
	var newVersion int
	err = s.pool.QueryRow(ctx, q,
		mustUUID(game.ID), game.Status, game.State, marshalJSON(game.Config),
		marshalJSON(game.PlayerIDs), leaderID, game.CurrentQuestNumber, game.CurrentRoundNumber,
		game.AssassinationAttempts, result, timePtrToTimestamptz(game.EndedAt), game.Version,
	).Scan(&newVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := s.GetGame(ctx, game.ID); getErr != nil {
				return getErr
			}
			return games.NewConflictError("game %s was concurrently modified", game.ID)
		}
		return fmt.Errorf("update game %s: %w", game.ID, err)
	}
	game.Version = newVersion
	return nil
}

// mustUUID parses a string known to already be a valid id (generated by this process, not user
// input); a parse failure here is a programmer error, not a request-time condition.
func mustUUID(s string) pgtype.UUID {
	u, err := stringToUUID(s)
	if err != nil {
		panic(fmt.Sprintf("store: invalid id %q: %v", s, err))
	}
	return u
}

func nullableUUID(s string) (pgtype.UUID, error) {
	if s == "" {
		return pgtype.UUID{}, nil
	}
	return stringToUUID(s)
}

func unmarshalGameConfig(raw []byte) *games.GameConfig {
	if len(raw) == 0 {
		return nil
	}
	var cfg games.GameConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil
	}
	return &cfg
}
