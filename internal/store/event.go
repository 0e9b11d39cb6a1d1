package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kingarthur-games/avalon-core/internal/games"
)

// PutEvent appends a domain event. Events are immutable once written.
func (s *Store) PutEvent(ctx context.Context, event *games.Event) error {
	id := event.ID
	if id == "" {
		id = uuid.NewString()
		event.ID = id
	}
	// A public event is stored as an empty JSON array, not JSON null, so GetEvents matches it.
	recipients := event.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	const q = `
		INSERT INTO events (id, game_id, type, recipients, payload, "timestamp")
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.pool.Exec(ctx, q, mustUUID(id), mustUUID(event.GameID), string(event.Type),
		marshalJSON(recipients), marshalJSON(event.Payload), timeToTimestamptz(event.Timestamp))
	if err != nil {
		return fmt.Errorf("insert event %s: %w", event.ID, err)
	}
	return nil
}

// GetEvents returns every event visible to playerID in a game, in persisted order: events with no
// recipients (public) plus events whose recipients JSON array contains playerID.
func (s *Store) GetEvents(ctx context.Context, gameID, playerID string) ([]*games.Event, error) {
	gid, err := stringToUUID(gameID)
	if err != nil {
		return nil, games.NewInvalidError("invalid game id %q", gameID)
	}

	const q = `
		SELECT id, game_id, type, recipients, payload, "timestamp"
		FROM events
		WHERE game_id = $1 AND (recipients = '[]'::jsonb OR recipients @> to_jsonb($2::text))
		ORDER BY "timestamp" ASC`
	rows, err := s.pool.Query(ctx, q, gid, playerID)
	if err != nil {
		return nil, fmt.Errorf("load events for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var out []*games.Event
	for rows.Next() {
		var (
			e                         games.Event
			id, gameIDCol             pgtype.UUID
			typ                       string
			recipientsRaw, payloadRaw []byte
			ts                        pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &gameIDCol, &typ, &recipientsRaw, &payloadRaw, &ts); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.ID = uuidToString(id)
		e.GameID = uuidToString(gameIDCol)
		e.Type = games.EventType(typ)
		e.Recipients = unmarshalStringSlice(recipientsRaw)
		e.Payload = unmarshalPayload(payloadRaw)
		e.Timestamp = timestamptzToTime(ts)
		out = append(out, &e)
	}
	return out, rows.Err()
}
