package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kingarthur-games/avalon-core/internal/games"
)

// PutQuest inserts a new quest row.
func (s *Store) PutQuest(ctx context.Context, quest *games.Quest) error {
	const q = `
		INSERT INTO quests (game_id, quest_number, team_member_ids, result)
		VALUES ($1, $2, $3, $4)`
	_, err := s.pool.Exec(ctx, q, mustUUID(quest.GameID), quest.QuestNumber,
		marshalJSON(quest.TeamMemberIDs), stringToText(string(quest.Result)))
	if err != nil {
		return fmt.Errorf("insert quest %s/%d: %w", quest.GameID, quest.QuestNumber, err)
	}
	return nil
}

// UpdateQuest persists a quest's team and result.
func (s *Store) UpdateQuest(ctx context.Context, quest *games.Quest) error {
	const q = `
		UPDATE quests SET team_member_ids = $3, result = $4
		WHERE game_id = $1 AND quest_number = $2`
	ct, err := s.pool.Exec(ctx, q, mustUUID(quest.GameID), quest.QuestNumber,
		marshalJSON(quest.TeamMemberIDs), stringToText(string(quest.Result)))
	if err != nil {
		return fmt.Errorf("update quest %s/%d: %w", quest.GameID, quest.QuestNumber, err)
	}
	if ct.RowsAffected() == 0 {
		return games.NewNotFoundError("quest", fmt.Sprintf("%s/%d", quest.GameID, quest.QuestNumber))
	}
	return nil
}

// GetQuest loads a single quest by game and quest number.
func (s *Store) GetQuest(ctx context.Context, gameID string, questNumber int) (*games.Quest, error) {
	gid, err := stringToUUID(gameID)
	if err != nil {
		return nil, games.NewInvalidError("invalid game id %q", gameID)
	}
	const q = `
		SELECT game_id, quest_number, team_member_ids, result
		FROM quests WHERE game_id = $1 AND quest_number = $2`
	quest, err := scanQuest(s.pool.QueryRow(ctx, q, gid, questNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, games.NewNotFoundError("quest", fmt.Sprintf("%s/%d", gameID, questNumber))
		}
		return nil, fmt.Errorf("load quest %s/%d: %w", gameID, questNumber, err)
	}
	return quest, nil
}

// GetQuests loads every quest started so far in a game.
func (s *Store) GetQuests(ctx context.Context, gameID string) ([]*games.Quest, error) {
	gid, err := stringToUUID(gameID)
	if err != nil {
		return nil, games.NewInvalidError("invalid game id %q", gameID)
	}
	const q = `
		SELECT game_id, quest_number, team_member_ids, result
		FROM quests WHERE game_id = $1 ORDER BY quest_number ASC`
	rows, err := s.pool.Query(ctx, q, gid)
	if err != nil {
		return nil, fmt.Errorf("load quests for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var out []*games.Quest
	for rows.Next() {
		quest, err := scanQuest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quest: %w", err)
		}
		out = append(out, quest)
	}
	return out, rows.Err()
}

func scanQuest(row rowScanner) (*games.Quest, error) {
	var (
		q                  games.Quest
		gameID             pgtype.UUID
		teamMemberIDsRaw   []byte
		result             pgtype.Text
	)
	if err := row.Scan(&gameID, &q.QuestNumber, &teamMemberIDsRaw, &result); err != nil {
		return nil, err
	}
	q.GameID = uuidToString(gameID)
	q.TeamMemberIDs = unmarshalStringSlice(teamMemberIDsRaw)
	q.Result = games.VoteResult(textToString(result))
	return &q, nil
}
