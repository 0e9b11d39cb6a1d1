package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kingarthur-games/avalon-core/internal/games"
)

// PutRound inserts a new round row.
func (s *Store) PutRound(ctx context.Context, round *games.Round) error {
	const q = `
		INSERT INTO rounds (game_id, quest_number, round_number, leader_id, team_member_ids, result)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.pool.Exec(ctx, q, mustUUID(round.GameID), round.QuestNumber, round.RoundNumber,
		mustUUID(round.LeaderID), marshalJSON(round.TeamMemberIDs), stringToText(string(round.Result)))
	if err != nil {
		return fmt.Errorf("insert round %s/%d/%d: %w", round.GameID, round.QuestNumber, round.RoundNumber, err)
	}
	return nil
}

// UpdateRound persists a round's team and result.
func (s *Store) UpdateRound(ctx context.Context, round *games.Round) error {
	const q = `
		UPDATE rounds SET team_member_ids = $4, result = $5
		WHERE game_id = $1 AND quest_number = $2 AND round_number = $3`
	ct, err := s.pool.Exec(ctx, q, mustUUID(round.GameID), round.QuestNumber, round.RoundNumber,
		marshalJSON(round.TeamMemberIDs), stringToText(string(round.Result)))
	if err != nil {
		return fmt.Errorf("update round %s/%d/%d: %w", round.GameID, round.QuestNumber, round.RoundNumber, err)
	}
	if ct.RowsAffected() == 0 {
		return games.NewNotFoundError("round", fmt.Sprintf("%s/%d/%d", round.GameID, round.QuestNumber, round.RoundNumber))
	}
	return nil
}

// GetRound loads a single round.
func (s *Store) GetRound(ctx context.Context, gameID string, questNumber, roundNumber int) (*games.Round, error) {
	gid, err := stringToUUID(gameID)
	if err != nil {
		return nil, games.NewInvalidError("invalid game id %q", gameID)
	}
	const q = `
		SELECT game_id, quest_number, round_number, leader_id, team_member_ids, result
		FROM rounds WHERE game_id = $1 AND quest_number = $2 AND round_number = $3`
	round, err := scanRound(s.pool.QueryRow(ctx, q, gid, questNumber, roundNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, games.NewNotFoundError("round", fmt.Sprintf("%s/%d/%d", gameID, questNumber, roundNumber))
		}
		return nil, fmt.Errorf("load round %s/%d/%d: %w", gameID, questNumber, roundNumber, err)
	}
	return round, nil
}

// GetRounds loads every round of a game, across all quests.
func (s *Store) GetRounds(ctx context.Context, gameID string) ([]*games.Round, error) {
	gid, err := stringToUUID(gameID)
	if err != nil {
		return nil, games.NewInvalidError("invalid game id %q", gameID)
	}
	const q = `
		SELECT game_id, quest_number, round_number, leader_id, team_member_ids, result
		FROM rounds WHERE game_id = $1 ORDER BY quest_number ASC, round_number ASC`
	rows, err := s.pool.Query(ctx, q, gid)
	if err != nil {
		return nil, fmt.Errorf("load rounds for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var out []*games.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		out = append(out, round)
	}
	return out, rows.Err()
}

func scanRound(row rowScanner) (*games.Round, error) {
	var (
		r                games.Round
		gameID, leaderID pgtype.UUID
		teamMemberIDsRaw []byte
		result           pgtype.Text
	)
	if err := row.Scan(&gameID, &r.QuestNumber, &r.RoundNumber, &leaderID, &teamMemberIDsRaw, &result); err != nil {
		return nil, err
	}
	r.GameID = uuidToString(gameID)
	r.LeaderID = uuidToString(leaderID)
	r.TeamMemberIDs = unmarshalStringSlice(teamMemberIDsRaw)
	r.Result = games.VoteResult(textToString(result))
	return &r, nil
}
