package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kingarthur-games/avalon-core/internal/games"
)

// PutRoundVote inserts one player's round (team approval) vote.
func (s *Store) PutRoundVote(ctx context.Context, vote *games.RoundVote) error {
	const q = `
		INSERT INTO round_votes (game_id, quest_number, round_number, player_id, result)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := s.pool.Exec(ctx, q, mustUUID(vote.GameID), vote.QuestNumber, vote.RoundNumber,
		mustUUID(vote.PlayerID), string(vote.Result))
	if err != nil {
		return fmt.Errorf("insert round vote %s/%d/%d/%s: %w", vote.GameID, vote.QuestNumber, vote.RoundNumber, vote.PlayerID, err)
	}
	return nil
}

// GetRoundVote loads one player's vote for a round, or a *games.NotFoundError if absent.
func (s *Store) GetRoundVote(ctx context.Context, gameID string, questNumber, roundNumber int, playerID string) (*games.RoundVote, error) {
	gid, err := stringToUUID(gameID)
	if err != nil {
		return nil, games.NewInvalidError("invalid game id %q", gameID)
	}
	pid, err := stringToUUID(playerID)
	if err != nil {
		return nil, games.NewInvalidError("invalid player id %q", playerID)
	}
	const q = `
		SELECT game_id, quest_number, round_number, player_id, result
		FROM round_votes WHERE game_id = $1 AND quest_number = $2 AND round_number = $3 AND player_id = $4`
	vote, err := scanRoundVote(s.pool.QueryRow(ctx, q, gid, questNumber, roundNumber, pid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, games.NewNotFoundError("round_vote", playerID)
		}
		return nil, fmt.Errorf("load round vote: %w", err)
	}
	return vote, nil
}

// GetRoundVotes loads every vote cast so far in a round.
func (s *Store) GetRoundVotes(ctx context.Context, gameID string, questNumber, roundNumber int) ([]*games.RoundVote, error) {
	gid, err := stringToUUID(gameID)
	if err != nil {
		return nil, games.NewInvalidError("invalid game id %q", gameID)
	}
	const q = `
		SELECT game_id, quest_number, round_number, player_id, result
		FROM round_votes WHERE game_id = $1 AND quest_number = $2 AND round_number = $3`
	rows, err := s.pool.Query(ctx, q, gid, questNumber, roundNumber)
	if err != nil {
		return nil, fmt.Errorf("load round votes: %w", err)
	}
	defer rows.Close()

	var out []*games.RoundVote
	for rows.Next() {
		v, err := scanRoundVote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan round vote: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanRoundVote(row rowScanner) (*games.RoundVote, error) {
	var (
		v                games.RoundVote
		gameID, playerID pgtype.UUID
		result           string
	)
	if err := row.Scan(&gameID, &v.QuestNumber, &v.RoundNumber, &playerID, &result); err != nil {
		return nil, err
	}
	v.GameID = uuidToString(gameID)
	v.PlayerID = uuidToString(playerID)
	v.Result = games.VoteResult(result)
	return &v, nil
}

// PutQuestVote inserts one team member's quest-outcome vote.
func (s *Store) PutQuestVote(ctx context.Context, vote *games.QuestVote) error {
	const q = `
		INSERT INTO quest_votes (game_id, quest_number, player_id, result)
		VALUES ($1, $2, $3, $4)`
	_, err := s.pool.Exec(ctx, q, mustUUID(vote.GameID), vote.QuestNumber, mustUUID(vote.PlayerID), string(vote.Result))
	if err != nil {
		return fmt.Errorf("insert quest vote %s/%d/%s: %w", vote.GameID, vote.QuestNumber, vote.PlayerID, err)
	}
	return nil
}

// GetQuestVotes loads every vote cast so far on a quest.
func (s *Store) GetQuestVotes(ctx context.Context, gameID string, questNumber int) ([]*games.QuestVote, error) {
	gid, err := stringToUUID(gameID)
	if err != nil {
		return nil, games.NewInvalidError("invalid game id %q", gameID)
	}
	const q = `
		SELECT game_id, quest_number, player_id, result
		FROM quest_votes WHERE game_id = $1 AND quest_number = $2`
	rows, err := s.pool.Query(ctx, q, gid, questNumber)
	if err != nil {
		return nil, fmt.Errorf("load quest votes: %w", err)
	}
	defer rows.Close()

	var out []*games.QuestVote
	for rows.Next() {
		var (
			v              games.QuestVote
			gid, playerID  pgtype.UUID
			result         string
		)
		if err := rows.Scan(&gid, &v.QuestNumber, &playerID, &result); err != nil {
			return nil, fmt.Errorf("scan quest vote: %w", err)
		}
		v.GameID = uuidToString(gid)
		v.PlayerID = uuidToString(playerID)
		v.Result = games.VoteResult(result)
		out = append(out, &v)
	}
	return out, rows.Err()
}
