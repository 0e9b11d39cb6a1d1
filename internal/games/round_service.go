package games

import (
	"context"
	"fmt"
)

// RoundService manages team proposals and round (approval) votes within a quest.
type RoundService struct {
	store  Store
	events *EventService
}

// NewRoundService wires a RoundService to its Store and EventService collaborators.
func NewRoundService(store Store, events *EventService) *RoundService {
	return &RoundService{store: store, events: events}
}

// CreateRound advances the leader one position (wrapping around game.PlayerIDs), persists a new
// Round record with an empty team, updates the game's leader_id, and emits RoundStarted followed
// by TeamSelectionRequested.
func (s *RoundService) CreateRound(ctx context.Context, game *Game, questNumber, roundNumber int) (*Round, error) {
	nextLeader, err := nextLeaderID(game.PlayerIDs, game.LeaderID)
	if err != nil {
		return nil, err
	}

	round := &Round{
		GameID:      game.ID,
		QuestNumber: questNumber,
		RoundNumber: roundNumber,
		LeaderID:    nextLeader,
	}
	if err := s.store.PutRound(ctx, round); err != nil {
		return nil, fmt.Errorf("persist round: %w", err)
	}

	game.LeaderID = nextLeader
	if err := s.store.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("persist leader rotation: %w", err)
	}

	if err := s.events.EmitRoundStarted(ctx, game.ID, questNumber, roundNumber, nextLeader); err != nil {
		return nil, err
	}
	teamSize := game.Config.QuestTeamSize[questNumber]
	if err := s.events.EmitTeamSelectionRequested(ctx, game.ID, questNumber, roundNumber, teamSize); err != nil {
		return nil, err
	}
	return round, nil
}

// nextLeaderID advances currentLeaderID one position within playerIDs, wrapping around. An empty
// currentLeaderID (the game's very first round) is treated as if the last player were the
// current leader, so the first round's leader is player_ids[0].
func nextLeaderID(playerIDs []string, currentLeaderID string) (string, error) {
	if len(playerIDs) == 0 {
		return "", NewInvalidError("game has no players")
	}
	if currentLeaderID == "" {
		return playerIDs[0], nil
	}
	for i, id := range playerIDs {
		if id == currentLeaderID {
			return playerIDs[(i+1)%len(playerIDs)], nil
		}
	}
	return "", NewInvalidError("current leader %s is not a player in this game", currentLeaderID)
}

// HandleSubmitTeamProposal enforces that the action's player is the round's leader and that the
// team has the exact size required for this quest, persists the team onto the round, and emits
// TeamProposalSubmitted.
func (s *RoundService) HandleSubmitTeamProposal(ctx context.Context, game *Game, round *Round, action *Action) error {
	if action.PlayerID != round.LeaderID {
		return NewInvalidError("only the round leader may submit a team proposal")
	}
	raw, _ := action.Payload["team_member_ids"].([]interface{})
	teamMemberIDs := make([]string, 0, len(raw))
	for _, v := range raw {
		id, ok := v.(string)
		if !ok {
			return NewInvalidError("team_member_ids must be a list of player ids")
		}
		teamMemberIDs = append(teamMemberIDs, id)
	}

	wantSize := game.Config.QuestTeamSize[round.QuestNumber]
	if len(teamMemberIDs) != wantSize {
		return NewInvalidError("quest %d requires a team of %d players, got %d", round.QuestNumber, wantSize, len(teamMemberIDs))
	}
	seen := make(map[string]bool, len(teamMemberIDs))
	for _, id := range teamMemberIDs {
		if seen[id] {
			return NewInvalidError("team_member_ids must not contain duplicates")
		}
		seen[id] = true
		if !containsString(game.PlayerIDs, id) {
			return NewInvalidError("player %s is not in this game", id)
		}
	}

	round.TeamMemberIDs = teamMemberIDs
	if err := s.store.UpdateRound(ctx, round); err != nil {
		return fmt.Errorf("persist team proposal: %w", err)
	}
	return s.events.EmitTeamProposalSubmitted(ctx, game.ID, round.QuestNumber, round.RoundNumber, teamMemberIDs)
}

// HandleCastRoundVote records one player's vote on the current team proposal, emits
// RoundVoteCast, and — once every player has voted — tallies the result (majority Pass required
// for approval; a tie or more Fail than Pass is Fail), emits RoundCompleted, and returns the
// tallied result. tallied is false until the final vote of the round arrives.
func (s *RoundService) HandleCastRoundVote(ctx context.Context, game *Game, round *Round, action *Action) (tallied bool, result VoteResult, err error) {
	if round.TeamMemberIDs == nil {
		return false, "", NewInvalidError("no team has been proposed yet")
	}
	if !containsString(game.PlayerIDs, action.PlayerID) {
		return false, "", NewInvalidError("player %s is not in this game", action.PlayerID)
	}
	approved, ok := action.Payload["is_approved"].(bool)
	if !ok {
		return false, "", NewInvalidError("is_approved is required")
	}
	voteResult := ResultFail
	if approved {
		voteResult = ResultPass
	}

	if existing, err := s.store.GetRoundVote(ctx, game.ID, round.QuestNumber, round.RoundNumber, action.PlayerID); err == nil && existing != nil {
		return false, "", NewInvalidError("player %s has already voted this round", action.PlayerID)
	}

	vote := &RoundVote{
		GameID:      game.ID,
		QuestNumber: round.QuestNumber,
		RoundNumber: round.RoundNumber,
		PlayerID:    action.PlayerID,
		Result:      voteResult,
	}
	if err := s.store.PutRoundVote(ctx, vote); err != nil {
		return false, "", fmt.Errorf("persist round vote: %w", err)
	}
	if err := s.events.EmitRoundVoteCast(ctx, game.ID, round.QuestNumber, round.RoundNumber, action.PlayerID, voteResult); err != nil {
		return false, "", err
	}

	votes, err := s.store.GetRoundVotes(ctx, game.ID, round.QuestNumber, round.RoundNumber)
	if err != nil {
		return false, "", fmt.Errorf("load round votes: %w", err)
	}
	if len(votes) < len(game.PlayerIDs) {
		return false, "", nil
	}

	passes := 0
	for _, v := range votes {
		if v.Result == ResultPass {
			passes++
		}
	}
	result = ResultFail
	if passes*2 > len(game.PlayerIDs) {
		result = ResultPass
	}

	round.Result = result
	if err := s.store.UpdateRound(ctx, round); err != nil {
		return false, "", fmt.Errorf("persist round result: %w", err)
	}
	if err := s.events.EmitRoundCompleted(ctx, game.ID, round.QuestNumber, round.RoundNumber, result); err != nil {
		return false, "", err
	}
	return true, result, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
