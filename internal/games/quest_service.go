package games

import (
	"context"
	"fmt"
)

// QuestService manages quest lifecycle: starting a quest, gating entry into quest voting, tallying
// quest votes against each quest's fail tolerance, and the majority-of-three win check.
type QuestService struct {
	store  Store
	events *EventService
}

// NewQuestService wires a QuestService to its Store and EventService collaborators.
func NewQuestService(store Store, events *EventService) *QuestService {
	return &QuestService{store: store, events: events}
}

// HandleOnEnterTeamSelection is invoked whenever the state machine enters TeamSelection. When
// roundNumber is 1 it first persists a fresh Quest record and emits QuestStarted; it then always
// delegates to RoundService.CreateRound for the round-level bookkeeping. Kept here, rather than on
// RoundService, because "is this a brand new quest" is a quest-level decision.
func (s *QuestService) HandleOnEnterTeamSelection(ctx context.Context, rounds *RoundService, game *Game, questNumber, roundNumber int) (*Round, error) {
	if roundNumber == 1 {
		quest := &Quest{GameID: game.ID, QuestNumber: questNumber}
		if err := s.store.PutQuest(ctx, quest); err != nil {
			return nil, fmt.Errorf("persist quest: %w", err)
		}
		if err := s.events.EmitQuestStarted(ctx, game.ID, questNumber); err != nil {
			return nil, err
		}
	}
	return rounds.CreateRound(ctx, game, questNumber, roundNumber)
}

// OnEnterQuestVoting is invoked when the state machine enters QuestVoting off the back of an
// approved round. It persists the approved team onto the quest, then emits QuestVoteStarted
// (public) followed by QuestVoteRequested (targeted to the team).
func (s *QuestService) OnEnterQuestVoting(ctx context.Context, game *Game, quest *Quest, round *Round) error {
	quest.TeamMemberIDs = round.TeamMemberIDs
	if err := s.store.UpdateQuest(ctx, quest); err != nil {
		return fmt.Errorf("persist quest team: %w", err)
	}
	if err := s.events.EmitQuestVoteStarted(ctx, game.ID, quest.QuestNumber, quest.TeamMemberIDs); err != nil {
		return err
	}
	return s.events.EmitQuestVoteRequested(ctx, game.ID, quest.QuestNumber, quest.TeamMemberIDs)
}

// HandleCastQuestVote records one team member's vote on the quest's outcome, emits
// QuestVoteCast, and — once every team member has voted — tallies the result against this quest's
// fail tolerance (QuestFailTolerance), emits QuestCompleted, and returns the tallied result.
// tallied is false until the final vote of the quest arrives.
func (s *QuestService) HandleCastQuestVote(ctx context.Context, game *Game, quest *Quest, action *Action) (tallied bool, result VoteResult, err error) {
	if !containsString(quest.TeamMemberIDs, action.PlayerID) {
		return false, "", NewInvalidError("player %s is not on this quest's team", action.PlayerID)
	}
	approved, ok := action.Payload["is_approved"].(bool)
	if !ok {
		return false, "", NewInvalidError("is_approved is required")
	}
	voteResult := ResultFail
	if approved {
		voteResult = ResultPass
	}

	votes, err := s.store.GetQuestVotes(ctx, game.ID, quest.QuestNumber)
	if err != nil {
		return false, "", fmt.Errorf("load quest votes: %w", err)
	}
	for _, v := range votes {
		if v.PlayerID == action.PlayerID {
			return false, "", NewInvalidError("player %s has already voted on this quest", action.PlayerID)
		}
	}

	vote := &QuestVote{
		GameID:      game.ID,
		QuestNumber: quest.QuestNumber,
		PlayerID:    action.PlayerID,
		Result:      voteResult,
	}
	if err := s.store.PutQuestVote(ctx, vote); err != nil {
		return false, "", fmt.Errorf("persist quest vote: %w", err)
	}
	if err := s.events.EmitQuestVoteCast(ctx, game.ID, quest.QuestNumber, action.PlayerID, voteResult); err != nil {
		return false, "", err
	}

	votes = append(votes, vote)
	if len(votes) < len(quest.TeamMemberIDs) {
		return false, "", nil
	}

	fails := 0
	for _, v := range votes {
		if v.Result == ResultFail {
			fails++
		}
	}
	result = ResultPass
	if fails > QuestFailTolerance(quest.QuestNumber, len(game.PlayerIDs)) {
		result = ResultFail
	}

	quest.Result = result
	if err := s.store.UpdateQuest(ctx, quest); err != nil {
		return false, "", fmt.Errorf("persist quest result: %w", err)
	}
	if err := s.events.EmitQuestCompleted(ctx, game.ID, quest.QuestNumber, result); err != nil {
		return false, "", err
	}
	return true, result, nil
}

// HasMajority reports whether three or more quests share the given result among the completed
// quests, and therefore whether the game should transition to EndGame.
func HasMajority(quests []*Quest, result VoteResult) bool {
	count := 0
	for _, q := range quests {
		if q.Result == result {
			count++
		}
	}
	return count >= 3
}
