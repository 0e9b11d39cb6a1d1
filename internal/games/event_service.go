package games

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventService constructs domain events with a frozen payload shape per type, persists them, and
// hands them to the Messenger. Every exported method here is the single place recipients are
// decided — never at the transport boundary.
type EventService struct {
	store     Store
	messenger Messenger
}

// NewEventService wires an EventService to its Record Store and Messenger collaborators.
func NewEventService(store Store, messenger Messenger) *EventService {
	return &EventService{store: store, messenger: messenger}
}

// emit persists the event and dispatches it: broadcast when recipients is empty, notify-per-
// recipient otherwise. A persistence failure is Fatal and aborts the whole action; a dispatch
// failure is the Messenger's concern and is not surfaced here.
func (s *EventService) emit(ctx context.Context, gameID string, typ EventType, recipients []string, payload map[string]interface{}) error {
	ev := &Event{
		ID:         uuid.NewString(),
		GameID:     gameID,
		Type:       typ,
		Recipients: recipients,
		Payload:    payload,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.store.PutEvent(ctx, ev); err != nil {
		return fmt.Errorf("persist %s event: %w", typ, err)
	}
	if ev.IsPublic() {
		_ = s.messenger.Broadcast(ctx, ev)
		return nil
	}
	for _, playerID := range recipients {
		_ = s.messenger.Notify(ctx, playerID, ev)
	}
	return nil
}

// EmitPlayerJoined is public.
func (s *EventService) EmitPlayerJoined(ctx context.Context, gameID, playerID, name string) error {
	return s.emit(ctx, gameID, EventPlayerJoined, nil, map[string]interface{}{
		"player_id": playerID,
		"name":      name,
	})
}

// EmitGameStarted sends one targeted event per player, each carrying that player's own role and
// the ids of the players known to them.
func (s *EventService) EmitGameStarted(ctx context.Context, gameID string, players []*Player) error {
	for _, p := range players {
		if err := s.emit(ctx, gameID, EventGameStarted, []string{p.ID}, map[string]interface{}{
			"player_id":        p.ID,
			"role":             p.Role,
			"known_player_ids": p.KnownPlayerIDs,
		}); err != nil {
			return err
		}
	}
	return nil
}

// EmitQuestStarted is public.
func (s *EventService) EmitQuestStarted(ctx context.Context, gameID string, questNumber int) error {
	return s.emit(ctx, gameID, EventQuestStarted, nil, map[string]interface{}{
		"quest_number": questNumber,
	})
}

// EmitRoundStarted is public.
func (s *EventService) EmitRoundStarted(ctx context.Context, gameID string, questNumber, roundNumber int, leaderID string) error {
	return s.emit(ctx, gameID, EventRoundStarted, nil, map[string]interface{}{
		"quest_number": questNumber,
		"round_number": roundNumber,
		"leader_id":    leaderID,
	})
}

// EmitTeamSelectionRequested is public; teamSize is read by the caller from config.quest_team_size.
func (s *EventService) EmitTeamSelectionRequested(ctx context.Context, gameID string, questNumber, roundNumber, teamSize int) error {
	return s.emit(ctx, gameID, EventTeamSelectionRequested, nil, map[string]interface{}{
		"quest_number": questNumber,
		"round_number": roundNumber,
		"team_size":    teamSize,
	})
}

// EmitTeamProposalSubmitted is public.
func (s *EventService) EmitTeamProposalSubmitted(ctx context.Context, gameID string, questNumber, roundNumber int, teamMemberIDs []string) error {
	return s.emit(ctx, gameID, EventTeamProposalSubmitted, nil, map[string]interface{}{
		"quest_number":    questNumber,
		"round_number":    roundNumber,
		"team_member_ids": teamMemberIDs,
	})
}

// EmitRoundVoteCast is public.
func (s *EventService) EmitRoundVoteCast(ctx context.Context, gameID string, questNumber, roundNumber int, playerID string, result VoteResult) error {
	return s.emit(ctx, gameID, EventRoundVoteCast, nil, map[string]interface{}{
		"quest_number": questNumber,
		"round_number": roundNumber,
		"player_id":    playerID,
		"result":       result,
	})
}

// EmitRoundCompleted is public.
func (s *EventService) EmitRoundCompleted(ctx context.Context, gameID string, questNumber, roundNumber int, result VoteResult) error {
	return s.emit(ctx, gameID, EventRoundCompleted, nil, map[string]interface{}{
		"quest_number": questNumber,
		"round_number": roundNumber,
		"result":       result,
	})
}

// EmitQuestVoteStarted is public.
func (s *EventService) EmitQuestVoteStarted(ctx context.Context, gameID string, questNumber int, teamMemberIDs []string) error {
	return s.emit(ctx, gameID, EventQuestVoteStarted, nil, map[string]interface{}{
		"quest_number":    questNumber,
		"team_member_ids": teamMemberIDs,
	})
}

// EmitQuestVoteRequested is targeted to the quest's team members.
func (s *EventService) EmitQuestVoteRequested(ctx context.Context, gameID string, questNumber int, teamMemberIDs []string) error {
	return s.emit(ctx, gameID, EventQuestVoteRequested, teamMemberIDs, map[string]interface{}{
		"quest_number": questNumber,
	})
}

// EmitQuestVoteCast is public.
func (s *EventService) EmitQuestVoteCast(ctx context.Context, gameID string, questNumber int, playerID string, result VoteResult) error {
	return s.emit(ctx, gameID, EventQuestVoteCast, nil, map[string]interface{}{
		"quest_number": questNumber,
		"player_id":    playerID,
		"result":       result,
	})
}

// EmitQuestCompleted is public.
func (s *EventService) EmitQuestCompleted(ctx context.Context, gameID string, questNumber int, result VoteResult) error {
	return s.emit(ctx, gameID, EventQuestCompleted, nil, map[string]interface{}{
		"quest_number": questNumber,
		"result":       result,
	})
}

// EmitAssassinationStarted is public.
func (s *EventService) EmitAssassinationStarted(ctx context.Context, gameID string) error {
	return s.emit(ctx, gameID, EventAssassinationStarted, nil, map[string]interface{}{})
}

// EmitAssassinationTargetRequested is targeted to the assassin alone.
func (s *EventService) EmitAssassinationTargetRequested(ctx context.Context, gameID, assassinID string) error {
	return s.emit(ctx, gameID, EventAssassinationTargetRequested, []string{assassinID}, map[string]interface{}{
		"assassin_id": assassinID,
	})
}

// EmitAssassinationSucceeded is public.
func (s *EventService) EmitAssassinationSucceeded(ctx context.Context, gameID, targetID string) error {
	return s.emit(ctx, gameID, EventAssassinationSucceeded, nil, map[string]interface{}{
		"target_id": targetID,
	})
}

// EmitAssassinationFailed is public.
func (s *EventService) EmitAssassinationFailed(ctx context.Context, gameID, targetID string) error {
	return s.emit(ctx, gameID, EventAssassinationFailed, nil, map[string]interface{}{
		"target_id": targetID,
	})
}

// EmitGameEnded is public and carries the full role map.
func (s *EventService) EmitGameEnded(ctx context.Context, gameID string, winner Winner, roles map[string]Role) error {
	return s.emit(ctx, gameID, EventGameEnded, nil, map[string]interface{}{
		"winner": winner,
		"roles":  roles,
	})
}
