package games

import "context"

// gameSetupState is the game's initial state: players may join and, once enough have, the admin
// (or any player, per the action surface) may start the game.
type gameSetupState struct{}

func (s *gameSetupState) name() StateName { return StateGameSetup }

func (s *gameSetupState) handle(ctx context.Context, m *Machine, game *Game, action *Action) (StateName, error) {
	switch action.Type {
	case ActionJoinGame:
		if _, _, err := m.players.HandleJoinGame(ctx, action); err != nil {
			return game.State, err
		}
		return game.State, nil
	case ActionStartGame:
		if err := m.games.HandleStartGame(ctx, game, action); err != nil {
			return game.State, err
		}
		return StateTeamSelection, nil
	default:
		return game.State, NewInvalidError("action %s is not valid while the game has not started", action.Type)
	}
}

func (s *gameSetupState) onEnter(ctx context.Context, m *Machine, game *Game) (StateName, error) {
	return "", nil
}

// teamSelectionState covers the leader proposing a team for the current quest/round.
type teamSelectionState struct{}

func (s *teamSelectionState) name() StateName { return StateTeamSelection }

func (s *teamSelectionState) handle(ctx context.Context, m *Machine, game *Game, action *Action) (StateName, error) {
	if action.Type != ActionSubmitTeamProposal {
		return game.State, NewInvalidError("action %s is not valid during team selection", action.Type)
	}
	round, err := m.store.GetRound(ctx, game.ID, game.CurrentQuestNumber, game.CurrentRoundNumber)
	if err != nil {
		return game.State, err
	}
	if err := m.rounds.HandleSubmitTeamProposal(ctx, game, round, action); err != nil {
		return game.State, err
	}
	return StateRoundVoting, nil
}

func (s *teamSelectionState) onEnter(ctx context.Context, m *Machine, game *Game) (StateName, error) {
	if _, err := m.quests.HandleOnEnterTeamSelection(ctx, m.rounds, game, game.CurrentQuestNumber, game.CurrentRoundNumber); err != nil {
		return "", err
	}
	return "", nil
}

// roundVotingState covers every player voting to approve or reject the proposed team.
type roundVotingState struct{}

func (s *roundVotingState) name() StateName { return StateRoundVoting }

func (s *roundVotingState) handle(ctx context.Context, m *Machine, game *Game, action *Action) (StateName, error) {
	if action.Type != ActionCastRoundVote {
		return game.State, NewInvalidError("action %s is not valid during round voting", action.Type)
	}
	round, err := m.store.GetRound(ctx, game.ID, game.CurrentQuestNumber, game.CurrentRoundNumber)
	if err != nil {
		return game.State, err
	}
	tallied, result, err := m.rounds.HandleCastRoundVote(ctx, game, round, action)
	if err != nil {
		return game.State, err
	}
	if !tallied {
		return game.State, nil
	}
	if result == ResultPass {
		return StateQuestVoting, nil
	}

	// Rejected team: advance to the next round within the same quest, or — on the fifth
	// rejected round of a quest — the quest auto-fails and play moves on.
	if game.CurrentRoundNumber >= 5 {
		return m.handleFifthRoundFailure(ctx, game)
	}
	game.CurrentRoundNumber++
	if err := m.store.UpdateGame(ctx, game); err != nil {
		return game.State, err
	}
	return StateTeamSelection, nil
}

// handleFifthRoundFailure applies the rule that a quest whose fifth round fails to approve a team
// is itself recorded as a failed quest (the team never gets to vote), then checks for a majority.
func (m *Machine) handleFifthRoundFailure(ctx context.Context, game *Game) (StateName, error) {
	quest, err := m.store.GetQuest(ctx, game.ID, game.CurrentQuestNumber)
	if err != nil {
		return game.State, err
	}
	quest.Result = ResultFail
	if err := m.store.UpdateQuest(ctx, quest); err != nil {
		return game.State, err
	}
	if err := m.eventsForFifthRoundFailure(ctx, game, quest); err != nil {
		return game.State, err
	}
	return m.advanceAfterQuest(ctx, game)
}

// eventsForFifthRoundFailure surfaces the auto-failed quest the same way a voted quest result is
// surfaced, so clients need not special-case "failed because the fifth round never approved a team".
func (m *Machine) eventsForFifthRoundFailure(ctx context.Context, game *Game, quest *Quest) error {
	return m.quests.events.EmitQuestCompleted(ctx, game.ID, quest.QuestNumber, ResultFail)
}

func (s *roundVotingState) onEnter(ctx context.Context, m *Machine, game *Game) (StateName, error) {
	return "", nil
}

// questVotingState covers the chosen team voting on the quest's own outcome.
type questVotingState struct{}

func (s *questVotingState) name() StateName { return StateQuestVoting }

func (s *questVotingState) handle(ctx context.Context, m *Machine, game *Game, action *Action) (StateName, error) {
	if action.Type != ActionCastQuestVote {
		return game.State, NewInvalidError("action %s is not valid during quest voting", action.Type)
	}
	quest, err := m.store.GetQuest(ctx, game.ID, game.CurrentQuestNumber)
	if err != nil {
		return game.State, err
	}
	tallied, _, err := m.quests.HandleCastQuestVote(ctx, game, quest, action)
	if err != nil {
		return game.State, err
	}
	if !tallied {
		return game.State, nil
	}
	return m.advanceAfterQuest(ctx, game)
}

// advanceAfterQuest checks for a three-quest majority (in either direction) across completed
// quests and, if found, moves to EndGame; otherwise it starts the next quest's first round.
func (m *Machine) advanceAfterQuest(ctx context.Context, game *Game) (StateName, error) {
	quests, err := m.store.GetQuests(ctx, game.ID)
	if err != nil {
		return game.State, err
	}
	if HasMajority(quests, ResultPass) {
		game.majorityWinner = WinnerGood
		return StateEndGame, nil
	}
	if HasMajority(quests, ResultFail) {
		game.majorityWinner = WinnerEvil
		return StateEndGame, nil
	}

	game.CurrentQuestNumber++
	game.CurrentRoundNumber = 1
	if err := m.store.UpdateGame(ctx, game); err != nil {
		return game.State, err
	}
	return StateTeamSelection, nil
}

func (s *questVotingState) onEnter(ctx context.Context, m *Machine, game *Game) (StateName, error) {
	round, err := m.store.GetRound(ctx, game.ID, game.CurrentQuestNumber, game.CurrentRoundNumber)
	if err != nil {
		return "", err
	}
	quest, err := m.store.GetQuest(ctx, game.ID, game.CurrentQuestNumber)
	if err != nil {
		return "", err
	}
	if err := m.quests.OnEnterQuestVoting(ctx, game, quest, round); err != nil {
		return "", err
	}
	return "", nil
}

// endGameState covers the assassination phase (when enabled) and the final result.
type endGameState struct{}

func (s *endGameState) name() StateName { return StateEndGame }

func (s *endGameState) handle(ctx context.Context, m *Machine, game *Game, action *Action) (StateName, error) {
	if action.Type != ActionSubmitAssassinationTarget {
		return game.State, NewInvalidError("action %s is not valid during the assassination phase", action.Type)
	}
	players, err := m.store.GetPlayers(ctx, game.ID)
	if err != nil {
		return game.State, err
	}
	decided, err := m.games.HandleSubmitAssassinationTarget(ctx, game, players, action)
	if err != nil {
		return game.State, err
	}
	if !decided {
		if err := m.games.RequestAssassinationTarget(ctx, game, players); err != nil {
			return game.State, err
		}
	}
	return game.State, nil
}

func (s *endGameState) onEnter(ctx context.Context, m *Machine, game *Game) (StateName, error) {
	if err := m.games.OnEnterEndGame(ctx, game, game.majorityWinner); err != nil {
		return "", err
	}
	if game.AssassinationAttempts > 0 && game.Status != StatusFinished {
		players, err := m.store.GetPlayers(ctx, game.ID)
		if err != nil {
			return "", err
		}
		if err := m.games.RequestAssassinationTarget(ctx, game, players); err != nil {
			return "", err
		}
	}
	return "", nil
}
