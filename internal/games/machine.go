package games

import (
	"context"
	"fmt"
	"sync"
)

// state is one node of the game lifecycle. handle processes an action arriving while the game is
// in this state and returns the state to transition to (itself if none). onEnter runs once,
// immediately after the machine transitions into this state, and may itself request a single
// further transition (a "fast-forward") by returning a different StateName; the machine does not
// chase onEnter transitions beyond that one extra hop.
type state interface {
	name() StateName
	handle(ctx context.Context, m *Machine, game *Game, action *Action) (next StateName, err error)
	onEnter(ctx context.Context, m *Machine, game *Game) (next StateName, err error)
}

// Machine is the action-driven state machine described by the component design: it owns no
// storage of its own, delegating every read and write to its services' Store, and advances a
// Game through GameSetup -> TeamSelection -> RoundVoting -> QuestVoting -> EndGame.
type Machine struct {
	store   Store
	players *PlayerService
	rounds  *RoundService
	quests  *QuestService
	games   *GameService
	states  map[StateName]state

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewMachine wires a Machine and its five states to a shared set of service collaborators.
func NewMachine(store Store, events *EventService, players *PlayerService, rounds *RoundService, quests *QuestService, games *GameService) *Machine {
	m := &Machine{store: store, players: players, rounds: rounds, quests: quests, games: games}
	m.states = map[StateName]state{
		StateGameSetup:     &gameSetupState{},
		StateTeamSelection: &teamSelectionState{},
		StateRoundVoting:   &roundVotingState{},
		StateQuestVoting:   &questVotingState{},
		StateEndGame:       &endGameState{},
	}
	m.locks = make(map[string]*sync.Mutex)
	return m
}

// lockFor returns the single mutex used to serialize every Handle/JoinGame call for gameID, creating
// it on first use. Concurrent actions on different games never contend with each other; concurrent
// actions on the same game are processed one at a time (a sync.Mutex does not guarantee that
// waiters acquire it in arrival order), so two players racing to
// submit the decisive vote can never both read the same Game and both believe they went first.
func (m *Machine) lockFor(gameID string) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	l, ok := m.locks[gameID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[gameID] = l
	}
	return l
}

// JoinGame is the one action type whose synchronous result the transport layer must see beyond
// the resulting game state: the join-game adapter has to hand the joining client its newly
// allocated player id and plaintext secret exactly once, and never again. Routing it through
// PlayerService directly (rather than through Handle's generic state-tag dispatch) is equivalent
// to what gameSetupState.handle does for ActionJoinGame — JoinGame never changes the game's
// state — while letting the caller see the values Handle's (*Game, error) return shape has no
// room for.
func (m *Machine) JoinGame(ctx context.Context, action *Action) (player *Player, secret string, err error) {
	lock := m.lockFor(action.GameID)
	lock.Lock()
	defer lock.Unlock()
	return m.players.HandleJoinGame(ctx, action)
}

// Handle is the machine's single entry point. It loads the game, validates the action is legal in
// the game's current state, dispatches to that state's handler, and — if the handler returned a
// different state — performs the transition: persist the new state, then run the new state's
// onEnter hook. onEnter may itself request one further transition; the machine performs that one
// extra hop and stops, it never loops past a single fast-forward.
func (m *Machine) Handle(ctx context.Context, action *Action) (*Game, error) {
	lock := m.lockFor(action.GameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := m.store.GetGame(ctx, action.GameID)
	if err != nil {
		return nil, err
	}

	current, ok := m.states[game.State]
	if !ok {
		return nil, fmt.Errorf("game %s is in unknown state %q", game.ID, game.State)
	}

	next, err := current.handle(ctx, m, game, action)
	if err != nil {
		return nil, err
	}

	if err := m.transition(ctx, game, next); err != nil {
		return nil, err
	}
	return game, nil
}

// transition moves game from its current state to next, running onEnter and honoring exactly one
// fast-forward transition that onEnter itself requests.
func (m *Machine) transition(ctx context.Context, game *Game, next StateName) error {
	if next == game.State {
		return nil
	}
	game.State = next
	if err := m.store.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("persist state transition to %s: %w", next, err)
	}

	nextState, ok := m.states[next]
	if !ok {
		return fmt.Errorf("game %s entered unknown state %q", game.ID, next)
	}
	fastForward, err := nextState.onEnter(ctx, m, game)
	if err != nil {
		return err
	}
	if fastForward == "" || fastForward == next {
		return nil
	}
	game.State = fastForward
	return m.store.UpdateGame(ctx, game)
}
