package games

import (
	"context"
	"fmt"
)

// fakeStore is an in-memory Store used across this package's tests. It mirrors the shape of the
// Postgres-backed store without any of the persistence machinery.
type fakeStore struct {
	games       map[string]*Game
	players     map[string]map[string]*Player
	playerOrder map[string][]string
	quests      map[string]map[int]*Quest
	rounds      map[string]map[[2]int]*Round
	roundVotes  map[string]map[[3]int]*RoundVote
	questVotes  map[string]map[[2]int]*QuestVote
	events      []*Event
}

func newFakeStore(game *Game) *fakeStore {
	return &fakeStore{
		games:       map[string]*Game{game.ID: game},
		players:     map[string]map[string]*Player{game.ID: {}},
		playerOrder: map[string][]string{game.ID: {}},
		quests:      map[string]map[int]*Quest{game.ID: {}},
		rounds:      map[string]map[[2]int]*Round{game.ID: {}},
		roundVotes:  map[string]map[[3]int]*RoundVote{game.ID: {}},
		questVotes:  map[string]map[[2]int]*QuestVote{game.ID: {}},
	}
}

func (f *fakeStore) GetGame(ctx context.Context, gameID string) (*Game, error) {
	g, ok := f.games[gameID]
	if !ok {
		return nil, NewNotFoundError("game", gameID)
	}
	return g, nil
}

func (f *fakeStore) UpdateGame(ctx context.Context, game *Game) error {
	f.games[game.ID] = game
	return nil
}

func (f *fakeStore) PutPlayer(ctx context.Context, player *Player) error {
	if _, exists := f.players[player.GameID][player.ID]; !exists {
		f.playerOrder[player.GameID] = append(f.playerOrder[player.GameID], player.ID)
	}
	f.players[player.GameID][player.ID] = player
	return nil
}

func (f *fakeStore) UpdatePlayer(ctx context.Context, player *Player) error {
	f.players[player.GameID][player.ID] = player
	return nil
}

func (f *fakeStore) GetPlayer(ctx context.Context, gameID, playerID string) (*Player, error) {
	p, ok := f.players[gameID][playerID]
	if !ok {
		return nil, NewNotFoundError("player", playerID)
	}
	return p, nil
}

func (f *fakeStore) GetPlayers(ctx context.Context, gameID string) ([]*Player, error) {
	order := f.playerOrder[gameID]
	out := make([]*Player, 0, len(order))
	for _, id := range order {
		out = append(out, f.players[gameID][id])
	}
	return out, nil
}

func (f *fakeStore) PutQuest(ctx context.Context, quest *Quest) error {
	f.quests[quest.GameID][quest.QuestNumber] = quest
	return nil
}

func (f *fakeStore) UpdateQuest(ctx context.Context, quest *Quest) error {
	f.quests[quest.GameID][quest.QuestNumber] = quest
	return nil
}

func (f *fakeStore) GetQuest(ctx context.Context, gameID string, questNumber int) (*Quest, error) {
	q, ok := f.quests[gameID][questNumber]
	if !ok {
		return nil, NewNotFoundError("quest", fmt.Sprintf("%s/%d", gameID, questNumber))
	}
	return q, nil
}

func (f *fakeStore) GetQuests(ctx context.Context, gameID string) ([]*Quest, error) {
	out := make([]*Quest, 0, len(f.quests[gameID]))
	for _, q := range f.quests[gameID] {
		out = append(out, q)
	}
	return out, nil
}

func (f *fakeStore) PutRound(ctx context.Context, round *Round) error {
	key := [2]int{round.QuestNumber, round.RoundNumber}
	f.rounds[round.GameID][key] = round
	return nil
}

func (f *fakeStore) UpdateRound(ctx context.Context, round *Round) error {
	return f.PutRound(ctx, round)
}

func (f *fakeStore) GetRound(ctx context.Context, gameID string, questNumber, roundNumber int) (*Round, error) {
	r, ok := f.rounds[gameID][[2]int{questNumber, roundNumber}]
	if !ok {
		return nil, NewNotFoundError("round", fmt.Sprintf("%s/%d/%d", gameID, questNumber, roundNumber))
	}
	return r, nil
}

func (f *fakeStore) GetRounds(ctx context.Context, gameID string) ([]*Round, error) {
	out := make([]*Round, 0, len(f.rounds[gameID]))
	for _, r := range f.rounds[gameID] {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) PutRoundVote(ctx context.Context, vote *RoundVote) error {
	key := [3]int{vote.QuestNumber, vote.RoundNumber, hashPlayer(vote.PlayerID)}
	f.roundVotes[vote.GameID][key] = vote
	return nil
}

func (f *fakeStore) GetRoundVote(ctx context.Context, gameID string, questNumber, roundNumber int, playerID string) (*RoundVote, error) {
	v, ok := f.roundVotes[gameID][[3]int{questNumber, roundNumber, hashPlayer(playerID)}]
	if !ok {
		return nil, NewNotFoundError("round_vote", playerID)
	}
	return v, nil
}

func (f *fakeStore) GetRoundVotes(ctx context.Context, gameID string, questNumber, roundNumber int) ([]*RoundVote, error) {
	out := make([]*RoundVote, 0)
	for key, v := range f.roundVotes[gameID] {
		if key[0] == questNumber && key[1] == roundNumber {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStore) PutQuestVote(ctx context.Context, vote *QuestVote) error {
	key := [2]int{vote.QuestNumber, hashPlayer(vote.PlayerID)}
	f.questVotes[vote.GameID][key] = vote
	return nil
}

func (f *fakeStore) GetQuestVotes(ctx context.Context, gameID string, questNumber int) ([]*QuestVote, error) {
	out := make([]*QuestVote, 0)
	for key, v := range f.questVotes[gameID] {
		if key[0] == questNumber {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStore) PutEvent(ctx context.Context, event *Event) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeStore) GetEvents(ctx context.Context, gameID, playerID string) ([]*Event, error) {
	out := make([]*Event, 0)
	for _, e := range f.events {
		if e.GameID != gameID {
			continue
		}
		if e.IsPublic() || containsString(e.Recipients, playerID) {
			out = append(out, e)
		}
	}
	return out, nil
}

// hashPlayer folds a player id into an int so it can share a comparable array key with the
// int-typed quest/round numbers; collisions are immaterial to these tests' small id sets.
func hashPlayer(id string) int {
	h := 0
	for _, r := range id {
		h = h*31 + int(r)
	}
	return h
}

// fakeMessenger records every dispatch without simulating any real transport.
type fakeMessenger struct {
	broadcasts []*Event
	notifies   map[string][]*Event
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{notifies: map[string][]*Event{}}
}

func (m *fakeMessenger) Broadcast(ctx context.Context, event *Event) error {
	m.broadcasts = append(m.broadcasts, event)
	return nil
}

func (m *fakeMessenger) Notify(ctx context.Context, playerID string, event *Event) error {
	m.notifies[playerID] = append(m.notifies[playerID], event)
	return nil
}

// testHarness wires every service plus a Machine against a single fakeStore/fakeMessenger pair.
type testHarness struct {
	store     *fakeStore
	messenger *fakeMessenger
	events    *EventService
	players   *PlayerService
	rounds    *RoundService
	quests    *QuestService
	games     *GameService
	machine   *Machine
}

func newTestHarness(game *Game) *testHarness {
	store := newFakeStore(game)
	messenger := newFakeMessenger()
	events := NewEventService(store, messenger)
	players := NewPlayerService(store, events)
	rounds := NewRoundService(store, events)
	quests := NewQuestService(store, events)
	gamesSvc := NewGameService(store, events, players)
	machine := NewMachine(store, events, players, rounds, quests, gamesSvc)
	return &testHarness{
		store: store, messenger: messenger, events: events,
		players: players, rounds: rounds, quests: quests, games: gamesSvc, machine: machine,
	}
}

func newSetupGame(id string) *Game {
	return &Game{ID: id, Status: StatusNotStarted, State: StateGameSetup}
}

func joinPlayers(h *testHarness, gameID string, names ...string) []string {
	for _, name := range names {
		if _, err := h.machine.Handle(context.Background(), &Action{
			GameID: gameID, Type: ActionJoinGame, Payload: map[string]interface{}{"name": name},
		}); err != nil {
			panic(err)
		}
	}
	players, err := h.store.GetPlayers(context.Background(), gameID)
	if err != nil {
		panic(err)
	}
	ids := make([]string, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	return ids
}
