package games

import "context"

// Store is the Record Store contract consumed by the core: a keyed store offering atomic
// put/get/update over the entities owned by a game, queryable by prefix. Implementations may
// fail any operation with a *NotFoundError or *ConflictError.
type Store interface {
	GetGame(ctx context.Context, gameID string) (*Game, error)
	UpdateGame(ctx context.Context, game *Game) error

	PutPlayer(ctx context.Context, player *Player) error
	UpdatePlayer(ctx context.Context, player *Player) error
	GetPlayer(ctx context.Context, gameID, playerID string) (*Player, error)
	GetPlayers(ctx context.Context, gameID string) ([]*Player, error)

	PutQuest(ctx context.Context, quest *Quest) error
	UpdateQuest(ctx context.Context, quest *Quest) error
	GetQuest(ctx context.Context, gameID string, questNumber int) (*Quest, error)
	GetQuests(ctx context.Context, gameID string) ([]*Quest, error)

	PutRound(ctx context.Context, round *Round) error
	UpdateRound(ctx context.Context, round *Round) error
	GetRound(ctx context.Context, gameID string, questNumber, roundNumber int) (*Round, error)
	GetRounds(ctx context.Context, gameID string) ([]*Round, error)

	PutRoundVote(ctx context.Context, vote *RoundVote) error
	GetRoundVote(ctx context.Context, gameID string, questNumber, roundNumber int, playerID string) (*RoundVote, error)
	GetRoundVotes(ctx context.Context, gameID string, questNumber, roundNumber int) ([]*RoundVote, error)

	PutQuestVote(ctx context.Context, vote *QuestVote) error
	GetQuestVotes(ctx context.Context, gameID string, questNumber int) ([]*QuestVote, error)

	PutEvent(ctx context.Context, event *Event) error
	// GetEvents returns events visible to playerID: public events plus those naming playerID as a recipient.
	GetEvents(ctx context.Context, gameID, playerID string) ([]*Event, error)
}

// Messenger is the fan-out transport collaborator. Broadcast and Notify deliver an already-
// persisted event; per-connection delivery failures are the messenger's own concern (logged and
// dropped there, per the Transport error class) and must not surface as an error here unless the
// messenger itself is unreachable.
type Messenger interface {
	Broadcast(ctx context.Context, event *Event) error
	Notify(ctx context.Context, playerID string, event *Event) error
}
