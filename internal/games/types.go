package games

import "time"

// GameStatus is the coarse lifecycle status of a Game.
type GameStatus string

const (
	StatusNotStarted GameStatus = "NotStarted"
	StatusInProgress GameStatus = "InProgress"
	StatusFinished   GameStatus = "Finished"
)

// StateName identifies which state of the state machine owns a Game.
type StateName string

const (
	StateGameSetup     StateName = "GameSetup"
	StateTeamSelection StateName = "TeamSelection"
	StateRoundVoting   StateName = "RoundVoting"
	StateQuestVoting   StateName = "QuestVoting"
	StateEndGame       StateName = "EndGame"
)

// VoteResult is the outcome of a round or quest vote, or of a round/quest itself.
type VoteResult string

const (
	ResultPass VoteResult = "Pass"
	ResultFail VoteResult = "Fail"
)

// Winner is the faction that won a finished game.
type Winner string

const (
	WinnerGood Winner = "Good"
	WinnerEvil Winner = "Evil"
)

// Role is a player's hidden role, assigned once at game start.
type Role string

const (
	RoleMerlin   Role = "Merlin"
	RolePercival Role = "Percival"
	RoleMordred  Role = "Mordred"
	RoleMorgana  Role = "Morgana"
	RoleAssassin Role = "Assassin"
	RoleOberon   Role = "Oberon"
	RoleVillager Role = "Villager"
)

// IsEvil reports whether the role plays for the evil faction.
func (r Role) IsEvil() bool {
	switch r {
	case RoleMordred, RoleMorgana, RoleAssassin, RoleOberon:
		return true
	default:
		return false
	}
}

// ActionType is the tag of an incoming Action.
type ActionType string

const (
	ActionJoinGame                  ActionType = "JoinGame"
	ActionStartGame                 ActionType = "StartGame"
	ActionSubmitTeamProposal        ActionType = "SubmitTeamProposal"
	ActionCastRoundVote             ActionType = "CastRoundVote"
	ActionCastQuestVote             ActionType = "CastQuestVote"
	ActionSubmitAssassinationTarget ActionType = "SubmitAssassinationTarget"
)

// EventType is the tag of a persisted domain event.
type EventType string

const (
	EventPlayerJoined              EventType = "PlayerJoined"
	EventGameStarted               EventType = "GameStarted"
	EventQuestStarted              EventType = "QuestStarted"
	EventRoundStarted              EventType = "RoundStarted"
	EventTeamSelectionRequested    EventType = "TeamSelectionRequested"
	EventTeamProposalSubmitted     EventType = "TeamProposalSubmitted"
	EventRoundVoteCast             EventType = "RoundVoteCast"
	EventRoundCompleted            EventType = "RoundCompleted"
	EventQuestVoteStarted          EventType = "QuestVoteStarted"
	EventQuestVoteRequested        EventType = "QuestVoteRequested"
	EventQuestVoteCast             EventType = "QuestVoteCast"
	EventQuestCompleted            EventType = "QuestCompleted"
	EventAssassinationStarted      EventType = "AssassinationStarted"
	EventAssassinationTargetRequested EventType = "AssassinationTargetRequested"
	EventAssassinationSucceeded    EventType = "AssassinationSucceeded"
	EventAssassinationFailed       EventType = "AssassinationFailed"
	EventGameEnded                 EventType = "GameEnded"
)

// Action is an exogenous player (or admin) request dispatched to the state machine.
type Action struct {
	ID       string
	GameID   string
	PlayerID string
	Type     ActionType
	Payload  map[string]interface{}
}

// GameConfig is decided once at StartGame and frozen for the life of the game.
type GameConfig struct {
	// QuestTeamSize maps quest_number (1..5) to the required team size.
	QuestTeamSize map[int]int
	// Roles is the frozen role list handed to PlayerService.AssignRoles.
	Roles []Role
	// KnownRoles maps a role to the set of roles whose holders it may see.
	KnownRoles map[Role][]Role
	// AssassinationAttempts is the number of tries the assassin gets at EndGame.
	AssassinationAttempts int
}

// Game is the root record owning the lifecycle of all other per-game records.
type Game struct {
	ID                    string
	Status                GameStatus
	State                 StateName
	Config                *GameConfig
	PlayerIDs             []string
	LeaderID              string
	CurrentQuestNumber    int
	CurrentRoundNumber    int
	AssassinationAttempts int
	Result                Winner
	Version               int
	CreatedAt             time.Time
	EndedAt               *time.Time

	// majorityWinner carries the quest-majority-derived winner from advanceAfterQuest to
	// endGameState.onEnter within a single Machine.Handle call. It is never persisted.
	majorityWinner Winner
}

// Player is a participant in exactly one game.
type Player struct {
	ID             string
	GameID         string
	Name           string
	SecretHash     string
	Role           Role
	KnownPlayerIDs []string
	CreatedAt      time.Time
}

// Quest is one of up to five sequential sub-games.
type Quest struct {
	GameID        string
	QuestNumber   int
	TeamMemberIDs []string
	Result        VoteResult
}

// Round is one attempt to assemble and approve a team for a Quest.
type Round struct {
	GameID        string
	QuestNumber   int
	RoundNumber   int
	LeaderID      string
	TeamMemberIDs []string
	Result        VoteResult
}

// RoundVote is one player's vote on a team proposal.
type RoundVote struct {
	GameID      string
	QuestNumber int
	RoundNumber int
	PlayerID    string
	Result      VoteResult
}

// QuestVote is one team member's vote on a quest's outcome.
type QuestVote struct {
	GameID      string
	QuestNumber int
	PlayerID    string
	Result      VoteResult
}

// Event is an append-only, partially-ordered record of something that happened in a game.
type Event struct {
	ID         string
	GameID     string
	Type       EventType
	Recipients []string
	Payload    map[string]interface{}
	Timestamp  time.Time
}

// IsPublic reports whether the event has no targeted recipients.
func (e Event) IsPublic() bool {
	return len(e.Recipients) == 0
}
