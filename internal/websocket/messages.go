package websocket

import "github.com/kingarthur-games/avalon-core/internal/games"

// OutgoingMessage is what the hub sends to clients; exactly one of Event or Envelope is set.
type OutgoingMessage struct {
	Event    *games.Event
	Envelope *ServerEnvelope
}

// ClientAction is the envelope a connected client sends to submit an Action. ID and PlayerID are
// optional: PlayerID defaults to the identity the websocket connection authenticated as, and a
// missing ID is filled in by the handler before it reaches the state machine.
type ClientAction struct {
	ID       string                 `json:"id,omitempty"`
	PlayerID string                 `json:"player_id,omitempty"`
	Type     games.ActionType       `json:"type"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
}

// ServerEnvelope carries something other than a domain Event to a client: currently only errors,
// since every successful action's effects are observed via the Event stream itself.
type ServerEnvelope struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ServerTypeError is the only ServerEnvelope.Type in use today.
const ServerTypeError = "error"

// MaxActionTypeLength bounds ClientAction.Type against malformed or abusive client payloads.
const MaxActionTypeLength = 64
