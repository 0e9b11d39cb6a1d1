package websocket

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/kingarthur-games/avalon-core/internal/games"
)

// ActionHandler turns a connection's decoded ClientAction into a games.Action and dispatches it
// to the state machine, reporting any resulting error back to the sender alone. It implements
// ActionSink so a Client can be built without knowing the state machine exists.
type ActionHandler struct {
	machine *games.Machine
}

// NewActionHandler wires an ActionHandler to the Machine that owns every game it will ever see.
func NewActionHandler(machine *games.Machine) *ActionHandler {
	return &ActionHandler{machine: machine}
}

var _ ActionSink = (*ActionHandler)(nil)

// HandleClientAction validates msg.Type is well-formed, fills in the action's id and game id (the
// connection's own id, from the URL, not anything the client may have sent), defaults PlayerID to
// the identity the connection authenticated as, and calls Machine.Handle. The games services
// return validation errors before writing anything; every error is reported back to the
// submitting client only.
func (h *ActionHandler) HandleClientAction(ctx context.Context, client *Client, msg *ClientAction) {
	if msg == nil || msg.Type == "" {
		sendErrorToClient(client, "action type is required")
		return
	}
	if len(msg.Type) > MaxActionTypeLength {
		sendErrorToClient(client, "invalid action type")
		return
	}

	playerID := msg.PlayerID
	if playerID == "" {
		playerID = client.PlayerID
	}

	action := &games.Action{
		ID:       msg.ID,
		GameID:   client.GameID,
		PlayerID: playerID,
		Type:     msg.Type,
		Payload:  msg.Payload,
	}
	if action.ID == "" {
		action.ID = uuid.NewString()
	}

	if _, err := h.machine.Handle(ctx, action); err != nil {
		log.Printf("action %s failed game_id=%s player_id=%s: %v", action.Type, action.GameID, action.PlayerID, err)
		sendErrorToClient(client, err.Error())
	}
}
