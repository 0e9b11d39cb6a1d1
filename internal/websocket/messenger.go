package websocket

import (
	"context"

	"github.com/kingarthur-games/avalon-core/internal/games"
)

// Messenger adapts a Hub to the games.Messenger contract consumed by EventService. Per-connection
// delivery failures are the Hub's concern (logged and dropped in its dispatch loop); neither
// method here ever returns a non-nil error, matching the Transport error class in the component
// design, which never fails the action that produced the event.
type Messenger struct {
	hub *Hub
}

// NewMessenger wires a Messenger to its Hub.
func NewMessenger(hub *Hub) *Messenger {
	return &Messenger{hub: hub}
}

var _ games.Messenger = (*Messenger)(nil)

// Broadcast delivers event to every connection of its game, in parallel, waiting for the Hub's
// dispatch loop to have attempted delivery to all of them before returning.
func (m *Messenger) Broadcast(ctx context.Context, event *games.Event) error {
	m.hub.Broadcast(event.GameID, event)
	return nil
}

// Notify delivers event to playerID's connection alone, if one is registered.
func (m *Messenger) Notify(ctx context.Context, playerID string, event *games.Event) error {
	m.hub.Notify(event.GameID, playerID, event)
	return nil
}
