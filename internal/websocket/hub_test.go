package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/kingarthur-games/avalon-core/internal/games"
)

func newTestClient(hub *Hub, gameID, playerID string) *Client {
	return &Client{
		hub:      hub,
		send:     make(chan *OutgoingMessage, 256),
		GameID:   gameID,
		PlayerID: playerID,
		ctx:      context.Background(),
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, "game-1", "player-1")
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	if count := hub.ConnectionCount("game-1"); count != 1 {
		t.Errorf("expected 1 connection, got %d", count)
	}

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	if count := hub.ConnectionCount("game-1"); count != 0 {
		t.Errorf("expected 0 connections after unregister, got %d", count)
	}
}

func TestHub_MultipleClientsSameGame(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = newTestClient(hub, "game-1", "player-"+string(rune('1'+i)))
		hub.register <- clients[i]
	}
	time.Sleep(10 * time.Millisecond)

	if count := hub.ConnectionCount("game-1"); count != 3 {
		t.Errorf("expected 3 connections, got %d", count)
	}

	hub.unregister <- clients[0]
	time.Sleep(10 * time.Millisecond)

	if count := hub.ConnectionCount("game-1"); count != 2 {
		t.Errorf("expected 2 connections after unregister, got %d", count)
	}
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = newTestClient(hub, "game-1", "player-"+string(rune('1'+i)))
		hub.register <- clients[i]
	}
	time.Sleep(10 * time.Millisecond)

	event := &games.Event{ID: "event-1", GameID: "game-1", Type: games.EventRoundStarted}
	hub.Broadcast("game-1", event)

	for i, client := range clients {
		select {
		case out := <-client.send:
			if out.Event == nil || out.Event.ID != event.ID {
				t.Errorf("client %d: expected event %s, got %+v", i, event.ID, out.Event)
			}
		default:
			t.Errorf("client %d: did not receive broadcast event", i)
		}
	}
}

func TestHub_BroadcastIsolatedPerGame(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	game1Client := newTestClient(hub, "game-1", "player-1")
	game2Client := newTestClient(hub, "game-2", "player-1")
	hub.register <- game1Client
	hub.register <- game2Client
	time.Sleep(10 * time.Millisecond)

	event := &games.Event{ID: "event-1", GameID: "game-1", Type: games.EventRoundStarted}
	hub.Broadcast("game-1", event)

	select {
	case out := <-game1Client.send:
		if out.Event.ID != event.ID {
			t.Errorf("expected event %s, got %s", event.ID, out.Event.ID)
		}
	default:
		t.Error("game-1 client did not receive broadcast event")
	}

	select {
	case <-game2Client.send:
		t.Error("game-2 client should not have received game-1's broadcast")
	default:
	}
}

func TestHub_NotifyTargetsSinglePlayer(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	leader := newTestClient(hub, "game-1", "leader")
	other := newTestClient(hub, "game-1", "other")
	hub.register <- leader
	hub.register <- other
	time.Sleep(10 * time.Millisecond)

	event := &games.Event{ID: "event-1", GameID: "game-1", Type: games.EventTeamSelectionRequested, Recipients: []string{"leader"}}
	hub.Notify("game-1", "leader", event)

	select {
	case out := <-leader.send:
		if out.Event.ID != event.ID {
			t.Errorf("expected event %s, got %s", event.ID, out.Event.ID)
		}
	default:
		t.Error("leader did not receive notify")
	}

	select {
	case <-other.send:
		t.Error("other player should not have received the notify")
	default:
	}
}

func TestHub_EmptyGameBroadcastDoesNotPanic(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	event := &games.Event{ID: "event-1", GameID: "no-such-game", Type: games.EventRoundStarted}
	hub.Broadcast("no-such-game", event)

	if count := hub.ConnectionCount("no-such-game"); count != 0 {
		t.Errorf("expected 0 connections, got %d", count)
	}
}
