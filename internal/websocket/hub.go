package websocket

import (
	"log"
	"sync"

	"github.com/kingarthur-games/avalon-core/internal/games"
)

// Hub maintains the set of live client connections per game and realizes the Messenger contract's
// broadcast/notify primitives over them. It owns no game state of its own.
type Hub struct {
	// games maps game_id -> the set of clients currently connected to that game.
	games map[string]map[*Client]bool

	broadcast  chan *broadcastMessage
	notify     chan *notifyMessage
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

type broadcastMessage struct {
	gameID string
	out    *OutgoingMessage
	done   chan struct{}
}

type notifyMessage struct {
	gameID   string
	playerID string
	out      *OutgoingMessage
	done     chan struct{}
}

// NewHub creates a Hub with empty registries. Call Run in its own goroutine before serving
// websocket connections.
func NewHub() *Hub {
	return &Hub{
		games:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *broadcastMessage, 256),
		notify:     make(chan *notifyMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run is the hub's single-goroutine dispatch loop. It must run for the lifetime of the process.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.games[client.GameID] == nil {
				h.games[client.GameID] = make(map[*Client]bool)
			}
			h.games[client.GameID][client] = true
			h.mu.Unlock()
			log.Printf("ws client registered game_id=%s player_id=%s total=%d", client.GameID, client.PlayerID, len(h.games[client.GameID]))

		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.games[client.GameID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.games, client.GameID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("ws client unregistered game_id=%s player_id=%s", client.GameID, client.PlayerID)

		case msg := <-h.broadcast:
			h.dispatch(msg.gameID, msg.out, "")
			close(msg.done)

		case msg := <-h.notify:
			h.dispatch(msg.gameID, msg.out, msg.playerID)
			close(msg.done)
		}
	}
}

// dispatch fans out out to every connection of gameID (toPlayerID == "") or to the single
// connection currently registered for toPlayerID. A delivery to a slow client is dropped (the
// client stays registered) rather than allowed to back up the hub: a connection whose buffered
// send channel is full has already lagged past what
// the per-game event order guarantees, per the best-effort delivery policy.
func (h *Hub) dispatch(gameID string, out *OutgoingMessage, toPlayerID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns, ok := h.games[gameID]
	if !ok {
		return
	}
	for client := range conns {
		if toPlayerID != "" && client.PlayerID != toPlayerID {
			continue
		}
		select {
		case client.send <- out:
		default:
			log.Printf("ws client send buffer full, dropping delivery game_id=%s player_id=%s", gameID, client.PlayerID)
		}
	}
}

// Broadcast fans out to every connection of gameID and blocks until the hub's dispatch loop has
// attempted delivery to all of them (per-connection failures are dropped there, not surfaced
// here; see dispatch).
func (h *Hub) Broadcast(gameID string, event *games.Event) {
	done := make(chan struct{})
	h.broadcast <- &broadcastMessage{gameID: gameID, out: &OutgoingMessage{Event: event}, done: done}
	<-done
}

// Notify fans out to only playerID's connection, if one is currently registered, and blocks until
// dispatch has been attempted. A player with no open connection simply misses the live push and
// catches up by reading the event log.
func (h *Hub) Notify(gameID, playerID string, event *games.Event) {
	done := make(chan struct{})
	h.notify <- &notifyMessage{gameID: gameID, playerID: playerID, out: &OutgoingMessage{Event: event}, done: done}
	<-done
}

// ConnectionCount returns the number of live connections for a game, for diagnostics.
func (h *Hub) ConnectionCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}
