package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is a middleman between one websocket connection and the Hub.
type Client struct {
	hub *Hub

	conn *websocket.Conn
	send chan *OutgoingMessage

	GameID   string
	PlayerID string

	actions ActionSink

	ctx context.Context
}

// ActionSink is the callback a Client hands every decoded ClientAction to. The websocket handler
// is deliberately ignorant of the state machine; it only knows how to turn bytes into a
// games.Action and how to report the resulting error back to the sender.
type ActionSink interface {
	HandleClientAction(ctx context.Context, client *Client, msg *ClientAction)
}

// readPump pumps messages from the websocket connection to the action sink, until the connection
// closes or a read fails.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error game_id=%s player_id=%s: %v", c.GameID, c.PlayerID, err)
			}
			break
		}

		var msg ClientAction
		if err := json.Unmarshal(message, &msg); err != nil {
			sendErrorToClient(c, "invalid message: must be a JSON action")
			continue
		}
		if c.actions != nil {
			c.actions.HandleClientAction(c.ctx, c, &msg)
		}
	}
}

// writePump pumps messages from the Hub to the websocket connection, draining any queued
// messages into a single websocket frame write.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case out, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if err := encodeOutgoing(w, out); err != nil {
				log.Printf("error encoding outbound message: %v", err)
			}

			n := len(c.send)
			for i := 0; i < n; i++ {
				next := <-c.send
				if err := encodeOutgoing(w, next); err != nil {
					log.Printf("error encoding queued message: %v", err)
				}
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func encodeOutgoing(w io.Writer, out *OutgoingMessage) error {
	var payload interface{}
	if out.Event != nil {
		payload = out.Event
	} else {
		payload = out.Envelope
	}
	return json.NewEncoder(w).Encode(payload)
}

// sendErrorToClient pushes an error envelope to a single client without going through the Hub
// (the error is not a domain event and has no recipients policy to decide).
func sendErrorToClient(c *Client, reason string) {
	select {
	case c.send <- &OutgoingMessage{Envelope: &ServerEnvelope{Type: ServerTypeError, Payload: map[string]interface{}{"error": reason}}}:
	default:
	}
}
