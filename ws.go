package main

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Client wraps one websocket connection. The send channel is buffered and
// never closed; once done is closed the write pump exits and any further
// emits fall through the gateway's non-blocking send.
type Client struct {
	conn *websocket.Conn
	send chan any
	done chan struct{}
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan any, 32),
		done: make(chan struct{}),
	}
}

func (c *Client) alive() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

type envelope struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

type dispatcher struct {
	cfg *Config
	reg *Registry
}

func newUpgrader(cfg *Config) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			parsed, err := url.Parse(origin)
			if err != nil {
				return false
			}
			if parsed.Host == r.Host {
				return true
			}
			for _, allowed := range cfg.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
}

func serveWS(cfg *Config, d *dispatcher) httprouter.Handle {
	upgrader := newUpgrader(cfg)

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: websocket upgrade from %s: %v", realIP(r), err)
			return
		}

		client := newClient(conn)

		go client.writePump()
		client.readPump(d)
	}
}

func (c *Client) readPump(d *dispatcher) {
	defer func() {
		close(c.done)
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		d.dispatch(c, raw)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// dispatch validates the tagged payload at the boundary and routes it to
// the owning room. Unknown types and malformed payloads are dropped.
func (d *dispatcher) dispatch(c *Client, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return
	}

	switch env.Type {
	case "create-room":
		var msg CreateRoomMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		d.createRoom(c, msg)
		return

	case "join-room":
		var msg JoinRoomMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		room, ok := d.reg.Room(msg.Code)
		if !ok {
			emit(c, JoinErrorMessage{
				Type:    "join-error",
				Reason:  "room-not-found",
				Message: "No room with that code exists.",
			})
			return
		}
		room.Join(c, msg.Name, msg.StableID)
		return
	}

	room, ok := d.reg.Room(env.Code)
	if !ok {
		if env.Type == "check-session" {
			emit(c, SimpleMessage{Type: "session-invalid"})
		}
		return
	}

	switch env.Type {
	case "check-session":
		var msg CheckSessionMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		room.ResolveSession(c, msg.Role, msg.Credential)

	case "start-cycle":
		room.StartCycle(c)

	case "advance":
		room.Advance(c)

	case "reset":
		room.Reset(c)

	case "close-room":
		room.mu.Lock()
		isHost := c == room.hostClient
		room.mu.Unlock()
		if isHost {
			d.reg.DestroyRoom(env.Code)
		}

	case "submit-answer", "submit-vote":
		var msg SubmitMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		room.Submit(msg.StableID, msg.Option, msg.TimeRemaining)

	case "submit-reaction":
		var msg ReactionMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		room.React(msg.StableID, msg.Symbol)

	default:
		// ignore unknown types
	}
}

func (d *dispatcher) createRoom(c *Client, msg CreateRoomMessage) {
	content := Content{
		Title:     msg.Title,
		Questions: msg.Questions,
	}

	room, err := d.reg.CreateRoom(GameMode(msg.Mode), content, msg.TimerSeconds)
	if err != nil {
		emit(c, CreateErrorMessage{
			Type:    "create-error",
			Message: err.Error(),
		})
		return
	}

	room.mu.Lock()
	room.hostClient = c
	room.mu.Unlock()

	emit(c, RoomCreatedMessage{
		Type:       "room-created",
		Code:       room.code,
		HostSecret: room.hostSecret,
		Questions:  len(content.Questions),
	})
}
