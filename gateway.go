package main

// Delivery is best-effort by design: a disconnected or backlogged recipient
// simply misses the message, and the session-restore snapshot supersedes
// anything dropped. No queuing or retry.

func emit(c *Client, msg any) {
	if c == nil {
		return
	}

	select {
	case <-c.done:
	default:
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (r *Room) emitToHostLocked(msg any) {
	emit(r.hostClient, msg)
}

func (r *Room) emitToPlayerLocked(p *Player, msg any) {
	emit(p.Client, msg)
}

func (r *Room) emitToPlayersLocked(msg any) {
	for _, p := range r.players {
		emit(p.Client, msg)
	}
}

func (r *Room) emitToRoomLocked(msg any) {
	r.emitToHostLocked(msg)
	r.emitToPlayersLocked(msg)
}
