package main

import (
	"github.com/google/uuid"
)

// Join handles a first-time player join. Reconnects go through
// ResolveSession instead; the one overlap is a known stable id rejoining
// mid-game, which is always allowed.
func (r *Room) Join(c *Client, name, stableID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.touchLocked()

	if name == "" {
		emit(c, JoinErrorMessage{
			Type:    "join-error",
			Reason:  "name-taken",
			Message: "A display name is required.",
		})
		return
	}

	// A connection currently bound as host cannot also be a player.
	if c != nil && c == r.hostClient {
		emit(c, JoinErrorMessage{
			Type:    "join-error",
			Reason:  "host-conflict",
			Message: "The host cannot join as a player.",
		})
		return
	}

	if stableID == "" {
		stableID = uuid.NewString()
	}

	existing, known := r.players[stableID]

	if !known && r.state != StateLobby {
		emit(c, JoinErrorMessage{
			Type:    "join-error",
			Reason:  "game-in-progress",
			Message: "This game has already started.",
		})
		return
	}

	// Name uniqueness is enforced only against other stable ids, so a
	// rejoining player always keeps their own name.
	for id, p := range r.players {
		if id != stableID && p.Name == name {
			emit(c, JoinErrorMessage{
				Type:    "join-error",
				Reason:  "name-taken",
				Message: "That name is already taken.",
			})
			return
		}
	}

	if known {
		existing.Client = c
		existing.Name = name
	} else {
		existing = &Player{
			ID:          stableID,
			Client:      c,
			Name:        name,
			AvatarIndex: r.joinSeq % r.cfg.avatarCount,
			Chosen:      -1,
			JoinOrder:   r.joinSeq,
		}
		r.joinSeq++
		r.players[stableID] = existing
		logf(r.cfg, "ROOMS: Player %q joined %s", name, r.code)
	}

	emit(c, JoinAckMessage{
		Type:        "join-ack",
		Code:        r.code,
		StableID:    stableID,
		Name:        existing.Name,
		AvatarIndex: existing.AvatarIndex,
		Title:       r.content.Title,
	})

	r.emitToHostLocked(PlayerListMessage{
		Type:    "player-list-updated",
		Players: r.rosterLocked(),
	})
}

// ResolveSession maps a reconnecting connection back to its host or player
// identity. Apart from rebinding the connection, it is a pure read of
// current state; calling it twice yields the same snapshot.
func (r *Room) ResolveSession(c *Client, role, credential string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch role {
	case "host":
		if credential == "" || credential != r.hostSecret {
			emit(c, SimpleMessage{Type: "session-invalid"})
			return
		}
		r.hostClient = c
		r.touchLocked()
		emit(c, r.hostSnapshotLocked())
		logf(r.cfg, "ROOMS: Host reclaimed %s", r.code)

	case "player":
		p, ok := r.players[credential]
		if !ok {
			emit(c, SimpleMessage{Type: "session-invalid"})
			return
		}
		p.Client = c
		r.touchLocked()
		emit(c, r.playerSnapshotLocked(p))
		logf(r.cfg, "ROOMS: Player %q reclaimed session in %s", p.Name, r.code)

	default:
		emit(c, SimpleMessage{Type: "session-invalid"})
	}
}

func (r *Room) hostSnapshotLocked() SessionRestoredMessage {
	snap := SessionRestoredMessage{
		Type:          "session-restored",
		Role:          "host",
		Code:          r.code,
		Title:         r.content.Title,
		State:         string(r.state),
		Players:       r.rosterLocked(),
		QuestionIndex: r.current,
		Total:         len(r.content.Questions),
		Remaining:     r.remainingSeconds(),
		Submissions:   r.submitted,
	}

	if q := r.question(); q != nil {
		snap.Question = r.hostQuestionLocked(q)
		snap.Counts = append([]int(nil), r.counts...)
	}

	return snap
}

func (r *Room) playerSnapshotLocked(p *Player) SessionRestoredMessage {
	snap := SessionRestoredMessage{
		Type:          "session-restored",
		Role:          "player",
		Code:          r.code,
		Title:         r.content.Title,
		State:         string(r.state),
		QuestionIndex: r.current,
		Total:         len(r.content.Questions),
		Remaining:     r.remainingSeconds(),
		Submissions:   r.submitted,
		Score:         p.Score,
		Submitted:     p.Submitted,
		Name:          p.Name,
		AvatarIndex:   p.AvatarIndex,
	}

	if q := r.question(); q != nil {
		snap.Question = r.playerQuestionLocked(q)
	}

	return snap
}

func (r *Room) hostQuestionLocked(q *Question) HostQuestionMessage {
	return HostQuestionMessage{
		Type:          "new-question",
		Index:         r.current,
		Total:         len(r.content.Questions),
		Text:          q.Text,
		Options:       append([]string(nil), q.Options...),
		CorrectOption: q.CorrectOption,
		TimeLimit:     r.effectiveLimit(),
	}
}

func (r *Room) playerQuestionLocked(q *Question) PlayerQuestionMessage {
	return PlayerQuestionMessage{
		Type:      "new-question",
		Index:     r.current,
		Total:     len(r.content.Questions),
		Text:      q.Text,
		Options:   append([]string(nil), q.Options...),
		TimeLimit: r.effectiveLimit(),
	}
}
