package main

import "time"

// Host commands are gated on the current host connection. Anything not
// valid in the current state is silently ignored: stale UI and
// double-delivery are routine, not errors.

func (r *Room) StartCycle(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c != r.hostClient || r.state != StateLobby {
		return
	}

	r.touchLocked()
	logf(r.cfg, "ROOMS: Starting %s in %s with %d players", r.mode, r.code, len(r.players))
	r.beginQuestionLocked(0)
}

// Advance moves the room forward one step. During a question it acts as
// the host's manual end; afterwards it walks RESULT -> LEADERBOARD ->
// next question (quiz) or RESULT -> next question (poll), and past the
// last question it finishes the game.
func (r *Room) Advance(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c != r.hostClient {
		return
	}

	switch r.state {
	case StateQuestion:
		r.touchLocked()
		r.endQuestionLocked()

	case StateResult:
		r.touchLocked()
		if r.mode == ModeQuiz {
			r.state = StateLeaderboard
			r.emitToRoomLocked(LeaderboardMessage{
				Type:    "leaderboard",
				Entries: r.standingsLocked(),
			})
			return
		}
		r.nextQuestionLocked()

	case StateLeaderboard:
		r.touchLocked()
		r.nextQuestionLocked()

	default:
		// LOBBY and FINISHED: nothing to advance.
	}
}

// Reset returns the room to LOBBY, zeroing progress and scores but
// preserving the player roster and identities.
func (r *Room) Reset(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c != r.hostClient || r.state == StateLobby {
		return
	}

	r.touchLocked()
	r.stopCountdownLocked()
	r.state = StateLobby
	r.current = -1
	r.submitted = 0
	r.counts = nil

	for _, p := range r.players {
		p.Score = 0
		p.Streak = 0
		p.Submitted = false
		p.Chosen = -1
	}

	r.emitToRoomLocked(SimpleMessage{Type: "game-reset"})
	r.emitToHostLocked(PlayerListMessage{
		Type:    "player-list-updated",
		Players: r.rosterLocked(),
	})
	logf(r.cfg, "ROOMS: Reset %s to lobby", r.code)
}

func (r *Room) nextQuestionLocked() {
	next := r.current + 1
	if next >= len(r.content.Questions) {
		r.finishLocked()
		return
	}
	r.beginQuestionLocked(next)
}

func (r *Room) beginQuestionLocked(index int) {
	r.stopCountdownLocked()

	r.current = index
	r.state = StateQuestion
	r.submitted = 0

	q := r.question()
	r.counts = make([]int, len(q.Options))
	for _, p := range r.players {
		p.Submitted = false
		p.Chosen = -1
	}
	r.startedAt = time.Now()

	r.emitToHostLocked(r.hostQuestionLocked(q))
	r.emitToPlayersLocked(r.playerQuestionLocked(q))

	if limit := r.effectiveLimit(); limit > 0 {
		r.startCountdownLocked(limit)
	}
}

// endQuestionLocked is the single gate for every path that ends a
// question: all-submitted early finish, manual host action, and timer
// expiry. Once the room has left QUESTION, duplicate triggers are no-ops.
// The countdown is always stopped before the state changes hands.
func (r *Room) endQuestionLocked() {
	if r.state != StateQuestion {
		return
	}

	r.stopCountdownLocked()

	// Auto-paced polls roll straight into the next question.
	if r.mode == ModePoll && r.timerDuration > 0 {
		r.emitToRoomLocked(r.questionEndedLocked())
		r.nextQuestionLocked()
		return
	}

	r.state = StateResult
	r.emitToRoomLocked(r.questionEndedLocked())
}

func (r *Room) questionEndedLocked() QuestionEndedMessage {
	msg := QuestionEndedMessage{
		Type:        "question-ended",
		Index:       r.current,
		Counts:      append([]int(nil), r.counts...),
		Submissions: r.submitted,
	}
	if r.mode == ModeQuiz {
		correct := r.question().CorrectOption
		msg.CorrectOption = &correct
	}
	return msg
}

func (r *Room) finishLocked() {
	r.stopCountdownLocked()
	r.state = StateFinished

	if r.mode == ModePoll {
		r.emitToRoomLocked(PollOverMessage{
			Type:      "poll-over",
			Questions: len(r.content.Questions),
		})
		logf(r.cfg, "ROOMS: Poll %s finished", r.code)
		return
	}

	standings := r.standingsLocked()

	r.emitToHostLocked(LeaderboardMessage{
		Type:    "game-over",
		Entries: standings,
	})

	top := standings
	if len(top) > finalTopN {
		top = top[:finalTopN]
	}

	for _, p := range r.players {
		r.emitToPlayerLocked(p, PlayerResultMessage{
			Type:    "player-result",
			Rank:    r.rankOfLocked(standings, p),
			Score:   p.Score,
			Players: len(r.players),
			Top:     append([]LeaderboardEntry(nil), top...),
		})
	}

	logf(r.cfg, "ROOMS: Game %s finished with %d players", r.code, len(r.players))
}
