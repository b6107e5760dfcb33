package main

import (
	"math"
	"sort"
	"time"
)

const finalTopN = 3

// Submit records a player's answer or vote for the current question. At
// most one submission is accepted per player per question; duplicates are
// silently dropped, which is what makes client-side retries safe.
func (r *Room) Submit(stableID string, option int, reportedRemaining float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateQuestion {
		return
	}

	p, ok := r.players[stableID]
	if !ok || p.Submitted {
		return
	}

	q := r.question()
	if option < 0 || option >= len(q.Options) {
		return
	}

	r.touchLocked()

	p.Submitted = true
	p.Chosen = option
	p.LastAccept = time.Now()
	r.submitted++
	r.counts[option]++

	ack := SubmitAckMessage{
		Type:   "submit-ack",
		Option: option,
	}

	switch r.mode {
	case ModeQuiz:
		if option == q.CorrectOption {
			p.Score += r.scoreFor(q.TimeLimit, reportedRemaining)
			p.Streak++
		} else {
			p.Streak = 0
		}
		r.emitToHostLocked(LiveTallyMessage{
			Type:        "live-tally",
			Submissions: r.submitted,
			Players:     len(r.players),
		})

	case ModePoll:
		// Immediate feedback: how many others picked the same option.
		same := r.counts[option] - 1
		ack.SameOption = &same
		r.emitToHostLocked(LiveTallyMessage{
			Type:        "live-tally",
			Submissions: r.submitted,
			Players:     len(r.players),
			Counts:      append([]int(nil), r.counts...),
			Percentages: percentages(r.counts, r.submitted),
		})
	}

	r.emitToPlayerLocked(p, ack)

	// Early termination: every joined player has submitted.
	if r.submitted >= len(r.players) {
		logf(r.cfg, "ROOMS: All %d players submitted for question %d in %s", r.submitted, r.current, r.code)
		r.endQuestionLocked()
	}
}

// React forwards a reaction symbol to the host. Poll rooms only, and only
// after the sender has submitted this round.
func (r *Room) React(stableID, symbol string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode != ModePoll || symbol == "" {
		return
	}

	p, ok := r.players[stableID]
	if !ok || !p.Submitted {
		return
	}

	r.touchLocked()

	r.emitToHostLocked(ReactionUpdateMessage{
		Type:   "reaction-update",
		Name:   p.Name,
		Symbol: symbol,
	})
	r.emitToPlayerLocked(p, SimpleMessage{Type: "reaction-ack"})
}

// scoreFor awards base points plus a speed bonus scaled by the remaining
// time. The client-reported value is clamped to [0, limit] to reject
// forged negative or excessive values.
func (r *Room) scoreFor(limit int, reportedRemaining float64) int {
	if limit <= 0 {
		return r.cfg.scoreBase
	}

	remaining := reportedRemaining
	if remaining < 0 {
		remaining = 0
	}
	if remaining > float64(limit) {
		remaining = float64(limit)
	}

	return r.cfg.scoreBase + int(math.Round(float64(r.cfg.scoreBonus)*remaining/float64(limit)))
}

func percentages(counts []int, total int) []int {
	out := make([]int, len(counts))
	if total == 0 {
		return out
	}
	for i, n := range counts {
		out[i] = int(math.Round(float64(n) * 100 / float64(total)))
	}
	return out
}

// standingsLocked ranks players by score descending. Equal scores are
// broken by earliest last accepted submission, then by join order, so the
// ordering is deterministic rather than an accident of map iteration.
func (r *Room) standingsLocked() []LeaderboardEntry {
	players := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p)
	}

	sort.Slice(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.LastAccept.Equal(b.LastAccept) {
			return a.LastAccept.Before(b.LastAccept)
		}
		return a.JoinOrder < b.JoinOrder
	})

	entries := make([]LeaderboardEntry, len(players))
	for i, p := range players {
		entries[i] = LeaderboardEntry{
			Name:  p.Name,
			Score: p.Score,
			Rank:  i + 1,
		}
	}
	return entries
}

func (r *Room) rankOfLocked(standings []LeaderboardEntry, p *Player) int {
	for _, entry := range standings {
		if entry.Name == p.Name {
			return entry.Rank
		}
	}
	return len(standings)
}

func sortPlayersByJoinOrder(players []*Player) {
	sort.Slice(players, func(i, j int) bool {
		return players[i].JoinOrder < players[j].JoinOrder
	})
}
