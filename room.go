package main

import (
	"sync"
	"time"
)

type RoomState string

const (
	StateLobby       RoomState = "LOBBY"
	StateQuestion    RoomState = "QUESTION"
	StateResult      RoomState = "RESULT"
	StateLeaderboard RoomState = "LEADERBOARD"
	StateFinished    RoomState = "FINISHED"
)

type GameMode string

const (
	ModeQuiz GameMode = "quiz"
	ModePoll GameMode = "poll"
)

// Question is a read-only view into the room's content; the answer key is
// stripped before anything reaches a player.
type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	TimeLimit     int      `json:"time_limit"`
}

type Content struct {
	Title     string
	Questions []Question
}

// Player is keyed by the stable client-chosen identifier. The websocket
// client is a volatile attribute, rebound on every reconnect; it is never
// used as the primary key.
type Player struct {
	ID          string
	Client      *Client
	Name        string
	AvatarIndex int
	Score       int
	Streak      int
	Submitted   bool
	Chosen      int
	LastAccept  time.Time
	JoinOrder   int
}

// countdown is the single owned timer resource of a room. The question
// index pins the countdown to the round it was started for, so a handle
// that somehow outlives a transition can never end the wrong question.
type countdown struct {
	stop     chan struct{}
	question int
}

type Room struct {
	code       string
	mode       GameMode
	hostClient *Client
	hostSecret string

	state      RoomState
	content    Content
	current    int
	players    map[string]*Player
	joinSeq    int
	submitted  int
	counts     []int
	startedAt  time.Time
	lastActive time.Time

	timer         *countdown
	timerDuration int           // poll pacing; 0 means host-paced
	tick          time.Duration // countdown granularity

	cfg *Config
	mu  sync.Mutex
}

func newRoom(cfg *Config, code string, mode GameMode, content Content, timerDuration int) *Room {
	now := time.Now()
	return &Room{
		code:          code,
		mode:          mode,
		state:         StateLobby,
		content:       content,
		current:       -1,
		players:       make(map[string]*Player),
		timerDuration: timerDuration,
		tick:          time.Second,
		lastActive:    now,
		cfg:           cfg,
	}
}

func (r *Room) touchLocked() {
	r.lastActive = time.Now()
}

func (r *Room) question() *Question {
	if r.current < 0 || r.current >= len(r.content.Questions) {
		return nil
	}
	return &r.content.Questions[r.current]
}

// effectiveLimit is the countdown length for the current question: the
// per-question limit for quizzes, the room-wide pacing for polls.
func (r *Room) effectiveLimit() int {
	q := r.question()
	if q == nil {
		return 0
	}
	if r.mode == ModePoll {
		return r.timerDuration
	}
	return q.TimeLimit
}

// remainingSeconds computes true time left from the recorded start
// timestamp, so a reconnecting client sees a correct countdown rather
// than the original duration.
func (r *Room) remainingSeconds() int {
	limit := r.effectiveLimit()
	if r.state != StateQuestion || limit <= 0 {
		return 0
	}
	elapsed := int(time.Since(r.startedAt).Seconds())
	if elapsed >= limit {
		return 0
	}
	return limit - elapsed
}

// startCountdownLocked installs a fresh countdown, always canceling any
// previous handle first. No room ever holds more than one live countdown.
func (r *Room) startCountdownLocked(seconds int) {
	r.stopCountdownLocked()

	c := &countdown{
		stop:     make(chan struct{}),
		question: r.current,
	}
	r.timer = c

	go r.runCountdown(c, seconds)
}

func (r *Room) stopCountdownLocked() {
	if r.timer == nil {
		return
	}
	close(r.timer.stop)
	r.timer = nil
}

// runCountdown broadcasts the remaining value every tick, and forces the
// question-end path on reaching zero. Each tick re-checks that this handle
// is still the room's live countdown; a handle canceled mid-tick exits
// without touching room state.
func (r *Room) runCountdown(c *countdown, seconds int) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	remaining := seconds

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.timer != c || r.state != StateQuestion || r.current != c.question {
				r.mu.Unlock()
				return
			}

			remaining--
			if remaining <= 0 {
				logf(r.cfg, "ROOMS: Timer expired for question %d in %s", r.current, r.code)
				r.endQuestionLocked()
				r.mu.Unlock()
				return
			}

			r.emitToRoomLocked(TimerTickMessage{
				Type:      "timer-tick",
				Remaining: remaining,
			})
			r.mu.Unlock()
		}
	}
}

func (r *Room) rosterLocked() []RosterEntry {
	players := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p)
	}
	sortPlayersByJoinOrder(players)

	roster := make([]RosterEntry, 0, len(players))
	for _, p := range players {
		entry := RosterEntry{
			Name:        p.Name,
			AvatarIndex: p.AvatarIndex,
			Connected:   p.Client != nil && p.Client.alive(),
		}
		if r.mode == ModeQuiz {
			entry.Score = p.Score
		}
		roster = append(roster, entry)
	}
	return roster
}
