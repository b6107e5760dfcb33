package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Visually ambiguous characters (I, O, 0, 1) are excluded from room codes.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

var (
	errNoQuestions  = errors.New("content must include at least one question")
	errBadOptions   = errors.New("every question must offer at least two options")
	errBadAnswerKey = errors.New("answer key out of range")
	errBadMode      = errors.New("mode must be quiz or poll")
	errBadTimeLimit = errors.New("time limit must be non-negative")
	errBadPollTimer = errors.New("poll timer must be non-negative")
)

// Registry owns the table of live rooms. Constructed per instance rather
// than process-global, so independent registries can coexist.
type Registry struct {
	cfg   *Config
	mu    sync.Mutex
	rooms map[string]*Room
}

func newRegistry(cfg *Config) *Registry {
	return &Registry{
		cfg:   cfg,
		rooms: make(map[string]*Room),
	}
}

func validateContent(mode GameMode, content Content, timerDuration int) error {
	if mode != ModeQuiz && mode != ModePoll {
		return errBadMode
	}
	if len(content.Questions) == 0 {
		return errNoQuestions
	}
	if timerDuration < 0 {
		return errBadPollTimer
	}
	for i, q := range content.Questions {
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d: %w", i, errBadOptions)
		}
		if q.TimeLimit < 0 {
			return fmt.Errorf("question %d: %w", i, errBadTimeLimit)
		}
		if mode == ModeQuiz && (q.CorrectOption < 0 || q.CorrectOption >= len(q.Options)) {
			return fmt.Errorf("question %d: %w", i, errBadAnswerKey)
		}
	}
	return nil
}

// CreateRoom initializes a room in LOBBY with a collision-free code and a
// freshly issued host secret.
func (reg *Registry) CreateRoom(mode GameMode, content Content, timerDuration int) (*Room, error) {
	if err := validateContent(mode, content, timerDuration); err != nil {
		return nil, err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	code := reg.newRoomCodeLocked()

	room := newRoom(reg.cfg, code, mode, content, timerDuration)
	room.hostSecret = uuid.NewString()
	reg.rooms[code] = room

	logf(reg.cfg, "ROOMS: Created %s room %s (%d questions)", mode, code, len(content.Questions))

	return room, nil
}

func (reg *Registry) Room(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	return room, ok
}

// DestroyRoom cancels the room's countdown, signals every member that the
// session has ended, and drops the room. Clients receiving the terminal
// signal must discard local session state.
func (reg *Registry) DestroyRoom(code string) {
	reg.mu.Lock()
	room, ok := reg.rooms[code]
	delete(reg.rooms, code)
	reg.mu.Unlock()

	if !ok {
		return
	}

	room.mu.Lock()
	room.stopCountdownLocked()
	room.emitToRoomLocked(SimpleMessage{
		Type:    "room-closed",
		Message: "This session has ended.",
	})
	room.mu.Unlock()

	logf(reg.cfg, "ROOMS: Destroyed room %s", code)
}

// newRoomCodeLocked generates a crypto-random code and ensures it doesn't
// collide with a currently live room.
func (reg *Registry) newRoomCodeLocked() string {
	for {
		buf := make([]byte, codeLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, codeLength)
		for i := range out {
			out[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
		}
		code := string(out)

		if _, exists := reg.rooms[code]; !exists {
			return code
		}
	}
}

// run sweeps idle rooms on a coarse interval until the context is
// canceled. Countdowns are stopped inside DestroyRoom, so no orphaned
// timer callback can outlive its room.
func (reg *Registry) run(ctx context.Context) {
	ticker := time.NewTicker(reg.cfg.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reg.sweep(time.Now().Add(-reg.cfg.roomTimeout))
		}
	}
}

func (reg *Registry) sweep(cutoff time.Time) {
	reg.mu.Lock()
	stale := make([]string, 0)
	for code, room := range reg.rooms {
		room.mu.Lock()
		last := room.lastActive
		room.mu.Unlock()

		if last.Before(cutoff) {
			stale = append(stale, code)
		}
	}
	reg.mu.Unlock()

	for _, code := range stale {
		logf(reg.cfg, "ROOMS: Sweeping idle room %s", code)
		reg.DestroyRoom(code)
	}
}
