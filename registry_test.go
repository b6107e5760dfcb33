package main

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoomValidation(t *testing.T) {
	reg := newRegistry(testConfig())

	for name, tc := range map[string]struct {
		mode      GameMode
		questions []Question
		timer     int
	}{
		"unknown mode": {
			mode:      GameMode("karaoke"),
			questions: quizQuestions(1),
		},
		"no questions": {
			mode: ModeQuiz,
		},
		"single option": {
			mode:      ModeQuiz,
			questions: []Question{{Text: "q", Options: []string{"only"}}},
		},
		"answer key out of range": {
			mode:      ModeQuiz,
			questions: []Question{{Text: "q", Options: []string{"a", "b"}, CorrectOption: 2}},
		},
		"negative poll timer": {
			mode:      ModePoll,
			questions: quizQuestions(1),
			timer:     -5,
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := reg.CreateRoom(tc.mode, Content{Questions: tc.questions}, tc.timer)
			assert.Error(t, err)
		})
	}
}

func TestRoomCodeFormat(t *testing.T) {
	reg := newRegistry(testConfig())

	for i := 0; i < 50; i++ {
		room, err := reg.CreateRoom(ModeQuiz, Content{Questions: quizQuestions(1)}, 0)
		require.NoError(t, err)

		assert.Len(t, room.code, codeLength)
		for _, char := range room.code {
			assert.Contains(t, codeAlphabet, string(char))
		}
		assert.NotContains(t, room.code, "I")
		assert.NotContains(t, room.code, "O")
		assert.False(t, strings.ContainsAny(room.code, "01"))
	}
}

func TestRoomCodesUniqueUnderConcurrentCreation(t *testing.T) {
	reg := newRegistry(testConfig())

	var wg sync.WaitGroup
	codes := make(chan string, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			room, err := reg.CreateRoom(ModeQuiz, Content{Questions: quizQuestions(1)}, 0)
			if err == nil {
				codes <- room.code
			}
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
	assert.Len(t, seen, 100)
}

func TestCreateRoomInitialState(t *testing.T) {
	reg := newRegistry(testConfig())

	room, err := reg.CreateRoom(ModeQuiz, Content{Title: "t", Questions: quizQuestions(2)}, 0)
	require.NoError(t, err)

	assert.Equal(t, StateLobby, room.state)
	assert.Equal(t, -1, room.current)
	assert.NotEmpty(t, room.hostSecret)
	assert.Empty(t, room.players)

	got, ok := reg.Room(room.code)
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestDestroyRoomSignalsMembersAndStopsTimer(t *testing.T) {
	reg := newRegistry(testConfig())

	room, err := reg.CreateRoom(ModeQuiz, Content{Questions: quizQuestions(1)}, 0)
	require.NoError(t, err)

	host := testClient()
	player := testClient()
	room.mu.Lock()
	room.hostClient = host
	room.mu.Unlock()
	room.Join(player, "alice", "id-alice")
	room.StartCycle(host)

	room.mu.Lock()
	require.NotNil(t, room.timer)
	stop := room.timer.stop
	room.mu.Unlock()

	drain(host)
	drain(player)

	reg.DestroyRoom(room.code)

	_, ok := reg.Room(room.code)
	assert.False(t, ok)

	select {
	case <-stop:
	default:
		t.Fatal("countdown not canceled on destroy")
	}

	for _, c := range []*Client{host, player} {
		closed := false
		for _, m := range drain(c) {
			if sm, ok := m.(SimpleMessage); ok && sm.Type == "room-closed" {
				closed = true
			}
		}
		assert.True(t, closed)
	}
}

func TestDestroyUnknownRoomIsNoop(t *testing.T) {
	reg := newRegistry(testConfig())
	reg.DestroyRoom("XXXXXX")
}

func TestSweepEvictsOnlyIdleRooms(t *testing.T) {
	reg := newRegistry(testConfig())

	idle, err := reg.CreateRoom(ModeQuiz, Content{Questions: quizQuestions(1)}, 0)
	require.NoError(t, err)
	fresh, err := reg.CreateRoom(ModeQuiz, Content{Questions: quizQuestions(1)}, 0)
	require.NoError(t, err)

	idle.mu.Lock()
	idle.lastActive = time.Now().Add(-3 * time.Hour)
	idle.mu.Unlock()

	reg.sweep(time.Now().Add(-2 * time.Hour))

	_, ok := reg.Room(idle.code)
	assert.False(t, ok)
	_, ok = reg.Room(fresh.code)
	assert.True(t, ok)
}
