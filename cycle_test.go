package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartCycleRequiresHostAndLobby(t *testing.T) {
	_, room, host := newTestRoom(t, ModeQuiz, 2, 0)

	stranger := testClient()
	room.StartCycle(stranger)
	assert.Equal(t, StateLobby, roomState(room))

	room.StartCycle(host)
	assert.Equal(t, StateQuestion, roomState(room))
	assert.Equal(t, 0, room.current)

	// A second start against a running game is silently ignored.
	room.StartCycle(host)
	assert.Equal(t, 0, room.current)
}

func TestBeginQuestionEmitsRoleScopedViews(t *testing.T) {
	_, room, host := newTestRoom(t, ModeQuiz, 1, 0)

	alice := testClient()
	room.Join(alice, "alice", "id-alice")
	drain(host)
	drain(alice)

	room.StartCycle(host)

	hostQ, ok := drain(host)[0].(HostQuestionMessage)
	require.True(t, ok)
	assert.Equal(t, 1, hostQ.CorrectOption)
	assert.Equal(t, 20, hostQ.TimeLimit)

	playerQ, ok := drain(alice)[0].(PlayerQuestionMessage)
	require.True(t, ok)
	assert.Equal(t, hostQ.Text, playerQ.Text)
	assert.Equal(t, hostQ.Options, playerQ.Options)
}

func TestAtMostOneLiveCountdown(t *testing.T) {
	_, room, host := newTestRoom(t, ModeQuiz, 3, 0)

	room.StartCycle(host)

	room.mu.Lock()
	first := room.timer
	require.NotNil(t, first)

	// Beginning the next question replaces the countdown, canceling the
	// previous handle before the new one is installed.
	room.beginQuestionLocked(1)
	second := room.timer
	room.mu.Unlock()

	require.NotNil(t, second)
	assert.NotSame(t, first, second)

	select {
	case <-first.stop:
	default:
		t.Fatal("previous countdown still live after replacement")
	}
}

func TestEndQuestionIsIdempotent(t *testing.T) {
	_, room, host := newTestRoom(t, ModeQuiz, 2, 0)

	room.StartCycle(host)
	drain(host)

	room.mu.Lock()
	room.endQuestionLocked()
	room.endQuestionLocked()
	room.endQuestionLocked()
	room.mu.Unlock()

	assert.Equal(t, StateResult, roomState(room))

	ended := 0
	for _, m := range drain(host) {
		if _, ok := m.(QuestionEndedMessage); ok {
			ended++
		}
	}
	assert.Equal(t, 1, ended)
}

func TestAdvanceWalksQuizStates(t *testing.T) {
	_, room, host := newTestRoom(t, ModeQuiz, 2, 0)

	room.StartCycle(host)
	require.Equal(t, StateQuestion, roomState(room))

	// Advance during a question acts as the host's manual end.
	room.Advance(host)
	require.Equal(t, StateResult, roomState(room))

	room.Advance(host)
	require.Equal(t, StateLeaderboard, roomState(room))

	room.Advance(host)
	require.Equal(t, StateQuestion, roomState(room))
	assert.Equal(t, 1, room.current)

	room.Advance(host)
	room.Advance(host)
	room.Advance(host)
	require.Equal(t, StateFinished, roomState(room))

	// Advancing a finished room is a no-op.
	room.Advance(host)
	require.Equal(t, StateFinished, roomState(room))
}

func TestAdvanceIgnoresNonHost(t *testing.T) {
	_, room, host := newTestRoom(t, ModeQuiz, 2, 0)

	room.StartCycle(host)

	stranger := testClient()
	room.Advance(stranger)
	assert.Equal(t, StateQuestion, roomState(room))
	assert.Empty(t, drain(stranger))
}

func TestTimerExpiryEndsQuestion(t *testing.T) {
	_, room, host := newTestRoom(t, ModeQuiz, 1, 0)

	room.mu.Lock()
	room.tick = time.Millisecond
	room.content.Questions[0].TimeLimit = 3
	room.mu.Unlock()

	alice := testClient()
	room.Join(alice, "alice", "id-alice")
	room.StartCycle(host)

	require.Eventually(t, func() bool {
		return roomState(room) == StateResult
	}, time.Second, 2*time.Millisecond)

	room.mu.Lock()
	assert.Nil(t, room.timer)
	room.mu.Unlock()

	// The reveal reaches players even though nobody submitted.
	revealed := false
	for _, m := range drain(alice) {
		if ended, ok := m.(QuestionEndedMessage); ok {
			require.NotNil(t, ended.CorrectOption)
			assert.Equal(t, 1, *ended.CorrectOption)
			assert.Zero(t, ended.Submissions)
			revealed = true
		}
	}
	assert.True(t, revealed)
}

func TestTimerTicksBroadcastRemaining(t *testing.T) {
	_, room, host := newTestRoom(t, ModeQuiz, 1, 0)

	room.mu.Lock()
	room.tick = 5 * time.Millisecond
	room.content.Questions[0].TimeLimit = 30
	room.mu.Unlock()

	alice := testClient()
	room.Join(alice, "alice", "id-alice")
	room.StartCycle(host)

	require.Eventually(t, func() bool {
		for _, m := range drain(alice) {
			if _, ok := m.(TimerTickMessage); ok {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	room.mu.Lock()
	room.stopCountdownLocked()
	room.mu.Unlock()
}

func TestPollAutoAdvances(t *testing.T) {
	_, room, host := newTestRoom(t, ModePoll, 2, 2)

	room.mu.Lock()
	room.tick = time.Millisecond
	room.mu.Unlock()

	room.StartCycle(host)

	require.Eventually(t, func() bool {
		return roomState(room) == StateFinished
	}, time.Second, 2*time.Millisecond)

	over := false
	for _, m := range drain(host) {
		if _, ok := m.(PollOverMessage); ok {
			over = true
		}
	}
	assert.True(t, over)
}

func TestPollHostPacedAdvance(t *testing.T) {
	_, room, host := newTestRoom(t, ModePoll, 2, 0)

	room.StartCycle(host)
	require.Equal(t, StateQuestion, roomState(room))

	room.mu.Lock()
	assert.Nil(t, room.timer)
	room.mu.Unlock()

	room.Advance(host)
	require.Equal(t, StateResult, roomState(room))

	// Polls have no leaderboard; the next advance begins question 2.
	room.Advance(host)
	require.Equal(t, StateQuestion, roomState(room))
	assert.Equal(t, 1, room.current)

	room.Advance(host)
	room.Advance(host)
	require.Equal(t, StateFinished, roomState(room))
}

func TestResetReturnsToLobbyPreservingRoster(t *testing.T) {
	_, room, host := newTestRoom(t, ModeQuiz, 2, 0)

	room.Join(testClient(), "alice", "id-alice")
	room.Join(testClient(), "bob", "id-bob")
	room.StartCycle(host)
	room.Submit("id-alice", 1, 20)

	stranger := testClient()
	room.Reset(stranger)
	require.Equal(t, StateQuestion, roomState(room))

	room.Reset(host)
	require.Equal(t, StateLobby, roomState(room))

	room.mu.Lock()
	defer room.mu.Unlock()

	assert.Equal(t, -1, room.current)
	assert.Nil(t, room.timer)
	assert.Zero(t, room.submitted)
	require.Len(t, room.players, 2)
	for _, p := range room.players {
		assert.Zero(t, p.Score)
		assert.Zero(t, p.Streak)
		assert.False(t, p.Submitted)
	}
}
