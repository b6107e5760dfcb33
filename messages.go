package main

// One schema per (event, role) pair. Client messages share a "type" tag
// decoded from the envelope before the full payload is unmarshaled, so
// variant-specific fields never leak between events.

// Messages coming from clients

type CreateRoomMessage struct {
	Type         string     `json:"type"`          // "create-room"
	Mode         string     `json:"mode"`          // "quiz" or "poll"
	Title        string     `json:"title"`         //
	Questions    []Question `json:"questions"`     //
	TimerSeconds int        `json:"timer_seconds"` // poll pacing; 0 means host-paced
}

type JoinRoomMessage struct {
	Type     string `json:"type"` // "join-room"
	Code     string `json:"code"`
	Name     string `json:"name"`
	StableID string `json:"stable_id"`
}

type CheckSessionMessage struct {
	Type       string `json:"type"` // "check-session"
	Code       string `json:"code"`
	Role       string `json:"role"` // "host" or "player"
	Credential string `json:"credential"`
}

// HostCommandMessage covers "start-cycle", "advance", "reset" and "close-room".
type HostCommandMessage struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

type SubmitMessage struct {
	Type          string  `json:"type"` // "submit-answer" or "submit-vote"
	Code          string  `json:"code"`
	StableID      string  `json:"stable_id"`
	Option        int     `json:"option"`
	TimeRemaining float64 `json:"time_remaining"` // client-reported, quiz only, clamped server-side
}

type ReactionMessage struct {
	Type     string `json:"type"` // "submit-reaction"
	Code     string `json:"code"`
	StableID string `json:"stable_id"`
	Symbol   string `json:"symbol"`
}

// Messages sent to clients

type RoomCreatedMessage struct {
	Type       string `json:"type"` // "room-created"
	Code       string `json:"code"`
	HostSecret string `json:"host_secret"`
	Questions  int    `json:"questions"`
}

type CreateErrorMessage struct {
	Type    string `json:"type"` // "create-error"
	Message string `json:"message"`
}

type JoinAckMessage struct {
	Type        string `json:"type"` // "join-ack"
	Code        string `json:"code"`
	StableID    string `json:"stable_id"`
	Name        string `json:"name"`
	AvatarIndex int    `json:"avatar_index"`
	Title       string `json:"title"`
}

// Sent to a single client when a join is rejected.
type JoinErrorMessage struct {
	Type    string `json:"type"`   // "join-error"
	Reason  string `json:"reason"` // "room-not-found", "game-in-progress", "name-taken", "host-conflict"
	Message string `json:"message"`
}

type RosterEntry struct {
	Name        string `json:"name"`
	AvatarIndex int    `json:"avatar_index"`
	Score       int    `json:"score"`
	Connected   bool   `json:"connected"`
}

// PlayerListMessage goes to the host only.
type PlayerListMessage struct {
	Type    string        `json:"type"` // "player-list-updated"
	Players []RosterEntry `json:"players"`
}

// HostQuestionMessage is the host view of a question, answer key included.
type HostQuestionMessage struct {
	Type          string   `json:"type"` // "new-question"
	Index         int      `json:"index"`
	Total         int      `json:"total"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	TimeLimit     int      `json:"time_limit"`
}

// PlayerQuestionMessage is the player view; the answer key is never present.
type PlayerQuestionMessage struct {
	Type      string   `json:"type"` // "new-question"
	Index     int      `json:"index"`
	Total     int      `json:"total"`
	Text      string   `json:"text"`
	Options   []string `json:"options"`
	TimeLimit int      `json:"time_limit"`
}

type TimerTickMessage struct {
	Type      string `json:"type"` // "timer-tick"
	Remaining int    `json:"remaining"`
}

// LiveTallyMessage goes to the host while a question is open.
type LiveTallyMessage struct {
	Type        string `json:"type"` // "live-tally"
	Submissions int    `json:"submissions"`
	Players     int    `json:"players"`
	Counts      []int  `json:"counts,omitempty"`      // poll only
	Percentages []int  `json:"percentages,omitempty"` // poll only, rounded
}

// SubmitAckMessage confirms an accepted submission. SameOption is a
// pointer so a legitimate value of zero (nobody else picked this option)
// still reaches the wire; it is nil outside poll rooms.
type SubmitAckMessage struct {
	Type       string `json:"type"` // "submit-ack"
	Option     int    `json:"option"`
	SameOption *int   `json:"same_option,omitempty"` // poll: other respondents on this option
}

// QuestionEndedMessage reveals the answer key for quizzes. CorrectOption
// is a pointer so option index 0 survives encoding; it is nil for polls,
// which have no answer to reveal.
type QuestionEndedMessage struct {
	Type          string `json:"type"` // "question-ended"
	Index         int    `json:"index"`
	CorrectOption *int   `json:"correct_option,omitempty"` // quiz reveal
	Counts        []int  `json:"counts"`
	Submissions   int    `json:"submissions"`
}

type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Rank  int    `json:"rank"`
}

type LeaderboardMessage struct {
	Type    string             `json:"type"` // "leaderboard" or "game-over"
	Entries []LeaderboardEntry `json:"entries"`
}

// PlayerResultMessage is the per-player slice of the final standings, so the
// full roster never ships to every client.
type PlayerResultMessage struct {
	Type    string             `json:"type"` // "player-result"
	Rank    int                `json:"rank"`
	Score   int                `json:"score"`
	Players int                `json:"players"`
	Top     []LeaderboardEntry `json:"top"`
}

type PollOverMessage struct {
	Type      string `json:"type"` // "poll-over"
	Questions int    `json:"questions"`
}

// SimpleMessage is for generic notifications ("game-reset", "room-closed",
// "session-invalid", "reaction-ack").
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

type ReactionUpdateMessage struct {
	Type   string `json:"type"` // "reaction-update"
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// SessionRestoredMessage carries everything a reconnecting client needs to
// resume without replaying history. Question is role-scoped: hosts get the
// answer key, players never do before the reveal.
type SessionRestoredMessage struct {
	Type          string        `json:"type"` // "session-restored"
	Role          string        `json:"role"`
	Code          string        `json:"code"`
	Title         string        `json:"title"`
	State         string        `json:"state"`
	Players       []RosterEntry `json:"players,omitempty"` // host only
	QuestionIndex int           `json:"question_index"`
	Total         int           `json:"total"`
	Question      any           `json:"question,omitempty"` // HostQuestionMessage or PlayerQuestionMessage
	Remaining     int           `json:"remaining,omitempty"`
	Counts        []int         `json:"counts,omitempty"` // host only
	Submissions   int           `json:"submissions"`
	Score         int           `json:"score"`               // player only
	Submitted     bool          `json:"submitted,omitempty"` // player only
	Name          string        `json:"name,omitempty"`      // player only
	AvatarIndex   int           `json:"avatar_index"`        // player only
}
