package main

// ClientMessage covers every inbound command. Unused fields stay empty for
// the types that do not carry them.
type ClientMessage struct {
	Type   string `json:"type"`             // "join-participant", "join-admin", "form-teams", "start-game", "submit-answer", "end-question", "start-next-question", "end-game", "set-rounds", "reset-game"
	Name   string `json:"name,omitempty"`   // join-participant
	Secret string `json:"secret,omitempty"` // join-admin
	Answer string `json:"answer,omitempty"` // submit-answer
	Rounds int    `json:"rounds,omitempty"` // set-rounds
}

// ErrorMessage is sent only to the client whose command failed.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GameStateMessage is the full snapshot sent to an admin on join.
type GameStateMessage struct {
	Type            string         `json:"type"` // "game-state"
	IsActive        bool           `json:"isActive"`
	Ended           bool           `json:"ended"`
	TeamsFormed     bool           `json:"teamsFormed"`
	TotalRounds     int            `json:"totalRounds"`
	CompletedRounds int            `json:"completedRounds"`
	GameSequence    []string       `json:"gameSequence,omitempty"`
	Participants    []Participant  `json:"participants"`
	Teams           []Team         `json:"teams,omitempty"`
	CurrentQuestion *Question      `json:"currentQuestion,omitempty"`
	TimeLeft        int            `json:"timeLeft"`
	TeamLeaderboard []TeamStanding `json:"teamLeaderboard,omitempty"`
}

// ParticipantJoinedMessage acknowledges a join to the joining client only.
type ParticipantJoinedMessage struct {
	Type            string    `json:"type"` // "participant-joined"
	ParticipantID   string    `json:"participantId"`
	Name            string    `json:"name"`
	IsActive        bool      `json:"isActive"`
	CurrentQuestion *Question `json:"currentQuestion,omitempty"`
	TimeLeft        int       `json:"timeLeft,omitempty"`
}

// ParticipantUpdateMessage keeps admins current on the roster and teams.
type ParticipantUpdateMessage struct {
	Type         string        `json:"type"` // "participant-update"
	Participants []Participant `json:"participants"`
	Teams        []Team        `json:"teams,omitempty"`
}

// TeamsFormedMessage announces a fresh team partition to everyone.
type TeamsFormedMessage struct {
	Type        string `json:"type"` // "teams-formed"
	Teams       []Team `json:"teams"`
	TeamsFormed bool   `json:"teamsFormed"`
}

// GameStartedMessage announces the tournament and its generated sequence.
type GameStartedMessage struct {
	Type         string   `json:"type"` // "game-started"
	GameSequence []string `json:"gameSequence"`
	TotalRounds  int      `json:"totalRounds"`
}

// RoundStartedMessage marks the boundary into a new round.
type RoundStartedMessage struct {
	Type        string `json:"type"` // "round-started"
	GameType    string `json:"gameType"`
	GameName    string `json:"gameName"`
	RoundNumber int    `json:"roundNumber"`
	TotalRounds int    `json:"totalRounds"`
}

// QuestionStartedMessage opens a question. The question's canonical answer
// is excluded from serialization, so the prompt and hint are all clients see.
type QuestionStartedMessage struct {
	Type           string    `json:"type"` // "question-started"
	Question       *Question `json:"question"`
	GameType       string    `json:"gameType"`
	QuestionNumber int       `json:"questionNumber"`
	QuestionCount  int       `json:"questionCount"`
	RoundNumber    int       `json:"roundNumber"`
	TotalRounds    int       `json:"totalRounds"`
	TimeLeft       int       `json:"timeLeft"`
}

// TimerUpdateMessage is broadcast once per countdown second.
type TimerUpdateMessage struct {
	Type     string `json:"type"` // "timer-update"
	TimeLeft int    `json:"timeLeft"`
}

// AnswerReceivedMessage keeps admins current on answer progress without
// leaking who answered what.
type AnswerReceivedMessage struct {
	Type              string `json:"type"` // "answer-received"
	AnswerCount       int    `json:"answerCount"`
	TotalParticipants int    `json:"totalParticipants"`
}

// QuestionEndedMessage carries the reveal and the scoring outcome. Its shape
// is identical whether the countdown expired or an admin forced the close.
type QuestionEndedMessage struct {
	Type            string         `json:"type"` // "question-ended"
	CorrectAnswer   string         `json:"correctAnswer"`
	Results         []AnswerResult `json:"results"`
	TeamLeaderboard []TeamStanding `json:"teamLeaderboard"`
	RoundNumber     int            `json:"roundNumber"`
}

// GameEndedMessage carries the final standings and the loser call-out.
type GameEndedMessage struct {
	Type                 string         `json:"type"` // "game-ended"
	FinalTeamLeaderboard []TeamStanding `json:"finalTeamLeaderboard"`
	LoserTeam            *TeamStanding  `json:"loserTeam,omitempty"`
}

// RoundsUpdatedMessage confirms a round-count change to everyone.
type RoundsUpdatedMessage struct {
	Type        string `json:"type"` // "rounds-updated"
	TotalRounds int    `json:"totalRounds"`
}

// GameResetMessage tells clients to return to the landing state and rejoin.
type GameResetMessage struct {
	Type    string `json:"type"` // "game-reset"
	Message string `json:"message"`
}
