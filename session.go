package main

import (
	"math/rand"
	"sort"
)

// Session is the single process-wide aggregate for the tournament. It is a
// plain state machine with no locking and no I/O: the Hub owns the one
// instance, serializes every mutation under its lock, and turns the returned
// values into broadcasts. The countdown timer lives in the Hub too; the
// session only tracks the remaining seconds and an epoch counter that lets
// stale ticks be recognized and dropped.
type Session struct {
	participants []Participant
	teams        []*Team
	teamsFormed  bool

	totalRounds     int
	gameSequence    []int // indexes into gameFormats, one per round
	completedRounds int
	questionIndex   int
	isActive        bool
	ended           bool

	currentQuestion *Question
	currentFormat   int
	timeLeft        int
	answers         map[string]string // participant id -> normalized answer, current question only
	epoch           uint64
}

// questionStart describes a freshly opened question.
type questionStart struct {
	Question       *Question
	Format         GameFormat
	RoundNumber    int // 1-based
	QuestionNumber int // 1-based within the round
	QuestionCount  int
	NewRound       bool
}

// AnswerResult is the per-participant record produced when a question
// closes. Participants who did not answer produce no record, so absence
// distinguishes "no answer" from "wrong answer".
type AnswerResult struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	TeamID        int    `json:"teamId"`
	Answer        string `json:"answer"`
	Correct       bool   `json:"correct"`
}

// TeamStanding is one leaderboard row.
type TeamStanding struct {
	TeamID int    `json:"teamId"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

// questionResults is everything a question close produces, identical
// whether the close came from the countdown or an admin command.
type questionResults struct {
	CorrectAnswer string
	Results       []AnswerResult
	Leaderboard   []TeamStanding
	RoundNumber   int
}

// finalStandings is produced exactly once per tournament end.
type finalStandings struct {
	Leaderboard []TeamStanding
	Loser       *TeamStanding
}

func newSession(totalRounds int) *Session {
	return &Session{
		totalRounds: totalRounds,
		answers:     make(map[string]string),
	}
}

// AddParticipant registers a connection under its id. Rejoining with the
// same id just updates the display name.
func (s *Session) AddParticipant(id, name string) {
	for i := range s.participants {
		if s.participants[i].ID == id {
			s.participants[i].Name = name
			return
		}
	}
	s.participants = append(s.participants, Participant{ID: id, Name: name})
}

// RemoveParticipant drops a disconnected participant from the roster and
// discards any pending answer for the open question. Team membership is
// left alone; formed teams are immutable until the next reset.
func (s *Session) RemoveParticipant(id string) bool {
	for i := range s.participants {
		if s.participants[i].ID == id {
			s.participants = append(s.participants[:i], s.participants[i+1:]...)
			delete(s.answers, id)
			return true
		}
	}
	return false
}

// FormTeams replaces the entire team set with a fresh shuffled partition.
// The Hub must not call this while a tournament is active.
func (s *Session) FormTeams(rng *rand.Rand) ([]*Team, error) {
	teams, err := formTeams(s.participants, rng)
	if err != nil {
		return nil, err
	}
	s.teams = teams
	s.teamsFormed = true
	return teams, nil
}

// StartTournament generates the game sequence, zeroes every score, and
// moves the tournament to active. Opening the first question is a separate
// step so the caller can broadcast the start before the countdown begins.
func (s *Session) StartTournament(rng *rand.Rand) error {
	if s.isActive {
		return invalidCommand("a tournament is already running")
	}
	if !s.teamsFormed || len(s.teams) == 0 {
		return invalidCommand("form teams before starting the tournament")
	}

	s.gameSequence = make([]int, s.totalRounds)
	for i := range s.gameSequence {
		s.gameSequence[i] = rng.Intn(len(gameFormats))
	}
	for _, team := range s.teams {
		team.Score = 0
	}
	s.completedRounds = 0
	s.questionIndex = 0
	s.isActive = true
	s.ended = false
	s.currentQuestion = nil
	s.answers = make(map[string]string)

	return nil
}

// OpenNextQuestion advances into the next question of the sequence, crossing
// round boundaries transparently. It returns (nil, nil) when every round has
// been played, which the caller must treat as the tournament ending. The
// countdown starts at seconds.
func (s *Session) OpenNextQuestion(seconds int) (*questionStart, error) {
	if !s.isActive {
		return nil, invalidCommand("no tournament is running")
	}
	if s.currentQuestion != nil {
		return nil, invalidCommand("a question is already open")
	}
	if s.Exhausted() {
		return nil, nil
	}

	s.currentFormat = s.gameSequence[s.completedRounds]
	format := gameFormats[s.currentFormat]
	question := format.Questions[s.questionIndex]

	s.currentQuestion = &question
	s.timeLeft = seconds
	s.answers = make(map[string]string)
	s.epoch++

	return &questionStart{
		Question:       &question,
		Format:         format,
		RoundNumber:    s.completedRounds + 1,
		QuestionNumber: s.questionIndex + 1,
		QuestionCount:  len(format.Questions),
		NewRound:       s.questionIndex == 0,
	}, nil
}

// SubmitAnswer records one normalized answer for the open question. A second
// submission from the same participant overwrites the first.
func (s *Session) SubmitAnswer(participantID, raw string) error {
	if !s.isActive || s.currentQuestion == nil {
		return invalidCommand("no question is currently open")
	}
	if !s.hasParticipant(participantID) {
		return invalidCommand("join as a participant before answering")
	}
	s.answers[participantID] = normalizeAnswer(raw)
	return nil
}

// AnswerCount reports how many answers the open question has collected.
func (s *Session) AnswerCount() int {
	return len(s.answers)
}

// CloseQuestion runs the single scoring pass for the open question and
// advances the sequence indexes past it. Closing when no question is open is
// a no-op, which makes the countdown-expiry and admin-forced paths safely
// race each other.
func (s *Session) CloseQuestion() (*questionResults, bool) {
	if s.currentQuestion == nil {
		return nil, false
	}

	question := s.currentQuestion

	correct := make(map[string]bool, len(s.answers))
	results := make([]AnswerResult, 0, len(s.answers))
	for _, p := range s.participants {
		answer, ok := s.answers[p.ID]
		if !ok {
			continue
		}
		isCorrect := answer == question.Answer
		correct[p.ID] = isCorrect
		results = append(results, AnswerResult{
			ParticipantID: p.ID,
			Name:          p.Name,
			TeamID:        s.teamIDOf(p.ID),
			Answer:        answer,
			Correct:       isCorrect,
		})
	}

	for _, team := range s.teams {
		count := 0
		for _, member := range team.Members {
			if correct[member.ID] {
				count++
			}
		}
		team.Score += awardPoints(count, len(team.Members))
	}

	roundNumber := s.completedRounds + 1

	s.questionIndex++
	if s.questionIndex >= len(gameFormats[s.currentFormat].Questions) {
		s.completedRounds++
		s.questionIndex = 0
	}
	s.currentQuestion = nil
	s.answers = make(map[string]string)
	s.timeLeft = 0
	s.epoch++

	return &questionResults{
		CorrectAnswer: question.Answer,
		Results:       results,
		Leaderboard:   s.Leaderboard(),
		RoundNumber:   roundNumber,
	}, true
}

// awardPoints converts a team's correct-member count into points. A zero
// member team counts as 0% correct rather than an error.
func awardPoints(correct, size int) int {
	switch {
	case size == 0:
		return 0
	case correct == size:
		return 100
	case 3*correct >= 2*size:
		return 75
	case 3*correct >= size:
		return 50
	default:
		return 0
	}
}

// Exhausted reports whether every round of the sequence has been played.
func (s *Session) Exhausted() bool {
	return s.completedRounds >= s.totalRounds
}

// EndTournament moves the tournament to ended and computes the final
// standings, including the last-place call-out. Ending an inactive
// tournament is a no-op.
func (s *Session) EndTournament() (*finalStandings, bool) {
	if !s.isActive {
		return nil, false
	}

	s.isActive = false
	s.ended = true
	s.currentQuestion = nil
	s.answers = make(map[string]string)
	s.timeLeft = 0
	s.epoch++

	leaderboard := s.Leaderboard()
	standings := &finalStandings{Leaderboard: leaderboard}
	if len(leaderboard) > 0 {
		standings.Loser = &leaderboard[len(leaderboard)-1]
	}

	return standings, true
}

// SetTotalRounds adjusts the sequence length for the next tournament.
func (s *Session) SetTotalRounds(n int) error {
	if s.isActive {
		return invalidCommand("round count cannot change while a tournament is running")
	}
	if n < 1 || n > 10 {
		return invalidConfiguration("round count must be between 1 and 10")
	}
	s.totalRounds = n
	return nil
}

// Leaderboard returns teams ordered by score descending. The sort is stable
// so tied teams keep their creation order across repeated renders.
func (s *Session) Leaderboard() []TeamStanding {
	standings := make([]TeamStanding, 0, len(s.teams))
	for _, team := range s.teams {
		standings = append(standings, TeamStanding{
			TeamID: team.ID,
			Name:   team.Name,
			Score:  team.Score,
		})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})
	return standings
}

// TeamSnapshot returns a deep value copy of the current teams. Outbound
// messages carry these copies so later score updates never reach into a
// message that already left the hub lock.
func (s *Session) TeamSnapshot() []Team {
	if len(s.teams) == 0 {
		return nil
	}
	snapshot := make([]Team, 0, len(s.teams))
	for _, team := range s.teams {
		copied := *team
		copied.Members = append([]Participant(nil), team.Members...)
		snapshot = append(snapshot, copied)
	}
	return snapshot
}

func (s *Session) hasParticipant(id string) bool {
	for _, p := range s.participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *Session) teamIDOf(participantID string) int {
	for _, team := range s.teams {
		for _, member := range team.Members {
			if member.ID == participantID {
				return team.ID
			}
		}
	}
	return 0
}

// sequenceNames maps the generated sequence to human-readable format names.
func (s *Session) sequenceNames() []string {
	names := make([]string, len(s.gameSequence))
	for i, idx := range s.gameSequence {
		names[i] = gameFormats[idx].Name
	}
	return names
}
