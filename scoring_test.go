package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scoringSession builds a session with one open question and a fixed team
// layout, bypassing the shuffle so tests can target exact memberships.
func scoringSession(answer string, teams ...[]Participant) *Session {
	s := newSession(1)
	for i, members := range teams {
		for _, m := range members {
			s.participants = append(s.participants, m)
		}
		s.teams = append(s.teams, &Team{
			ID:      i + 1,
			Name:    "Team " + string(rune('A'+i)),
			Members: append([]Participant(nil), members...),
		})
	}
	s.teamsFormed = true
	s.isActive = true
	s.gameSequence = []int{0}
	s.currentFormat = 0
	s.currentQuestion = &Question{ID: 99, Prompt: "???", Answer: answer, Hint: "hint"}
	s.timeLeft = 30
	s.answers = make(map[string]string)
	return s
}

func TestAwardPoints(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		size    int
		want    int
	}{
		{name: "all of three", correct: 3, size: 3, want: 100},
		{name: "two of three", correct: 2, size: 3, want: 75},
		{name: "one of three", correct: 1, size: 3, want: 50},
		{name: "none of three", correct: 0, size: 3, want: 0},
		{name: "both of two", correct: 2, size: 2, want: 100},
		{name: "one of two", correct: 1, size: 2, want: 50},
		{name: "solo correct", correct: 1, size: 1, want: 100},
		{name: "solo wrong", correct: 0, size: 1, want: 0},
		{name: "empty team", correct: 0, size: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, awardPoints(tt.correct, tt.size))
		})
	}
}

func TestScoringTwoThirdsCorrect(t *testing.T) {
	team := makeParticipants(3)
	s := scoringSession("dangal", team)

	require.NoError(t, s.SubmitAnswer(team[0].ID, "Dangal "))
	require.NoError(t, s.SubmitAnswer(team[1].ID, "DANGAL"))
	require.NoError(t, s.SubmitAnswer(team[2].ID, "sholay"))

	results, ok := s.CloseQuestion()
	require.True(t, ok)

	assert.Equal(t, 75, s.teams[0].Score)
	assert.Equal(t, "dangal", results.CorrectAnswer)
	require.Len(t, results.Results, 3)

	correct := 0
	for _, r := range results.Results {
		assert.Equal(t, 1, r.TeamID)
		if r.Correct {
			correct++
		}
	}
	assert.Equal(t, 2, correct)
}

func TestScoringNoAnswerDistinctFromWrongAnswer(t *testing.T) {
	team := makeParticipants(3)
	s := scoringSession("wish", team)

	require.NoError(t, s.SubmitAnswer(team[0].ID, "wish"))
	require.NoError(t, s.SubmitAnswer(team[1].ID, "hope"))
	// team[2] never answers

	results, ok := s.CloseQuestion()
	require.True(t, ok)

	require.Len(t, results.Results, 2)
	for _, r := range results.Results {
		assert.NotEqual(t, team[2].ID, r.ParticipantID)
	}
}

func TestScoringLastWriteWins(t *testing.T) {
	team := makeParticipants(3)
	s := scoringSession("friends", team)

	require.NoError(t, s.SubmitAnswer(team[0].ID, "enemies"))
	require.NoError(t, s.SubmitAnswer(team[0].ID, "Friends"))

	results, ok := s.CloseQuestion()
	require.True(t, ok)

	require.Len(t, results.Results, 1)
	assert.True(t, results.Results[0].Correct)
	assert.Equal(t, "friends", results.Results[0].Answer)
	assert.Equal(t, 50, s.teams[0].Score)
}

func TestScoringAccumulatesAcrossQuestions(t *testing.T) {
	team := makeParticipants(3)
	s := scoringSession("memory", team)

	for _, m := range team {
		require.NoError(t, s.SubmitAnswer(m.ID, "memory"))
	}
	_, ok := s.CloseQuestion()
	require.True(t, ok)
	assert.Equal(t, 100, s.teams[0].Score)

	s.currentQuestion = &Question{ID: 100, Prompt: "???", Answer: "future", Hint: "hint"}
	s.answers = make(map[string]string)
	require.NoError(t, s.SubmitAnswer(team[0].ID, "future"))

	_, ok = s.CloseQuestion()
	require.True(t, ok)
	assert.Equal(t, 150, s.teams[0].Score)
}

func TestScoringIdempotentClose(t *testing.T) {
	team := makeParticipants(3)
	s := scoringSession("success", team)

	require.NoError(t, s.SubmitAnswer(team[0].ID, "success"))

	_, ok := s.CloseQuestion()
	require.True(t, ok)
	scoreAfterFirst := s.teams[0].Score
	boardAfterFirst := s.Leaderboard()

	results, ok := s.CloseQuestion()
	assert.False(t, ok)
	assert.Nil(t, results)
	assert.Equal(t, scoreAfterFirst, s.teams[0].Score)
	assert.Equal(t, boardAfterFirst, s.Leaderboard())
}

func TestLeaderboardTieOrderStable(t *testing.T) {
	s := newSession(3)
	s.teams = []*Team{
		{ID: 1, Name: "Team A", Score: 150},
		{ID: 2, Name: "Team B", Score: 150},
		{ID: 3, Name: "Team C", Score: 75},
	}

	first := s.Leaderboard()
	require.Len(t, first, 3)
	assert.Equal(t, 1, first[0].TeamID)
	assert.Equal(t, 2, first[1].TeamID)
	assert.Equal(t, 3, first[2].TeamID)

	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Leaderboard())
	}
}

func TestScoringMultipleTeams(t *testing.T) {
	all := makeParticipants(6)
	teamA, teamB := all[:3], all[3:]
	s := scoringSession("together", teamA, teamB)

	for _, m := range teamA {
		require.NoError(t, s.SubmitAnswer(m.ID, "together"))
	}
	require.NoError(t, s.SubmitAnswer(teamB[0].ID, "together"))

	results, ok := s.CloseQuestion()
	require.True(t, ok)

	assert.Equal(t, 100, s.teams[0].Score)
	assert.Equal(t, 50, s.teams[1].Score)

	require.Len(t, results.Leaderboard, 2)
	assert.Equal(t, 1, results.Leaderboard[0].TeamID)
	assert.Equal(t, 2, results.Leaderboard[1].TeamID)
}
