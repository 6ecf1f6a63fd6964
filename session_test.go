package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/suite"
)

type SessionTestSuite struct {
	suite.Suite

	session *Session
	rng     *rand.Rand
}

func (s *SessionTestSuite) SetupTest() {
	s.rng = rand.New(rand.NewSource(7))
	s.session = newSession(3)
	for _, p := range makeParticipants(6) {
		s.session.AddParticipant(p.ID, p.Name)
	}
}

func (s *SessionTestSuite) formAndStart() {
	_, err := s.session.FormTeams(s.rng)
	s.Require().NoError(err)
	s.Require().NoError(s.session.StartTournament(s.rng))
}

func (s *SessionTestSuite) TestStartRequiresTeams() {
	err := s.session.StartTournament(s.rng)
	s.ErrorIs(err, ErrInvalidCommand)
	s.False(s.session.isActive)
}

func (s *SessionTestSuite) TestStartGeneratesSequence() {
	s.formAndStart()

	s.True(s.session.isActive)
	s.Require().Len(s.session.gameSequence, 3)
	for _, idx := range s.session.gameSequence {
		s.GreaterOrEqual(idx, 0)
		s.Less(idx, len(gameFormats))
	}
	s.Len(s.session.sequenceNames(), 3)
}

func (s *SessionTestSuite) TestStartWhileActiveRejected() {
	s.formAndStart()

	err := s.session.StartTournament(s.rng)
	s.ErrorIs(err, ErrInvalidCommand)
}

func (s *SessionTestSuite) TestStartResetsScores() {
	_, err := s.session.FormTeams(s.rng)
	s.Require().NoError(err)
	s.session.teams[0].Score = 125

	s.Require().NoError(s.session.StartTournament(s.rng))

	for _, team := range s.session.teams {
		s.Zero(team.Score)
	}
}

func (s *SessionTestSuite) TestOpenNextQuestionWalksTheRound() {
	s.session.totalRounds = 1
	s.formAndStart()

	qs, err := s.session.OpenNextQuestion(30)
	s.Require().NoError(err)
	s.Require().NotNil(qs)
	s.True(qs.NewRound)
	s.Equal(1, qs.RoundNumber)
	s.Equal(1, qs.QuestionNumber)
	s.Equal(30, s.session.timeLeft)

	count := qs.QuestionCount
	for i := 2; i <= count; i++ {
		_, ok := s.session.CloseQuestion()
		s.Require().True(ok)

		qs, err = s.session.OpenNextQuestion(30)
		s.Require().NoError(err)
		s.Require().NotNil(qs)
		s.False(qs.NewRound)
		s.Equal(i, qs.QuestionNumber)
	}

	_, ok := s.session.CloseQuestion()
	s.Require().True(ok)
	s.True(s.session.Exhausted())

	qs, err = s.session.OpenNextQuestion(30)
	s.NoError(err)
	s.Nil(qs)
}

func (s *SessionTestSuite) TestRoundBoundaryCrossing() {
	s.session.totalRounds = 2
	s.formAndStart()

	qs, err := s.session.OpenNextQuestion(30)
	s.Require().NoError(err)
	questionsPerRound := qs.QuestionCount

	for i := 1; i < questionsPerRound; i++ {
		_, ok := s.session.CloseQuestion()
		s.Require().True(ok)
		_, err = s.session.OpenNextQuestion(30)
		s.Require().NoError(err)
	}

	_, ok := s.session.CloseQuestion()
	s.Require().True(ok)
	s.Equal(1, s.session.completedRounds)
	s.False(s.session.Exhausted())

	qs, err = s.session.OpenNextQuestion(30)
	s.Require().NoError(err)
	s.Require().NotNil(qs)
	s.True(qs.NewRound)
	s.Equal(2, qs.RoundNumber)
	s.Equal(1, qs.QuestionNumber)
}

func (s *SessionTestSuite) TestOpenWhileQuestionOpenRejected() {
	s.formAndStart()

	_, err := s.session.OpenNextQuestion(30)
	s.Require().NoError(err)

	qs, err := s.session.OpenNextQuestion(30)
	s.Nil(qs)
	s.ErrorIs(err, ErrInvalidCommand)
}

func (s *SessionTestSuite) TestOpenWithoutTournamentRejected() {
	qs, err := s.session.OpenNextQuestion(30)
	s.Nil(qs)
	s.ErrorIs(err, ErrInvalidCommand)
}

func (s *SessionTestSuite) TestSubmitWithoutOpenQuestionRejected() {
	s.formAndStart()

	err := s.session.SubmitAnswer("conn-0", "anything")
	s.ErrorIs(err, ErrInvalidCommand)
}

func (s *SessionTestSuite) TestSubmitFromUnknownParticipantRejected() {
	s.formAndStart()
	_, err := s.session.OpenNextQuestion(30)
	s.Require().NoError(err)

	s.ErrorIs(s.session.SubmitAnswer("conn-unknown", "anything"), ErrInvalidCommand)
}

func (s *SessionTestSuite) TestEpochAdvancesOnOpenAndClose() {
	s.formAndStart()

	before := s.session.epoch
	_, err := s.session.OpenNextQuestion(30)
	s.Require().NoError(err)
	s.Equal(before+1, s.session.epoch)

	_, ok := s.session.CloseQuestion()
	s.Require().True(ok)
	s.Equal(before+2, s.session.epoch)
}

func (s *SessionTestSuite) TestEndTournament() {
	s.formAndStart()
	_, err := s.session.OpenNextQuestion(30)
	s.Require().NoError(err)

	standings, ok := s.session.EndTournament()
	s.Require().True(ok)
	s.False(s.session.isActive)
	s.Nil(s.session.currentQuestion)
	s.Require().Len(standings.Leaderboard, len(s.session.teams))
	s.Require().NotNil(standings.Loser)
	s.Equal(standings.Leaderboard[len(standings.Leaderboard)-1], *standings.Loser)

	again, ok := s.session.EndTournament()
	s.False(ok)
	s.Nil(again)
}

func (s *SessionTestSuite) TestSetTotalRounds() {
	s.ErrorIs(s.session.SetTotalRounds(0), ErrInvalidConfiguration)
	s.ErrorIs(s.session.SetTotalRounds(11), ErrInvalidConfiguration)

	s.Require().NoError(s.session.SetTotalRounds(5))
	s.Equal(5, s.session.totalRounds)

	s.formAndStart()
	s.ErrorIs(s.session.SetTotalRounds(4), ErrInvalidCommand)
	s.Equal(5, s.session.totalRounds)
}

func (s *SessionTestSuite) TestRemoveParticipantDiscardsPendingAnswer() {
	s.formAndStart()
	_, err := s.session.OpenNextQuestion(30)
	s.Require().NoError(err)

	s.Require().NoError(s.session.SubmitAnswer("conn-0", "dangal"))
	s.Equal(1, s.session.AnswerCount())

	s.True(s.session.RemoveParticipant("conn-0"))
	s.Zero(s.session.AnswerCount())
	s.Len(s.session.participants, 5)

	// Other participants can still answer.
	s.NoError(s.session.SubmitAnswer("conn-1", "dangal"))
}

func TestSessionTestSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}
