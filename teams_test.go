package main

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeParticipants(n int) []Participant {
	participants := make([]Participant, 0, n)
	for i := 0; i < n; i++ {
		participants = append(participants, Participant{
			ID:   fmt.Sprintf("conn-%d", i),
			Name: fmt.Sprintf("Player %d", i),
		})
	}
	return participants
}

func TestFormTeamsRequiresThreeParticipants(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for n := 0; n < 3; n++ {
		teams, err := formTeams(makeParticipants(n), rng)
		assert.Nil(t, teams, "n=%d", n)
		assert.ErrorIs(t, err, ErrInsufficientParticipants, "n=%d", n)
	}
}

func TestFormTeamsPartitionProperties(t *testing.T) {
	for n := 3; n <= 12; n++ {
		rng := rand.New(rand.NewSource(int64(n)))

		teams, err := formTeams(makeParticipants(n), rng)
		require.NoError(t, err, "n=%d", n)
		require.NotEmpty(t, teams, "n=%d", n)

		seen := make(map[string]bool)
		total := 0
		for i, team := range teams {
			assert.Equal(t, i+1, team.ID)
			assert.Equal(t, fmt.Sprintf("Team %d", i+1), team.Name)
			assert.Zero(t, team.Score)
			assert.GreaterOrEqual(t, len(team.Members), 1)
			assert.LessOrEqual(t, len(team.Members), teamSize)

			for _, member := range team.Members {
				assert.False(t, seen[member.ID], "participant %s assigned twice (n=%d)", member.ID, n)
				seen[member.ID] = true
				total++
			}
		}
		assert.Equal(t, n, total, "n=%d", n)
	}
}

func TestFormTeamsSizes(t *testing.T) {
	tests := []struct {
		n     int
		sizes []int
	}{
		{n: 3, sizes: []int{3}},
		{n: 4, sizes: []int{3, 1}},
		{n: 5, sizes: []int{3, 2}},
		{n: 6, sizes: []int{3, 3}},
		{n: 7, sizes: []int{3, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			rng := rand.New(rand.NewSource(99))

			teams, err := formTeams(makeParticipants(tt.n), rng)
			require.NoError(t, err)
			require.Len(t, teams, len(tt.sizes))

			for i, want := range tt.sizes {
				assert.Len(t, teams[i].Members, want)
			}
		})
	}
}

func TestFormTeamsReplacesPreviousPartition(t *testing.T) {
	s := newSession(3)
	for _, p := range makeParticipants(6) {
		s.AddParticipant(p.ID, p.Name)
	}

	first, err := s.FormTeams(rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.True(t, s.teamsFormed)

	first[0].Score = 150

	s.AddParticipant("conn-late", "Latecomer")
	second, err := s.FormTeams(rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	assert.Len(t, second, 3)
	total := 0
	for _, team := range second {
		assert.Zero(t, team.Score)
		total += len(team.Members)
	}
	assert.Equal(t, 7, total)
}
