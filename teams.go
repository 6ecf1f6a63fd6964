package main

import (
	"fmt"
	"math/rand"
)

const (
	teamSize        = 3
	minParticipants = 3
	maxNameLength   = 20
)

// SessionError is a recoverable command failure. It is reported back to the
// issuing client only and never leaves session state half-applied.
type SessionError struct {
	Code    string
	Message string
}

func (e *SessionError) Error() string {
	return e.Message
}

// Is matches on code so callers can compare against the sentinel values
// below regardless of the human-readable text.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	return ok && t.Code == e.Code
}

var (
	ErrInsufficientParticipants = &SessionError{Code: "insufficient-participants", Message: fmt.Sprintf("at least %d participants are needed to form teams", minParticipants)}
	ErrInvalidCommand           = &SessionError{Code: "invalid-command", Message: "command is not valid in the current state"}
	ErrInvalidConfiguration     = &SessionError{Code: "invalid-configuration", Message: "configuration value out of range"}
	ErrUnauthorized             = &SessionError{Code: "unauthorized", Message: "admin credential required"}
)

func invalidCommand(message string) *SessionError {
	return &SessionError{Code: ErrInvalidCommand.Code, Message: message}
}

func invalidConfiguration(message string) *SessionError {
	return &SessionError{Code: ErrInvalidConfiguration.Code, Message: message}
}

// Participant is one connected player. The ID is the opaque connection id,
// stable for the connection's lifetime.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Team is a fixed group of up to three participants sharing one score.
// Membership is immutable after formation; only the score changes.
type Team struct {
	ID      int           `json:"id"`
	Name    string        `json:"name"`
	Members []Participant `json:"members"`
	Score   int           `json:"score"`
}

// formTeams partitions the participants into teams of three wherever
// possible. Participants are shuffled uniformly, full teams are cut in
// shuffled order, and any 1-2 leftovers are folded round-robin into teams
// that still have room. A fresh undersized team is only created when every
// existing team is already full.
func formTeams(participants []Participant, rng *rand.Rand) ([]*Team, error) {
	if len(participants) < minParticipants {
		return nil, ErrInsufficientParticipants
	}

	shuffled := make([]Participant, len(participants))
	copy(shuffled, participants)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	full := len(shuffled) / teamSize

	teams := make([]*Team, 0, full+1)
	for i := 0; i < full; i++ {
		teams = append(teams, &Team{
			ID:      i + 1,
			Name:    fmt.Sprintf("Team %d", i+1),
			Members: append([]Participant(nil), shuffled[i*teamSize:(i+1)*teamSize]...),
		})
	}

	next := 0
	for _, leftover := range shuffled[full*teamSize:] {
		placed := false
		for range teams {
			team := teams[next%len(teams)]
			next++
			if len(team.Members) < teamSize {
				team.Members = append(team.Members, leftover)
				placed = true
				break
			}
		}
		if !placed {
			teams = append(teams, &Team{
				ID:      len(teams) + 1,
				Name:    fmt.Sprintf("Team %d", len(teams)+1),
				Members: []Participant{leftover},
			})
		}
	}

	return teams, nil
}
