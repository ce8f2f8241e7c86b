package scoring

import (
	"testing"
	"time"

	"codearena/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedParticipant(userID string, score int, finishedAt time.Time) *model.Participant {
	return &model.Participant{UserID: userID, TotalScore: score, FinishedAt: &finishedAt}
}

func placementsByUser(participants []*model.Participant) map[string]int {
	out := make(map[string]int, len(participants))
	for _, p := range participants {
		out[p.UserID] = p.Placement
	}
	return out
}

func TestRankFinishersDenseCompetition(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	participants := []*model.Participant{
		finishedParticipant("a", 50, base),
		finishedParticipant("b", 50, base.Add(time.Minute)),
		finishedParticipant("c", 30, base),
		finishedParticipant("d", 10, base),
	}

	RankFinishers(participants)

	// "1224" ranking: ties share a rank, the next distinct score resumes at
	// the 1-based position of its first holder.
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 3, "d": 4}, placementsByUser(participants))
}

func TestRankFinishersFinishTimeTieBreak(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	participants := []*model.Participant{
		finishedParticipant("late", 40, base.Add(5*time.Minute)),
		finishedParticipant("early", 40, base),
	}

	RankFinishers(participants)

	// Equal scores share a placement, but the earlier finisher sorts first
	// and never receives the higher number.
	require.Equal(t, "early", participants[0].UserID)
	assert.Equal(t, 1, participants[0].Placement)
	assert.Equal(t, 1, participants[1].Placement)
}

func TestRankFinishersIdempotent(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	participants := []*model.Participant{
		finishedParticipant("a", 20, base),
		finishedParticipant("b", 20, base.Add(time.Second)),
		finishedParticipant("c", 5, base),
	}

	RankFinishers(participants)
	first := placementsByUser(participants)
	RankFinishers(participants)

	assert.Equal(t, first, placementsByUser(participants))
}

func TestRankFinishersEmpty(t *testing.T) {
	assert.NotPanics(t, func() { RankFinishers(nil) })
	assert.NotPanics(t, func() { RankFinishers([]*model.Participant{}) })
}
