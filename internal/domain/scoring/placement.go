package scoring

import (
	"sort"

	"codearena/internal/domain/model"
)

// RankFinishers assigns dense competition placements ("1224" style) to the
// given finished participants, in place. Ordering key: total score descending,
// then earlier finish time first. Participants sharing a score share a
// placement; the next distinct score takes the 1-based position of its first
// holder. Recomputes every placement from scratch, so repeated calls over the
// same snapshot are idempotent.
func RankFinishers(participants []*model.Participant) {
	sort.SliceStable(participants, func(i, j int) bool {
		if participants[i].TotalScore != participants[j].TotalScore {
			return participants[i].TotalScore > participants[j].TotalScore
		}
		fi, fj := participants[i].FinishedAt, participants[j].FinishedAt
		if fi == nil || fj == nil {
			return fj == nil && fi != nil
		}
		return fi.Before(*fj)
	})

	for i, p := range participants {
		if i == 0 || p.TotalScore != participants[i-1].TotalScore {
			p.Placement = i + 1
		} else {
			p.Placement = participants[i-1].Placement
		}
	}
}
