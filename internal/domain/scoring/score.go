package scoring

import "codearena/internal/domain/model"

// PointsPerAcceptedCase is awarded for every test case a submission passes.
const PointsPerAcceptedCase = 2

// SubmissionScore returns the numeric score for one submission's verdicts:
// two points per accepted test case. Nil or empty input scores zero.
func SubmissionScore(verdicts []string) int {
	score := 0
	for _, v := range verdicts {
		if v == model.VerdictAccepted {
			score += PointsPerAcceptedCase
		}
	}
	return score
}

// SubmissionStatus derives the correctness field for a submission: Accepted
// iff every test case passed. This is distinct from the numeric score.
func SubmissionStatus(verdicts []string) model.SubmissionStatus {
	if len(verdicts) == 0 {
		return model.SubmissionRejected
	}
	for _, v := range verdicts {
		if v != model.VerdictAccepted {
			return model.SubmissionRejected
		}
	}
	return model.SubmissionAccepted
}

// TotalScore recomputes a participant's room score by summing over their full
// submission history. Deliberately not maintained incrementally: recomputation
// keeps the total consistent with the append-only submission log under
// concurrent submissions.
func TotalScore(submissions []model.Submission) int {
	total := 0
	for _, sub := range submissions {
		total += SubmissionScore(sub.TestCaseResults)
	}
	return total
}
