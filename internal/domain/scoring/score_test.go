package scoring

import (
	"testing"

	"codearena/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionScore(t *testing.T) {
	tests := []struct {
		name     string
		verdicts []string
		want     int
	}{
		{"nil verdicts", nil, 0},
		{"empty verdicts", []string{}, 0},
		{"all accepted", []string{"Accepted", "Accepted", "Accepted"}, 6},
		{"mixed verdicts", []string{"Accepted", "WrongAnswer", "Accepted"}, 4},
		{"none accepted", []string{"WrongAnswer", "TimeLimitExceeded"}, 0},
		{"case sensitive", []string{"accepted", "ACCEPTED"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubmissionScore(tt.verdicts))
		})
	}
}

func TestSubmissionStatus(t *testing.T) {
	assert.Equal(t, model.SubmissionAccepted, SubmissionStatus([]string{"Accepted", "Accepted"}))
	assert.Equal(t, model.SubmissionRejected, SubmissionStatus([]string{"Accepted", "WrongAnswer"}))
	assert.Equal(t, model.SubmissionRejected, SubmissionStatus(nil))
	assert.Equal(t, model.SubmissionRejected, SubmissionStatus([]string{}))
}

func TestTotalScore(t *testing.T) {
	submissions := []model.Submission{
		{TestCaseResults: []string{"Accepted", "Accepted"}},
		{TestCaseResults: []string{"Accepted", "WrongAnswer"}},
		{TestCaseResults: nil},
	}
	assert.Equal(t, 6, TotalScore(submissions))
	assert.Equal(t, 0, TotalScore(nil))
}
