package model

import "time"

type SubmissionStatus string

const (
	// VerdictAccepted is the canonical per-test-case pass verdict; anything
	// else counts as a failed test case.
	VerdictAccepted = "Accepted"

	SubmissionAccepted SubmissionStatus = "Accepted"
	SubmissionRejected SubmissionStatus = "Rejected"
)

// Submission is one graded attempt at one problem within a room. Rows are
// append-only: every attempt is kept, never overwritten.
type Submission struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	RoomID          string           `json:"room_id"`
	ProblemID       string           `json:"problem_id"`
	LanguageID      string           `json:"language_id"`
	SourceCode      string           `json:"source_code"`
	Status          SubmissionStatus `json:"status"`
	TestCaseResults []string         `json:"test_case_results"`
	Score           int              `json:"score"`
	SubmittedAt     time.Time        `json:"submitted_at"`
}
