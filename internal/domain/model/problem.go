package model

import (
	"time"
)

type ProblemDifficulty string

const (
	DifficultyEasy   ProblemDifficulty = "Easy"
	DifficultyMedium ProblemDifficulty = "Medium"
	DifficultyHard   ProblemDifficulty = "Hard"
)

type Problem struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Constraints string            `json:"constraints"`
	Difficulty  ProblemDifficulty `json:"difficulty"`
	CreatedByID *string           `json:"created_by_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	TestCases   []TestCase        `json:"test_cases,omitempty"`
	Templates   []Template        `json:"templates,omitempty"`
}

type TestCase struct {
	ID             string    `json:"id"`
	ProblemID      string    `json:"problem_id"`
	Input          string    `json:"input"`
	ExpectedOutput string    `json:"expected_output"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
}

// Template is the per-language starter code shipped with a problem.
type Template struct {
	ID         string    `json:"id"`
	ProblemID  string    `json:"problem_id"`
	LanguageID string    `json:"language_id"`
	Code       string    `json:"code"`
	CreatedAt  time.Time `json:"created_at"`
}
