package service

import (
	"context"
	"database/sql"

	"codearena/internal/common"
	"codearena/internal/domain/model"
	"codearena/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ProblemService struct {
	problemRepo repository.ProblemRepository

	runTx func(ctx context.Context, fn func(tx *sql.Tx) error) error
}

func NewProblemService(problemRepo repository.ProblemRepository, db *sql.DB) *ProblemService {
	s := &ProblemService{problemRepo: problemRepo}
	s.runTx = func(ctx context.Context, fn func(tx *sql.Tx) error) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return common.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()
		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	}
	return s
}

type CreateProblemRequest struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Constraints string                  `json:"constraints"`
	Difficulty  model.ProblemDifficulty `json:"difficulty"`
	TestCases   []model.TestCase        `json:"test_cases"`
	Templates   []model.Template        `json:"templates"`
}

func (s *ProblemService) CreateProblem(ctx context.Context, userID string, req CreateProblemRequest) (*model.Problem, error) {
	if req.Title == "" || req.Description == "" || req.Difficulty == "" || len(req.TestCases) == 0 {
		return nil, common.Errorf("missing required fields for problem creation: %w", common.ErrValidation)
	}
	switch req.Difficulty {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return nil, common.Errorf("unknown difficulty: %w", common.ErrValidation)
	}

	problem := &model.Problem{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		Constraints: req.Constraints,
		Difficulty:  req.Difficulty,
		CreatedByID: &userID,
	}

	for i := range req.TestCases {
		if req.TestCases[i].ID == "" {
			req.TestCases[i].ID = uuid.NewString()
		}
	}
	for i := range req.Templates {
		if req.Templates[i].ID == "" {
			req.Templates[i].ID = uuid.NewString()
		}
	}

	err := s.runTx(ctx, func(tx *sql.Tx) error {
		if err := s.problemRepo.CreateProblem(ctx, tx, problem); err != nil {
			return common.Errorf("failed to create problem: %w", err)
		}
		if err := s.problemRepo.AddTestCases(ctx, tx, problem.ID, req.TestCases); err != nil {
			return common.Errorf("failed to add test cases: %w", err)
		}
		if err := s.problemRepo.AddTemplates(ctx, tx, problem.ID, req.Templates); err != nil {
			return common.Errorf("failed to add templates: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	problem.TestCases = req.TestCases
	problem.Templates = req.Templates
	return problem, nil
}

func (s *ProblemService) GetProblemDetails(ctx context.Context, problemSlug string) (*model.Problem, error) {
	problem, err := s.problemRepo.FindProblemBySlug(ctx, problemSlug)
	if err != nil {
		return nil, err
	}

	testCases, err := s.problemRepo.GetTestCasesByProblemID(ctx, problem.ID)
	if err != nil {
		return nil, common.Errorf("failed to load test cases: %w", err)
	}
	problem.TestCases = testCases

	templates, err := s.problemRepo.GetTemplatesByProblemID(ctx, problem.ID)
	if err != nil {
		return nil, common.Errorf("failed to load templates: %w", err)
	}
	problem.Templates = templates

	return problem, nil
}

func (s *ProblemService) ListProblems(ctx context.Context, page, pageSize int, difficulty model.ProblemDifficulty, searchTerm string) ([]model.Problem, int, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	return s.problemRepo.ListProblems(ctx, pageSize, offset, difficulty, searchTerm)
}
