package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"codearena/internal/domain/model"
)

type SubmissionRepository interface {
	// CreateSubmission appends a new attempt. Submission history is never
	// updated or deleted.
	CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	ListUserRoomSubmissions(ctx context.Context, roomID, userID string) ([]model.Submission, error)
	CountUserRoomSubmissions(ctx context.Context, roomID, userID string) (int, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	results, err := json.Marshal(sub.TestCaseResults)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission marshal results: %w", err)
	}

	query := `INSERT INTO submissions (id, user_id, room_id, problem_id, language_id, source_code, status, test_case_results, score)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, sub.ID, sub.UserID, sub.RoomID, sub.ProblemID, sub.LanguageID, sub.SourceCode, sub.Status, results, sub.Score)
	} else {
		_, err = r.db.ExecContext(ctx, query, sub.ID, sub.UserID, sub.RoomID, sub.ProblemID, sub.LanguageID, sub.SourceCode, sub.Status, results, sub.Score)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) ListUserRoomSubmissions(ctx context.Context, roomID, userID string) ([]model.Submission, error) {
	query := `SELECT id, user_id, room_id, problem_id, language_id, source_code, status, test_case_results, score, submitted_at
	          FROM submissions WHERE room_id = $1 AND user_id = $2 ORDER BY submitted_at ASC`
	rows, err := r.db.QueryContext(ctx, query, roomID, userID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListUserRoomSubmissions query: %w", err)
	}
	defer rows.Close()

	var submissions []model.Submission
	for rows.Next() {
		var sub model.Submission
		var results []byte
		if err := rows.Scan(
			&sub.ID, &sub.UserID, &sub.RoomID, &sub.ProblemID, &sub.LanguageID,
			&sub.SourceCode, &sub.Status, &results, &sub.Score, &sub.SubmittedAt,
		); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListUserRoomSubmissions scan: %w", err)
		}
		if err := json.Unmarshal(results, &sub.TestCaseResults); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListUserRoomSubmissions unmarshal results: %w", err)
		}
		submissions = append(submissions, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListUserRoomSubmissions rows.Err: %w", err)
	}
	return submissions, nil
}

func (r *pgSubmissionRepository) CountUserRoomSubmissions(ctx context.Context, roomID, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions WHERE room_id = $1 AND user_id = $2`, roomID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgSubmissionRepository.CountUserRoomSubmissions: %w", err)
	}
	return count, nil
}
