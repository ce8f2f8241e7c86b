package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codearena/internal/common"
	"codearena/internal/domain/model"
)

type RankRepository interface {
	FindRankForRating(ctx context.Context, rating int) (*model.Rank, error)
	ListRanks(ctx context.Context) ([]model.Rank, error)
}

type pgRankRepository struct {
	db *sql.DB
}

func NewPgRankRepository(db *sql.DB) RankRepository {
	return &pgRankRepository{db: db}
}

func (r *pgRankRepository) FindRankForRating(ctx context.Context, rating int) (*model.Rank, error) {
	query := `SELECT id, title, min_rating, max_rating, icon FROM ranks
	          WHERE min_rating <= $1 AND max_rating >= $1
	          LIMIT 1`
	rank := &model.Rank{}
	err := r.db.QueryRowContext(ctx, query, rating).Scan(&rank.ID, &rank.Title, &rank.MinRating, &rank.MaxRating, &rank.Icon)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgRankRepository.FindRankForRating: %w", err)
	}
	return rank, nil
}

func (r *pgRankRepository) ListRanks(ctx context.Context) ([]model.Rank, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, min_rating, max_rating, icon FROM ranks ORDER BY min_rating ASC`)
	if err != nil {
		return nil, fmt.Errorf("pgRankRepository.ListRanks query: %w", err)
	}
	defer rows.Close()

	var ranks []model.Rank
	for rows.Next() {
		var rank model.Rank
		if err := rows.Scan(&rank.ID, &rank.Title, &rank.MinRating, &rank.MaxRating, &rank.Icon); err != nil {
			return nil, fmt.Errorf("pgRankRepository.ListRanks scan: %w", err)
		}
		ranks = append(ranks, rank)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgRankRepository.ListRanks rows.Err: %w", err)
	}
	return ranks, nil
}
