package service

import (
	"context"

	"codearena/internal/common"
	"codearena/internal/domain/repository"
)

type RankService struct {
	rankRepo repository.RankRepository
	userRepo repository.UserRepository
}

func NewRankService(rankRepo repository.RankRepository, userRepo repository.UserRepository) *RankService {
	return &RankService{rankRepo: rankRepo, userRepo: userRepo}
}

type RankResponse struct {
	RankTitle     string `json:"rank_title"`
	Rating        int    `json:"rating"`
	MinimumRating int    `json:"minimum_rating"`
	MaximumRating int    `json:"maximum_rating"`
	RankIcon      string `json:"rank_icon"`
}

// GetUserRank resolves the caller's rating into its display band.
func (s *RankService) GetUserRank(ctx context.Context, userID string) (*RankResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, common.Errorf("user not found: %w", err)
	}
	rank, err := s.rankRepo.FindRankForRating(ctx, user.Rating)
	if err != nil {
		return nil, common.Errorf("no rank configured for rating: %w", err)
	}
	return &RankResponse{
		RankTitle:     rank.Title,
		Rating:        user.Rating,
		MinimumRating: rank.MinRating,
		MaximumRating: rank.MaxRating,
		RankIcon:      rank.Icon,
	}, nil
}
