package service

import (
	"context"
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// FollowState reports whether the requester follows the target after a toggle.
type FollowState struct {
	UserID    uint `json:"user_id"`
	Following bool `json:"following"`
}

// Toggle follows the target if not followed, unfollows otherwise.
func (s *FollowService) Toggle(ctx context.Context, followerID, followeeID uint) (*FollowState, error) {
	if followerID == followeeID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, models.NewInternalError(err)
	}

	following, err := s.followRepo.Toggle(ctx, followerID, followeeID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &FollowState{UserID: followeeID, Following: following}, nil
}

func (s *FollowService) Followers(ctx context.Context, userID uint) ([]*models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, models.NewInternalError(err)
	}
	users, err := s.followRepo.Followers(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (s *FollowService) Following(ctx context.Context, userID uint) ([]*models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, models.NewInternalError(err)
	}
	users, err := s.followRepo.Following(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
