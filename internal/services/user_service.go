package services

import (
	"context"
	"time"

	"github.com/healthchat/backend/internal/domain"
	apperrors "github.com/healthchat/backend/internal/errors"
)

// UserService exposes profile lookup and the derived daily burn target.
type UserService struct {
	users domain.UserRepository
}

func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetByID fetches the profile, ErrUserNotFound when no row exists.
func (s *UserService) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

// RecommendedBurn estimates a daily exercise calorie target: roughly 15% of
// the Mifflin-St Jeor resting energy expenditure, 300 kcal when the profile
// is too sparse to compute it.
func (s *UserService) RecommendedBurn(user *domain.User) float64 {
	if user.Weight <= 0 || user.Height <= 0 {
		return 300
	}
	age := user.Age(time.Now())
	bmr := 10*user.Weight + 6.25*user.Height - 5*float64(age)
	if user.Gender == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}
	burn := bmr * 0.15
	if burn < 100 {
		burn = 100
	}
	return burn
}
