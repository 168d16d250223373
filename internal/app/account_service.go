package app

import (
	"context"
	"errors"
	"time"

	"tutor-game-service/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AccountService handles registration and credential checks.
type AccountService struct {
	users UserStore
	now   func() time.Time
}

func NewAccountService(users UserStore) *AccountService {
	return &AccountService{users: users, now: time.Now}
}

// Register creates a user with zeroed counters.
func (s *AccountService) Register(ctx context.Context, username, password string) error {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.users.Create(ctx, domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		BestScore:    0,
		Stats:        domain.Stats{},
		CreatedAt:    s.now(),
	})
}

// Login verifies the password for an existing user.
func (s *AccountService) Login(ctx context.Context, username, password string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidCredentials
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.ErrInvalidCredentials
	}
	return nil
}
