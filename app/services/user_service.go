package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inkpost/app/models"
	"inkpost/app/repositories"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration and credential checks.
type UserService struct {
	users  repositories.UserRepository
	cost   int
	now    func() time.Time
	logger *slog.Logger
}

// NewUserService creates a UserService hashing with the given bcrypt cost.
// Costs outside bcrypt's accepted range fall back to bcrypt.DefaultCost.
func NewUserService(users repositories.UserRepository, cost int, logger *slog.Logger) *UserService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{users: users, cost: cost, now: time.Now, logger: logger}
}

// Register creates an account. The password is stored only as a salted
// bcrypt hash.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = models.NormalizeEmail(email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, validationError(err)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: string(hashed), Name: name}
	user.BeforeCreate(s.now())
	if err := user.Validate(); err != nil {
		return nil, validationError(err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", slog.Int("user_id", user.ID))
	return user, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.GetByEmail(ctx, models.NormalizeEmail(email))
}

func (s *UserService) GetByID(ctx context.Context, id int) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// VerifyPassword compares raw against the stored hash in constant time.
func (s *UserService) VerifyPassword(user *models.User, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(raw)) == nil
}

// Authenticate returns the user owning email when raw is its password.
// Failures are ErrUnknownEmail or ErrWrongPassword, both of which match
// ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, raw string) (*models.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnknownEmail
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !s.VerifyPassword(user, raw) {
		return nil, ErrWrongPassword
	}
	return user, nil
}
