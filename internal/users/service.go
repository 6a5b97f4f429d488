package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const minPasswordLength = 6

type Service struct {
	Repo Repo
	cost int
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, cost: bcrypt.DefaultCost}
}

// Register creates a password account. Only the bcrypt hash is stored.
func (s *Service) Register(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, user.ID)
}

// Authenticate checks a password login. Unknown emails and wrong passwords
// return the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if user.PasswordHash == "" {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// UpsertFromGoogle resolves a Google identity to a local user, linking an
// existing password account with the same email or creating a new one.
func (s *Service) UpsertFromGoogle(ctx context.Context, sub, email string) (User, error) {
	email = normalizeEmail(email)
	if strings.TrimSpace(sub) == "" || email == "" {
		return User{}, fmt.Errorf("%w: google sub and email are required", ErrInvalidInput)
	}
	if user, err := s.Repo.GetByGoogleSub(ctx, sub); err == nil {
		return user, nil
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.Repo.SetGoogleSub(ctx, user.ID, sub); err != nil {
			return User{}, err
		}
		user.GoogleSub = sub
		return user, nil
	case errors.Is(err, ErrNotFound):
		user = User{ID: uuid.NewString(), Email: email, GoogleSub: sub}
		if err := s.Repo.Create(ctx, user); err != nil {
			return User{}, err
		}
		return s.Repo.GetByID(ctx, user.ID)
	default:
		return User{}, err
	}
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
