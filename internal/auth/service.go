package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vkarpovich/docvault/internal/models"
	"github.com/vkarpovich/docvault/internal/storage"
)

// ErrInvalidCredentials is returned by Verify for an unknown username
// or a wrong password. The two cases are deliberately not
// distinguishable by the caller.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service verifies login attempts against stored user records and
// seeds the initial account on first boot.
type Service struct {
	logger *slog.Logger
	users  storage.UserStorage
}

// NewService creates a new credential service
func NewService(logger *slog.Logger, users storage.UserStorage) *Service {
	return &Service{
		logger: logger,
		users:  users,
	}
}

// Verify looks up the user by exact username and checks the password
// against the stored argon2id digest. Fails closed with
// ErrInvalidCredentials when the user is absent.
func (s *Service) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// not critical, log and continue
		s.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	return user, nil
}

// Bootstrap seeds a single account when the users table is empty.
// Subsequent boots are a no-op. The credentials come from config; the
// shipped defaults are a known weakness and should be overridden in
// any real deployment.
func (s *Service) Bootstrap(ctx context.Context, username, password string) error {
	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create bootstrap user: %w", err)
	}

	s.logger.InfoContext(ctx, "seeded bootstrap user", slog.String("username", username))

	return nil
}
