package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Search(ctx context.Context, query string) ([]*User, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

// GetByEmail resolves an email address to a user, ignoring case and surrounding whitespace.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrNotFound
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// SearchUsers matches the query case-insensitively against email, given name and family name.
// A blank query yields no users rather than the whole directory.
func (s *Service) SearchUsers(ctx context.Context, query string) ([]*User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*User{}, nil
	}

	users, err := s.repo.Search(ctx, strings.ToLower(query))
	if err != nil {
		s.logger.Error("failed to search users", "error", err, "query", query)
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	if users == nil {
		users = []*User{}
	}

	s.logger.Debug("user search completed", "query", query, "count", len(users))
	return users, nil
}
