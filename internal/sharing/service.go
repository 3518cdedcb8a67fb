package sharing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	sharingDatamodel "github.com/frahmantamala/drive-sharing/internal/core/datamodel/sharing"
	"github.com/frahmantamala/drive-sharing/internal/core/events"
	"github.com/frahmantamala/drive-sharing/internal/directory"
)

// RepositoryAPI is the sharing ledger. GetByID and FindActive return (nil, nil) when nothing matches.
type RepositoryAPI interface {
	Create(ctx context.Context, grant *sharingDatamodel.Grant) error
	GetByID(ctx context.Context, id int64) (*sharingDatamodel.Grant, error)
	FindActive(ctx context.Context, target TargetRef, granteeID int64) (*sharingDatamodel.Grant, error)
	ListByTarget(ctx context.Context, target TargetRef, activeOnly bool) ([]*sharingDatamodel.Grant, error)
	ListByGrantee(ctx context.Context, granteeID int64, activeOnly bool) ([]*sharingDatamodel.Grant, error)
	UpdateAccessLevel(ctx context.Context, id int64, accessLevelID int64) error
	Deactivate(ctx context.Context, id int64) error
}

type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*directory.User, error)
	SearchUsers(ctx context.Context, query string) ([]*directory.User, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      RepositoryAPI
	users     UserDirectory
	publisher EventPublisher
	logger    *slog.Logger
	latency   time.Duration
	now       func() time.Time

	// mu makes the duplicate check and the append of ShareItem one step.
	mu sync.Mutex
}

// NewService wires the ledger and directory. publisher may be nil; latency is a fixed
// pause applied before each new grant is written.
func NewService(repo RepositoryAPI, users UserDirectory, publisher EventPublisher, logger *slog.Logger, latency time.Duration) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		publisher: publisher,
		logger:    logger,
		latency:   latency,
		now:       time.Now,
	}
}

func (s *Service) AccessLevels() []AccessLevel {
	return AccessLevels()
}

func (s *Service) ShareItem(ctx context.Context, ownerID int64, target TargetRef, granteeEmail string, accessLevelID int64) (*Grant, error) {
	if target.IsZero() {
		return nil, ErrInvalidTarget
	}
	if !IsValidAccessLevel(accessLevelID) {
		s.logger.Warn("share rejected: unknown access level", "access_level_id", accessLevelID)
		return nil, ErrInvalidAccessLevel
	}

	grantee, err := s.users.GetByEmail(ctx, granteeEmail)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			s.logger.Warn("share rejected: grantee not found", "target", target.String())
			return nil, ErrUserNotFound
		}
		s.logger.Error("failed to resolve grantee", "error", err)
		return nil, fmt.Errorf("failed to resolve grantee: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.FindActive(ctx, target, grantee.ID)
	if err != nil {
		s.logger.Error("failed to check existing grants", "error", err, "target", target.String())
		return nil, fmt.Errorf("failed to check existing grants: %w", err)
	}
	if existing != nil {
		s.logger.Warn("share rejected: duplicate grant",
			"target", target.String(),
			"grantee_id", grantee.ID,
			"existing_grant_id", existing.ID)
		return nil, ErrDuplicateGrant
	}

	if s.latency > 0 {
		time.Sleep(s.latency)
	}

	grant := NewGrant(target, ownerID, grantee.ID, accessLevelID, s.now())
	data := ToDataModel(grant)
	if err := s.repo.Create(ctx, data); err != nil {
		if errors.Is(err, ErrDuplicateGrant) {
			return nil, ErrDuplicateGrant
		}
		s.logger.Error("failed to create grant", "error", err, "target", target.String())
		return nil, fmt.Errorf("failed to create grant: %w", err)
	}
	grant.ID = data.ID

	s.publish(ctx, events.EventTypeShareGranted, grant)

	s.logger.Info("item shared",
		"grant_id", grant.ID,
		"target", target.String(),
		"owner_id", ownerID,
		"grantee_id", grantee.ID,
		"access_level_id", accessLevelID)

	return grant, nil
}

// UpdateAccess changes the level of any grant, active or revoked. grantedAt is preserved.
func (s *Service) UpdateAccess(ctx context.Context, grantID int64, newAccessLevelID int64) (*Grant, error) {
	if !IsValidAccessLevel(newAccessLevelID) {
		return nil, ErrInvalidAccessLevel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	grant, err := s.getGrant(ctx, grantID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAccessLevel(ctx, grantID, newAccessLevelID); err != nil {
		s.logger.Error("failed to update access level", "error", err, "grant_id", grantID)
		return nil, fmt.Errorf("failed to update access level: %w", err)
	}
	previous := grant.AccessLevelID
	grant.AccessLevelID = newAccessLevelID

	s.publish(ctx, events.EventTypeShareAccessUpdated, grant)

	s.logger.Info("grant access updated",
		"grant_id", grantID,
		"from_access_level_id", previous,
		"to_access_level_id", newAccessLevelID)

	return grant, nil
}

// RevokeAccess soft-deletes a grant. Revoking an already revoked grant succeeds without effect.
func (s *Service) RevokeAccess(ctx context.Context, grantID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, err := s.getGrant(ctx, grantID)
	if err != nil {
		return err
	}

	if !grant.IsActiveGrant() {
		s.logger.Debug("grant already revoked", "grant_id", grantID)
		return nil
	}

	if err := s.repo.Deactivate(ctx, grantID); err != nil {
		s.logger.Error("failed to revoke grant", "error", err, "grant_id", grantID)
		return fmt.Errorf("failed to revoke grant: %w", err)
	}
	grant.Active = false

	s.publish(ctx, events.EventTypeShareRevoked, grant)

	s.logger.Info("grant revoked", "grant_id", grantID, "grantee_id", grant.GranteeID)
	return nil
}

func (s *Service) GetGrant(ctx context.Context, grantID int64) (*Grant, error) {
	return s.getGrant(ctx, grantID)
}

// ListGrantsForItem returns grants on target in insertion order. Revoked grants are
// included unless opts.ActiveOnly is set.
func (s *Service) ListGrantsForItem(ctx context.Context, target TargetRef, opts ListOptions) ([]*Grant, error) {
	if target.IsZero() {
		return nil, ErrInvalidTarget
	}

	rows, err := s.repo.ListByTarget(ctx, target, opts.ActiveOnly)
	if err != nil {
		s.logger.Error("failed to list grants for item", "error", err, "target", target.String())
		return nil, fmt.Errorf("failed to list grants for item: %w", err)
	}
	return fromDataModels(rows)
}

func (s *Service) ListSharedWithUser(ctx context.Context, userID int64, opts ListOptions) ([]*Grant, error) {
	rows, err := s.repo.ListByGrantee(ctx, userID, opts.ActiveOnly)
	if err != nil {
		s.logger.Error("failed to list grants for grantee", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list shared items: %w", err)
	}
	return fromDataModels(rows)
}

func (s *Service) SearchUsers(ctx context.Context, query string) ([]*directory.User, error) {
	return s.users.SearchUsers(ctx, query)
}

func (s *Service) getGrant(ctx context.Context, grantID int64) (*Grant, error) {
	row, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		s.logger.Error("failed to load grant", "error", err, "grant_id", grantID)
		return nil, fmt.Errorf("failed to load grant: %w", err)
	}
	if row == nil {
		return nil, ErrGrantNotFound
	}
	return FromDataModel(row)
}

func (s *Service) publish(ctx context.Context, eventType string, g *Grant) {
	if s.publisher == nil {
		return
	}
	event := events.NewShareEvent(eventType, g.ID, string(g.Target.Kind()), g.Target.ID(), g.OwnerID, g.GranteeID, g.AccessLevelID)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish share event", "event_type", eventType, "grant_id", g.ID, "error", err)
	}
}
