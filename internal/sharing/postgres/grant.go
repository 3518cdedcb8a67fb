package postgres

import (
	"context"
	"errors"

	sharingDatamodel "github.com/frahmantamala/drive-sharing/internal/core/datamodel/sharing"
	"github.com/frahmantamala/drive-sharing/internal/sharing"
	"gorm.io/gorm"
)

type GrantRepository struct {
	db *gorm.DB
}

func NewGrantRepository(db *gorm.DB) sharing.RepositoryAPI {
	return &GrantRepository{db: db}
}

// Create relies on the partial unique index over active grants; the gorm session must be
// opened with TranslateError so the violation surfaces as gorm.ErrDuplicatedKey.
func (r *GrantRepository) Create(ctx context.Context, grant *sharingDatamodel.Grant) error {
	err := r.db.WithContext(ctx).Create(grant).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return sharing.ErrDuplicateGrant
	}
	return err
}

func (r *GrantRepository) GetByID(ctx context.Context, id int64) (*sharingDatamodel.Grant, error) {
	var grant sharingDatamodel.Grant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

func (r *GrantRepository) FindActive(ctx context.Context, target sharing.TargetRef, granteeID int64) (*sharingDatamodel.Grant, error) {
	var grant sharingDatamodel.Grant
	err := r.targetScope(ctx, target).
		Where("grantee_id = ? AND active = ?", granteeID, true).
		First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

func (r *GrantRepository) ListByTarget(ctx context.Context, target sharing.TargetRef, activeOnly bool) ([]*sharingDatamodel.Grant, error) {
	query := r.targetScope(ctx, target)
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var grants []*sharingDatamodel.Grant
	err := query.Order("id ASC").Find(&grants).Error
	return grants, err
}

func (r *GrantRepository) ListByGrantee(ctx context.Context, granteeID int64, activeOnly bool) ([]*sharingDatamodel.Grant, error) {
	query := r.db.WithContext(ctx).Where("grantee_id = ?", granteeID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var grants []*sharingDatamodel.Grant
	err := query.Order("id ASC").Find(&grants).Error
	return grants, err
}

func (r *GrantRepository) UpdateAccessLevel(ctx context.Context, id int64, accessLevelID int64) error {
	result := r.db.WithContext(ctx).Model(&sharingDatamodel.Grant{}).
		Where("id = ?", id).
		Update("access_level_id", accessLevelID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sharing.ErrGrantNotFound
	}
	return nil
}

func (r *GrantRepository) Deactivate(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Model(&sharingDatamodel.Grant{}).
		Where("id = ?", id).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sharing.ErrGrantNotFound
	}
	return nil
}

func (r *GrantRepository) targetScope(ctx context.Context, target sharing.TargetRef) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&sharingDatamodel.Grant{})
	if target.Kind() == sharing.TargetFolder {
		return query.Where("folder_id = ?", target.ID())
	}
	return query.Where("file_id = ?", target.ID())
}
