package postgres

import (
	"context"
	"fmt"

	sharingDatamodel "github.com/frahmantamala/drive-sharing/internal/core/datamodel/sharing"
	"github.com/frahmantamala/drive-sharing/internal/sharing"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// activeGrantIndexes keep at most one active grant per target and grantee.
// The statements are valid on both PostgreSQL and SQLite.
var activeGrantIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_grants_active_file
		ON grants (file_id, grantee_id) WHERE active = TRUE AND file_id IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_grants_active_folder
		ON grants (folder_id, grantee_id) WHERE active = TRUE AND folder_id IS NOT NULL`,
}

// Migrate creates the ledger tables through gorm. It is used for SQLite and for
// auto_migrate; PostgreSQL deployments normally run the goose migrations instead.
func Migrate(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx)
	if err := tx.AutoMigrate(&sharingDatamodel.AccessLevel{}, &sharingDatamodel.Grant{}); err != nil {
		return fmt.Errorf("auto migrate sharing tables: %w", err)
	}
	for _, stmt := range activeGrantIndexes {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create active grant index: %w", err)
		}
	}
	return SeedAccessLevels(ctx, db)
}

// SeedAccessLevels inserts the fixed access levels, leaving existing rows alone.
func SeedAccessLevels(ctx context.Context, db *gorm.DB) error {
	levels := sharing.AccessLevels()
	rows := make([]sharingDatamodel.AccessLevel, 0, len(levels))
	for _, l := range levels {
		rows = append(rows, sharingDatamodel.AccessLevel{ID: l.ID, Name: l.Name, Description: l.Description})
	}

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("seed access levels: %w", err)
	}
	return nil
}
