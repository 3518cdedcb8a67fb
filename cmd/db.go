package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/drive-sharing/internal"
	userDatamodel "github.com/frahmantamala/drive-sharing/internal/core/datamodel/user"
	sharingPostgres "github.com/frahmantamala/drive-sharing/internal/sharing/postgres"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Database holds the two views over one connection pool: gorm for the grant
// ledger and seeding, sqlx for directory reads.
type Database struct {
	Gorm *gorm.DB
	SQLX *sqlx.DB
}

func (d *Database) Close() error {
	return d.SQLX.Close()
}

// initDB opens the configured database and applies the pool settings.
func initDB(cfg internal.DatabaseConfig) (*Database, error) {
	var (
		dialector  gorm.Dialector
		sqlxDriver string
	)
	switch cfg.Driver {
	case internal.DriverSQLite:
		dialector = sqlite.Open(cfg.Source)
		sqlxDriver = "sqlite3"
	default:
		// gorm's postgres dialector runs on the pgx stdlib driver.
		dialector = postgres.Open(cfg.Source)
		sqlxDriver = "pgx"
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.Driver == internal.DriverSQLite {
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		Gorm: gdb,
		SQLX: sqlx.NewDb(sqlDB, sqlxDriver),
	}, nil
}

// autoMigrate creates every table through gorm.
func autoMigrate(ctx context.Context, db *Database) error {
	if err := db.Gorm.WithContext(ctx).AutoMigrate(&userDatamodel.User{}); err != nil {
		return fmt.Errorf("auto migrate users: %w", err)
	}
	return sharingPostgres.Migrate(ctx, db.Gorm)
}
