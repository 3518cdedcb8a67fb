package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	sharingDatamodel "github.com/frahmantamala/drive-sharing/internal/core/datamodel/sharing"
	userDatamodel "github.com/frahmantamala/drive-sharing/internal/core/datamodel/user"
	"github.com/frahmantamala/drive-sharing/internal/directory"
	"github.com/frahmantamala/drive-sharing/internal/sharing"
	sharingPostgres "github.com/frahmantamala/drive-sharing/internal/sharing/postgres"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const seedPassword = "password"

type seedUser struct {
	Email      string
	GivenName  string
	FamilyName string
}

var seedUsers = []seedUser{
	{"usuario@ejemplo.com", "Juan", "Pérez"},
	{"maria.garcia@ejemplo.com", "María", "García"},
	{"carlos.lopez@ejemplo.com", "Carlos", "López"},
	{"ana.martinez@ejemplo.com", "Ana", "Martínez"},
}

type seedGrant struct {
	Target     sharing.TargetRef
	OwnerEmail string
	ToEmail    string
	Level      int64
	GrantedAt  time.Time
}

var seedGrants = []seedGrant{
	{sharing.File(1), "usuario@ejemplo.com", "maria.garcia@ejemplo.com", sharing.AccessCommenter, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	{sharing.Folder(1), "usuario@ejemplo.com", "carlos.lopez@ejemplo.com", sharing.AccessViewer, time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC)},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users, the access levels and a few grants for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		lg := setupLogger(cfg)

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if err := sharingPostgres.SeedAccessLevels(ctx, db.Gorm); err != nil {
			log.Fatalf("failed to seed access levels: %v", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		ids, err := seedDirectory(ctx, db.Gorm, string(hash))
		if err != nil {
			log.Fatalf("failed to seed users: %v", err)
		}
		lg.Info("seeded users", "count", len(ids))

		if clearData {
			if err := db.Gorm.WithContext(ctx).Where("1 = 1").Delete(&sharingDatamodel.Grant{}).Error; err != nil {
				log.Fatalf("failed to clear grants: %v", err)
			}
			lg.Info("cleared existing grants")
		}

		created, err := seedLedger(ctx, db.Gorm, ids)
		if err != nil {
			log.Fatalf("failed to seed grants: %v", err)
		}

		fmt.Printf("Seed complete: %d users, %d new grants (password %q)\n", len(ids), created, seedPassword)
	},
}

// seedDirectory inserts missing seed users and returns every seed user's id by email.
func seedDirectory(ctx context.Context, db *gorm.DB, passwordHash string) (map[string]int64, error) {
	countryID := int64(1)
	ids := make(map[string]int64, len(seedUsers))

	for _, su := range seedUsers {
		row := directory.ToDataModel(&directory.User{
			Email:        su.Email,
			GivenName:    su.GivenName,
			FamilyName:   su.FamilyName,
			PasswordHash: passwordHash,
			CountryID:    &countryID,
			IsActive:     true,
		})
		err := db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
			Create(row).Error
		if err != nil {
			return nil, fmt.Errorf("insert %s: %w", su.Email, err)
		}

		var existing userDatamodel.User
		if err := db.WithContext(ctx).Where("email = ?", su.Email).First(&existing).Error; err != nil {
			return nil, fmt.Errorf("lookup %s: %w", su.Email, err)
		}
		ids[su.Email] = directory.FromDataModel(&existing).ID
	}

	return ids, nil
}

// seedLedger adds the sample grants that are not already active.
func seedLedger(ctx context.Context, db *gorm.DB, ids map[string]int64) (int, error) {
	repo := sharingPostgres.NewGrantRepository(db)
	created := 0

	for _, sg := range seedGrants {
		grantee := ids[sg.ToEmail]
		existing, err := repo.FindActive(ctx, sg.Target, grantee)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}

		g := sharing.NewGrant(sg.Target, ids[sg.OwnerEmail], grantee, sg.Level, sg.GrantedAt)
		if err := repo.Create(ctx, sharing.ToDataModel(g)); err != nil {
			return created, fmt.Errorf("grant %s to %s: %w", sg.Target, sg.ToEmail, err)
		}
		created++
	}

	return created, nil
}
