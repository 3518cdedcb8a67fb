package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/frahmantamala/drive-sharing/internal/directory"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, given_name, family_name, password_hash, country_id, is_active`

type userRow struct {
	ID           int64         `db:"id"`
	Email        string        `db:"email"`
	GivenName    string        `db:"given_name"`
	FamilyName   string        `db:"family_name"`
	PasswordHash string        `db:"password_hash"`
	CountryID    sql.NullInt64 `db:"country_id"`
	IsActive     bool          `db:"is_active"`
}

func (r userRow) toDomain() *directory.User {
	u := &directory.User{
		ID:           r.ID,
		Email:        r.Email,
		GivenName:    r.GivenName,
		FamilyName:   r.FamilyName,
		PasswordHash: r.PasswordHash,
		IsActive:     r.IsActive,
	}
	if r.CountryID.Valid {
		id := r.CountryID.Int64
		u.CountryID = &id
	}
	return u
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) directory.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*directory.User, error) {
	var row userRow
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, directory.ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*directory.User, error) {
	var row userRow
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = ?`)
	if err := r.db.GetContext(ctx, &row, query, strings.ToLower(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, directory.ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// Search expects an already lower-cased query.
func (r *UserRepository) Search(ctx context.Context, query string) ([]*directory.User, error) {
	pattern := "%" + escapeLike(query) + "%"
	stmt := r.db.Rebind(`SELECT ` + userColumns + ` FROM users
		WHERE LOWER(email) LIKE ? ESCAPE '\'
		   OR LOWER(given_name) LIKE ? ESCAPE '\'
		   OR LOWER(family_name) LIKE ? ESCAPE '\'
		ORDER BY id ASC`)

	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, stmt, pattern, pattern, pattern); err != nil {
		return nil, err
	}

	users := make([]*directory.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
