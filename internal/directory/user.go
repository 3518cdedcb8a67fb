package directory

import (
	"errors"
	"strings"

	userDatamodel "github.com/frahmantamala/drive-sharing/internal/core/datamodel/user"
)

// User is a registered account as seen by the sharing dialogs.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	GivenName    string `json:"given_name"`
	FamilyName   string `json:"family_name"`
	CountryID    *int64 `json:"country_id,omitempty"`
	IsActive     bool   `json:"is_active"`
	PasswordHash string `json:"-"`
}

var ErrNotFound = errors.New("user not found")

func (u *User) DisplayName() string {
	return strings.TrimSpace(u.GivenName + " " + u.FamilyName)
}

func (u *User) IsActiveUser() bool {
	return u.IsActive
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		GivenName:   u.GivenName,
		FamilyName:  u.FamilyName,
		DisplayName: u.DisplayName(),
		CountryID:   u.CountryID,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		GivenName:    u.GivenName,
		FamilyName:   u.FamilyName,
		PasswordHash: u.PasswordHash,
		CountryID:    u.CountryID,
		IsActive:     u.IsActive,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		GivenName:    u.GivenName,
		FamilyName:   u.FamilyName,
		PasswordHash: u.PasswordHash,
		CountryID:    u.CountryID,
		IsActive:     u.IsActive,
	}
}
