package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	GivenName    string    `gorm:"column:given_name;not null"`
	FamilyName   string    `gorm:"column:family_name;not null;default:''"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CountryID    *int64    `gorm:"column:country_id"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
