package sharing

import "time"

// Grant is one row of the sharing ledger. Exactly one of FileID and FolderID is set.
type Grant struct {
	ID            int64     `gorm:"primaryKey"`
	FileID        *int64    `gorm:"column:file_id;index"`
	FolderID      *int64    `gorm:"column:folder_id;index"`
	OwnerID       int64     `gorm:"column:owner_id;not null"`
	GranteeID     int64     `gorm:"column:grantee_id;not null;index"`
	AccessLevelID int64     `gorm:"column:access_level_id;not null"`
	GrantedAt     time.Time `gorm:"column:granted_at;not null"`
	Active        bool      `gorm:"column:active;not null"`
}

func (Grant) TableName() string {
	return "grants"
}

type AccessLevel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false"`
	Name        string `gorm:"column:name;uniqueIndex;not null"`
	Description string `gorm:"column:description"`
}

func (AccessLevel) TableName() string {
	return "access_levels"
}
