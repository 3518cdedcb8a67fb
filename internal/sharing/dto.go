package sharing

import (
	"time"

	"github.com/frahmantamala/drive-sharing/internal"
	"github.com/frahmantamala/drive-sharing/internal/core/common/validation"
)

// ShareItemDTO is the body of POST /shares.
type ShareItemDTO struct {
	TargetKind    string `json:"target_kind"`
	TargetID      int64  `json:"target_id"`
	Email         string `json:"email"`
	AccessLevelID int64  `json:"access_level_id"`
}

func (d ShareItemDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("target_kind", d.TargetKind).
		Required().
		OneOf(internal.ErrCodeInvalidTarget, string(TargetFile), string(TargetFolder))
	v.Field("target_id", d.TargetID).
		Required().
		MinInt(1, internal.ErrCodeInvalidTarget)
	v.Field("email", d.Email).
		Required().
		MaxLength(254)
	v.Field("access_level_id", d.AccessLevelID).
		Required()

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateAccessDTO is the body of PATCH /shares/{id}.
type UpdateAccessDTO struct {
	AccessLevelID int64 `json:"access_level_id"`
}

func (d UpdateAccessDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("access_level_id", d.AccessLevelID).Required()

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ListOptions struct {
	ActiveOnly bool
}

type GrantResponse struct {
	ID            int64      `json:"id"`
	TargetKind    TargetKind `json:"target_kind"`
	TargetID      int64      `json:"target_id"`
	FileID        *int64     `json:"file_id,omitempty"`
	FolderID      *int64     `json:"folder_id,omitempty"`
	OwnerID       int64      `json:"owner_id"`
	GranteeID     int64      `json:"grantee_id"`
	AccessLevelID int64      `json:"access_level_id"`
	AccessLevel   string     `json:"access_level"`
	GrantedAt     time.Time  `json:"granted_at"`
	Active        bool       `json:"active"`
}

type GrantsResponse struct {
	Grants []GrantResponse `json:"grants"`
}

type AccessLevelsResponse struct {
	AccessLevels []AccessLevel `json:"access_levels"`
}

func toGrantsResponse(grants []*Grant) GrantsResponse {
	responses := make([]GrantResponse, 0, len(grants))
	for _, g := range grants {
		responses = append(responses, g.ToResponse())
	}
	return GrantsResponse{Grants: responses}
}
