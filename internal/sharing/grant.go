package sharing

import (
	"fmt"
	"time"

	sharingDatamodel "github.com/frahmantamala/drive-sharing/internal/core/datamodel/sharing"
)

// Grant is one permission extended by an owner to a grantee over a single target.
type Grant struct {
	ID            int64
	Target        TargetRef
	OwnerID       int64
	GranteeID     int64
	AccessLevelID int64
	GrantedAt     time.Time
	Active        bool
}

func NewGrant(target TargetRef, ownerID, granteeID, accessLevelID int64, grantedAt time.Time) *Grant {
	return &Grant{
		Target:        target,
		OwnerID:       ownerID,
		GranteeID:     granteeID,
		AccessLevelID: accessLevelID,
		GrantedAt:     grantedAt,
		Active:        true,
	}
}

func (g *Grant) IsActiveGrant() bool {
	return g.Active
}

func (g *Grant) IsOwnedBy(userID int64) bool {
	return g.OwnerID == userID
}

func (g *Grant) ToResponse() GrantResponse {
	fileID, folderID := g.Target.Columns()
	level, _ := LookupAccessLevel(g.AccessLevelID)
	return GrantResponse{
		ID:            g.ID,
		TargetKind:    g.Target.Kind(),
		TargetID:      g.Target.ID(),
		FileID:        fileID,
		FolderID:      folderID,
		OwnerID:       g.OwnerID,
		GranteeID:     g.GranteeID,
		AccessLevelID: g.AccessLevelID,
		AccessLevel:   level.Name,
		GrantedAt:     g.GrantedAt,
		Active:        g.Active,
	}
}

func ToDataModel(g *Grant) *sharingDatamodel.Grant {
	fileID, folderID := g.Target.Columns()
	return &sharingDatamodel.Grant{
		ID:            g.ID,
		FileID:        fileID,
		FolderID:      folderID,
		OwnerID:       g.OwnerID,
		GranteeID:     g.GranteeID,
		AccessLevelID: g.AccessLevelID,
		GrantedAt:     g.GrantedAt,
		Active:        g.Active,
	}
}

func FromDataModel(g *sharingDatamodel.Grant) (*Grant, error) {
	target, err := TargetFromColumns(g.FileID, g.FolderID)
	if err != nil {
		return nil, fmt.Errorf("grant %d: %w", g.ID, err)
	}
	return &Grant{
		ID:            g.ID,
		Target:        target,
		OwnerID:       g.OwnerID,
		GranteeID:     g.GranteeID,
		AccessLevelID: g.AccessLevelID,
		GrantedAt:     g.GrantedAt,
		Active:        g.Active,
	}, nil
}

func fromDataModels(rows []*sharingDatamodel.Grant) ([]*Grant, error) {
	grants := make([]*Grant, 0, len(rows))
	for _, row := range rows {
		g, err := FromDataModel(row)
		if err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, nil
}
