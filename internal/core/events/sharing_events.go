package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeShareGranted       = "share.granted"
	EventTypeShareAccessUpdated = "share.access_updated"
	EventTypeShareRevoked       = "share.revoked"
)

// ShareEvent describes a change to one grant of the sharing ledger.
type ShareEvent struct {
	BaseEvent
	GrantID       int64  `json:"grant_id"`
	TargetKind    string `json:"target_kind"`
	TargetID      int64  `json:"target_id"`
	OwnerID       int64  `json:"owner_id"`
	GranteeID     int64  `json:"grantee_id"`
	AccessLevelID int64  `json:"access_level_id"`
}

func NewShareEvent(eventType string, grantID int64, targetKind string, targetID, ownerID, granteeID, accessLevelID int64) *ShareEvent {
	return &ShareEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"grant_id":        grantID,
				"target_kind":     targetKind,
				"target_id":       targetID,
				"owner_id":        ownerID,
				"grantee_id":      granteeID,
				"access_level_id": accessLevelID,
			},
		},
		GrantID:       grantID,
		TargetKind:    targetKind,
		TargetID:      targetID,
		OwnerID:       ownerID,
		GranteeID:     granteeID,
		AccessLevelID: accessLevelID,
	}
}
