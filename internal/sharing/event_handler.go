package sharing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/drive-sharing/internal/core/events"
)

// AuditHandler records every ledger change published on the event bus.
type AuditHandler struct {
	logger *slog.Logger
}

func NewAuditHandler(logger *slog.Logger) *AuditHandler {
	return &AuditHandler{logger: logger}
}

func (h *AuditHandler) HandleShareEvent(ctx context.Context, event events.Event) error {
	shareEvent, ok := event.(*events.ShareEvent)
	if !ok {
		h.logger.Error("invalid event type for share audit handler", "event_type", event.EventType())
		return fmt.Errorf("expected ShareEvent, got %T", event)
	}

	h.logger.InfoContext(ctx, "share audit",
		"event_type", shareEvent.EventType(),
		"event_id", shareEvent.EventID(),
		"grant_id", shareEvent.GrantID,
		"target_kind", shareEvent.TargetKind,
		"target_id", shareEvent.TargetID,
		"owner_id", shareEvent.OwnerID,
		"grantee_id", shareEvent.GranteeID,
		"access_level_id", shareEvent.AccessLevelID,
		"occurred_at", shareEvent.OccurredAt())

	return nil
}

func (h *AuditHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	types := []string{
		events.EventTypeShareGranted,
		events.EventTypeShareAccessUpdated,
		events.EventTypeShareRevoked,
	}
	for _, t := range types {
		eventBus.Subscribe(t, h.HandleShareEvent)
	}

	h.logger.Info("share audit handlers registered", "handlers", types)
}
