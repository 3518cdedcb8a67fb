package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/frahmantamala/drive-sharing/internal/core/events"
	"github.com/frahmantamala/drive-sharing/internal/sharing"
	"github.com/frahmantamala/drive-sharing/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish test share events through the audit handlers`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [event-type]",
	Short:     "Publish a test share event",
	Long:      `Publish a test share event to the event bus for testing and debugging`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{events.EventTypeShareGranted, events.EventTypeShareAccessUpdated, events.EventTypeShareRevoked},
	Run: func(cmd *cobra.Command, args []string) {
		if err := publishTestEvent(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var (
	eventTargetKind string
	eventTargetID   int64
	eventGrantee    int64
	eventLevel      int64
)

func publishTestEvent(eventType string) error {
	lg := logger.LoggerWrapper()

	target, err := sharing.ParseTarget(eventTargetKind, eventTargetID)
	if err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}

	eventBus := events.NewEventBus(lg)
	sharing.NewAuditHandler(lg).RegisterEventHandlers(eventBus)

	event := events.NewShareEvent(eventType, 0, string(target.Kind()), target.ID(), 0, eventGrantee, eventLevel)

	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())

	if err := eventBus.Publish(context.Background(), event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	eventBus.Wait()

	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventTargetKind, "target-kind", string(sharing.TargetFile), "file or folder")
	publishEventCmd.Flags().Int64Var(&eventTargetID, "target-id", 1, "target id")
	publishEventCmd.Flags().Int64Var(&eventGrantee, "grantee", 2, "grantee user id")
	publishEventCmd.Flags().Int64Var(&eventLevel, "access-level", sharing.AccessViewer, "access level id")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
