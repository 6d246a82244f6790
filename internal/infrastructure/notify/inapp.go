// Package notify provides the in-app notifier: notifications land in a
// table the UI polls. External delivery channels (email, SMS) are plugged
// in by the hosting application, not here.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/status"
	"github.com/salahatech/KFSH-Ordering-sub009/pkg/database"
)

// InAppNotifier writes notifications to the notifications table.
type InAppNotifier struct {
	db     *database.DB
	logger *zap.Logger
}

// NewInAppNotifier creates a new in-app notifier
func NewInAppNotifier(db *database.DB, logger *zap.Logger) *InAppNotifier {
	return &InAppNotifier{
		db:     db,
		logger: logger,
	}
}

// Notify records one notification for one user. Best-effort: the caller
// treats a failure as a logging matter, never as a reason to revert the
// state change that triggered it.
func (n *InAppNotifier) Notify(ctx context.Context, userID int64, title, message string, relatedEntityID int64, relatedEntityKind status.EntityKind) error {
	query := `
		INSERT INTO notifications (user_id, title, message, related_entity_id, related_entity_kind)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := n.db.Querier(ctx).ExecContext(ctx, query,
		userID, title, message, relatedEntityID, relatedEntityKind.String())
	if err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	n.logger.Debug("Notification stored",
		zap.Int64("user_id", userID),
		zap.String("title", title),
	)
	return nil
}
