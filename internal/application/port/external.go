package port

import (
	"context"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/status"
)

// Notifier delivers a notification to a single user. Implementations are
// best-effort: the caller logs failures and never retries or rolls back the
// state change that triggered the notification.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message string, relatedEntityID int64, relatedEntityKind status.EntityKind) error
}
