package notify

import (
	"context"

	"go.uber.org/zap"

	apporder "github.com/supplytrace/backend/internal/application/order"
)

// LogNotifier emits notifications to the structured log. It stands in
// for a real delivery channel (email, webhook) in single-instance
// deployments and keeps the notification path observable either way.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify writes the notification at info level
func (n *LogNotifier) Notify(_ context.Context, notification apporder.Notification) error {
	n.logger.Info("purchase order notification",
		zap.String("type", notification.Type),
		zap.String("po_id", notification.POID.String()),
		zap.String("po_number", notification.PONumber),
		zap.String("target_company_id", notification.TargetCompanyID.String()),
		zap.Any("payload", notification.Payload),
	)
	return nil
}

var _ apporder.Notifier = (*LogNotifier)(nil)
