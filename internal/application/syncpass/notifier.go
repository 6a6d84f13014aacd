package syncpass

import (
	"context"

	"go.uber.org/zap"

	"github.com/sellerstats/backend/internal/application/report"
)

// LogNotifier writes notices to the log. It stands in when no delivery
// channel is wired.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notifier")}
}

// Notify logs each notice
func (n *LogNotifier) Notify(ctx context.Context, notices []report.OrderNotice) error {
	for i := range notices {
		n.logger.Info("Order notice",
			zap.Int64("user_id", notices[i].UserID),
			zap.Int64("external_id", notices[i].ExternalID),
			zap.Int64("order_id", notices[i].Order.ID),
			zap.Bool("degraded", notices[i].Degraded()),
			zap.String("text", notices[i].Text()),
		)
	}
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
