package notifier

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier surfaces the approval token through the process log. It is
// the demo channel: an operator copies the token from the log to approve or
// reject the request.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier. A nil logger falls back to
// a no-op logger.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify writes the action-required block with the resumption token.
func (n *LogNotifier) Notify(_ context.Context, notification *Notification) error {
	fields := []zap.Field{
		zap.String("requestId", notification.InstanceID),
		zap.String("approvalToken", notification.Token),
	}
	for key, value := range notification.Payload {
		fields = append(fields, zap.Any(key, value))
	}
	n.logger.Info("ACTION REQUIRED: approval pending, use the token to approve or reject", fields...)
	return nil
}
