package notify

import (
	"context"

	"go.uber.org/zap"
)

type zapNotifier struct {
	log *zap.Logger
}

// NewZapNotifier emits events to the service log. It stands in for an
// outbound channel like email or chat in deployments without one.
func NewZapNotifier(log *zap.Logger) Notifier {
	return &zapNotifier{log: log.Named("notify")}
}

func (n *zapNotifier) Notify(_ context.Context, event string, fields map[string]any) {
	zapFields := make([]zap.Field, 0, len(fields)+1)
	zapFields = append(zapFields, zap.String("event", event))
	for key, value := range fields {
		zapFields = append(zapFields, zap.Any(key, value))
	}
	n.log.Info("notification", zapFields...)
}
