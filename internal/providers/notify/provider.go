// Package notify delivers operational notifications about settlement events.
package notify

import "context"

// Notifier receives lifecycle events. Implementations must be safe for
// concurrent use; callers treat delivery as fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, event string, fields map[string]any)
}

// NoOp discards every event.
type NoOp struct{}

func (NoOp) Notify(context.Context, string, map[string]any) {}
