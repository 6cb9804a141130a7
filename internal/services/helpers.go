package services

import (
	"context"
	"time"
)

// ChangeNotifier receives entity change events for realtime subscribers.
// Implementations must not block; a nil notifier disables notifications.
type ChangeNotifier interface {
	NotifyChange(resource, action string, id int64)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func nowMilli() int64 {
	return time.Now().UnixMilli()
}

func notify(n ChangeNotifier, resource, action string, id int64) {
	if n != nil {
		n.NotifyChange(resource, action, id)
	}
}
