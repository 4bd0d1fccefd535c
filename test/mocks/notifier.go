package mocks

import (
	"context"

	"github.com/beautypk/photo-arena/internal/notify"
)

// MockNotifier is a simple mock for the achievement unlock notifier
type MockNotifier struct {
	NotifyUnlockFunc func(ctx context.Context, event *notify.UnlockEvent) error

	Events []*notify.UnlockEvent
}

func (m *MockNotifier) NotifyUnlock(ctx context.Context, event *notify.UnlockEvent) error {
	if m.NotifyUnlockFunc != nil {
		return m.NotifyUnlockFunc(ctx, event)
	}
	m.Events = append(m.Events, event)
	return nil
}
