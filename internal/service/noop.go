package service

import (
	"context"

	"github.com/dinebook/dinebook/internal/domain"
)

// NoopNotifier satisfies Notifier when no broker is configured.
type NoopNotifier struct{}

func (NoopNotifier) BookingCreated(context.Context, *domain.Booking) error       { return nil }
func (NoopNotifier) BookingStatusChanged(context.Context, *domain.Booking) error { return nil }

// NoopInvalidator satisfies CacheInvalidator when no cache is configured.
type NoopInvalidator struct{}

func (NoopInvalidator) InvalidatePattern(context.Context, string) error { return nil }
