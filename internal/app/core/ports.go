package core

import (
	"context"

	"canteen/internal/domain/models"
)

// EventPublisher pushes order lifecycle events to the message broker. A nil
// broker config yields a no-op implementation; publishing is best effort and
// never fails the operation that triggered it.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent) error
	Close() error
}
