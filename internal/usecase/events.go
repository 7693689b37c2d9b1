package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/domain"
)

// publishEvent hands event to publisher. Delivery failures are logged and
// never fail the operation that produced the event.
func publishEvent(ctx context.Context, publisher EventPublisher, logger zerolog.Logger, event domain.Event) {
	if publisher == nil {
		return
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", event.Type).
			Str("owner_id", event.OwnerID).
			Msg("failed to publish event")
	}
}
