package eventpublisher

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/metrics"
)

// ErrQueueFull is returned by Publish when the dispatcher cannot keep up.
var ErrQueueFull = errors.New("event queue is full")

// Sink delivers a single event to an external system.
type Sink interface {
	Publish(ctx context.Context, event domain.Event) error
}

// EventPublisher queues events in memory and delivers them to a Sink from
// a background worker, so request handling never waits on the broker.
type EventPublisher struct {
	sink         Sink
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	queue        chan domain.Event
	drainTimeout time.Duration
}

// Config for EventPublisher.
type Config struct {
	Sink    Sink
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
	// BufferSize is the number of events held before Publish starts failing.
	BufferSize int
	// DrainTimeout bounds delivery of queued events after shutdown.
	DrainTimeout time.Duration
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}

	return &EventPublisher{
		sink:         cfg.Sink,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		queue:        make(chan domain.Event, cfg.BufferSize),
		drainTimeout: cfg.DrainTimeout,
	}
}

// Publish enqueues event without blocking.
func (ep *EventPublisher) Publish(_ context.Context, event domain.Event) error {
	select {
	case ep.queue <- event:
		return nil
	default:
		ep.record(event.Type, "dropped")
		return ErrQueueFull
	}
}

// Start delivers queued events until ctx is cancelled, then drains what is
// left within the drain timeout.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("buffer_size", cap(ep.queue)).
		Msg("event publisher started")

	for {
		select {
		case <-ctx.Done():
			ep.drain()
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case event := <-ep.queue:
			ep.deliver(ctx, event)
		}
	}
}

func (ep *EventPublisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), ep.drainTimeout)
	defer cancel()

	for {
		select {
		case event := <-ep.queue:
			ep.deliver(ctx, event)
		default:
			return
		}
	}
}

func (ep *EventPublisher) deliver(ctx context.Context, event domain.Event) {
	if err := ep.sink.Publish(ctx, event); err != nil {
		ep.record(event.Type, "error")
		ep.logger.Error().
			Err(err).
			Str("event_type", event.Type).
			Str("owner_id", event.OwnerID).
			Msg("failed to publish event")
		return
	}

	ep.record(event.Type, "success")
}

func (ep *EventPublisher) record(eventType, status string) {
	if ep.metrics != nil {
		ep.metrics.EventsPublished.WithLabelValues(eventType, status).Inc()
	}
}

// LogPublisher is a Sink that only logs events. It stands in for a broker
// when none is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event at debug level.
func (p *LogPublisher) Publish(_ context.Context, event domain.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Debug().
		Str("event_type", event.Type).
		Str("owner_id", event.OwnerID).
		RawJSON("payload", payload).
		Msg("event")

	return nil
}
