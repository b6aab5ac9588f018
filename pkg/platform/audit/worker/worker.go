package worker

import (
	"context"
	"log/slog"

	audit "rngenius/pkg/platform/audit"
)

// Publisher forwards audit events to an external sink such as Kafka.
type Publisher interface {
	Publish(ctx context.Context, event audit.Event) error
}

// Worker drains the emitter queue, persists each event, and forwards it to
// the publisher when one is configured. Persistence failures stop the
// worker; publish failures are logged and skipped, the store stays the
// source of truth.
type Worker struct {
	store     audit.Store
	publisher Publisher
	inbox     <-chan audit.Event
	logger    *slog.Logger
}

func NewWorker(store audit.Store, publisher Publisher, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, publisher: publisher, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
			if w.publisher == nil {
				continue
			}
			if err := w.publisher.Publish(ctx, event); err != nil {
				w.logger.WarnContext(ctx, "audit publish failed",
					"action", event.Action,
					"error", err,
				)
			}
		}
	}
}
