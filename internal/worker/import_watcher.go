// Package worker reacts to broker notifications while the dashboard runs.
package worker

import (
	"context"
	"sync"

	"fluxo/internal/amqp"
	"fluxo/internal/core"
	"fluxo/internal/log"
)

// Warmer is the part of the dashboard service the watcher drives.
type Warmer interface {
	Invalidate()
	Warm(ctx context.Context) error
}

// ImportWatcher refreshes the dashboard memo when a new import is archived,
// so the next page load does not pay for parsing.
type ImportWatcher struct {
	target Warmer
	logger *log.Logger

	mu   sync.Mutex
	last int64
}

func NewImportWatcher(target Warmer, logger *log.Logger) *ImportWatcher {
	if logger == nil {
		logger = log.Discard()
	}
	return &ImportWatcher{target: target, logger: logger.WithComponent(log.ComponentAMQP)}
}

// HandleImportCompleted is an amqp consumer handler. Redelivered or older
// notifications are acknowledged without work. Input problems are logged
// and acknowledged since retrying cannot fix them.
func (w *ImportWatcher) HandleImportCompleted(ctx context.Context, msg *amqp.ImportCompletedMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if msg.ImportID <= w.last {
		w.logger.DebugContext(ctx, "Ignoring stale import message", log.FieldImportID, msg.ImportID)
		return nil
	}

	w.target.Invalidate()
	if err := w.target.Warm(ctx); err != nil {
		if core.IsMissingInput(err) || core.IsMalformedData(err) {
			w.logger.WarnContext(ctx, "Imported data could not be loaded",
				log.FieldImportID, msg.ImportID,
				log.FieldError, err)
			w.last = msg.ImportID
			return nil
		}
		return err
	}

	w.last = msg.ImportID
	w.logger.InfoContext(ctx, "Dashboard refreshed after import",
		log.FieldImportID, msg.ImportID,
		log.FieldSource, msg.Origin,
		log.FieldRows, msg.Rows)
	return nil
}
