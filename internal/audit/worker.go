package audit

import (
	"context"
	"log/slog"
)

const batchSize = 64

// Worker decouples request handling from the audit sink. Emit enriches and
// buffers the event; Run drains the buffer into the sink until ctx is done,
// then flushes what is left.
type Worker struct {
	sink   Publisher
	buffer *ringBuffer
	notify chan struct{}
	logger *slog.Logger
}

func NewWorker(sink Publisher, capacity int, logger *slog.Logger) *Worker {
	return &Worker{
		sink:   sink,
		buffer: newRingBuffer(capacity),
		notify: make(chan struct{}, 1),
		logger: logger,
	}
}

// Emit never blocks on the sink.
func (w *Worker) Emit(ctx context.Context, e Event) error {
	w.buffer.enqueue(Enrich(ctx, e))
	select {
	case w.notify <- struct{}{}:
	default:
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-w.notify:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		batch := w.buffer.dequeueBatch(batchSize)
		if len(batch) == 0 {
			return
		}
		for _, e := range batch {
			if err := w.sink.Emit(ctx, e); err != nil {
				w.logger.WarnContext(ctx, "audit sink rejected event",
					"error", err,
					"action", string(e.Action),
					"subject", e.Subject,
				)
			}
		}
	}
}

// Pending returns the number of buffered events.
func (w *Worker) Pending() int {
	return w.buffer.len()
}

// Dropped returns how many events were discarded because the buffer was full.
func (w *Worker) Dropped() int64 {
	return w.buffer.droppedCount()
}
