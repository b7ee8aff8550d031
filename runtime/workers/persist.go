package workers

import (
	"chat-memory/contract"
	"chat-memory/domain"
	"chat-memory/errors"
	"chat-memory/infrastructure/storage"
	"chat-memory/observability"
	"context"
	"log/slog"
	"sync"
	"time"
)

var (
	_ contract.MessagePersister = (*PersistQueue)(nil)
	_ contract.Worker           = (*PersistWorker)(nil)
)

// PersistQueue is the bounded write-behind buffer between the request path and the durable store.
// Enqueue never blocks: when full, the oldest pending message is evicted.
type PersistQueue struct {
	mu      sync.RWMutex
	jobs    chan domain.Message
	closed  bool
	log     *slog.Logger
	metrics *observability.Metrics
}

func NewPersistQueue(log *slog.Logger, metrics *observability.Metrics, size int) *PersistQueue {
	if size <= 0 {
		size = 1
	}
	return &PersistQueue{
		jobs:    make(chan domain.Message, size),
		log:     log,
		metrics: metrics,
	}
}

func (q *PersistQueue) Enqueue(message domain.Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return errors.ErrQueueClosed
	}
	for {
		select {
		case q.jobs <- message:
			q.metrics.PersistQueueDepth.Set(float64(len(q.jobs)))
			return nil
		default:
		}
		select {
		case evicted := <-q.jobs:
			q.log.Error("Persist queue full, evicting oldest message",
				"message_id", evicted.ID,
				"conversation_id", evicted.ConversationID)
			q.metrics.PersistResults.WithLabelValues(observability.PersistEvicted).Inc()
		default:
		}
	}
}

func (q *PersistQueue) Jobs() <-chan domain.Message {
	return q.jobs
}

func (q *PersistQueue) Len() int {
	return len(q.jobs)
}

// Close stops accepting messages. Workers still drain what is buffered.
func (q *PersistQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
}

// PersistWorker appends queued messages to the durable store.
// An attempt is never cut short by the caller's cancellation, only by its own timeout.
type PersistWorker struct {
	queue       *PersistQueue
	repository  storage.IMessageRepository
	log         *slog.Logger
	metrics     *observability.Metrics
	maxAttempts int
	backoff     time.Duration
	timeout     time.Duration
}

func NewPersistWorker(
	queue *PersistQueue,
	repository storage.IMessageRepository,
	log *slog.Logger,
	metrics *observability.Metrics,
	maxAttempts int,
	backoff, timeout time.Duration) *PersistWorker {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &PersistWorker{
		queue:       queue,
		repository:  repository,
		log:         log,
		metrics:     metrics,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		timeout:     timeout,
	}
}

func (w *PersistWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain(ctx)
			return nil
		case message, ok := <-w.queue.Jobs():
			if !ok {
				w.log.Debug("Persist queue closed")
				return nil
			}
			w.metrics.PersistQueueDepth.Set(float64(w.queue.Len()))
			w.persist(ctx, message)
		}
	}
}

// drain flushes whatever is still buffered once the worker is asked to stop.
func (w *PersistWorker) drain(ctx context.Context) {
	for {
		select {
		case message, ok := <-w.queue.Jobs():
			if !ok {
				return
			}
			w.persist(ctx, message)
		default:
			return
		}
	}
}

func (w *PersistWorker) persist(ctx context.Context, message domain.Message) {
	detached := context.WithoutCancel(ctx)
	start := time.Now()
	defer func() { w.metrics.PersistDuration.Observe(time.Since(start).Seconds()) }()

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		err := w.append(detached, message)
		if err == nil {
			w.metrics.PersistResults.WithLabelValues(observability.PersistOK).Inc()
			return
		}
		if attempt == w.maxAttempts {
			w.log.Error("Dropping message after failed durable writes",
				"message_id", message.ID,
				"conversation_id", message.ConversationID,
				"attempts", attempt,
				"error", err)
			w.metrics.PersistResults.WithLabelValues(observability.PersistDropped).Inc()
			return
		}
		w.log.Warn("Durable write failed, retrying",
			"message_id", message.ID,
			"attempt", attempt,
			"error", err)
		w.metrics.PersistResults.WithLabelValues(observability.PersistRetried).Inc()
		time.Sleep(w.backoff * time.Duration(attempt))
	}
}

func (w *PersistWorker) append(ctx context.Context, message domain.Message) error {
	if w.timeout <= 0 {
		return w.repository.Append(ctx, message)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	return w.repository.Append(attemptCtx, message)
}
