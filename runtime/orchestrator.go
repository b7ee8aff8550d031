// Package runtime wires the history storage layer and owns its lifecycle.
// It holds no storage rules of its own.
package runtime

import (
	"chat-memory/contract"
	"chat-memory/infrastructure/cache"
	"chat-memory/infrastructure/storage"
	"chat-memory/observability"
	"chat-memory/runtime/workers"
	"chat-memory/services"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Config struct {
	PersistWorkers      int
	PersistQueueSize    int
	PersistMaxAttempts  int
	PersistRetryBackoff time.Duration
	PersistTimeout      time.Duration
	ModelName           string
	DefaultTitle        string
	Janitor             workers.JanitorConfig
}

type Orchestrator struct {
	mu          sync.Mutex
	log         *slog.Logger
	supervisor  contract.ISupervisor
	queue       *workers.PersistQueue
	workers     []contract.Worker
	janitor     *workers.Janitor
	coordinator *services.StorageCoordinator
	done        chan struct{}
}

func NewOrchestrator(
	log *slog.Logger,
	metrics *observability.Metrics,
	supervisor contract.ISupervisor,
	messageCache cache.IMessageCache,
	messages storage.IMessageRepository,
	sessions storage.ISessionRepository,
	config Config) (*Orchestrator, error) {
	janitor, err := workers.NewJanitor(messages, sessions, log, metrics, config.Janitor)
	if err != nil {
		return nil, fmt.Errorf("janitor: %w", err)
	}

	queue := workers.NewPersistQueue(log, metrics, config.PersistQueueSize)
	persistWorkers := make([]contract.Worker, 0, config.PersistWorkers)
	for range max(config.PersistWorkers, 1) {
		persistWorkers = append(persistWorkers, workers.NewPersistWorker(
			queue, messages, log, metrics,
			config.PersistMaxAttempts, config.PersistRetryBackoff, config.PersistTimeout,
		))
	}

	coordinator := services.NewStorageCoordinator(messageCache, messages, sessions, queue, log, metrics,
		services.CoordinatorConfig{ModelName: config.ModelName, DefaultTitle: config.DefaultTitle})

	return &Orchestrator{
		log:         log,
		supervisor:  supervisor,
		queue:       queue,
		workers:     persistWorkers,
		janitor:     janitor,
		coordinator: coordinator,
	}, nil
}

func (o *Orchestrator) Coordinator() *services.StorageCoordinator {
	return o.coordinator
}

func (o *Orchestrator) Janitor() *workers.Janitor {
	return o.janitor
}

// Start registers every worker and runs them under supervision in the background.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.done != nil {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator already started")
	}
	o.supervisor.Add(o.workers...)
	o.supervisor.Add(o.janitor)
	o.done = make(chan struct{})
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers", "persist_workers", len(o.workers))
	go func() {
		defer close(o.done)
		o.supervisor.Run(ctx)
	}()
	return nil
}

// Stop refuses new messages, lets the persist workers drain the queue and waits for every worker.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown", "pending_messages", o.queue.Len())
	o.queue.Close()
	o.supervisor.Stop()

	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done != nil {
		<-done
	}
	o.log.Debug("Orchestrator stopped")
}
