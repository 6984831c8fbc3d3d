// Package runtime holds the chat core: the participant registry, the message
// router and the orchestrator that runs the background workers.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"presence-chat/contract"
	"presence-chat/domain/event"
	"presence-chat/runtime/workers"
)

// Orchestrator owns the domain event channel and the supervised workers.
// Request handlers publish events through it without ever waiting on a sink.
type Orchestrator struct {
	mu           sync.Mutex
	log          *slog.Logger
	supervisor   contract.ISupervisor
	sinks        []contract.EventSink
	workers      []contract.Worker
	domainEvents chan event.DomainEvent
	sinkTimeout  time.Duration
}

var _ contract.IPublisher = (*Orchestrator)(nil)

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	bufferSize int, sinkTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		log:          log,
		supervisor:   supervisor,
		domainEvents: make(chan event.DomainEvent, bufferSize),
		sinkTimeout:  sinkTimeout,
	}
}

// Add registers sinks receiving every domain event. Must be called before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sinks = append(o.sinks, sinks...)
}

// Register adds background workers run under supervision. Must be called before Start.
func (o *Orchestrator) Register(workers ...contract.Worker) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.workers = append(o.workers, workers...)
}

// Publish queues an event for the sinks. A full buffer drops the event.
func (o *Orchestrator) Publish(e event.DomainEvent) {
	select {
	case o.domainEvents <- e:
	default:
		o.log.Warn("Domain event channel full, dropping event", "event", e.Name())
	}
}

// Start builds the fanout and hands every worker to the supervisor.
// It blocks until the context is canceled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	fanout := workers.NewEventFanout(o.log, o.domainEvents, o.sinks, o.sinkTimeout)
	o.supervisor.Add(fanout)
	o.supervisor.Add(o.workers...)
	count := len(o.workers) + 1
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers", "workers", count)
	o.supervisor.Run(ctx)
}

// Stop cancels the supervised workers. Start returns once they are all done.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
