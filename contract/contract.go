//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"presence-chat/domain"
	"presence-chat/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IPublisher hands domain events over to the fanout.
// Publish must never block the caller.
type IPublisher interface {
	Publish(e event.DomainEvent)
}

// IPresence is the part of the participant registry driven by the presence tracker.
type IPresence interface {
	Stale(ctx context.Context, cutoff time.Time) ([]domain.Participant, error)
	Evict(ctx context.Context, name string, cutoff time.Time) (bool, error)
}

// HealthReporter receives the outcome of each presence sweep.
type HealthReporter interface {
	Report(healthy bool)
}

// IModerator rewrites forbidden words out of a text and returns the words it found.
type IModerator interface {
	Censor(text string) (string, []string)
}
