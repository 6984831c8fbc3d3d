package runtime

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"presence-chat/domain/event"
	"presence-chat/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const broadcastLiteral = "Todos"

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (p *recordingPublisher) Publish(e event.DomainEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.Name())
	}
	return names
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type core struct {
	registry  *Registry
	router    *Router
	publisher *recordingPublisher
	clock     *clock
	messages  *repositories.MessageRepository
}

// newCore wires the registry and the router on a Badger store living in a temp dir.
func newCore(t *testing.T) core {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelError)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	messages, err := repositories.NewMessageRepository(db, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = messages.Close() })

	c := &clock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	publisher := &recordingPublisher{}
	registry := NewRegistry(log, repositories.NewParticipantRepository(db, log), messages, publisher, broadcastLiteral).
		WithClock(c.Now)
	router := NewRouter(log, registry, messages, publisher, broadcastLiteral).WithClock(c.Now)
	return core{registry: registry, router: router, publisher: publisher, clock: c, messages: messages}
}
