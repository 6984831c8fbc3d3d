package repositories

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"presence-chat/domain"
	"presence-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Insert_And_Find_Participant(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewParticipantRepository(openDB(t), slog.Default())
	at := time.Now().UTC()

	// When a participant is inserted
	req.NoError(repository.Insert(ctx, domain.NewParticipant("alice", at)))

	// Then it can be found back
	participant, err := repository.Find(ctx, "alice")
	req.NoError(err)
	req.Equal("alice", participant.Name)
	req.True(at.Equal(participant.LastSeen))

	// And an unknown name is not found
	_, err = repository.Find(ctx, "bob")
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_Insert_Twice_Same_Name_Conflicts(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewParticipantRepository(openDB(t), slog.Default())

	req.NoError(repository.Insert(ctx, domain.NewParticipant("alice", time.Now())))
	err := repository.Insert(ctx, domain.NewParticipant("alice", time.Now()))

	req.ErrorIs(err, errors.ErrConflict)
}

func Test_Concurrent_Inserts_Only_One_Wins(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewParticipantRepository(openDB(t), slog.Default())

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repository.Insert(ctx, domain.NewParticipant("alice", time.Now()))
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case stderrors.Is(err, errors.ErrConflict):
			conflicted++
		}
	}
	req.Equal(1, succeeded)
	req.Equal(attempts-1, conflicted)
}

func Test_Touch_Participant(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewParticipantRepository(openDB(t), slog.Default())
	at := time.Now().UTC()
	req.NoError(repository.Insert(ctx, domain.NewParticipant("alice", at)))

	// When the participant signals its presence later
	later := at.Add(5 * time.Second)
	req.NoError(repository.Touch(ctx, "alice", later))

	// Then last seen moved forward
	participant, err := repository.Find(ctx, "alice")
	req.NoError(err)
	req.True(later.Equal(participant.LastSeen))

	// And touching an unknown participant never creates it
	req.ErrorIs(repository.Touch(ctx, "bob", later), errors.ErrNotFound)
	_, err = repository.Find(ctx, "bob")
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_FindStale_And_DeleteIfStale(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewParticipantRepository(openDB(t), slog.Default())
	now := time.Now().UTC()
	cutoff := now.Add(-10 * time.Second)

	req.NoError(repository.Insert(ctx, domain.NewParticipant("alice", now.Add(-30*time.Second))))
	req.NoError(repository.Insert(ctx, domain.NewParticipant("bob", now)))

	// When scanning for stale participants
	stale, err := repository.FindStale(ctx, cutoff)
	req.NoError(err)
	req.Equal([]string{"alice"}, lo.Map(stale, func(p domain.Participant, _ int) string { return p.Name }))

	// Given alice pinged between the scan and the delete
	req.NoError(repository.Touch(ctx, "alice", now))

	// Then she is kept
	deleted, err := repository.DeleteIfStale(ctx, "alice", cutoff)
	req.NoError(err)
	req.False(deleted)

	// Given alice went silent again
	req.NoError(repository.Touch(ctx, "alice", now.Add(-time.Minute)))
	deleted, err = repository.DeleteIfStale(ctx, "alice", cutoff)
	req.NoError(err)
	req.True(deleted)

	// And a second delete is a no-op
	deleted, err = repository.DeleteIfStale(ctx, "alice", cutoff)
	req.NoError(err)
	req.False(deleted)

	participants, err := repository.List(ctx)
	req.NoError(err)
	req.Len(participants, 1)
	req.Equal("bob", participants[0].Name)
}
