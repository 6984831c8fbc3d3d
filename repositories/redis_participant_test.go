package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"presence-chat/domain"
	"presence-chat/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisRepository(t *testing.T) (*RedisParticipantRepository, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisParticipantRepository(client, slog.Default()), server
}

func Test_Redis_Insert_Find_And_Conflict(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository, _ := newRedisRepository(t)
	at := time.UnixMilli(time.Now().UnixMilli()).UTC()

	req.NoError(repository.Insert(ctx, domain.NewParticipant("alice", at)))

	participant, err := repository.Find(ctx, "alice")
	req.NoError(err)
	req.True(at.Equal(participant.LastSeen))

	req.ErrorIs(repository.Insert(ctx, domain.NewParticipant("alice", at)), errors.ErrConflict)
	_, err = repository.Find(ctx, "bob")
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_Redis_Touch_Never_Creates(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository, _ := newRedisRepository(t)

	req.ErrorIs(repository.Touch(ctx, "ghost", time.Now()), errors.ErrNotFound)

	participants, err := repository.List(ctx)
	req.NoError(err)
	req.Empty(participants)
}

func Test_Redis_DeleteIfStale(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository, _ := newRedisRepository(t)
	now := time.Now()
	cutoff := now.Add(-10 * time.Second)
	req.NoError(repository.Insert(ctx, domain.NewParticipant("alice", now.Add(-time.Minute))))
	req.NoError(repository.Insert(ctx, domain.NewParticipant("bob", now)))

	stale, err := repository.FindStale(ctx, cutoff)
	req.NoError(err)
	req.Len(stale, 1)
	req.Equal("alice", stale[0].Name)

	// Given bob is fresh, he is kept
	deleted, err := repository.DeleteIfStale(ctx, "bob", cutoff)
	req.NoError(err)
	req.False(deleted)

	deleted, err = repository.DeleteIfStale(ctx, "alice", cutoff)
	req.NoError(err)
	req.True(deleted)

	// And a reaped participant cannot be refreshed back
	req.ErrorIs(repository.Touch(ctx, "alice", now), errors.ErrNotFound)
}

func Test_Redis_List_Skips_Corrupted_Entries(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository, server := newRedisRepository(t)
	req.NoError(repository.Insert(ctx, domain.NewParticipant("alice", time.Now())))
	server.HSet(participantsHash, "broken", "not-a-number")

	participants, err := repository.List(ctx)

	req.NoError(err)
	req.Len(participants, 1)
	req.Equal("alice", participants[0].Name)
}

func Test_Redis_Unavailable(t *testing.T) {
	req := require.New(t)
	repository, server := newRedisRepository(t)
	server.Close()

	_, err := repository.List(context.Background())

	req.ErrorIs(err, errors.ErrStoreUnavailable)
}
