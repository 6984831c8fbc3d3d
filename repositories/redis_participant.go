package repositories

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"presence-chat/domain"
	"presence-chat/errors"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

const participantsHash = "participants"

// touchScript updates the last seen field only when it still exists, so a
// late status ping cannot bring back a participant that was just evicted.
var touchScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
	return 1
end
return 0
`)

// deleteIfStaleScript removes the field only if its value is still older than the cutoff.
var deleteIfStaleScript = redis.NewScript(`
local lastSeen = redis.call('HGET', KEYS[1], ARGV[1])
if not lastSeen then
	return 0
end
if tonumber(lastSeen) < tonumber(ARGV[2]) then
	redis.call('HDEL', KEYS[1], ARGV[1])
	return 1
end
return 0
`)

// RedisParticipantRepository keeps presence in a single Redis hash
// (name -> last seen in unix milliseconds).
type RedisParticipantRepository struct {
	redis *redis.Client
	log   *slog.Logger
}

var _ IParticipantRepository = (*RedisParticipantRepository)(nil)

func NewRedisParticipantRepository(client *redis.Client, log *slog.Logger) *RedisParticipantRepository {
	return &RedisParticipantRepository{redis: client, log: log}
}

func (r *RedisParticipantRepository) Insert(ctx context.Context, participant domain.Participant) error {
	created, err := r.redis.HSetNX(ctx, participantsHash, participant.Name, millis(participant.LastSeen)).Result()
	if err != nil {
		return redisError(err)
	}
	if !created {
		return fmt.Errorf("%w: participant %s already exists", errors.ErrConflict, participant.Name)
	}
	return nil
}

func (r *RedisParticipantRepository) Find(ctx context.Context, name string) (domain.Participant, error) {
	value, err := r.redis.HGet(ctx, participantsHash, name).Result()
	if stderrors.Is(err, redis.Nil) {
		return domain.Participant{}, fmt.Errorf("%w: participant %s", errors.ErrNotFound, name)
	}
	if err != nil {
		return domain.Participant{}, redisError(err)
	}
	return toParticipant(name, value)
}

func (r *RedisParticipantRepository) Touch(ctx context.Context, name string, at time.Time) error {
	updated, err := touchScript.Run(ctx, r.redis, []string{participantsHash}, name, millis(at)).Int()
	if err != nil {
		return redisError(err)
	}
	if updated == 0 {
		return fmt.Errorf("%w: participant %s", errors.ErrNotFound, name)
	}
	return nil
}

func (r *RedisParticipantRepository) List(ctx context.Context) ([]domain.Participant, error) {
	values, err := r.redis.HGetAll(ctx, participantsHash).Result()
	if err != nil {
		return nil, redisError(err)
	}
	participants := make([]domain.Participant, 0, len(values))
	for name, value := range values {
		participant, err := toParticipant(name, value)
		if err != nil {
			r.log.Warn("Skipping unreadable participant", "name", name, "error", err)
			continue
		}
		participants = append(participants, participant)
	}
	return participants, nil
}

func (r *RedisParticipantRepository) FindStale(ctx context.Context, cutoff time.Time) ([]domain.Participant, error) {
	participants, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(participants, func(p domain.Participant, _ int) bool {
		return p.IsStale(cutoff)
	}), nil
}

func (r *RedisParticipantRepository) DeleteIfStale(ctx context.Context, name string, cutoff time.Time) (bool, error) {
	deleted, err := deleteIfStaleScript.Run(ctx, r.redis, []string{participantsHash}, name, millis(cutoff)).Int()
	if err != nil {
		return false, redisError(err)
	}
	return deleted == 1, nil
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func toParticipant(name, value string) (domain.Participant, error) {
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("%w: corrupted last seen for %s: %v",
			errors.ErrStoreUnavailable, name, err)
	}
	return domain.NewParticipant(name, time.UnixMilli(ms).UTC()), nil
}

func redisError(err error) error {
	return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
}
