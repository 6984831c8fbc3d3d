//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"presence-chat/domain"
	"presence-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

const participantPrefix = "participant:"

type IParticipantRepository interface {
	// Insert fails with ErrConflict when the name is already taken.
	Insert(ctx context.Context, participant domain.Participant) error
	Find(ctx context.Context, name string) (domain.Participant, error)
	// Touch moves LastSeen forward. It never creates a participant.
	Touch(ctx context.Context, name string, at time.Time) error
	List(ctx context.Context) ([]domain.Participant, error)
	FindStale(ctx context.Context, cutoff time.Time) ([]domain.Participant, error)
	// DeleteIfStale removes the participant only if it is still stale when
	// the delete happens, and reports whether it did.
	DeleteIfStale(ctx context.Context, name string, cutoff time.Time) (bool, error)
}

type ParticipantRepository struct {
	db  *badger.DB
	log *slog.Logger
}

var _ IParticipantRepository = ParticipantRepository{}

func NewParticipantRepository(db *badger.DB, log *slog.Logger) ParticipantRepository {
	return ParticipantRepository{db: db, log: log}
}

func participantKey(name string) []byte {
	return []byte(participantPrefix + name)
}

// Insert persists a new participant. The existence check and the write
// share one transaction, so two concurrent inserts of the same name cannot
// both succeed: the loser is replayed and then sees the winner's key.
func (r ParticipantRepository) Insert(_ context.Context, participant domain.Participant) error {
	key := participantKey(participant.Name)
	return update(r.db, func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return fmt.Errorf("%w: participant %s already exists", errors.ErrConflict, participant.Name)
		case !stderrors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key, marshalParticipant(participant))
	})
}

func (r ParticipantRepository) Find(_ context.Context, name string) (domain.Participant, error) {
	var participant domain.Participant
	err := view(r.db, func(txn *badger.Txn) error {
		var err error
		participant, err = getParticipant(txn, name)
		return err
	})
	return participant, err
}

func (r ParticipantRepository) Touch(_ context.Context, name string, at time.Time) error {
	return update(r.db, func(txn *badger.Txn) error {
		participant, err := getParticipant(txn, name)
		if err != nil {
			return err
		}
		participant.LastSeen = at
		return txn.Set(participantKey(name), marshalParticipant(participant))
	})
}

func (r ParticipantRepository) List(_ context.Context) ([]domain.Participant, error) {
	var participants []domain.Participant
	err := view(r.db, func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		prefix := []byte(participantPrefix)
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				participant, err := unmarshalParticipant(value)
				if err != nil {
					return err
				}
				participants = append(participants, participant)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return participants, err
}

func (r ParticipantRepository) FindStale(ctx context.Context, cutoff time.Time) ([]domain.Participant, error) {
	participants, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(participants, func(p domain.Participant, _ int) bool {
		return p.IsStale(cutoff)
	}), nil
}

func (r ParticipantRepository) DeleteIfStale(_ context.Context, name string, cutoff time.Time) (bool, error) {
	var deleted bool
	err := update(r.db, func(txn *badger.Txn) error {
		deleted = false
		participant, err := getParticipant(txn, name)
		if stderrors.Is(err, errors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !participant.IsStale(cutoff) {
			r.log.Debug("Participant refreshed since scan, keeping it", "name", name)
			return nil
		}
		deleted = true
		return txn.Delete(participantKey(name))
	})
	return deleted, err
}

func getParticipant(txn *badger.Txn, name string) (domain.Participant, error) {
	item, err := txn.Get(participantKey(name))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Participant{}, fmt.Errorf("%w: participant %s", errors.ErrNotFound, name)
	}
	if err != nil {
		return domain.Participant{}, err
	}
	var participant domain.Participant
	err = item.Value(func(value []byte) error {
		participant, err = unmarshalParticipant(value)
		return err
	})
	return participant, err
}
