//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"presence-chat/domain"
	"presence-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	messagePrefix   = "msg:"
	messageIDPrefix = "msgid:"
	messageSequence = "seq:msg"
	// sequenceBandwidth is how many sequence numbers Badger leases at once.
	sequenceBandwidth = 128
)

type IMessageRepository interface {
	// Insert assigns the message ID and returns the stored message.
	Insert(ctx context.Context, message domain.Message) (domain.Message, error)
	Find(ctx context.Context, id uuid.UUID) (domain.Message, error)
	// FindMany returns, in insertion order, every message matching predicate.
	FindMany(ctx context.Context, predicate func(domain.Message) bool) ([]domain.Message, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.MessagePatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type MessageRepository struct {
	db       *badger.DB
	log      *slog.Logger
	sequence *badger.Sequence
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	sequence, err := db.GetSequence([]byte(messageSequence), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &MessageRepository{db: db, log: log, sequence: sequence}, nil
}

// Close gives the leased sequence numbers back to Badger.
func (m *MessageRepository) Close() error {
	return m.sequence.Release()
}

// Insert persists a message.
// The key is formatted as "msg:{sequence_padded}" so that a prefix scan
// returns messages in insertion order, and "msgid:{uuid}" points to it for
// point lookups.
func (m *MessageRepository) Insert(_ context.Context, message domain.Message) (domain.Message, error) {
	next, err := m.sequence.Next()
	if err != nil {
		return domain.Message{}, storeError(err)
	}
	message.ID = uuid.New()
	key := []byte(fmt.Sprintf("%s%020d", messagePrefix, next))
	err = update(m.db, func(txn *badger.Txn) error {
		if err := txn.Set(key, marshalMessage(message)); err != nil {
			return err
		}
		return txn.Set(messageIDKey(message.ID), key)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

func (m *MessageRepository) Find(_ context.Context, id uuid.UUID) (domain.Message, error) {
	var message domain.Message
	err := view(m.db, func(txn *badger.Txn) error {
		var err error
		message, _, err = getMessage(txn, id)
		return err
	})
	return message, err
}

func (m *MessageRepository) FindMany(_ context.Context, predicate func(domain.Message) bool) ([]domain.Message, error) {
	var messages []domain.Message
	err := view(m.db, func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		prefix := []byte(messagePrefix)
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				message, err := unmarshalMessage(value)
				if err != nil {
					return err
				}
				if predicate(message) {
					messages = append(messages, message)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}

// Update rewrites the mutable fields of a message in place.
// A message deleted concurrently yields ErrNotFound.
func (m *MessageRepository) Update(_ context.Context, id uuid.UUID, patch domain.MessagePatch) error {
	return update(m.db, func(txn *badger.Txn) error {
		message, key, err := getMessage(txn, id)
		if err != nil {
			return err
		}
		return txn.Set(key, marshalMessage(message.Apply(patch)))
	})
}

func (m *MessageRepository) Delete(_ context.Context, id uuid.UUID) error {
	return update(m.db, func(txn *badger.Txn) error {
		_, key, err := getMessage(txn, id)
		if err != nil {
			return err
		}
		if err = txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(messageIDKey(id))
	})
}

func messageIDKey(id uuid.UUID) []byte {
	return []byte(messageIDPrefix + id.String())
}

// getMessage resolves the id index then reads the message it points to.
func getMessage(txn *badger.Txn, id uuid.UUID) (domain.Message, []byte, error) {
	indexItem, err := txn.Get(messageIDKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Message{}, nil, fmt.Errorf("%w: message %s", errors.ErrNotFound, id)
	}
	if err != nil {
		return domain.Message{}, nil, err
	}
	key, err := indexItem.ValueCopy(nil)
	if err != nil {
		return domain.Message{}, nil, err
	}
	item, err := txn.Get(key)
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Message{}, nil, fmt.Errorf("%w: message %s", errors.ErrNotFound, id)
	}
	if err != nil {
		return domain.Message{}, nil, err
	}
	var message domain.Message
	err = item.Value(func(value []byte) error {
		message, err = unmarshalMessage(value)
		return err
	})
	return message, key, err
}
