package repositories

import (
	stderrors "errors"
	"fmt"

	"presence-chat/errors"

	"github.com/dgraph-io/badger/v4"
)

// maxTxnAttempts bounds how many times a read-modify-write transaction is
// replayed after losing an optimistic conflict against a concurrent writer.
const maxTxnAttempts = 5

// update runs fn in a read-write transaction, replaying it when Badger
// reports a conflict. Every replay re-reads the keys, so a concurrent
// insert or delete is observed by the next attempt.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		err = db.Update(fn)
		if !stderrors.Is(err, badger.ErrConflict) {
			return storeError(err)
		}
	}
	return storeError(err)
}

func view(db *badger.DB, fn func(txn *badger.Txn) error) error {
	return storeError(db.View(fn))
}

// storeError keeps domain errors untouched, turns missing keys into
// ErrNotFound and everything else into ErrStoreUnavailable.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return errors.ErrNotFound
	case stderrors.Is(err, errors.ErrNotFound),
		stderrors.Is(err, errors.ErrConflict):
		return err
	default:
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
}
