package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"presence-chat/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func Test_Inspect_Decodes_Records(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openDB(t)
	messages, err := NewMessageRepository(db, slog.Default())
	req.NoError(err)
	t.Cleanup(func() { _ = messages.Close() })
	at := time.Now().UTC()

	req.NoError(NewParticipantRepository(db, slog.Default()).Insert(ctx, domain.NewParticipant("alice", at)))
	_, err = messages.Insert(ctx, domain.Message{From: "alice", To: domain.Direct("bob"), Text: "psst", Kind: domain.KindPrivate, At: at})
	req.NoError(err)
	req.NoError(db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(participantPrefix+"broken"), []byte{0xff})
	}))

	// When the whole store is scanned
	records, err := Inspect(db, "")
	req.NoError(err)

	// Then every entry is decoded by its key family
	types := lo.SliceToMap(records, func(r Record) (string, string) { return r.Key, r.Type })
	req.Equal("PARTICIPANT", types[participantPrefix+"alice"])
	req.Equal("RAW", types[participantPrefix+"broken"])
	private, ok := lo.Find(records, func(r Record) bool { return r.Type == "PRIVATE_MESSAGE" })
	req.True(ok)
	req.Equal("bob", private.To)
	req.Equal("psst", private.Detail)

	// And a prefix narrows the scan
	onlyParticipants, err := Inspect(db, participantPrefix)
	req.NoError(err)
	req.Len(onlyParticipants, 2)
}
