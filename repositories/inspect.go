package repositories

import (
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Record is a decoded store entry as shown by the inspector.
type Record struct {
	Key    string
	Type   string
	Name   string
	To     string
	Detail string
	At     time.Time
}

// Inspect decodes every entry whose key starts with prefix, an empty prefix
// scans the whole store. Entries that cannot be decoded are reported with
// the "RAW" type instead of failing the scan.
func Inspect(db *badger.DB, prefix string) ([]Record, error) {
	var records []Record
	err := view(db, func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte(prefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(options.Prefix); it.ValidForPrefix(options.Prefix); it.Next() {
			key := string(it.Item().Key())
			err := it.Item().Value(func(value []byte) error {
				records = append(records, decodeRecord(key, value))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return records, err
}

func decodeRecord(key string, value []byte) Record {
	record := Record{Key: key, Type: "RAW"}
	switch {
	case strings.HasPrefix(key, participantPrefix):
		if p, err := unmarshalParticipant(value); err == nil {
			record.Type = "PARTICIPANT"
			record.Name = p.Name
			record.At = p.LastSeen
		}
	case strings.HasPrefix(key, messageIDPrefix):
		record.Type = "INDEX"
		record.Detail = string(value)
	case strings.HasPrefix(key, messagePrefix):
		if m, err := unmarshalMessage(value); err == nil {
			record.Type = strings.ToUpper(string(m.Kind))
			record.Name = m.From
			record.To = m.To.Participant()
			record.Detail = m.Text
			record.At = m.At
		}
	}
	return record
}
