package cache

import (
	"chat-memory/domain"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// InspectRow is a decoded view of one cache key, used by operator tooling.
type InspectRow struct {
	Key       string
	ExpiresAt time.Time
	Message   *domain.Message
	IDs       []string
	Err       error
}

// Inspect scans keys under prefix and decodes them. Decoding errors are reported per row
// so that one corrupted entry does not hide the others.
func Inspect(db *badger.DB, prefix string, limit int) ([]InspectRow, error) {
	var rows []InspectRow
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			if limit > 0 && len(rows) == limit {
				break
			}
			item := it.Item()
			row := InspectRow{Key: string(item.KeyCopy(nil))}
			if expiresAt := item.ExpiresAt(); expiresAt > 0 {
				row.ExpiresAt = time.Unix(int64(expiresAt), 0).UTC()
			}
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			row.Message, row.IDs, row.Err = DecodeEntry(row.Key, raw)
			rows = append(rows, row)
		}
		return nil
	})
	return rows, err
}

// DecodeEntry decodes a raw cache value according to its key prefix.
// Keys outside the cache layout decode to nothing.
func DecodeEntry(key string, raw []byte) (*domain.Message, []string, error) {
	switch {
	case strings.HasPrefix(key, MessagePrefix):
		message, err := decodeMessage(raw)
		if err != nil {
			return nil, nil, err
		}
		return &message, nil, nil
	case strings.HasPrefix(key, ConversationPrefix):
		ids, err := decodeIDs(raw)
		return nil, ids, err
	default:
		return nil, nil, nil
	}
}
