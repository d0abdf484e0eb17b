// Package archive retains transcripts whose delivery failed on both the
// destination and the parent channel, so operators can still recover a
// conversation log after the temporary channel is gone.
package archive

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"convosplit/domain"
	"convosplit/domain/event"
)

// KeyPrefix namespaces archived transcripts inside the shared store.
const KeyPrefix = "transcript:"

// Record is the persisted shape of an undeliverable transcript.
type Record struct {
	TempChannelID domain.ChannelID `json:"temp_channel_id"`
	ParentID      domain.ChannelID `json:"parent_id"`
	Filename      string           `json:"filename"`
	Content       []byte           `json:"content"`
	ArchivedAt    time.Time        `json:"archived_at"`
}

type TranscriptArchive struct {
	db  *badger.DB
	log *slog.Logger
}

func NewTranscriptArchive(db *badger.DB, log *slog.Logger) *TranscriptArchive {
	return &TranscriptArchive{db: db, log: log}
}

// Store persists an undeliverable transcript.
// The key is formatted as "transcript:{parent}:{timestamp_padded}:{temp}" to:
//  1. Group archived conversations by their parent channel.
//  2. Keep them chronologically sorted via 19-digit zero padding.
func (a *TranscriptArchive) Store(e event.TranscriptUndelivered) error {
	record := Record{
		TempChannelID: e.TempChannelID,
		ParentID:      e.ParentID,
		Filename:      e.Filename,
		Content:       e.Content,
		ArchivedAt:    e.At,
	}
	key := Key(record)

	bytes, err := json.Marshal(record)
	if err != nil {
		return err
	}
	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return err
	}
	a.log.Info(fmt.Sprintf("Archived undeliverable transcript %s", record.Filename))
	return nil
}

// Key builds the store key for a record.
func Key(record Record) string {
	return fmt.Sprintf("%s%s:%019d:%s",
		KeyPrefix,
		record.ParentID,
		record.ArchivedAt.UnixNano(),
		record.TempChannelID,
	)
}

// Get loads one archived transcript by its full key.
func (a *TranscriptArchive) Get(key string) (Record, error) {
	var record Record
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	return record, err
}

// List returns all archived transcripts for a parent channel, oldest
// first. An empty parent lists the whole archive.
func (a *TranscriptArchive) List(parent domain.ChannelID) ([]Record, error) {
	prefix := []byte(KeyPrefix + string(parent))

	var records []Record
	err := a.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	return records, err
}
