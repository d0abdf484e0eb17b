package archive

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"convosplit/domain"
	"convosplit/domain/event"
)

func domainChannel(id string) domain.ChannelID { return domain.ChannelID(id) }

func openTestArchive(t *testing.T) *TranscriptArchive {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTranscriptArchive(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func undelivered(temp, parent string, at time.Time) event.TranscriptUndelivered {
	return event.TranscriptUndelivered{
		TempChannelID: domainChannel(temp),
		ParentID:      domainChannel(parent),
		Filename:      temp + ".txt",
		Content:       []byte("transcript body of " + temp),
		At:            at,
	}
}

func TestArchive_Store_Then_List_Roundtrip(t *testing.T) {
	req := require.New(t)
	arch := openTestArchive(t)
	at := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

	req.NoError(arch.Store(undelivered("convo-abc", "general", at)))

	records, err := arch.List("general")
	req.NoError(err)
	req.Len(records, 1)
	req.Equal(domainChannel("convo-abc"), records[0].TempChannelID)
	req.Equal(domainChannel("general"), records[0].ParentID)
	req.Equal("convo-abc.txt", records[0].Filename)
	req.Equal([]byte("transcript body of convo-abc"), records[0].Content)
	req.True(records[0].ArchivedAt.Equal(at))
}

func TestArchive_List_Returns_Oldest_First(t *testing.T) {
	req := require.New(t)
	arch := openTestArchive(t)
	base := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)

	// Stored newest first on purpose; the padded key must restore order.
	req.NoError(arch.Store(undelivered("convo-late", "general", base.Add(2*time.Hour))))
	req.NoError(arch.Store(undelivered("convo-mid", "general", base.Add(time.Hour))))
	req.NoError(arch.Store(undelivered("convo-early", "general", base)))

	records, err := arch.List("general")
	req.NoError(err)
	req.Len(records, 3)
	req.Equal(domainChannel("convo-early"), records[0].TempChannelID)
	req.Equal(domainChannel("convo-mid"), records[1].TempChannelID)
	req.Equal(domainChannel("convo-late"), records[2].TempChannelID)
}

func TestArchive_Get_Loads_One_Record_By_Key(t *testing.T) {
	req := require.New(t)
	arch := openTestArchive(t)
	at := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	evt := undelivered("convo-abc", "general", at)

	req.NoError(arch.Store(evt))

	record, err := arch.Get(Key(Record{
		TempChannelID: evt.TempChannelID,
		ParentID:      evt.ParentID,
		ArchivedAt:    at,
	}))
	req.NoError(err)
	req.Equal(evt.Filename, record.Filename)
	req.Equal(evt.Content, record.Content)

	_, err = arch.Get("transcript:nowhere:0:none")
	req.ErrorIs(err, badger.ErrKeyNotFound)
}

func TestArchive_List_Filters_By_Parent_Channel(t *testing.T) {
	req := require.New(t)
	arch := openTestArchive(t)
	at := time.Now().UTC()

	req.NoError(arch.Store(undelivered("convo-a", "general", at)))
	req.NoError(arch.Store(undelivered("convo-b", "support", at.Add(time.Second))))

	records, err := arch.List("general")
	req.NoError(err)
	req.Len(records, 1)
	req.Equal(domainChannel("convo-a"), records[0].TempChannelID)

	all, err := arch.List("")
	req.NoError(err)
	req.Len(all, 2)
}

func TestArchive_Key_Groups_By_Parent_And_Sorts_By_Time(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	record := Record{
		TempChannelID: "convo-abc",
		ParentID:      "general",
		ArchivedAt:    at,
	}

	key := Key(record)

	req.Equal("transcript:general:1710081000000000000:convo-abc", key)
}
