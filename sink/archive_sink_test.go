package sink

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"convosplit/domain"
	"convosplit/domain/event"
	"convosplit/mocks"
)

func TestArchiveSink_Stores_Undeliverable_Transcripts(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockTranscriptStore(ctrl)

	evt := event.TranscriptUndelivered{
		TempChannelID: "convo-abc",
		ParentID:      "general",
		Filename:      "convo-abc.txt",
		Content:       []byte("body"),
		At:            time.Now().UTC(),
	}
	store.EXPECT().Store(evt).Return(nil)

	s := NewArchiveSink(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	req.NoError(s.Consume(context.Background(), evt))
}

func TestArchiveSink_Ignores_Other_Lifecycle_Events(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockTranscriptStore(ctrl)
	// No Store expectation: any call would fail the test.

	s := NewArchiveSink(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	req.NoError(s.Consume(context.Background(), event.SessionOpened{TempChannelID: "convo-abc"}))
	req.NoError(s.Consume(context.Background(), event.SessionClosed{
		TempChannelID: "convo-abc",
		Reason:        domain.CloseExit,
	}))
	req.NoError(s.Consume(context.Background(), event.TranscriptDelivered{TempChannelID: "convo-abc"}))
}

func TestArchiveSink_Propagates_Store_Failures(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockTranscriptStore(ctrl)

	wantErr := context.DeadlineExceeded
	store.EXPECT().Store(gomock.Any()).Return(wantErr)

	s := NewArchiveSink(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := s.Consume(context.Background(), event.TranscriptUndelivered{TempChannelID: "convo-abc"})
	req.ErrorIs(err, wantErr)
}
