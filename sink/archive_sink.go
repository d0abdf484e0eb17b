// Package sink contains the event consumers attached to the coordinator.
package sink

import (
	"context"
	"fmt"
	"log/slog"

	"convosplit/contract"
	"convosplit/domain/event"
)

// ArchiveSink retains undeliverable transcripts in the local store.
// Every other lifecycle event passes through untouched.
type ArchiveSink struct {
	store contract.TranscriptStore
	log   *slog.Logger
}

func NewArchiveSink(store contract.TranscriptStore, log *slog.Logger) ArchiveSink {
	return ArchiveSink{store: store, log: log}
}

func (s ArchiveSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.TranscriptUndelivered:
		return s.store.Store(evt)
	default:
		s.log.Debug(fmt.Sprintf("Ignoring event : %T", evt))
		return nil
	}
}
