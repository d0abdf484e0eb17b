//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"convosplit/domain"
	"convosplit/domain/event"
)

// ChannelClient is the chat-platform collaborator. Everything that
// touches the wire goes through it; the lifecycle manager never talks
// to the platform directly so the whole state machine stays testable.
type ChannelClient interface {
	// CreateChannel creates a channel scoped under the same hierarchy
	// as parent, with the given overwrites already applied.
	CreateChannel(ctx context.Context, parent domain.ChannelID, name string, overwrites []domain.Overwrite) (domain.ChannelID, error)
	// ChannelOverwrites returns the full override list of a channel.
	ChannelOverwrites(ctx context.Context, id domain.ChannelID) ([]domain.Overwrite, error)
	// EditOverwrites replaces the override list of a channel.
	EditOverwrites(ctx context.Context, id domain.ChannelID, overwrites []domain.Overwrite) error
	// History pages through a channel's messages oldest first. A nil
	// cursor starts from the beginning; a nil next cursor means the
	// page returned was the last one.
	History(ctx context.Context, id domain.ChannelID, cursor *string) ([]domain.Message, *string, error)
	// Send posts a plain text message.
	Send(ctx context.Context, id domain.ChannelID, text string) error
	// SendFile posts a message carrying one file-like payload.
	SendFile(ctx context.Context, id domain.ChannelID, text, filename string, payload []byte) error
	// DeleteChannel removes the channel from the platform.
	DeleteChannel(ctx context.Context, id domain.ChannelID) error
}

// SessionRegistry owns the live sessions, keyed by temporary channel.
type SessionRegistry interface {
	Register(session *domain.Session) error
	Lookup(id domain.ChannelID) (*domain.Session, bool)
	Remove(id domain.ChannelID)
	Active() []*domain.Session
}

// EventSink consumes lifecycle events emitted by the coordinator.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Sanitizer rewrites transcript content before it leaves the process,
// returning the cleaned text and the patterns that matched.
type Sanitizer interface {
	Sanitize(content string) (string, []string)
}

// TranscriptStore retains transcripts that could not be delivered.
type TranscriptStore interface {
	Store(e event.TranscriptUndelivered) error
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// initialization or lifecycle events, avoiding the need for manual
// naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
