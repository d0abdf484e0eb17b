// Package platform provides an in-process implementation of the chat
// platform collaborator. It backs the simulator and the scenario tests;
// a real deployment swaps in a client for an actual chat service.
package platform

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"convosplit/domain"
	"convosplit/errors"
)

const defaultPageSize = 50

type memChannel struct {
	id         domain.ChannelID
	name       string
	parent     domain.ChannelID
	overwrites []domain.Overwrite
	messages   []domain.Message
}

// SentFile records one file delivery for assertions.
type SentFile struct {
	ChannelID domain.ChannelID
	Text      string
	Filename  string
	Content   []byte
}

// SentMessage records one plain text delivery for assertions.
type SentMessage struct {
	ChannelID domain.ChannelID
	Text      string
}

// InMemory is a thread-safe fake of the platform: channels, overwrites,
// paged history, deliveries and deletions all live in process memory.
// Failure switches simulate the permission errors the lifecycle manager
// must survive.
type InMemory struct {
	mu       sync.Mutex
	channels map[domain.ChannelID]*memChannel
	pageSize int

	// failure switches
	failCreate       bool
	failSendFileOn   map[domain.ChannelID]bool
	failDeleteOn     map[domain.ChannelID]bool
	failHistoryAfter int // fail once this many messages were paged; -1 disables

	sentFiles    []SentFile
	sentMessages []SentMessage
	deleted      []domain.ChannelID
}

func NewInMemory() *InMemory {
	return &InMemory{
		channels:         make(map[domain.ChannelID]*memChannel),
		pageSize:         defaultPageSize,
		failSendFileOn:   make(map[domain.ChannelID]bool),
		failDeleteOn:     make(map[domain.ChannelID]bool),
		failHistoryAfter: -1,
	}
}

// AddChannel seeds a pre-existing channel, typically the parent of a
// split or a transcript destination.
func (p *InMemory) AddChannel(id domain.ChannelID, overwrites []domain.Overwrite) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels[id] = &memChannel{id: id, name: string(id), overwrites: overwrites}
}

// PostMessage appends a message to a channel's history.
func (p *InMemory) PostMessage(id domain.ChannelID, author domain.UserID, name, content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.channels[id]
	if !ok {
		return
	}
	ch.messages = append(ch.messages, domain.Message{
		ID:         uuid.New(),
		AuthorID:   author,
		AuthorName: name,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	})
}

func (p *InMemory) CreateChannel(_ context.Context, parent domain.ChannelID, name string, overwrites []domain.Overwrite) (domain.ChannelID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failCreate {
		return "", errors.ErrPermissionDenied
	}
	id := domain.ChannelID(name)
	p.channels[id] = &memChannel{id: id, name: name, parent: parent, overwrites: overwrites}
	return id, nil
}

func (p *InMemory) ChannelOverwrites(_ context.Context, id domain.ChannelID) ([]domain.Overwrite, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.channels[id]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", id)
	}
	out := make([]domain.Overwrite, len(ch.overwrites))
	copy(out, ch.overwrites)
	return out, nil
}

func (p *InMemory) EditOverwrites(_ context.Context, id domain.ChannelID, overwrites []domain.Overwrite) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.channels[id]
	if !ok {
		return fmt.Errorf("unknown channel %s", id)
	}
	ch.overwrites = overwrites
	return nil
}

// History pages oldest first. The cursor is the offset of the next page.
func (p *InMemory) History(_ context.Context, id domain.ChannelID, cursor *string) ([]domain.Message, *string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.channels[id]
	if !ok {
		return nil, nil, fmt.Errorf("unknown channel %s", id)
	}

	offset := 0
	if cursor != nil {
		var err error
		if offset, err = strconv.Atoi(*cursor); err != nil {
			return nil, nil, fmt.Errorf("bad cursor %q", *cursor)
		}
	}
	if p.failHistoryAfter >= 0 && offset >= p.failHistoryAfter {
		return nil, nil, fmt.Errorf("history stream interrupted at offset %d", offset)
	}

	end := offset + p.pageSize
	if end > len(ch.messages) {
		end = len(ch.messages)
	}
	page := make([]domain.Message, end-offset)
	copy(page, ch.messages[offset:end])

	if end >= len(ch.messages) {
		return page, nil, nil
	}
	next := strconv.Itoa(end)
	return page, &next, nil
}

func (p *InMemory) Send(_ context.Context, id domain.ChannelID, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.channels[id]; !ok {
		return fmt.Errorf("unknown channel %s", id)
	}
	p.sentMessages = append(p.sentMessages, SentMessage{ChannelID: id, Text: text})
	return nil
}

func (p *InMemory) SendFile(_ context.Context, id domain.ChannelID, text, filename string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failSendFileOn[id] {
		return errors.ErrPermissionDenied
	}
	if _, ok := p.channels[id]; !ok {
		return fmt.Errorf("unknown channel %s", id)
	}
	p.sentFiles = append(p.sentFiles, SentFile{ChannelID: id, Text: text, Filename: filename, Content: payload})
	return nil
}

func (p *InMemory) DeleteChannel(_ context.Context, id domain.ChannelID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failDeleteOn[id] {
		return errors.ErrPermissionDenied
	}
	if _, ok := p.channels[id]; !ok {
		return fmt.Errorf("unknown channel %s", id)
	}
	delete(p.channels, id)
	p.deleted = append(p.deleted, id)
	return nil
}

// FailCreate makes every CreateChannel return a permission error.
func (p *InMemory) FailCreate(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failCreate = fail
}

// FailSendFile makes file deliveries to one channel fail.
func (p *InMemory) FailSendFile(id domain.ChannelID, fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failSendFileOn[id] = fail
}

// FailDelete makes deletion of one channel fail.
func (p *InMemory) FailDelete(id domain.ChannelID, fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failDeleteOn[id] = fail
}

// FailHistoryAfter interrupts history paging once n messages were read.
func (p *InMemory) FailHistoryAfter(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failHistoryAfter = n
}

// SetPageSize shrinks history pages so tests can exercise paging.
func (p *InMemory) SetPageSize(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pageSize = n
}

// HasChannel reports whether a channel still exists.
func (p *InMemory) HasChannel(id domain.ChannelID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.channels[id]
	return ok
}

// SentFiles snapshots the delivered files.
func (p *InMemory) SentFiles() []SentFile {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SentFile, len(p.sentFiles))
	copy(out, p.sentFiles)
	return out
}

// SentMessages snapshots the delivered texts.
func (p *InMemory) SentMessages() []SentMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SentMessage, len(p.sentMessages))
	copy(out, p.sentMessages)
	return out
}

// Deleted snapshots the deleted channel ids.
func (p *InMemory) Deleted() []domain.ChannelID {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.ChannelID, len(p.deleted))
	copy(out, p.deleted)
	return out
}
