package event

import (
	"time"

	"convosplit/domain"
)

// DomainEvent is published by the coordinator so the host can observe
// session lifecycles without being on the teardown path.
type DomainEvent interface {
	Channel() domain.ChannelID
}

// SessionOpened fires once a temporary channel has been created and
// its session registered.
type SessionOpened struct {
	TempChannelID domain.ChannelID
	ParentID      domain.ChannelID
	OwnerID       domain.UserID
	Restricted    bool
	At            time.Time
}

func (e SessionOpened) Channel() domain.ChannelID { return e.TempChannelID }

// SessionClosed fires after teardown completed, whatever sub-failures
// were reported along the way.
type SessionClosed struct {
	TempChannelID domain.ChannelID
	ParentID      domain.ChannelID
	Reason        domain.CloseReason
	At            time.Time
}

func (e SessionClosed) Channel() domain.ChannelID { return e.TempChannelID }

// TranscriptDelivered fires when the transcript reached a destination,
// primary or fallback.
type TranscriptDelivered struct {
	TempChannelID domain.ChannelID
	DeliveredTo   domain.ChannelID
	Fallback      bool
	At            time.Time
}

func (e TranscriptDelivered) Channel() domain.ChannelID { return e.TempChannelID }

// TranscriptUndelivered fires when both the destination and the parent
// channel rejected the transcript. The payload travels with the event
// so a sink can still retain it somewhere.
type TranscriptUndelivered struct {
	TempChannelID domain.ChannelID
	ParentID      domain.ChannelID
	Filename      string
	Content       []byte
	At            time.Time
}

func (e TranscriptUndelivered) Channel() domain.ChannelID { return e.TempChannelID }
