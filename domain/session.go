package domain

import (
	"strings"
	"sync/atomic"
	"time"
)

// SessionState is the lifecycle position of a split session.
type SessionState int32

const (
	StateActive SessionState = iota
	StateClosing
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Timer is the handle a session keeps on its inactivity countdown.
// It is installed once at creation and consumed exactly once at
// teardown via Cancel.
type Timer interface {
	Reset()
	Cancel()
}

// CloseReason records which trigger ended a session.
type CloseReason string

const (
	CloseTimeout  CloseReason = "timeout"
	CloseExit     CloseReason = "exit"
	CloseShutdown CloseReason = "shutdown"
)

// Session binds one temporary channel to its parent, owner, member
// restriction, inactivity timeout and transcript destination.
// All fields except state are immutable once the session is registered.
type Session struct {
	TempChannelID  ChannelID
	ParentID       ChannelID
	OwnerID        UserID
	AllowedMembers []UserID
	Timeout        time.Duration
	DestinationID  ChannelID
	StartedAt      time.Time
	Name           string
	Timer          Timer

	state atomic.Int32
}

// NewSession creates a session in the Active state.
func NewSession(temp, parent ChannelID, owner UserID, allowed []UserID,
	timeout time.Duration, destination ChannelID, startedAt time.Time) *Session {
	return &Session{
		TempChannelID:  temp,
		ParentID:       parent,
		OwnerID:        owner,
		AllowedMembers: allowed,
		Timeout:        timeout,
		DestinationID:  destination,
		StartedAt:      startedAt,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// BeginClosing attempts the Active -> Closing transition atomically.
// Only the first trigger (timer expiry or explicit exit) succeeds;
// every later attempt returns false and must be treated as a no-op.
func (s *Session) BeginClosing() bool {
	return s.state.CompareAndSwap(int32(StateActive), int32(StateClosing))
}

// MarkClosed moves the session to its terminal state.
// Teardown never reverts once Closing has been entered.
func (s *Session) MarkClosed() {
	s.state.Store(int32(StateClosed))
}

// Restricted reports whether only listed members may write.
func (s *Session) Restricted() bool {
	return len(s.AllowedMembers) > 0
}

// Key is the short token identifying the conversation in user-facing
// messages, derived from the channel name suffix.
func (s *Session) Key() string {
	if i := strings.LastIndex(s.Name, "-"); i >= 0 {
		return s.Name[i+1:]
	}
	return s.Name
}
