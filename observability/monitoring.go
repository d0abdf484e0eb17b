// Package observability aggregates lifecycle counters for the host.
package observability

import (
	"sync/atomic"
)

// Stats is a point-in-time snapshot of the lifecycle counters.
type Stats struct {
	ActiveSessions         int64  `json:"active_sessions"`
	SessionsOpened         uint64 `json:"sessions_opened"`
	ClosedByTimeout        uint64 `json:"closed_by_timeout"`
	ClosedByExit           uint64 `json:"closed_by_exit"`
	ClosedByShutdown       uint64 `json:"closed_by_shutdown"`
	TranscriptsDelivered   uint64 `json:"transcripts_delivered"`
	FallbackDeliveries     uint64 `json:"fallback_deliveries"`
	TranscriptsUndelivered uint64 `json:"transcripts_undelivered"`
}

// Monitor tracks session lifecycle totals with atomic counters so sinks
// and workers can update and read it without coordination.
type Monitor struct {
	active                 atomic.Int64
	sessionsOpened         atomic.Uint64
	closedByTimeout        atomic.Uint64
	closedByExit           atomic.Uint64
	closedByShutdown       atomic.Uint64
	transcriptsDelivered   atomic.Uint64
	fallbackDeliveries     atomic.Uint64
	transcriptsUndelivered atomic.Uint64
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) SessionOpened() {
	m.sessionsOpened.Add(1)
	m.active.Add(1)
}

func (m *Monitor) SessionClosedByTimeout() {
	m.closedByTimeout.Add(1)
	m.active.Add(-1)
}

func (m *Monitor) SessionClosedByExit() {
	m.closedByExit.Add(1)
	m.active.Add(-1)
}

func (m *Monitor) SessionClosedByShutdown() {
	m.closedByShutdown.Add(1)
	m.active.Add(-1)
}

func (m *Monitor) TranscriptDelivered(fallback bool) {
	m.transcriptsDelivered.Add(1)
	if fallback {
		m.fallbackDeliveries.Add(1)
	}
}

func (m *Monitor) TranscriptUndelivered() {
	m.transcriptsUndelivered.Add(1)
}

// GetLatest snapshots every counter.
func (m *Monitor) GetLatest() Stats {
	return Stats{
		ActiveSessions:         m.active.Load(),
		SessionsOpened:         m.sessionsOpened.Load(),
		ClosedByTimeout:        m.closedByTimeout.Load(),
		ClosedByExit:           m.closedByExit.Load(),
		ClosedByShutdown:       m.closedByShutdown.Load(),
		TranscriptsDelivered:   m.transcriptsDelivered.Load(),
		FallbackDeliveries:     m.fallbackDeliveries.Load(),
		TranscriptsUndelivered: m.transcriptsUndelivered.Load(),
	}
}
