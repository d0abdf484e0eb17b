package sink

import (
	"context"

	"convosplit/domain"
	"convosplit/domain/event"
	"convosplit/observability"
)

// TelemetrySink feeds lifecycle events into the monitor counters.
type TelemetrySink struct {
	monitor *observability.Monitor
}

func NewTelemetrySink(monitor *observability.Monitor) TelemetrySink {
	return TelemetrySink{monitor: monitor}
}

func (s TelemetrySink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.SessionOpened:
		s.monitor.SessionOpened()
	case event.SessionClosed:
		switch evt.Reason {
		case domain.CloseTimeout:
			s.monitor.SessionClosedByTimeout()
		case domain.CloseExit:
			s.monitor.SessionClosedByExit()
		case domain.CloseShutdown:
			s.monitor.SessionClosedByShutdown()
		}
	case event.TranscriptDelivered:
		s.monitor.TranscriptDelivered(evt.Fallback)
	case event.TranscriptUndelivered:
		s.monitor.TranscriptUndelivered()
	}
	return nil
}
