package workers

import (
	"context"
	"errors"
	"log/slog"

	"convosplit/domain"
	cserrors "convosplit/errors"
)

// Lifecycle is the slice of the coordinator the activity worker needs.
type Lifecycle interface {
	HandleActivity(channelID domain.ChannelID, author domain.UserID)
	HandleExit(req domain.ExitRequest) error
}

// ActivityWorker drains the inbound gateway signals: regular messages
// reset the matching session's inactivity timer, exit commands trigger
// teardown. Signals for channels without a session are dropped silently,
// which is the common case since the gateway forwards everything.
type ActivityWorker struct {
	coordinator Lifecycle
	signals     <-chan domain.Activity
	log         *slog.Logger
}

func NewActivityWorker(coordinator Lifecycle, signals <-chan domain.Activity, log *slog.Logger) *ActivityWorker {
	return &ActivityWorker{coordinator: coordinator, signals: signals, log: log}
}

func (w *ActivityWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case signal, ok := <-w.signals:
			if !ok {
				return nil
			}
			if signal.Exit {
				err := w.coordinator.HandleExit(domain.ExitRequest{
					ChannelID: signal.ChannelID,
					IssuerID:  signal.AuthorID,
				})
				if errors.Is(err, cserrors.ErrNoSession) {
					// Exit issued outside a temporary channel: ignored.
					w.log.Debug("Exit signal outside a split channel",
						"channel", signal.ChannelID)
				} else if err != nil {
					w.log.Debug("Exit signal dropped",
						"channel", signal.ChannelID, "error", err)
				}
				continue
			}
			w.coordinator.HandleActivity(signal.ChannelID, signal.AuthorID)
		}
	}
}
