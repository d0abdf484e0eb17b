// Package runtime hosts the session registry, the inactivity timers and
// the coordinator driving the split-channel lifecycle. It orchestrates
// the system without containing platform or rendering logic.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"convosplit/contract"
	"convosplit/domain"
	"convosplit/domain/event"
	"convosplit/errors"
	"convosplit/transcript"
)

const (
	splitResponseFmt = "Those in %s's conversation please move to %s (convo %s)."
	convoDoneFmt     = "Conversation %s finished:"
	permsWarning     = "Warning: I cannot send messages with a file in this " +
		"channel or the destination channel. If the conversation outlives " +
		"its timeout, its log may be lost!"
)

// Coordinator owns session creation and teardown. Creation validates the
// request, mirrors the parent permissions onto a fresh channel, registers
// the session and arms its inactivity timer. Teardown - triggered by
// timer expiry, an explicit exit or shutdown - exports the transcript,
// delivers it with a parent-channel fallback, deletes the channel and
// unregisters the session. Teardown runs exactly once per session and
// always runs to completion.
type Coordinator struct {
	log      *slog.Logger
	client   contract.ChannelClient
	registry contract.SessionRegistry
	exporter *transcript.Exporter
	sinks    []contract.EventSink

	botID    domain.UserID
	everyone domain.RoleID

	// budget for a teardown triggered outside any caller context
	// (timer expiry, exit command).
	teardownTimeout time.Duration

	// one "timeout minute" lasts this long; local harnesses compress it.
	timeoutUnit time.Duration
}

func NewCoordinator(
	log *slog.Logger,
	client contract.ChannelClient,
	registry contract.SessionRegistry,
	exporter *transcript.Exporter,
	botID domain.UserID,
	everyone domain.RoleID,
	teardownTimeout time.Duration,
) *Coordinator {
	return &Coordinator{
		log:             log,
		client:          client,
		registry:        registry,
		exporter:        exporter,
		botID:           botID,
		everyone:        everyone,
		teardownTimeout: teardownTimeout,
		timeoutUnit:     time.Minute,
	}
}

// SetTimeoutUnit changes how long one "timeout minute" lasts. The
// simulator compresses it to seconds so inactivity teardown can be
// watched live; production keeps the default.
func (c *Coordinator) SetTimeoutUnit(unit time.Duration) {
	c.timeoutUnit = unit
}

// AddSinks registers lifecycle observers. Sinks are notified outside the
// critical path; a failing sink never affects a session.
func (c *Coordinator) AddSinks(sinks ...contract.EventSink) {
	c.sinks = append(c.sinks, sinks...)
}

// Split handles a validated creation request end to end and returns the
// registered session. Validation and permission failures abort the whole
// operation with no channel and no registry entry left behind.
func (c *Coordinator) Split(ctx context.Context, req domain.SplitRequest) (*domain.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.Normalize()

	parentOverwrites, err := c.client.ChannelOverwrites(ctx, req.ParentChannelID)
	if err != nil {
		return nil, fmt.Errorf("reading parent overwrites: %w", err)
	}
	overwrites := domain.MirrorOverwrites(parentOverwrites, c.everyone, c.botID, req.Members)

	key := strings.Split(uuid.NewString(), "-")[0]
	name := "convo-" + key

	channelID, err := c.client.CreateChannel(ctx, req.ParentChannelID, name, overwrites)
	if err != nil {
		return nil, fmt.Errorf("creating temporary channel: %w", err)
	}

	session := domain.NewSession(
		channelID, req.ParentChannelID, req.OwnerID, req.Members,
		time.Duration(req.TimeoutMinutes)*c.timeoutUnit, req.DestChannelID, time.Now().UTC())
	session.Name = name

	// The timer handle must be in place before the session is published:
	// once Register returns, the activity worker may Lookup the session
	// and call Reset concurrently.
	timer := NewActivityTimer()
	session.Timer = timer

	if err := c.registry.Register(session); err != nil {
		// A fresh channel id colliding means the registry is corrupted;
		// drop the channel so no orphaned state leaks.
		if delErr := c.client.DeleteChannel(ctx, channelID); delErr != nil {
			c.log.Error("Failed to delete channel after registration conflict",
				"channel", channelID, "error", delErr)
		}
		return nil, err
	}

	timer.Start(session.Timeout, func() {
		c.close(session, domain.CloseTimeout)
	})

	c.announce(ctx, session, key)
	c.emit(ctx, event.SessionOpened{
		TempChannelID: session.TempChannelID,
		ParentID:      session.ParentID,
		OwnerID:       session.OwnerID,
		Restricted:    session.Restricted(),
		At:            session.StartedAt,
	})

	c.log.Info(fmt.Sprintf("Split session %s opened under %s", name, session.ParentID))
	return session, nil
}

// HandleActivity resets the inactivity countdown of the session bound to
// the channel the message was posted in. Messages in unknown channels
// and the bot's own messages do not qualify.
func (c *Coordinator) HandleActivity(channelID domain.ChannelID, author domain.UserID) {
	if author == c.botID {
		return
	}
	session, ok := c.registry.Lookup(channelID)
	if !ok || session.State() != domain.StateActive || session.Timer == nil {
		return
	}
	session.Timer.Reset()
}

// HandleExit tears down the session of the channel the command was
// issued in. Exit signals from anywhere else are refused: the command is
// only honored inside the temporary channel it targets.
func (c *Coordinator) HandleExit(req domain.ExitRequest) error {
	session, ok := c.registry.Lookup(req.ChannelID)
	if !ok {
		return errors.ErrNoSession
	}
	if session.State() != domain.StateActive {
		return errors.ErrSessionClosed
	}
	// Teardown does blocking platform I/O; run it off the event path so
	// other sessions keep progressing.
	go c.close(session, domain.CloseExit)
	return nil
}

// CloseAll tears down every live session, used on graceful shutdown so
// no temporary channel outlives the process that watches it.
func (c *Coordinator) CloseAll() {
	sessions := c.registry.Active()
	var wg sync.WaitGroup
	for _, session := range sessions {
		wg.Add(1)
		go func(s *domain.Session) {
			defer wg.Done()
			c.close(s, domain.CloseShutdown)
		}(session)
	}
	wg.Wait()
}

// close is the single teardown routine. The Active -> Closing transition
// is an atomic compare-and-set on the session state, so when timer
// expiry races an explicit exit only the first caller proceeds and the
// loser returns immediately. Sub-failures (delivery, deletion) are
// reported but never stop the cleanup: the channel is deleted and the
// session unregistered no matter what.
func (c *Coordinator) close(session *domain.Session, reason domain.CloseReason) {
	if !session.BeginClosing() {
		return
	}
	if session.Timer != nil {
		session.Timer.Cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.teardownTimeout)
	defer cancel()

	c.log.Info(fmt.Sprintf("Closing session %s (%s)", session.Name, reason))

	// Lock the channel while saving its messages.
	locked := domain.LockedOverwrites(c.everyone, c.botID)
	if err := c.client.EditOverwrites(ctx, session.TempChannelID, locked); err != nil {
		c.log.Warn("Failed to lock channel before export",
			"channel", session.TempChannelID, "error", err)
	}

	artifact, err := c.exporter.Export(ctx, session)
	if err != nil {
		// Partial transcripts are never delivered; the history is lost
		// but teardown still proceeds.
		c.log.Error("Transcript export failed, conversation log lost",
			"channel", session.TempChannelID, "error", err)
	} else {
		c.deliver(ctx, session, artifact)
	}

	if err := c.client.DeleteChannel(ctx, session.TempChannelID); err != nil {
		c.log.Error("Failed to delete temporary channel",
			"channel", session.TempChannelID, "error", err)
	}

	c.registry.Remove(session.TempChannelID)
	session.MarkClosed()

	c.emit(ctx, event.SessionClosed{
		TempChannelID: session.TempChannelID,
		ParentID:      session.ParentID,
		Reason:        reason,
		At:            time.Now().UTC(),
	})
}

// deliver sends the transcript to the configured destination and falls
// back once to the parent channel. A double failure is terminal for
// delivery only; the undelivered payload is handed to the sinks so the
// host can retain it.
func (c *Coordinator) deliver(ctx context.Context, session *domain.Session, artifact transcript.Artifact) {
	text := fmt.Sprintf(convoDoneFmt, session.Key())

	err := c.client.SendFile(ctx, session.DestinationID, text, artifact.Filename, artifact.Content)
	if err == nil {
		c.emit(ctx, event.TranscriptDelivered{
			TempChannelID: session.TempChannelID,
			DeliveredTo:   session.DestinationID,
			At:            time.Now().UTC(),
		})
		return
	}
	c.log.Warn("Transcript delivery failed, falling back to parent channel",
		"destination", session.DestinationID, "error", err)

	if session.DestinationID != session.ParentID {
		if err = c.client.SendFile(ctx, session.ParentID, text, artifact.Filename, artifact.Content); err == nil {
			c.emit(ctx, event.TranscriptDelivered{
				TempChannelID: session.TempChannelID,
				DeliveredTo:   session.ParentID,
				Fallback:      true,
				At:            time.Now().UTC(),
			})
			return
		}
	}

	c.log.Error("Transcript undeliverable",
		"channel", session.TempChannelID, "error", fmt.Errorf("%w: %v", errors.ErrDeliveryFailed, err))
	c.emit(ctx, event.TranscriptUndelivered{
		TempChannelID: session.TempChannelID,
		ParentID:      session.ParentID,
		Filename:      artifact.Filename,
		Content:       artifact.Content,
		At:            time.Now().UTC(),
	})
}

// announce completes the creation by telling the parent channel where to
// move. When the bot cannot attach files to either delivery target, a
// warning is posted into the new channel right away.
func (c *Coordinator) announce(ctx context.Context, session *domain.Session, key string) {
	text := fmt.Sprintf(splitResponseFmt,
		mention(session.OwnerID), channelMention(session.TempChannelID), key)
	if err := c.client.Send(ctx, session.ParentID, text); err != nil {
		c.log.Warn("Failed to announce split in parent channel",
			"channel", session.ParentID, "error", err)
	}

	if session.Restricted() {
		mentions := lo.Map(session.AllowedMembers, func(m domain.UserID, _ int) string {
			return mention(m)
		})
		if err := c.client.Send(ctx, session.TempChannelID, strings.Join(mentions, " ")); err != nil {
			c.log.Warn("Failed to ping restricted members",
				"channel", session.TempChannelID, "error", err)
		}
	}

	if !c.canAttachFiles(ctx, session.DestinationID) && !c.canAttachFiles(ctx, session.ParentID) {
		if err := c.client.Send(ctx, session.TempChannelID, permsWarning); err != nil {
			c.log.Warn("Failed to post permission warning",
				"channel", session.TempChannelID, "error", err)
		}
	}
}

// canAttachFiles checks whether the bot holds an overwrite that lets it
// post a file into the channel. A read failure counts as "unknown" and
// skips the warning rather than crying wolf.
func (c *Coordinator) canAttachFiles(ctx context.Context, id domain.ChannelID) bool {
	overwrites, err := c.client.ChannelOverwrites(ctx, id)
	if err != nil {
		return true
	}
	for _, o := range overwrites {
		if o.Kind == domain.TargetMember && o.TargetID == string(c.botID) {
			return o.Has(domain.PermSend | domain.PermAttachFiles)
		}
		if o.Kind == domain.TargetRole && o.TargetID == string(c.everyone) &&
			o.Denies(domain.PermSend) {
			return false
		}
	}
	return true
}

func (c *Coordinator) emit(ctx context.Context, e event.DomainEvent) {
	for _, sink := range c.sinks {
		if err := sink.Consume(ctx, e); err != nil {
			c.log.Error("Event sink failed", "event", fmt.Sprintf("%T", e), "error", err)
		}
	}
}

func mention(id domain.UserID) string {
	return fmt.Sprintf("<@%s>", id)
}

func channelMention(id domain.ChannelID) string {
	return fmt.Sprintf("<#%s>", id)
}
