package workers

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"convosplit/domain"
	"convosplit/errors"
)

// lifecycleSpy records coordinator calls made by the worker.
type lifecycleSpy struct {
	mu         sync.Mutex
	activities []domain.Activity
	exits      []domain.ExitRequest
	exitErr    error
}

func (s *lifecycleSpy) HandleActivity(channelID domain.ChannelID, author domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, domain.Activity{ChannelID: channelID, AuthorID: author})
}

func (s *lifecycleSpy) HandleExit(req domain.ExitRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exits = append(s.exits, req)
	return s.exitErr
}

func (s *lifecycleSpy) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activities), len(s.exits)
}

func runWorker(t *testing.T, spy *lifecycleSpy, signals chan domain.Activity) func() {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	worker := NewActivityWorker(spy, signals, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func TestActivityWorker_Forwards_Messages_As_Activity(t *testing.T) {
	req := require.New(t)
	spy := &lifecycleSpy{}
	signals := make(chan domain.Activity, 4)
	runWorker(t, spy, signals)

	signals <- domain.Activity{ChannelID: "convo-a", AuthorID: "alice"}
	signals <- domain.Activity{ChannelID: "convo-a", AuthorID: "bob"}

	req.Eventually(func() bool {
		activities, _ := spy.counts()
		return activities == 2
	}, time.Second, 5*time.Millisecond)

	_, exits := spy.counts()
	req.Zero(exits)
	req.Equal(domain.UserID("alice"), spy.activities[0].AuthorID)
}

func TestActivityWorker_Routes_Exit_Signals_To_Teardown(t *testing.T) {
	req := require.New(t)
	spy := &lifecycleSpy{}
	signals := make(chan domain.Activity, 1)
	runWorker(t, spy, signals)

	signals <- domain.Activity{ChannelID: "convo-a", AuthorID: "alice", Exit: true}

	req.Eventually(func() bool {
		_, exits := spy.counts()
		return exits == 1
	}, time.Second, 5*time.Millisecond)

	activities, _ := spy.counts()
	req.Zero(activities)
	req.Equal(domain.ExitRequest{ChannelID: "convo-a", IssuerID: "alice"}, spy.exits[0])
}

func TestActivityWorker_Survives_Exit_Outside_A_Split_Channel(t *testing.T) {
	req := require.New(t)
	spy := &lifecycleSpy{exitErr: errors.ErrNoSession}
	signals := make(chan domain.Activity, 2)
	runWorker(t, spy, signals)

	// An exit in a regular channel is dropped; the next signal still flows.
	signals <- domain.Activity{ChannelID: "general", AuthorID: "alice", Exit: true}
	signals <- domain.Activity{ChannelID: "convo-a", AuthorID: "alice"}

	req.Eventually(func() bool {
		activities, exits := spy.counts()
		return activities == 1 && exits == 1
	}, time.Second, 5*time.Millisecond)
}

func TestActivityWorker_Stops_When_The_Signal_Channel_Closes(t *testing.T) {
	req := require.New(t)
	spy := &lifecycleSpy{}
	signals := make(chan domain.Activity)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	worker := NewActivityWorker(spy, signals, log)

	done := make(chan error, 1)
	go func() { done <- worker.Run(context.Background()) }()

	close(signals)

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("worker should stop once its input closes")
	}
}

func TestActivityWorker_Stops_On_Context_Cancellation(t *testing.T) {
	req := require.New(t)
	spy := &lifecycleSpy{}
	signals := make(chan domain.Activity)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	worker := NewActivityWorker(spy, signals, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		req.Fail("worker should stop when its context is canceled")
	}
}
