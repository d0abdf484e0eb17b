package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"convosplit/domain"
)

type testSplitLifecycleSuite struct {
	BaseLifecycleSuite
}

func TestSplitLifecycleSuite(t *testing.T) {
	suite.Run(t, &testSplitLifecycleSuite{})
}

func (s *testSplitLifecycleSuite) TestFullSplitLifecycleFlow() {
	var session *domain.Session

	// --- STEP 1: SPLIT ---
	s.Run("Step 1: Split a restricted conversation off the parent channel", func() {
		s.Step("Splitting conversation")

		var err error
		session, err = s.Coordinator.Split(context.Background(), domain.SplitRequest{
			ParentChannelID: parentChannel,
			OwnerID:         "alice",
			Members:         []domain.UserID{"bob"},
			TimeoutMinutes:  2,
			DestChannelID:   logsChannel,
		})
		s.Require().NoError(err)
		s.Require().True(s.Platform.HasChannel(session.TempChannelID))

		// The parent channel was told where the conversation moved.
		messages := s.Platform.SentMessages()
		s.Require().NotEmpty(messages)
		s.Require().Equal(parentChannel, messages[0].ChannelID)
		s.Require().Contains(messages[0].Text, string(session.TempChannelID))
	})

	// --- STEP 2: CHATTER KEEPS THE SESSION ALIVE ---
	s.Run("Step 2: Regular chatter resets the inactivity countdown", func() {
		s.Step("Chatting past the nominal timeout")

		// 2 compressed "minutes" of timeout; chat every half unit for
		// three full units so expiry would have hit without the resets.
		deadline := time.Now().Add(3 * s.Config.TimeoutUnit)
		for time.Now().Before(deadline) {
			s.Chat(session.TempChannelID, "alice", "Alice", "still talking about the classified launch plan")
			time.Sleep(s.Config.TimeoutUnit / 2)
			s.Require().Equal(domain.StateActive, session.State())
		}
	})

	// --- STEP 3: EXIT ---
	s.Run("Step 3: Exit command tears the session down", func() {
		s.Step("Issuing exit")

		s.Chat(session.TempChannelID, "bob", "Bob", "wrapping up, see you in general")
		s.Exit(session.TempChannelID, "alice")
		s.WaitClosed(session)

		s.Require().False(s.Platform.HasChannel(session.TempChannelID))
		s.Require().Contains(s.Platform.Deleted(), session.TempChannelID)

		_, stillThere := s.Registry.Lookup(session.TempChannelID)
		s.Require().False(stillThere)
	})

	// --- STEP 4: TRANSCRIPT DELIVERY ---
	s.Run("Step 4: Transcript landed redacted in the logs channel", func() {
		s.Step("Checking delivery")

		files := s.Platform.SentFiles()
		s.Require().Len(files, 1)
		s.Require().Equal(logsChannel, files[0].ChannelID)

		content := string(files[0].Content)
		s.Require().Contains(content, "wrapping up, see you in general")
		// The censored word never leaves the process.
		s.Require().NotContains(content, "classified")
	})

	// --- STEP 5: TELEMETRY ---
	s.Run("Step 5: Monitor counted the lifecycle", func() {
		stats := s.Monitor.GetLatest()
		s.Require().EqualValues(1, stats.SessionsOpened)
		s.Require().EqualValues(1, stats.ClosedByExit)
		s.Require().EqualValues(1, stats.TranscriptsDelivered)
		s.Require().Zero(stats.ActiveSessions)
	})
}

func (s *testSplitLifecycleSuite) TestInactivityTimeoutFlow() {
	s.Step("Splitting and letting the conversation idle out")

	session, err := s.Coordinator.Split(context.Background(), domain.SplitRequest{
		ParentChannelID: parentChannel,
		OwnerID:         "alice",
		TimeoutMinutes:  1,
	})
	s.Require().NoError(err)

	// Nobody talks; the inactivity timer must close the session alone.
	s.WaitClosed(session)

	s.Require().False(s.Platform.HasChannel(session.TempChannelID))

	stats := s.Monitor.GetLatest()
	s.Require().EqualValues(1, stats.ClosedByTimeout)

	// With no destination configured the transcript goes to the parent.
	files := s.Platform.SentFiles()
	s.Require().Len(files, 1)
	s.Require().Equal(parentChannel, files[0].ChannelID)
}

func (s *testSplitLifecycleSuite) TestUndeliverableTranscriptIsArchivedFlow() {
	s.Step("Breaking both delivery targets")

	s.Platform.FailSendFile(logsChannel, true)
	s.Platform.FailSendFile(parentChannel, true)

	session, err := s.Coordinator.Split(context.Background(), domain.SplitRequest{
		ParentChannelID: parentChannel,
		OwnerID:         "alice",
		TimeoutMinutes:  1,
		DestChannelID:   logsChannel,
	})
	s.Require().NoError(err)

	s.Chat(session.TempChannelID, "alice", "Alice", "this must survive somewhere")
	s.Exit(session.TempChannelID, "alice")
	s.WaitClosed(session)

	// Teardown completed even though delivery was impossible.
	s.Require().False(s.Platform.HasChannel(session.TempChannelID))
	s.Require().Empty(s.Platform.SentFiles())

	s.Step("Recovering the transcript from the archive")

	records, err := s.Archive.List(parentChannel)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Require().Equal(session.TempChannelID, records[0].TempChannelID)
	s.Require().Contains(string(records[0].Content), "this must survive somewhere")

	stats := s.Monitor.GetLatest()
	s.Require().EqualValues(1, stats.TranscriptsUndelivered)
}
