package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"

	"convosplit/archive"
	"convosplit/domain"
	"convosplit/moderation"
	"convosplit/observability"
	"convosplit/platform"
	"convosplit/runtime"
	"convosplit/runtime/workers"
	"convosplit/sink"
	"convosplit/transcript"
)

const (
	parentChannel = domain.ChannelID("general")
	logsChannel   = domain.ChannelID("logs")
	botUser       = domain.UserID("bot")
	everyoneRole  = domain.RoleID("everyone")
)

// BaseLifecycleSuite wires the whole stack against the in-process
// platform: coordinator, registry, exporter, sinks, archive and the
// activity worker under supervision, the same way the composition root
// does it.
type BaseLifecycleSuite struct {
	suite.Suite
	Config Config

	Platform    *platform.InMemory
	Registry    *runtime.Registry
	Coordinator *runtime.Coordinator
	Monitor     *observability.Monitor
	Archive     *archive.TranscriptArchive
	Signals     chan domain.Activity

	db         *badger.DB
	supervisor *workers.Supervisor
	cancelRun  context.CancelFunc
	runDone    chan struct{}
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseLifecycleSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

// SetupTest assembles a fresh stack so scenarios never share state.
func (s *BaseLifecycleSuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s.Platform = platform.NewInMemory()
	s.Platform.AddChannel(parentChannel, []domain.Overwrite{
		{Kind: domain.TargetRole, TargetID: string(everyoneRole), Allow: domain.PermView | domain.PermSend},
	})
	s.Platform.AddChannel(logsChannel, nil)

	redactor, err := moderation.NewRedactor(strings.Split(s.Config.RedactedWords, ","), '*')
	s.Require().NoError(err)

	s.Registry = runtime.NewRegistry()
	exporter := transcript.NewExporter(log, s.Platform, redactor)
	s.Coordinator = runtime.NewCoordinator(
		log, s.Platform, s.Registry, exporter, botUser, everyoneRole, s.Config.StepTimeout)
	s.Coordinator.SetTimeoutUnit(s.Config.TimeoutUnit)

	s.db, err = badger.Open(badger.DefaultOptions(s.T().TempDir()).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	s.Archive = archive.NewTranscriptArchive(s.db, log)

	s.Monitor = observability.NewMonitor()
	s.Coordinator.AddSinks(
		sink.NewTelemetrySink(s.Monitor),
		sink.NewArchiveSink(s.Archive, log),
	)

	s.Signals = make(chan domain.Activity, 16)
	s.supervisor = workers.NewSupervisor(log)
	s.supervisor.Add(workers.NewActivityWorker(s.Coordinator, s.Signals, log))

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelRun = cancel
	s.runDone = make(chan struct{})
	go func() {
		s.supervisor.Run(ctx)
		close(s.runDone)
	}()
}

func (s *BaseLifecycleSuite) TearDownTest() {
	s.cancelRun()
	<-s.runDone
	s.Require().NoError(s.db.Close())
}

// Step prints a colorized header so long scenario logs stay readable.
func (s *BaseLifecycleSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Chat pushes a regular message through the gateway signal path and
// records it in the channel history, like a member typing.
func (s *BaseLifecycleSuite) Chat(channel domain.ChannelID, author domain.UserID, name, content string) {
	s.Platform.PostMessage(channel, author, name, content)
	s.Signals <- domain.Activity{ChannelID: channel, AuthorID: author}
}

// Exit pushes an exit command through the gateway signal path.
func (s *BaseLifecycleSuite) Exit(channel domain.ChannelID, author domain.UserID) {
	s.Signals <- domain.Activity{ChannelID: channel, AuthorID: author, Exit: true}
}

// WaitClosed blocks until the session reaches its terminal state.
func (s *BaseLifecycleSuite) WaitClosed(session *domain.Session) {
	s.Require().Eventually(func() bool {
		return session.State() == domain.StateClosed
	}, s.Config.StepTimeout, 10*time.Millisecond,
		"session %s never finished closing", session.Name)
}
