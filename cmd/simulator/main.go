// Command simulator runs the split-channel lifecycle against the
// in-memory platform: it opens a restricted session, feeds it activity,
// lets the inactivity timer expire and shows the transcript landing in
// the parent channel. TIMEOUT_UNIT compresses the "minutes" so the whole
// run takes seconds.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"convosplit/archive"
	"convosplit/domain"
	"convosplit/internal"
	"convosplit/invite"
	"convosplit/moderation"
	"convosplit/observability"
	"convosplit/platform"
	"convosplit/runtime"
	"convosplit/runtime/workers"
	"convosplit/sink"
	"convosplit/transcript"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the harness lifecycle, and
// centralizes error reporting so every defer executes before exit.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := newLogger(config.LogLevel)

	// 2. Archive store (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.ArchiveFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("archive store opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing archive store...")
		_ = db.Close()
	}()

	// 3. Platform fake: a parent channel anyone can talk in, plus a
	// log channel the bot is not allowed to attach files to, so the
	// fallback path is visible in the output.
	client := platform.NewInMemory()
	parent := domain.ChannelID("general")
	logs := domain.ChannelID("logs")
	everyone := domain.RoleID(config.EveryoneRoleID)
	bot := domain.UserID(config.BotUserID)
	client.AddChannel(parent, []domain.Overwrite{
		{Kind: domain.TargetRole, TargetID: string(everyone), Allow: domain.PermView | domain.PermSend},
		{Kind: domain.TargetMember, TargetID: string(bot), Allow: domain.BotPermissions},
	})
	client.AddChannel(logs, nil)
	client.FailSendFile(logs, true)

	// 4. Lifecycle manager wiring
	redactor, err := moderation.NewRedactor(splitWords(config.RedactedWords), maskRune(config.MaskCharacter))
	if err != nil {
		return fmt.Errorf("building redactor: %w", err)
	}
	registry := runtime.NewRegistry()
	exporter := transcript.NewExporter(log, client, redactor)
	coordinator := runtime.NewCoordinator(
		log, client, registry, exporter, bot, everyone, config.TeardownTimeout)
	coordinator.SetTimeoutUnit(config.TimeoutUnit)

	monitor := observability.NewMonitor()
	transcriptArchive := archive.NewTranscriptArchive(db, log)
	coordinator.AddSinks(
		sink.NewTelemetrySink(monitor),
		sink.NewArchiveSink(transcriptArchive, log),
	)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Workers under supervision
	signals := make(chan domain.Activity, config.SignalBufferSize)
	supervisor := workers.NewSupervisor(log)
	supervisor.Add(
		workers.NewActivityWorker(coordinator, signals, log),
		workers.NewHeartbeatWorker(log, registry, monitor, config.HeartbeatEvery),
	)
	go supervisor.Run(ctx)

	internal.StartDebugServer(db, config.DebugPort, func() map[string]any {
		stats := monitor.GetLatest()
		return map[string]any{
			"active":      stats.ActiveSessions,
			"opened":      stats.SessionsOpened,
			"delivered":   stats.TranscriptsDelivered,
			"undelivered": stats.TranscriptsUndelivered,
		}
	})
	log.Info(fmt.Sprintf("Archive inspector on http://localhost:%d/inspect", config.DebugPort))

	// 7. Invite link, stateless with respect to sessions
	linker := invite.NewBuilder(config.InviteBaseURL, config.InviteClientID,
		domain.BotPermissions, []byte(config.InviteSecret), config.InviteStateTTL)
	link, err := linker.Link("alice")
	if err != nil {
		return fmt.Errorf("building invite link: %w", err)
	}
	log.Info(fmt.Sprintf("Invite link: %s", link))

	// 8. Scripted scenario
	if err := scenario(ctx, log, coordinator, client, signals, parent, logs, config); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutting down, closing remaining sessions")
	coordinator.CloseAll()
	supervisor.Stop()
	return nil
}

// scenario opens one restricted session bound for the logs channel,
// plays some chatter into it and exits it, then opens a second session
// that dies of inactivity.
func scenario(ctx context.Context, log *slog.Logger, coordinator *runtime.Coordinator,
	client *platform.InMemory, signals chan<- domain.Activity,
	parent, logs domain.ChannelID, config Config) error {

	session, err := coordinator.Split(ctx, domain.SplitRequest{
		ParentChannelID: parent,
		OwnerID:         "alice",
		Members:         []domain.UserID{"bob"},
		TimeoutMinutes:  config.ScenarioTimeout,
		DestChannelID:   logs,
	})
	if err != nil {
		return fmt.Errorf("split failed: %w", err)
	}

	chatter := []struct {
		author domain.UserID
		name   string
		text   string
	}{
		{"alice", "Alice", "Let's figure out the release plan here."},
		{"bob", "Bob", "Works for me, main channel was getting noisy."},
		{"alice", "Alice", "Draft goes out Friday, review on Monday."},
	}
	for _, m := range chatter {
		client.PostMessage(session.TempChannelID, m.author, m.name, m.text)
		signals <- domain.Activity{ChannelID: session.TempChannelID, AuthorID: m.author}
		time.Sleep(200 * time.Millisecond)
	}
	signals <- domain.Activity{ChannelID: session.TempChannelID, AuthorID: "alice", Exit: true}

	second, err := coordinator.Split(ctx, domain.SplitRequest{
		ParentChannelID: parent,
		OwnerID:         "carol",
		TimeoutMinutes:  config.ScenarioTimeout,
	})
	if err != nil {
		return fmt.Errorf("second split failed: %w", err)
	}
	client.PostMessage(second.TempChannelID, "carol", "Carol", "Anyone here? Guess not.")
	signals <- domain.Activity{ChannelID: second.TempChannelID, AuthorID: "carol"}
	log.Info(fmt.Sprintf("Session %s will now idle out after %s",
		second.Name, second.Timeout))
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func splitWords(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if w := strings.TrimSpace(p); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func maskRune(str string) rune {
	r := []rune(str)
	if len(r) != 1 {
		return '*'
	}
	return r[0]
}
