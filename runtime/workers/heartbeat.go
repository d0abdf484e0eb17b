package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"convosplit/contract"
	"convosplit/observability"
)

// HeartbeatWorker periodically logs the session totals together with the
// bot's own process stats, so a long-running deployment can be watched
// from its logs alone.
type HeartbeatWorker struct {
	log      *slog.Logger
	registry contract.SessionRegistry
	monitor  *observability.Monitor
	interval time.Duration
}

func NewHeartbeatWorker(
	log *slog.Logger,
	registry contract.SessionRegistry,
	monitor *observability.Monitor,
	interval time.Duration,
) *HeartbeatWorker {
	return &HeartbeatWorker{
		log:      log,
		registry: registry,
		monitor:  monitor,
		interval: interval,
	}
}

// Run executes the main loop of the worker, reporting health metrics
// (CPU, RAM, Status) and session counters at every interval.
func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			stats := w.monitor.GetLatest()
			w.log.Info("Heartbeat",
				"active_sessions", len(w.registry.Active()),
				"opened", stats.SessionsOpened,
				"closed_timeout", stats.ClosedByTimeout,
				"closed_exit", stats.ClosedByExit,
				"delivered", stats.TranscriptsDelivered,
				"undelivered", stats.TranscriptsUndelivered,
				"ram_bytes", rss,
				"cpu_percent", cpu,
				"pid_status", status,
			)
		}
	}
}

// getSelfStats retrieves technical metrics (Memory, CPU, and OS Status)
// for the given process.
func getSelfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
