// Command viewer opens the transcript archive read-only and serves the
// inspection page, so archived conversations can be browsed while the
// bot process still holds the store lock.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"convosplit/internal"
)

type Config struct {
	ArchiveFilepath string `env:"ARCHIVE_FILEPATH,default=./data/archive"`
	DebugPort       int    `env:"DEBUG_PORT,default=8098"`
}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening while the bot holds the lock
	opts := badger.DefaultOptions(config.ArchiveFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	defer db.Close()

	// 3. Serve the inspect page; no live counters in read-only mode
	internal.StartDebugServer(db, config.DebugPort, nil)
	fmt.Printf("Archive viewer on http://localhost:%d/inspect\n", config.DebugPort)

	for {
		time.Sleep(time.Hour)
	}
}
