package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/spf13/pflag"

	"github.com/sahinakkaya/pawn-appetit/internal/config"
	"github.com/sahinakkaya/pawn-appetit/internal/deck"
	"github.com/sahinakkaya/pawn-appetit/internal/srs"
	"github.com/sahinakkaya/pawn-appetit/internal/storage"
	sourcesync "github.com/sahinakkaya/pawn-appetit/internal/sync"
	"github.com/sahinakkaya/pawn-appetit/internal/web"
)

func main() {
	// 1. Define and parse command-line flags
	flags := pflag.NewFlagSet("pawn-appetit", pflag.ExitOnError)
	flags.String("config", "", "Path to a YAML config file")
	flags.String("database", "practice.db", "Path to the SQLite database file")
	flags.String("listen", ":8321", "HTTP listen address")
	flags.String("repos", "repos", "Directory where git repertoire sources are checked out")
	flags.Duration("interval", 30*time.Minute, "Periodic source sync interval while serving (0 disables)")
	flags.String("engine", "fsrs", "Spaced-repetition engine: fsrs or sm2")
	flags.Float64("retention", 0.9, "Desired retention rate for the fsrs engine")
	addSource := flags.String("add-source", "", "Register a repertoire source (path or git URL) and exit")
	syncOnly := flags.Bool("sync", false, "Sync all sources and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Open the database
	db, err := storage.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	log.Printf("Database opened successfully: %s", cfg.Database)

	scheduler := deck.NewScheduler(buildEngine(cfg))

	// 3. One-shot modes
	if *addSource != "" {
		kind := web.SourceKind(*addSource)
		if _, err := db.InsertSource(*addSource, kind); err != nil {
			log.Fatalf("Failed to add source %s: %v", *addSource, err)
		}
		log.Printf("Registered %s source: %s", kind, *addSource)
		return
	}
	if *syncOnly {
		sourcesync.Run(db, scheduler, cfg.Repos)
		return
	}

	// 4. Serve the review API, with periodic source sync
	if cfg.Interval > 0 {
		cron := gocron.NewScheduler(time.UTC)
		if _, err := cron.Every(cfg.Interval).Do(func() {
			sourcesync.Run(db, scheduler, cfg.Repos)
		}); err != nil {
			log.Fatalf("Failed to schedule periodic sync: %v", err)
		}
		cron.StartAsync()
		defer cron.Stop()
	}

	server := web.NewServer(db, scheduler, cfg.Repos)
	log.Printf("Listening on %s", cfg.Listen)
	log.Fatal(http.ListenAndServe(cfg.Listen, server))
}

// buildEngine picks the configured spaced-repetition engine.
func buildEngine(cfg config.Config) srs.Engine {
	if cfg.Engine == "sm2" {
		return srs.NewSM2()
	}
	return srs.NewFSRSWithRetention(cfg.Retention)
}
