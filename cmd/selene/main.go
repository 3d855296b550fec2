package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/terraincognita07/selene/internal/auth"
	"github.com/terraincognita07/selene/internal/cli"
	"github.com/terraincognita07/selene/internal/config"
	"github.com/terraincognita07/selene/internal/db"
	"github.com/terraincognita07/selene/internal/keystore"
	"github.com/terraincognita07/selene/internal/logging"
	selenesync "github.com/terraincognita07/selene/internal/sync"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config init failed: %v", err)
	}

	logger := logging.NewLogger(cfg.Debug, cfg.LogFile)
	defer func() {
		_ = logger.Sync()
	}()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatalw("database init failed", "error", err)
	}

	repositories := db.NewRepositories(database)

	vault, err := keystore.Open(database, cfg.SecretFile)
	if err != nil {
		logger.Fatalw("keystore init failed", "error", err)
	}

	sessions := auth.NewStore(vault, []byte(cfg.SecretKey))
	if err := sessions.Load(); err != nil {
		logger.Fatalw("session restore failed", "error", err)
	}

	client := selenesync.NewHTTPChangeClient(cfg.RemoteURL, cfg.HTTPTimeout, logger)
	engine := selenesync.NewEngine(repositories.Logs, repositories.SyncState, client, sessions, logger)
	scheduler := selenesync.NewScheduler(engine, cfg.QuietPeriod, logger)
	defer scheduler.Stop()

	switch command(os.Args) {
	case "login":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "usage: selene login <email> <password>")
			os.Exit(2)
		}
		session, err := cli.RunLoginCommand(cfg.RemoteURL, os.Args[2], os.Args[3], sessions)
		if err != nil {
			logger.Fatalw("login failed", "error", err)
		}
		fmt.Printf("Signed in as %s\n", session.Email)
	case "logout":
		if err := cli.RunLogoutCommand(context.Background(), engine, repositories.Logs, sessions, logger); err != nil {
			logger.Fatalw("logout failed", "error", err)
		}
		fmt.Println("Signed out, local data wiped")
	case "sync":
		stats, err := engine.Sync(context.Background())
		if err != nil {
			logger.Fatalw("sync failed", "error", err)
		}
		fmt.Printf("Pulled %d created / %d updated / %d deleted, pushed %d created / %d updated / %d deleted\n",
			stats.PulledCreated, stats.PulledUpdated, stats.PulledDeleted,
			stats.PushedCreated, stats.PushedUpdated, stats.PushedDeleted)
	case "run":
		runAgent(sessions, scheduler, logger)
	default:
		fmt.Fprintln(os.Stderr, "usage: selene [run|login|logout|sync]")
		os.Exit(2)
	}
}

func command(args []string) string {
	if len(args) < 2 {
		return "run"
	}
	return args[1]
}

func runAgent(sessions *auth.Store, scheduler *selenesync.Scheduler, logger *zap.SugaredLogger) {
	events, cancel := sessions.Subscribe()
	defer cancel()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	scheduler.RequestSync()
	logger.Infow("selene agent started")

	for {
		select {
		case event := <-events:
			if event.SignedIn {
				scheduler.RequestSync()
			}
		case <-sigCtx.Done():
			logger.Infow("selene agent stopping")
			return
		}
	}
}
