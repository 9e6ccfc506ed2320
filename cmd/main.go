package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"

	"rtchat/bus"
	"rtchat/directory"
	"rtchat/internal"
	"rtchat/registry"
	"rtchat/repositories"
	"rtchat/runtime"
	"rtchat/sink"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the replica lifecycle, and
// centralizes error reporting. This pattern is preferred over calling
// os.Exit or panic directly because it ensures all 'defer' statements
// (like database cleanup) run before the program exits, and it decouples
// the initialization logic from the main entry point.
func run() error {
	// 1. Configuration & Logger
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Directory (remote fetch, offline fallback)
	users := directory.NewProvider(config.DirectoryURL, config.DirectoryTimeout, log).Load()
	log.Info("Directory loaded", "users", len(users))

	// 4. Replica wiring: store, bus feed, session
	broker := bus.NewBroker(log)
	feed := broker.Join(config.Topic, config.BufferSize)

	session := registry.NewChatSession(log,
		repositories.NewSnapshotRepository(db, log),
		repositories.NewSessionRepository(db, config.SessionTTL),
		feed, users)
	if user := session.ActiveUser(); user != "" {
		log.Info("Previous session restored", "user", user)
	}

	replica := runtime.NewReplica(log, session, feed, config.RestartInterval).
		AddSinks(sink.NewLogSink(log))

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	replica.Start(ctx)
	log.Info("Replica started", "topic", config.Topic, "channels", len(session.ListChannels()))

	<-ctx.Done()
	log.Info("Shutting down gracefully...")
	replica.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
