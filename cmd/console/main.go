package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/garden-quest/assets"
	"github.com/jwebster45206/garden-quest/internal/config"
	"github.com/jwebster45206/garden-quest/internal/logger"
	"github.com/jwebster45206/garden-quest/internal/services/events"
	"github.com/jwebster45206/garden-quest/internal/services/queue"
	"github.com/jwebster45206/garden-quest/pkg/sim"
	"github.com/jwebster45206/garden-quest/pkg/tileset"
	"github.com/jwebster45206/garden-quest/pkg/tmx"
	"github.com/jwebster45206/garden-quest/pkg/world"
)

var (
	journalFlag = flag.String("journal", "", "Print the journaled events of a session ID and exit")
	drainFlag   = flag.Bool("drain", false, "With -journal, remove the printed events from the journal")
	watchFlag   = flag.String("watch", "", "Print the live events of a running session ID until interrupted")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// the terminal belongs to the UI; logs go to LOG_FILE or nowhere
	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = f.Close() // Ignore error in defer
		}()
		logOut = f
	}
	log := logger.SetupWriter(cfg, logOut)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *journalFlag != "" || *watchFlag != "" {
		if err := inspect(ctx, cfg, log); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read session events: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Console exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	fsys := assets.Open(cfg.AssetDir)
	w, err := world.LoadFS(fsys, cfg.WorldManifest)
	if err != nil {
		return err
	}
	loader := tmx.NewLoader(fsys, w, tileset.New(), log)

	controls := newKeyControls(HoldWindow)
	feed := &eventFeed{}
	engine := sim.New(w, loader, controls, log).WithEvents(feed)
	log = logger.WithSession(log, engine.ID())

	log.Info("Starting Garden Quest console",
		"environment", cfg.Environment,
		"rooms", w.Graph.Len(),
		"asset_dir", cfg.AssetDir,
		"events", cfg.EventsEnabled())

	if cfg.EventsEnabled() {
		client, err := queue.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Error("Error closing redis client", "error", err)
			}
		}()

		journal := queue.NewJournal(client)
		sink := events.NewSink(cfg.EventBuffer, log,
			events.NewBroadcaster(client.Redis(), log),
			journal,
		)
		sink.Start(ctx)
		defer func() {
			sink.Close()
			depth, err := journal.Depth(context.Background(), engine.ID())
			if err != nil {
				log.Warn("Failed to read journal depth", "error", err)
				return
			}
			log.Info("Session journaled", "events", depth, "dropped", sink.Dropped())
		}()
		feed.next = sink
	}

	p := tea.NewProgram(NewConsoleUI(engine, controls, feed, cfg.FrameRate, log),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("failed to run console: %w", err)
	}

	fmt.Printf("Session %s\n", engine.ID())
	return sessionErr(final)
}

// sessionErr returns the engine error the console stopped on.
func sessionErr(final tea.Model) error {
	ui, ok := final.(ConsoleUI)
	if !ok || ui.Err() == nil {
		return nil
	}
	return fmt.Errorf("game stopped: %w", ui.Err())
}
