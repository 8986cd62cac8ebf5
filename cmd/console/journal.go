package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/garden-quest/internal/config"
	"github.com/jwebster45206/garden-quest/internal/services/events"
	"github.com/jwebster45206/garden-quest/internal/services/queue"
	"github.com/jwebster45206/garden-quest/pkg/sim"
)

// inspect serves -journal and -watch against the configured Redis.
func inspect(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	id := *journalFlag
	if *watchFlag != "" {
		id = *watchFlag
	}
	session, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}
	if !cfg.EventsEnabled() {
		return fmt.Errorf("REDIS_URL is not set")
	}

	client, err := queue.NewClient(ctx, cfg.RedisURL, log)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close() // Ignore error in defer
	}()

	if *watchFlag != "" {
		return watchSession(ctx, events.NewBroadcaster(client.Redis(), log), session, os.Stdout)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return printJournal(ctx, queue.NewJournal(client), session, *drainFlag, os.Stdout)
}

// printJournal writes the journaled events of a past session. With drain set the
// events are removed as they are read.
func printJournal(ctx context.Context, j *queue.Journal, session uuid.UUID, drain bool, w io.Writer) error {
	var (
		evs []sim.Event
		err error
	)
	if drain {
		evs, err = j.Drain(ctx, session)
	} else {
		evs, err = j.Peek(ctx, session, 0)
	}
	if err != nil {
		return err
	}

	for _, e := range evs {
		fmt.Fprintln(w, formatEvent(e))
	}
	if drain {
		fmt.Fprintf(w, "%d event(s) removed\n", len(evs))
	} else {
		fmt.Fprintf(w, "%d event(s)\n", len(evs))
	}
	return nil
}

// watchSession prints the live events of a running session until ctx is done.
func watchSession(ctx context.Context, b *events.Broadcaster, session uuid.UUID, w io.Writer) error {
	sub := b.Subscribe(ctx, session)
	defer func() {
		_ = sub.Close() // Ignore error in defer
	}()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	fmt.Fprintf(w, "Watching session %s\n", session)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var e sim.Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				return fmt.Errorf("failed to parse event: %w", err)
			}
			fmt.Fprintln(w, formatEvent(e))
		}
	}
}
