package queue

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/garden-quest/pkg/sim"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	client, err := NewClient(context.Background(), "redis://"+mr.Addr(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func events(session uuid.UUID) []sim.Event {
	return []sim.Event{
		{Session: session, Kind: sim.EventRoomEntered, Tick: 0, Room: "fountain"},
		{Session: session, Kind: sim.EventItemPicked, Tick: 420, Room: "fountain", Subject: "cane"},
		{Session: session, Kind: sim.EventNPCSpoke, Tick: 980, Room: "elf", Subject: "elf", Message: "I'm hungry. I want candy."},
	}
}

func TestJournal_PublishAndDrain(t *testing.T) {
	client, _ := setupTestRedis(t)
	j := NewJournal(client)
	ctx := context.Background()
	session := uuid.New()

	for _, e := range events(session) {
		require.NoError(t, j.Publish(ctx, e))
	}

	depth, err := j.Depth(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 3, depth)

	drained, err := j.Drain(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, events(session), drained)

	depth, err = j.Depth(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 0, depth)
}

func TestJournal_DrainEmpty(t *testing.T) {
	client, _ := setupTestRedis(t)
	j := NewJournal(client)

	drained, err := j.Drain(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, drained)
}

func TestJournal_Peek(t *testing.T) {
	client, _ := setupTestRedis(t)
	j := NewJournal(client)
	ctx := context.Background()
	session := uuid.New()

	for _, e := range events(session) {
		require.NoError(t, j.Publish(ctx, e))
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "all", limit: 0, want: 3},
		{name: "first two", limit: 2, want: 2},
		{name: "more than stored", limit: 10, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := j.Peek(ctx, session, tt.limit)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
			assert.Equal(t, sim.EventRoomEntered, got[0].Kind)
		})
	}

	depth, err := j.Depth(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 3, depth, "peek does not remove")
}

func TestJournal_SessionsAreSeparate(t *testing.T) {
	client, _ := setupTestRedis(t)
	j := NewJournal(client)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, j.Publish(ctx, sim.Event{Session: a, Kind: sim.EventWon}))
	drained, err := j.Drain(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, drained)

	depth, err := j.Depth(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 1, depth)
}

func TestJournal_CorruptEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	j := NewJournal(client)
	session := uuid.New()

	_, err := mr.Push(journalKey(session), "not json")
	require.NoError(t, err)

	_, err = j.Peek(context.Background(), session, 0)
	assert.Error(t, err)
}

func TestNewClient_Errors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	_, err := NewClient(context.Background(), "::not a url", logger)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewClient(context.Background(), "redis://"+addr, logger)
	assert.Error(t, err)
}
