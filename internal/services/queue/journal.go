package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/garden-quest/pkg/sim"
)

// Journal keeps the ordered list of engine events of each session
type Journal struct {
	client *Client
}

func NewJournal(client *Client) *Journal {
	return &Journal{
		client: client,
	}
}

func journalKey(session uuid.UUID) string {
	return fmt.Sprintf("world-journal:%s", session.String())
}

// Publish appends an event to the end of its session's journal
func (j *Journal) Publish(ctx context.Context, e sim.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := j.client.rdb.RPush(ctx, journalKey(e.Session), data).Err(); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// Drain removes and returns every journaled event for a session
func (j *Journal) Drain(ctx context.Context, session uuid.UUID) ([]sim.Event, error) {
	key := journalKey(session)

	var lrange *redis.StringSliceCmd
	_, err := j.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to drain journal: %w", err)
	}
	return decodeEvents(lrange.Val())
}

// Peek returns up to limit journaled events without removing them; limit <= 0 returns all
func (j *Journal) Peek(ctx context.Context, session uuid.UUID, limit int) ([]sim.Event, error) {
	end := int64(limit - 1)
	if limit <= 0 {
		end = -1
	}
	raw, err := j.client.rdb.LRange(ctx, journalKey(session), 0, end).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to peek journal: %w", err)
	}
	return decodeEvents(raw)
}

// Depth returns the number of journaled events for a session
func (j *Journal) Depth(ctx context.Context, session uuid.UUID) (int, error) {
	count, err := j.client.rdb.LLen(ctx, journalKey(session)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get journal depth: %w", err)
	}
	return int(count), nil
}

func decodeEvents(raw []string) ([]sim.Event, error) {
	out := make([]sim.Event, 0, len(raw))
	for _, s := range raw {
		var e sim.Event
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("failed to parse journaled event: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}
