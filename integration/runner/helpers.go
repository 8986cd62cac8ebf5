package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwebster45206/garden-quest/pkg/sim"
)

// scriptedControls plays back held directions and one-shot action releases
type scriptedControls struct {
	held     map[sim.Control]bool
	released map[sim.Control]bool
}

func newScriptedControls() *scriptedControls {
	return &scriptedControls{
		held:     make(map[sim.Control]bool),
		released: make(map[sim.Control]bool),
	}
}

func (c *scriptedControls) Analog(k sim.Control) float64 {
	if c.held[k] {
		return 1
	}
	return 0
}

func (c *scriptedControls) Released(k sim.Control) bool {
	r := c.released[k]
	delete(c.released, k)
	return r
}

func (c *scriptedControls) hold(k sim.Control) {
	c.held[k] = true
}

func (c *scriptedControls) release(k sim.Control) {
	c.released[k] = true
}

func (c *scriptedControls) letGo() {
	clear(c.held)
}

// eventLog records the kinds of every engine event
type eventLog struct {
	kinds []sim.EventKind
}

func (l *eventLog) Emit(e sim.Event) {
	l.kinds = append(l.kinds, e.Kind)
}

// runFrames advances up to n frames, stopping early once done reports true
func runFrames(ctx context.Context, r *Runner, s *session, n int, done func() bool) (int, error) {
	for i := range n {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := r.frame(ctx, s, r.Frame); err != nil {
			return i + 1, err
		}
		if done != nil && done() {
			return i + 1, nil
		}
	}
	return n, nil
}

func parseDirection(s string) (sim.Control, error) {
	switch strings.ToLower(s) {
	case "up", "north":
		return sim.ControlUp, nil
	case "down", "south":
		return sim.ControlDown, nil
	case "left", "west":
		return sim.ControlLeft, nil
	case "right", "east":
		return sim.ControlRight, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}
