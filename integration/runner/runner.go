package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jwebster45206/garden-quest/pkg/geom"
	"github.com/jwebster45206/garden-quest/pkg/sim"
	"github.com/jwebster45206/garden-quest/pkg/tileset"
	"github.com/jwebster45206/garden-quest/pkg/tmx"
	"github.com/jwebster45206/garden-quest/pkg/world"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// DefaultFrame is the simulated frame length. At 125 px/s it moves the player 2 px.
const DefaultFrame = 16 * time.Millisecond

// Runner plays scripted cases headless against a world
type Runner struct {
	FS                fs.FS
	Manifest          string
	Frame             time.Duration
	MaxHoldFrames     int
	Logger            func(format string, args ...any)
	EngineLogger      *slog.Logger
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new runner over the world stored in fsys
func NewRunner(fsys fs.FS, manifest string) *Runner {
	return &Runner{
		FS:                fsys,
		Manifest:          manifest,
		Frame:             DefaultFrame,
		MaxHoldFrames:     600,
		Logger:            func(string, ...any) {},
		EngineLogger:      slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// session is one engine plus the scripted devices driving it
type session struct {
	engine   *sim.Engine
	world    *world.World
	controls *scriptedControls
	events   *eventLog
	tick     uint64
}

// newSession builds a fresh engine and enters the start room
func (r *Runner) newSession(ctx context.Context) (*session, error) {
	w, err := world.LoadFS(r.FS, r.Manifest)
	if err != nil {
		return nil, err
	}
	loader := tmx.NewLoader(r.FS, w, tileset.New(), r.EngineLogger)

	s := &session{
		world:    w,
		controls: newScriptedControls(),
		events:   &eventLog{},
	}
	s.engine = sim.New(w, loader, s.controls, r.EngineLogger).WithEvents(s.events)
	if err := r.frame(ctx, s, 0); err != nil {
		return nil, fmt.Errorf("failed to enter start room: %w", err)
	}
	return s, nil
}

// frame advances the session by d
func (r *Runner) frame(ctx context.Context, s *session, d time.Duration) error {
	s.tick += uint64(d.Milliseconds())
	return s.engine.Update(ctx, sim.Frame{Delta: d.Seconds(), Tick: s.tick})
}

// RunSuite executes a complete test suite on a new engine
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	s, err := r.newSession(ctx)
	if err != nil {
		result.Error = fmt.Errorf("failed to start session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.Session = s.engine.ID()

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.executeStep(ctx, s, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%d frames)", i+1, len(suite.Steps), step.Name, stepResult.Frames)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// executeStep performs one step and checks its expectations
func (r *Runner) executeStep(ctx context.Context, s *session, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{
		StepName: step.Name,
	}
	mark := len(s.events.kinds)

	frames, err := r.perform(ctx, s, step)
	result.Frames = frames
	result.Message = s.engine.Message()
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	if err := r.checkExpectations(step.Expectations, s, s.events.kinds[mark:]); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// perform feeds the step's input to the engine and returns the frames it took
func (r *Runner) perform(ctx context.Context, s *session, step TestStep) (int, error) {
	switch step.Action {
	case ActionTeleport:
		id, ok := s.world.Graph.Lookup(step.Room)
		if !ok {
			return 0, fmt.Errorf("unknown room %q", step.Room)
		}
		var pos *geom.Point
		if step.X != nil || step.Y != nil {
			if step.X == nil || step.Y == nil {
				return 0, fmt.Errorf("teleport needs both x and y")
			}
			pos = &geom.Point{X: *step.X, Y: *step.Y}
		}
		if err := s.engine.Teleport(id, pos); err != nil {
			return 0, err
		}
		return 1, r.frame(ctx, s, 0)

	case ActionHold:
		c, err := parseDirection(step.Direction)
		if err != nil {
			return 0, err
		}
		return r.hold(ctx, s, c, step)

	case ActionFace:
		c, err := parseDirection(step.Direction)
		if err != nil {
			return 0, err
		}
		s.controls.hold(c)
		defer s.controls.letGo()
		return 1, r.frame(ctx, s, 0)

	case ActionPress:
		s.controls.release(sim.ControlAction)
		return 1, r.frame(ctx, s, r.Frame)

	case ActionWait:
		return runFrames(ctx, r, s, max(step.Frames, 1), nil)

	default:
		return 0, fmt.Errorf("unknown action %q", step.Action)
	}
}

// hold presses a direction for step.Frames frames, or until step.UntilRoom is entered
func (r *Runner) hold(ctx context.Context, s *session, c sim.Control, step TestStep) (int, error) {
	s.controls.hold(c)
	defer s.controls.letGo()

	if step.UntilRoom == "" {
		return runFrames(ctx, r, s, max(step.Frames, 1), nil)
	}

	limit := step.Frames
	if limit <= 0 {
		limit = r.MaxHoldFrames
	}
	n, err := runFrames(ctx, r, s, limit, func() bool {
		return s.engine.RoomName() == step.UntilRoom
	})
	if err != nil {
		return n, err
	}
	if s.engine.RoomName() != step.UntilRoom {
		return n, fmt.Errorf("still in %s after %d frames, expected to reach %s", s.engine.RoomName(), n, step.UntilRoom)
	}
	return n, nil
}

// checkExpectations validates the step expectations against the engine
func (r *Runner) checkExpectations(exp Expectations, s *session, events []sim.EventKind) error {
	e := s.engine

	if exp.Room != nil && e.RoomName() != *exp.Room {
		return fmt.Errorf("expected room %s, got %s", *exp.Room, e.RoomName())
	}

	if exp.Held != nil && e.Held() != *exp.Held {
		return fmt.Errorf("expected held item %q, got %q", *exp.Held, e.Held())
	}

	if len(exp.MessageContains) > 0 {
		lower := strings.ToLower(e.Message())
		for _, want := range exp.MessageContains {
			if !strings.Contains(lower, strings.ToLower(want)) {
				return fmt.Errorf("expected message to contain '%s', got '%s'", want, e.Message())
			}
		}
	}

	if exp.MessageEmpty != nil && (e.Message() == "") != *exp.MessageEmpty {
		return fmt.Errorf("expected message empty to be %t, got '%s'", *exp.MessageEmpty, e.Message())
	}

	for name, want := range exp.NPCStates {
		if got := e.NPCState(name); got != want {
			return fmt.Errorf("expected NPC %s in state %d, got %d", name, want, got)
		}
	}

	level := e.Level()
	if exp.NPC != nil {
		got := ""
		if level != nil && level.NPC != nil {
			got = level.NPC.Name
		}
		if got != *exp.NPC {
			return fmt.Errorf("expected NPC %q in the room, got %q", *exp.NPC, got)
		}
	}
	if exp.Item != nil {
		got := ""
		if level != nil && level.Item != nil {
			got = level.Item.Name
		}
		if got != *exp.Item {
			return fmt.Errorf("expected item %q in the room, got %q", *exp.Item, got)
		}
	}

	// full consumed set, order independent
	if len(exp.Consumed) > 0 {
		want := slices.Clone(exp.Consumed)
		slices.Sort(want)
		if got := e.Consumed(); !slices.Equal(want, got) {
			return fmt.Errorf("expected consumed %v, got %v", want, got)
		}
	}

	for name, want := range exp.Visuals {
		if got, _ := e.Visual(name); got != want {
			return fmt.Errorf("expected visual of %s to be %s, got %s", name, want, got)
		}
	}

	if exp.Won != nil && e.Won() != *exp.Won {
		return fmt.Errorf("expected won to be %t, got %t", *exp.Won, e.Won())
	}

	if len(exp.Events) > 0 && !containsInOrder(events, exp.Events) {
		return fmt.Errorf("expected events %v in order, got %v", exp.Events, events)
	}

	return nil
}

// containsInOrder reports whether want is a subsequence of got
func containsInOrder(got []sim.EventKind, want []string) bool {
	i := 0
	for _, k := range got {
		if i < len(want) && string(k) == want[i] {
			i++
		}
	}
	return i == len(want)
}
