package runner

import (
	"time"

	"github.com/google/uuid"
)

// Step actions
const (
	ActionTeleport = "teleport" // enter Room at X/Y, or at its spawn point when X/Y are omitted
	ActionHold     = "hold"     // hold Direction for Frames frames, or until UntilRoom is entered
	ActionFace     = "face"     // turn toward Direction without moving
	ActionPress    = "action"   // release the action control for one frame
	ActionWait     = "wait"     // idle for Frames frames
)

// TestSuite defines a complete scripted playthrough
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `json:"name"`
	Steps []TestStep `json:"steps,omitempty"` // Used for regular tests
	Cases []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep defines a single input and its expected outcomes
type TestStep struct {
	Name      string   `json:"name,omitempty"`
	Action    string   `json:"action"`
	Room      string   `json:"room,omitempty"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	Direction string   `json:"direction,omitempty"`
	Frames    int      `json:"frames,omitempty"`
	UntilRoom string   `json:"until_room,omitempty"`

	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a step executes
type Expectations struct {
	Room            *string           `json:"room,omitempty"`
	Held            *string           `json:"held,omitempty"`             // "" expects empty hands
	MessageContains []string          `json:"message_contains,omitempty"` // case insensitive
	MessageEmpty    *bool             `json:"message_empty,omitempty"`
	NPCStates       map[string]int    `json:"npc_states,omitempty"`
	NPC             *string           `json:"npc,omitempty"`  // NPC in the room, "" for none
	Item            *string           `json:"item,omitempty"` // item in the room, "" for none
	Consumed        []string          `json:"consumed,omitempty"`
	Visuals         map[string]string `json:"visuals,omitempty"`
	Won             *bool             `json:"won,omitempty"`
	Events          []string          `json:"events,omitempty"` // kinds emitted during the step, in order
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
	Frames   int
	Message  string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	Session  uuid.UUID // engine session used for this run
}
