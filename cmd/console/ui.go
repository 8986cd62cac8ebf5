package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jwebster45206/garden-quest/pkg/sim"
)

const (
	// maxDelta caps the simulated step after a stall, in seconds.
	maxDelta = 0.1
	logLines = 200
)

// ConsoleUI is the BubbleTea model that runs the game in a terminal.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	engine   *sim.Engine
	controls *keyControls
	feed     *eventFeed
	logger   *slog.Logger

	frame time.Duration
	start time.Time
	last  time.Time

	snap          sim.Snapshot
	logViewport   viewport.Model
	ready         bool
	width         int
	height        int
	err           error
	showQuitModal bool
}

type frameMsg time.Time

var (
	roomPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2)

	statusPanelStyle = lipgloss.NewStyle().
				PaddingTop(1).
				PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

// NewConsoleUI wraps engine in a terminal model updating frameRate times a second.
func NewConsoleUI(engine *sim.Engine, controls *keyControls, feed *eventFeed, frameRate int, logger *slog.Logger) ConsoleUI {
	logVp := viewport.New(32, 6)
	logVp.MouseWheelEnabled = true

	return ConsoleUI{
		engine:      engine,
		controls:    controls,
		feed:        feed,
		logger:      logger,
		frame:       time.Second / time.Duration(max(frameRate, 1)),
		logViewport: logVp,
	}
}

func frameTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m ConsoleUI) Init() tea.Cmd {
	return frameTick(m.frame)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var vpCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logViewport.Width = 2 * 16
		m.logViewport.Height = max(m.height-16, 3)
		m.ready = true
		m.writeLog()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		}
		if c, ok := controlForKey(msg); ok {
			m.controls.Press(c, time.Now())
			return m, nil
		}

	case frameMsg:
		return m.step(time.Time(msg))
	}

	m.logViewport, vpCmd = m.logViewport.Update(msg)
	return m, vpCmd
}

// step advances the engine to t and schedules the next frame. An engine error ends
// the program; Err reports it afterwards.
func (m ConsoleUI) step(t time.Time) (tea.Model, tea.Cmd) {
	if m.err != nil {
		return m, nil
	}
	if m.start.IsZero() {
		m.start = t
	}
	delta := 0.0
	if !m.last.IsZero() {
		delta = min(t.Sub(m.last).Seconds(), maxDelta)
	}
	m.last = t

	m.controls.Frame(t)
	f := sim.Frame{Delta: delta, Tick: uint64(t.Sub(m.start).Milliseconds())}
	if err := m.engine.Update(context.Background(), f); err != nil {
		m.logger.Error("Engine update failed", "error", err, "tick", f.Tick)
		m.err = err
		return m, tea.Quit
	}

	m.snap = m.engine.Snapshot()
	if m.feed.changed {
		m.writeLog()
	}
	return m, frameTick(m.frame)
}

// Err returns the error that stopped the engine, if any.
func (m ConsoleUI) Err() error {
	return m.err
}

func (m *ConsoleUI) writeLog() {
	m.feed.changed = false
	m.logViewport.SetContent(eventStyle.Render(strings.Join(m.feed.lines, "\n")))
	m.logViewport.GotoBottom()
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case frameMsg:
		// paused while the modal is open
		m.last = time.Time(msg)
		return m, frameTick(m.frame)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	if m.err != nil {
		return "\n  " + errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}

	gridWidth := 2 * 16
	roomPanel := roomPanelStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			renderGrid(buildGrid(m.snap, m.engine.Level(), m.engine.Catalog())),
			"",
			separatorStyle.Render(strings.Repeat("─", gridWidth)),
			m.logViewport.View(),
		),
	)

	statusWidth := max(m.width-gridWidth-8, 20)
	statusPanel := statusPanelStyle.Width(statusWidth).Render(writeStatus(m.snap, statusWidth-2))

	return lipgloss.JoinHorizontal(lipgloss.Top, roomPanel, statusPanel)
}

// eventFeed keeps recent engine events for the log panel and passes them on.
type eventFeed struct {
	lines   []string
	changed bool
	next    sim.EventSink
}

func (f *eventFeed) Emit(e sim.Event) {
	f.lines = append(f.lines, formatEvent(e))
	if over := len(f.lines) - logLines; over > 0 {
		f.lines = f.lines[over:]
	}
	f.changed = true
	if f.next != nil {
		f.next.Emit(e)
	}
}

func formatEvent(e sim.Event) string {
	at := fmt.Sprintf("%6.1fs", float64(e.Tick)/1000)
	switch e.Kind {
	case sim.EventRoomEntered:
		return fmt.Sprintf("%s  entered %s", at, displayName(e.Room))
	case sim.EventItemPicked:
		return fmt.Sprintf("%s  picked up %s", at, displayName(e.Subject))
	case sim.EventNPCSpoke:
		return fmt.Sprintf("%s  %s spoke", at, displayName(e.Subject))
	case sim.EventNPCRemoved:
		return fmt.Sprintf("%s  %s is gone", at, displayName(e.Subject))
	case sim.EventWon:
		return fmt.Sprintf("%s  the garden blooms", at)
	}
	return fmt.Sprintf("%s  %s", at, e.Kind)
}
