package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/memkit/mem"
)

const tickInterval = 250 * time.Millisecond

// tickMsg drives the periodic stats refresh.
type tickMsg time.Time

// Model is the main application model
type Model struct {
	arena *mem.Arena
	wl    *workload
	keys  KeyMap

	cfg     workloadConfig
	stats   mem.Stats
	lastOps int64
	opsRate float64
	paused  bool
	started time.Time
	width   int
	height  int
	printer *message.Printer
}

func NewModel(cfg workloadConfig) Model {
	arena := mem.New(mem.DefaultOptions())
	return Model{
		arena:   arena,
		wl:      startWorkload(arena, cfg),
		keys:    DefaultKeyMap(),
		cfg:     cfg,
		started: time.Now(),
		printer: message.NewPrinter(language.English),
	}
}

// Close stops the workload and releases the arena.
func (m Model) Close() {
	m.wl.Stop()
	_ = m.arena.Close()
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.stats = m.arena.Stats()
		ops := m.wl.Ops()
		m.opsRate = float64(ops-m.lastOps) / tickInterval.Seconds()
		m.lastOps = ops
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = m.wl.TogglePause()
			return m, nil
		}
	}
	return m, nil
}

func (m Model) View() string {
	header := headerStyle.Render("memtop - off-heap allocator monitor")

	state := runningStyle.Render("RUNNING")
	if m.paused {
		state = pausedStyle.Render("PAUSED")
	}

	rows := []string{
		m.row("state", state),
		m.row("uptime", time.Since(m.started).Round(time.Second).String()),
		m.row("workers", m.printer.Sprintf("%d", m.cfg.Workers)),
		m.row("ops/sec", m.printer.Sprintf("%.0f", m.opsRate)),
		"",
		m.row("live bytes", m.printer.Sprintf("%d", m.stats.TotalBytes)),
		m.row("overhead bytes", m.printer.Sprintf("%d", m.stats.OverheadBytes)),
		m.row("allocations", m.printer.Sprintf("%d", m.stats.Allocations)),
		m.row("pending reclaims", m.printer.Sprintf("%d", m.stats.PendingReclaims)),
		m.row("reclaim backlog", m.printer.Sprintf("%d", m.stats.ReclaimQueueDepth)),
		m.row("untracked frees", m.printer.Sprintf("%d", m.stats.UntrackedFrees)),
	}
	panel := panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	status := statusStyle.Render("space: pause/resume  q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, panel, status)
}

func (m Model) row(label, value string) string {
	return fmt.Sprintf("%s%s", labelStyle.Render(label), valueStyle.Render(value))
}
