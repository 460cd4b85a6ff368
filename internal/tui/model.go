package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lifequest/internal/engine"
	"lifequest/internal/ui"
)

type boardModel struct {
	ctx    context.Context
	svc    *engine.Service
	userID string

	width  int
	height int

	status *engine.Status
	tasks  []engine.TaskRef

	selected int
	pending  map[string]bool

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	status *engine.Status
	tasks  []engine.TaskRef
	err    error
}

type completedMsg struct {
	id    string
	title string
	res   *engine.CompleteResult
	err   error
}

func newBoardModel(ctx context.Context, svc *engine.Service, userID string) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		userID:  userID,
		pending: map[string]bool{},
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.Load(m.ctx, m.userID); err != nil {
			return loadedMsg{err: err}
		}
		st, err := m.svc.Status(m.ctx, m.userID)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{status: st, tasks: flatten(m.svc.Cache().Read())}
	}
}

func (m boardModel) completeCmd(ref engine.TaskRef) tea.Cmd {
	return func() tea.Msg {
		info := ref.Info()
		res, err := m.svc.CompleteTask(m.ctx, m.userID, info.ID, ref.Kind())
		return completedMsg{id: info.ID, title: info.Title, res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		m.tasks = msg.tasks
		m.clampSelection()
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		delete(m.pending, msg.id)
		if msg.err != nil {
			var perr engine.PersistenceError
			switch {
			case errors.As(msg.err, &perr):
				m.lastLog = "Not saved, rolled back: " + perr.Err.Error()
			default:
				m.lastLog = "Complete failed: " + msg.err.Error()
			}
			m.tasks = flatten(m.svc.Cache().Read())
			m.clampSelection()
			return m, nil
		}
		m.lastLog = "Completed " + msg.title
		if len(msg.res.Badges) > 0 {
			m.lastLog += " | " + ui.IconTrophy + " " + strings.Join(msg.res.Badges, ", ")
		}
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.tasks)-1 {
				m.selected++
			}
			return m, nil
		case "c", " ", "enter":
			if m.selected < 0 || m.selected >= len(m.tasks) {
				return m, nil
			}
			ref := m.tasks[m.selected]
			info := ref.Info()
			if m.pending[info.ID] {
				m.lastLog = "Already saving " + info.Title + "…"
				return m, nil
			}
			if done(ref) {
				m.lastLog = "Already done today."
				return m, nil
			}
			m.pending[info.ID] = true
			m.lastLog = "Completing " + info.Title + "…"
			return m, m.completeCmd(ref)
		}
	}
	return m, nil
}

func (m *boardModel) clampSelection() {
	if m.selected >= len(m.tasks) {
		m.selected = len(m.tasks) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	leftW := 30
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	max := len(linesLeft)
	if len(linesRight) > max {
		max = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < max; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.status == nil {
		return "Lifequest: loading…"
	}
	o := m.status.Overall
	return fmt.Sprintf("Lifequest | %s | Level %d | XP %d/%d %s | %s %d",
		m.userID, o.Level, o.CurrentLevelXP, o.NextLevelXP, progressBar(o.Progress, 30),
		ui.IconFire, m.status.State.Stats.CurrentStreak)
}

func (m boardModel) renderSidebar() string {
	if m.status == nil {
		return "Categories\n\nLoading…"
	}
	lines := []string{"Categories"}
	for _, c := range m.status.Categories {
		lines = append(lines, fmt.Sprintf("- %-13s L%-3d %s", c.Category, c.Level, progressBar(c.Progress, 10)))
	}
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- c/space/enter: complete")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	out := []string{"Active"}
	if len(m.tasks) == 0 {
		out = append(out, "(nothing to do)")
		return strings.Join(out, "\n")
	}
	for i, ref := range m.tasks {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		info := ref.Info()
		mark := "[ ]"
		switch {
		case m.pending[info.ID]:
			mark = "[…]"
		case done(ref):
			mark = "[x]"
		}
		out = append(out, fmt.Sprintf("%s%s %s %s (%s, %d xp)", cursor, mark, kindTag(ref.Kind()), info.Title, info.Category, info.XPValue))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

// flatten orders the cache for display: tasks, habits, routines, challenges.
func flatten(c engine.ActiveTaskCache) []engine.TaskRef {
	out := make([]engine.TaskRef, 0, c.Len())
	for _, t := range c.Normal {
		out = append(out, t)
	}
	for _, t := range c.Habit {
		out = append(out, t)
	}
	for _, t := range c.Routine {
		out = append(out, t)
	}
	for _, t := range c.Challenge {
		out = append(out, t)
	}
	return out
}

func done(ref engine.TaskRef) bool {
	switch t := ref.(type) {
	case engine.RoutineTask:
		return t.IsCompleted
	case engine.ChallengeTask:
		return t.IsCompleted
	default:
		return false
	}
}

func kindTag(k engine.TaskKind) string {
	switch k {
	case engine.TaskKindHabit:
		return "[H]"
	case engine.TaskKindRoutine:
		return "[R]"
	case engine.TaskKindChallenge:
		return "[C]"
	default:
		return "[T]"
	}
}

func progressBar(ratio float64, width int) string {
	if width <= 3 {
		width = 3
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
