package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/unload/internal/cli/formatter"
	"github.com/alexanderramin/unload/internal/domain"
	"github.com/alexanderramin/unload/internal/intelligence"
	"github.com/alexanderramin/unload/internal/view"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newBoardCmd(app *App) *cobra.Command {
	var organizer bool

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Interactive board: promote, reschedule and finish items",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errors.New("board needs an interactive terminal; try 'unload focus'")
			}
			m := newBoardModel(app, organizer)
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().BoolVarP(&organizer, "organizer", "o", false, "Start in today/upcoming mode")
	return cmd
}

type boardKeyMap struct {
	Up, Down, Left, Right key.Binding
	MoveUp, MoveDown      key.Binding
	Promote, Demote       key.Binding
	Done, Drop, Park      key.Binding
	Mode, Reload, Quit    key.Binding
}

func defaultBoardKeys() boardKeyMap {
	return boardKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left list")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right list")),
		MoveUp:   key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		Promote:  key.NewBinding(key.WithKeys("+", "p"), key.WithHelp("+", "to left list")),
		Demote:   key.NewBinding(key.WithKeys("-", "b"), key.WithHelp("-", "to right list")),
		Done:     key.NewBinding(key.WithKeys("x", "enter"), key.WithHelp("x", "done")),
		Drop:     key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "drop")),
		Park:     key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "park till tomorrow")),
		Mode:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus/organizer")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Promote, k.Demote, k.Done, k.Park, k.Mode, k.Quit}
}

func (k boardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.MoveUp, k.MoveDown, k.Promote, k.Demote},
		{k.Done, k.Drop, k.Park},
		{k.Mode, k.Reload, k.Quit},
	}
}

type boardLoadedMsg struct{ err error }

// boardConfirmedMsg carries the server's answer to an optimistic change.
type boardConfirmedMsg struct {
	what string
	err  error
}

// boardModel renders a view.Board as two side-by-side lists. Changes show
// at once; the server round trip runs as a command afterwards.
type boardModel struct {
	app       *App
	board     *view.Board
	keys      boardKeyMap
	help      help.Model
	organizer bool
	col       int
	row       int
	loading   bool
	status    string
	err       error
	width     int
	quitting  bool
}

func newBoardModel(app *App, organizer bool) boardModel {
	b := view.NewBoard(app.Items, app.UserID,
		view.WithClock(app.now),
		view.WithLocation(app.loc()),
		view.WithLogger(app.logger()),
	)
	return boardModel{
		app:       app,
		board:     b,
		keys:      defaultBoardKeys(),
		help:      help.New(),
		organizer: organizer,
		loading:   true,
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.load()
}

func (m boardModel) load() tea.Cmd {
	b := m.board
	return func() tea.Msg {
		return boardLoadedMsg{err: b.Load(context.Background())}
	}
}

func (m boardModel) sections() [2]view.Section {
	if m.organizer {
		return [2]view.Section{view.SectionToday, view.SectionUpcoming}
	}
	return [2]view.Section{view.SectionPriority, view.SectionBench}
}

func (m boardModel) columns() [2][]*domain.Item {
	if m.organizer {
		v := m.board.Organizer()
		return [2][]*domain.Item{v.Today, v.Upcoming}
	}
	v := m.board.Focus()
	return [2][]*domain.Item{v.Priority, v.Bench}
}

func (m boardModel) selected() *domain.Item {
	cols := m.columns()
	if m.row < len(cols[m.col]) {
		return cols[m.col][m.row]
	}
	return nil
}

func (m *boardModel) clamp() {
	n := len(m.columns()[m.col])
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case boardLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.clamp()
		return m, nil

	case boardConfirmedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("%s: %w", msg.what, msg.err)
			m.status = ""
		}
		m.clamp()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.row++
		m.clamp()
		return m, nil
	case key.Matches(msg, m.keys.Left):
		m.col = 0
		m.clamp()
		return m, nil
	case key.Matches(msg, m.keys.Right):
		m.col = 1
		m.clamp()
		return m, nil
	case key.Matches(msg, m.keys.Mode):
		m.organizer = !m.organizer
		m.col, m.row = 0, 0
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		m.loading, m.err, m.status = true, nil, ""
		return m, m.load()
	case key.Matches(msg, m.keys.MoveUp), key.Matches(msg, m.keys.MoveDown):
		to := m.row + 1
		if key.Matches(msg, m.keys.MoveUp) {
			to = m.row - 1
		}
		if err := m.board.Reorder(m.sections()[m.col], m.row, to); err == nil {
			m.row = to
		}
		return m, nil
	}

	it := m.selected()
	if it == nil {
		return m, nil
	}
	var (
		confirm view.Confirm
		err     error
		what    string
	)
	switch {
	case key.Matches(msg, m.keys.Promote):
		what = "moved " + it.Title
		if m.organizer {
			confirm, err = m.board.MoveToToday(it.ID)
		} else {
			confirm, err = m.board.Promote(it.ID)
		}
	case key.Matches(msg, m.keys.Demote):
		what = "moved " + it.Title
		if m.organizer {
			confirm, err = m.board.MoveToUpcoming(it.ID)
		} else {
			confirm, err = m.board.Demote(it.ID)
		}
	case key.Matches(msg, m.keys.Done):
		what = "done: " + it.Title
		confirm, err = m.board.Complete(it.ID)
	case key.Matches(msg, m.keys.Drop):
		what = "dropped " + it.Title
		confirm, err = m.board.Drop(it.ID)
	case key.Matches(msg, m.keys.Park):
		what = "parked " + it.Title
		confirm, err = m.board.Park(it.ID, intelligence.TomorrowMorning(m.app.now(), m.app.loc()))
	default:
		return m, nil
	}
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.status = what
	m.clamp()
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return boardConfirmedMsg{what: what, err: confirm(ctx)}
	}
}

var (
	columnStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(formatter.ColorDim).Padding(0, 1)
	activeColumn  = columnStyle.BorderForeground(formatter.ColorHeader)
	selectedStyle = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
)

func (m boardModel) View() string {
	if m.quitting {
		return ""
	}
	if m.loading {
		return formatter.Dim("Loading…") + "\n"
	}

	titles := [2]string{fmt.Sprintf("Priority %d/%d", len(m.columns()[0]), domain.MaxFocusItems), "Bench"}
	if m.organizer {
		titles = [2]string{"Today", "Upcoming"}
	}

	colWidth := 38
	if m.width > 10 {
		colWidth = max(20, m.width/2-4)
	}

	var rendered [2]string
	for c, items := range m.columns() {
		var b strings.Builder
		b.WriteString(formatter.StyleHeader.Render(strings.ToUpper(titles[c])))
		b.WriteString("\n")
		if len(items) == 0 {
			b.WriteString(formatter.Dim("empty"))
		}
		for r, it := range items {
			line := formatter.Truncate(it.Title, colWidth-4)
			if c == m.col && r == m.row {
				line = selectedStyle.Render("› " + line)
			} else {
				line = "  " + formatter.PriorityStyle(it.EffectivePriority()).Render(line)
			}
			if r > 0 {
				b.WriteString("\n")
			}
			b.WriteString(line)
		}
		style := columnStyle
		if c == m.col {
			style = activeColumn
		}
		rendered[c] = style.Width(colWidth).Render(b.String())
	}

	var out strings.Builder
	out.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered[0], " ", rendered[1]))
	out.WriteString("\n")
	switch {
	case m.err != nil:
		out.WriteString(formatter.StyleRed.Render(m.err.Error()))
	case m.status != "":
		out.WriteString(formatter.StyleGreen.Render(m.status))
	}
	out.WriteString("\n")
	out.WriteString(m.help.View(m.keys))
	return out.String()
}
