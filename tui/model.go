// Package tui is the terminal judge: it shows the displayed pair and turns
// key presses into verdicts on a session.
//
// It uses bubbletea, which follows The Elm Architecture: key presses arrive
// as messages, Update applies them to the session, and View renders the
// result.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/photo-bracket/photo-bracket/bracket"
	"github.com/photo-bracket/photo-bracket/bracket/photo"
	"github.com/photo-bracket/photo-bracket/bracket/session"
)

// Settings control presentation. They are passed explicitly; there is no
// process-wide settings state.
type Settings struct {
	NameWidth int  // longest displayed file name, in cells
	Preload   bool // decode every pending photo in the background at start
	ShowInfo  bool // show dimensions, format and size under each name
}

// DefaultSettings are used for zero-valued fields.
var DefaultSettings = Settings{NameWidth: 32, Preload: true, ShowInfo: true}

type (
	itemLoadedMsg struct{}
	itemFailedMsg struct {
		key string
		err error
	}
	loadDoneMsg struct{ err error }
)

// Model is the bubbletea model for one judging session.
type Model struct {
	ctx      context.Context
	s        *session.Session
	settings Settings

	keys     keyMap
	help     help.Model
	progress progress.Model

	events  chan tea.Msg
	loading bool
	loaded  int
	total   int
	failed  int

	pair    bracket.Pair
	hasPair bool
	done    bool
	status  string
	err     error
	width   int
}

// New creates the model and fetches the first pair.
func New(ctx context.Context, s *session.Session, settings Settings) *Model {
	if settings.NameWidth <= 0 {
		settings.NameWidth = DefaultSettings.NameWidth
	}
	m := &Model{
		ctx:      ctx,
		s:        s,
		settings: settings,
		keys:     defaultKeys(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient()),
	}
	m.next()
	return m
}

// Init starts background loading when Preload is set.
func (m *Model) Init() tea.Cmd {
	if !m.settings.Preload {
		return nil
	}
	b := m.s.Bracket()
	m.total = len(b.AllItems())
	if m.total == 0 {
		return nil
	}
	m.loading = true
	m.events = make(chan tea.Msg, m.total+1)
	events := m.events
	b.StartLoad(m.ctx, bracket.ListenerFuncs{
		OnLoaded: func(bracket.Item) { events <- itemLoadedMsg{} },
		OnFailed: func(it bracket.Item, err error) { events <- itemFailedMsg{key: it.Key(), err: err} },
		OnComplete: func(err error) { events <- loadDoneMsg{err: err} },
	})
	return m.waitForLoad()
}

func (m *Model) waitForLoad() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return <-events
	}
}

// Update handles key presses, window resizes and load progress.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = max(10, msg.Width-4)
		return m, nil
	case itemLoadedMsg:
		m.loaded++
		return m, m.waitForLoad()
	case itemFailedMsg:
		m.loaded++
		m.failed++
		m.status = fmt.Sprintf("could not load %s: %v", m.displayName(msg.key), msg.err)
		return m, m.waitForLoad()
	case loadDoneMsg:
		m.loading = false
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.err = msg.err
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		m.decide(bracket.VerdictLeft)
	case key.Matches(msg, m.keys.Right):
		m.decide(bracket.VerdictRight)
	case key.Matches(msg, m.keys.Both):
		m.decide(bracket.VerdictBoth)
	case key.Matches(msg, m.keys.Neither):
		m.decide(bracket.VerdictNeither)
	case key.Matches(msg, m.keys.Skip):
		if !m.hasPair {
			return m, nil
		}
		p, ok, err := m.s.Requeue(m.ctx)
		m.show(p, ok, err)
	case key.Matches(msg, m.keys.Ignore):
		if err := m.s.IgnoreDone(m.ctx); err != nil {
			m.err = err
			return m, nil
		}
		m.next()
	case key.Matches(msg, m.keys.Undo):
		p, err := m.s.Undo(m.ctx)
		m.show(p, err == nil, err)
	case key.Matches(msg, m.keys.Redo):
		p, ok, err := m.s.Redo(m.ctx)
		m.show(p, ok, err)
	}
	return m, nil
}

func (m *Model) decide(v bracket.Verdict) {
	if !m.hasPair {
		return
	}
	p := m.pair
	if err := m.s.Decide(m.ctx, v); err != nil {
		m.err = err
		return
	}
	kept := v.Kept(p)
	for _, it := range p.Items() {
		if !pairHas(kept, it) {
			it.Flush()
		}
	}
	m.status = fmt.Sprintf("%s: %s vs %s", v, m.itemName(p.Left), m.itemName(p.Right))
	m.next()
}

func pairHas(items []bracket.Item, it bracket.Item) bool {
	for _, x := range items {
		if x.Key() == it.Key() {
			return true
		}
	}
	return false
}

func (m *Model) next() {
	p, ok, err := m.s.Next(m.ctx)
	m.show(p, ok, err)
}

// show updates the displayed pair after a session call.
func (m *Model) show(p bracket.Pair, ok bool, err error) {
	if err != nil {
		m.err = err
		return
	}
	m.pair, m.hasPair = p, ok
	m.done = !ok
	if m.done {
		m.status = fmt.Sprintf("finished with %s survivors; i for another round, q to quit",
			humanize.Comma(int64(len(m.Survivors()))))
	}
}

// Survivors returns the keys of every item still in play, sorted.
func (m *Model) Survivors() []string {
	b := m.s.Bracket()
	items := b.AllItems()
	if p, ok := b.Displayed(); ok {
		items = append(items, p.Items()...)
	}
	bracket.SortItems(items)
	return bracket.Keys(items)
}

// Done reports whether the bracket has no pair left to show.
func (m *Model) Done() bool { return m.done }

type named interface{ Name() string }

type describer interface {
	Describe() (photo.Info, error)
}

func (m *Model) itemName(it bracket.Item) string {
	if n, ok := it.(named); ok {
		return truncate(n.Name(), m.settings.NameWidth)
	}
	return m.displayName(it.Key())
}

func (m *Model) displayName(key string) string {
	if i := strings.LastIndexAny(key, `/\`); i >= 0 {
		key = key[i+1:]
	}
	return truncate(key, m.settings.NameWidth)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

func (m *Model) card(it bracket.Item, label string) string {
	lines := []string{infoStyle.Render(label), nameStyle.Render(m.itemName(it))}
	if m.settings.ShowInfo {
		if d, ok := it.(describer); ok {
			if info, err := d.Describe(); err == nil {
				lines = append(lines, infoStyle.Render(info.String()))
			} else {
				lines = append(lines, errorStyle.Render("unreadable"))
			}
		}
	}
	return boxStyle.Width(m.settings.NameWidth + 4).Render(strings.Join(lines, "\n"))
}

// View renders the screen.
func (m *Model) View() string {
	b := m.s.Bracket()
	var sb strings.Builder

	sb.WriteString(headerStyle.Render(fmt.Sprintf("%s round · %d pending · %d advanced",
		humanize.Ordinal(b.RoundCount()+1), b.RoundSize(), b.WinnersSize())))
	sb.WriteString("\n\n")

	if m.hasPair {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			m.card(m.pair.Left, "left"), " ", m.card(m.pair.Right, "right")))
		sb.WriteString("\n")
	}
	if m.loading && m.total > 0 {
		sb.WriteString(m.progress.ViewAs(float64(m.loaded) / float64(m.total)))
		sb.WriteString(fmt.Sprintf(" %d/%d loaded\n", m.loaded, m.total))
	}
	if m.status != "" {
		sb.WriteString(statusStyle.Render(m.status))
		sb.WriteString("\n")
	}
	if m.err != nil {
		sb.WriteString(errorStyle.Render("error: " + m.err.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}
