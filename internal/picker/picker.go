// Package picker is the interactive terminal form that chooses the ranked
// attributes and N before a split.
package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"topnsplit/internal/topn"
)

// ErrAborted is returned by Run when the user quits without confirming.
var ErrAborted = errors.New("picker: aborted")

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Result is the confirmed choice.
type Result struct {
	Attributes []string
	N          int
}

// Model is the bubbletea model of the picker. Selected attributes keep the
// order in which they were picked, which is the tie-break order of the split.
type Model struct {
	title   string
	columns []string
	order   []int // selected column indexes, in pick order
	cursor  int
	n       int
	keys    keyMap
	msg     string

	confirmed bool
	aborted   bool
}

// New returns a picker over columns with preselected attributes (unknown
// names are ignored) and an initial n clamped to [topn.MinN, topn.MaxN].
func New(title string, columns, preselected []string, n int) Model {
	m := Model{
		title:   title,
		columns: append([]string(nil), columns...),
		n:       clamp(n),
		keys:    defaultKeys(),
	}
	pos := make(map[string]int, len(columns))
	for i, c := range columns {
		pos[c] = i
	}
	for _, name := range topn.Dedupe(preselected) {
		if i, ok := pos[name]; ok {
			m.order = append(m.order, i)
		}
	}
	return m
}

func clamp(n int) int {
	if n < topn.MinN {
		return topn.MinN
	}
	if n > topn.MaxN {
		return topn.MaxN
	}
	return n
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.msg = ""
	switch {
	case key.Matches(km, m.keys.Quit):
		m.aborted = true
		return m, tea.Quit
	case key.Matches(km, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, m.keys.Down):
		if m.cursor < len(m.columns)-1 {
			m.cursor++
		}
	case key.Matches(km, m.keys.Toggle):
		if len(m.columns) > 0 {
			m.toggle(m.cursor)
		}
	case key.Matches(km, m.keys.All):
		if len(m.order) == len(m.columns) {
			m.order = nil
		} else {
			m.order = m.order[:0:0]
			for i := range m.columns {
				m.order = append(m.order, i)
			}
		}
	case key.Matches(km, m.keys.More):
		m.n = clamp(m.n + 1)
	case key.Matches(km, m.keys.Less):
		m.n = clamp(m.n - 1)
	case key.Matches(km, m.keys.Confirm):
		if len(m.order) == 0 || topn.CheckN(m.n, len(m.order)) != nil {
			m.msg = confirmError(m.n, len(m.order))
			return m, nil
		}
		m.confirmed = true
		return m, tea.Quit
	}
	return m, nil
}

func confirmError(n, selected int) string {
	if selected == 0 {
		return "select at least one attribute"
	}
	return fmt.Sprintf("n=%d exceeds %d selected attributes", n, selected)
}

func (m *Model) toggle(i int) {
	for j, s := range m.order {
		if s == i {
			m.order = append(m.order[:j:j], m.order[j+1:]...)
			return
		}
	}
	m.order = append(m.order, i)
}

func (m Model) rank(i int) int {
	for j, s := range m.order {
		if s == i {
			return j + 1
		}
	}
	return 0
}

// View implements tea.Model.
func (m Model) View() string {
	if m.confirmed || m.aborted {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	if len(m.columns) == 0 {
		b.WriteString(dimStyle.Render("no numeric attributes"))
		b.WriteString("\n")
	}
	for i, c := range m.columns {
		cur := "  "
		if i == m.cursor {
			cur = cursorStyle.Render("> ")
		}
		box := "[ ]"
		line := c
		if r := m.rank(i); r > 0 {
			box = fmt.Sprintf("[%d]", r)
			line = selectedStyle.Render(c)
		}
		fmt.Fprintf(&b, "%s%s %s\n", cur, box, line)
	}
	fmt.Fprintf(&b, "\nN = %d   selected = %d\n", m.n, len(m.order))
	if m.msg != "" {
		b.WriteString(errorStyle.Render(m.msg))
		b.WriteString("\n")
	}
	var help []string
	for _, k := range m.keys.help() {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(dimStyle.Render(strings.Join(help, " • ")))
	b.WriteString("\n")
	return b.String()
}

// Result returns the choice and whether it was confirmed.
func (m Model) Result() (Result, bool) {
	attrs := make([]string, len(m.order))
	for i, ci := range m.order {
		attrs[i] = m.columns[ci]
	}
	return Result{Attributes: attrs, N: m.n}, m.confirmed
}

// Run shows the picker on in/out until the user confirms or quits.
func Run(ctx context.Context, in io.Reader, out io.Writer, m Model) (Result, error) {
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("picker: %w", err)
	}
	res, ok := final.(Model).Result()
	if !ok {
		return Result{}, ErrAborted
	}
	return res, nil
}
