// Package chooser provides the interactive recipe picker behind
// `griddle --choose`.
package chooser

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/griddle-dev/griddle/internal/recipe"
	"github.com/griddle-dev/griddle/internal/style"
)

// Model is the bubbletea model for the recipe chooser.
type Model struct {
	recipes     []*recipe.Recipe
	defaultName string
	cursor      int
	selected    string

	// UI state
	keys     KeyMap
	help     help.Model
	showHelp bool
	width    int
	height   int
}

// New creates a chooser over the set's non-hidden recipes, in file order.
func New(set *recipe.Set) Model {
	var visible []*recipe.Recipe
	for _, r := range set.Recipes() {
		if !r.Hidden() {
			visible = append(visible, r)
		}
	}
	return Model{
		recipes:     visible,
		defaultName: set.Default,
		keys:        DefaultKeyMap(),
		help:        help.New(),
	}
}

// Selected returns the chosen recipe name, or "" if the chooser was
// dismissed without a selection.
func (m Model) Selected() string {
	return m.selected
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.recipes)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, m.keys.Top):
			m.cursor = 0
			return m, nil

		case key.Matches(msg, m.keys.Bottom):
			if len(m.recipes) > 0 {
				m.cursor = len(m.recipes) - 1
			}
			return m, nil

		case key.Matches(msg, m.keys.Select):
			if len(m.recipes) > 0 {
				m.selected = m.recipes[m.cursor].Name
			}
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the model.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(style.Bold.Render("Choose a recipe"))
	sb.WriteString("\n\n")

	if len(m.recipes) == 0 {
		sb.WriteString(style.Dim.Render("  (no recipes)"))
		sb.WriteString("\n")
	}

	for i, r := range m.recipes {
		marker := "  "
		sig := r.Signature()
		if i == m.cursor {
			marker = style.Info.Render("> ")
			sig = style.Bold.Render(sig)
		}
		sb.WriteString(marker)
		sb.WriteString(sig)
		if r.Name == m.defaultName {
			sb.WriteString(style.Dim.Render(" (default)"))
		}
		if r.Doc != "" {
			sb.WriteString(" ")
			sb.WriteString(style.Dim.Render("# " + r.Doc))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	if m.showHelp {
		sb.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		sb.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	sb.WriteString("\n")

	return sb.String()
}

// Choose runs the picker over the set and returns the selected recipe
// name, or "" if the user dismissed it. The TUI renders on stderr so a
// chosen recipe's output streams cleanly on stdout.
func Choose(set *recipe.Set) (string, error) {
	p := tea.NewProgram(New(set), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("running chooser: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return "", fmt.Errorf("unexpected chooser model type %T", final)
	}
	return m.Selected(), nil
}
