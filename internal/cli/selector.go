package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"apptcal/internal/i18n"
	"apptcal/internal/model"
)

// SelectorItem represents an item in the selector
type SelectorItem struct {
	ID    string
	Label string
}

// Selector picks one item from a list. With filtering on, typing narrows the list.
type Selector struct {
	title     string
	items     []SelectorItem
	visible   []SelectorItem
	filter    textinput.Model
	filtering bool
	cursor    int
	selected  string
	cancelled bool
}

func NewSelector(title string, items []SelectorItem) Selector {
	return Selector{
		title:   title,
		items:   items,
		visible: items,
	}
}

// NewFilterSelector returns a selector with a type-to-filter line
func NewFilterSelector(title string, items []SelectorItem) Selector {
	s := NewSelector(title, items)
	s.filter = textinput.New()
	s.filter.Prompt = "/ "
	s.filter.Placeholder = "type to filter"
	s.filter.Focus()
	s.filtering = true
	return s
}

func (s Selector) Init() tea.Cmd {
	if s.filtering {
		return textinput.Blink
	}
	return nil
}

func (s Selector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "ctrl+p":
			if s.cursor > 0 {
				s.cursor--
			}
			return s, nil
		case "down", "ctrl+n":
			if s.cursor < len(s.visible)-1 {
				s.cursor++
			}
			return s, nil
		case "enter":
			if len(s.visible) == 0 {
				return s, nil
			}
			s.selected = s.visible[s.cursor].ID
			return s, tea.Quit
		case "esc", "ctrl+c":
			s.cancelled = true
			return s, tea.Quit
		}

		if !s.filtering {
			switch msg.String() {
			case "k":
				if s.cursor > 0 {
					s.cursor--
				}
			case "j":
				if s.cursor < len(s.visible)-1 {
					s.cursor++
				}
			}
			return s, nil
		}
	}

	if !s.filtering {
		return s, nil
	}
	var cmd tea.Cmd
	s.filter, cmd = s.filter.Update(msg)
	s.applyFilter()
	return s, cmd
}

func (s *Selector) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(s.filter.Value()))
	s.visible = s.visible[:0:0]
	for _, item := range s.items {
		if query == "" || strings.Contains(strings.ToLower(item.Label), query) {
			s.visible = append(s.visible, item)
		}
	}
	if s.cursor >= len(s.visible) {
		s.cursor = max(len(s.visible)-1, 0)
	}
}

func (s Selector) View() string {
	var b strings.Builder

	b.WriteString(selectorTitleStyle.Render(s.title))
	b.WriteString("\n\n")
	if s.filtering {
		b.WriteString(s.filter.View())
		b.WriteString("\n\n")
	}

	for i, item := range s.visible {
		if i == s.cursor {
			b.WriteString(selectorCursorStyle.Render(fmt.Sprintf("> %s", item.Label)))
		} else {
			b.WriteString(selectorItemStyle.Render(fmt.Sprintf("  %s", item.Label)))
		}
		b.WriteString("\n")
	}

	hint := "↑/k up • ↓/j down • enter select • esc cancel"
	if s.filtering {
		hint = "type to filter • ↑/↓ move • enter select • esc cancel"
	}
	b.WriteString(selectorHintStyle.Render(hint))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (s Selector) Selected() string {
	return s.selected
}

func (s Selector) Cancelled() bool {
	return s.cancelled
}

// RunSelector runs the selector TUI and returns the selected ID and label
func RunSelector(title string, items []SelectorItem) (string, string, bool) {
	return runSelector(NewSelector(title, items))
}

func runSelector(selector Selector) (string, string, bool) {
	m, err := tea.NewProgram(selector).Run()
	if err != nil {
		return "", "", true
	}

	result := m.(Selector)
	if result.Cancelled() {
		return "", "", true
	}
	for _, item := range selector.items {
		if item.ID == result.Selected() {
			return item.ID, item.Label, false
		}
	}
	return result.Selected(), "", false
}

func clientItems(clients []model.Client) []SelectorItem {
	items := make([]SelectorItem, 0, len(clients))
	for _, c := range clients {
		label := c.Name
		if c.Email != "" {
			label += " <" + c.Email + ">"
		}
		items = append(items, SelectorItem{ID: strconv.FormatInt(c.ID, 10), Label: label})
	}
	return items
}

// pickClient lets the user choose a client interactively
func pickClient(clients []model.Client) (model.Client, bool) {
	id, _, cancelled := runSelector(NewFilterSelector(i18n.T("cli.select_client"), clientItems(clients)))
	if cancelled {
		return model.Client{}, false
	}
	for _, c := range clients {
		if strconv.FormatInt(c.ID, 10) == id {
			return c, true
		}
	}
	return model.Client{}, false
}
