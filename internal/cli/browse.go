package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/muchdogesec/location2stix/pkg/stix"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Explore a generated bundle interactively",
		Long: `Explore the location hierarchy of the bundle at --output.

Start at the top-level regions and drill down into what each one contains.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			g, err := loadGraph(cfg.Output)
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewBrowseModel(g), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// BrowseModel - Interactive hierarchy browser
// =============================================================================

// browseLevel is one screen of the browser: the contents of a location,
// or the roots when Parent is nil.
type browseLevel struct {
	Parent *stix.Location
	Items  []*stix.Location
	Cursor int
	Offset int
}

// BrowseModel is the bubbletea model for walking the location hierarchy.
type BrowseModel struct {
	Graph  *stix.Graph
	Stack  []browseLevel
	Height int
}

// NewBrowseModel creates a browser positioned at the graph's roots.
func NewBrowseModel(g *stix.Graph) BrowseModel {
	return BrowseModel{
		Graph:  g,
		Stack:  []browseLevel{{Items: g.Roots()}},
		Height: 15,
	}
}

// current returns the level being displayed.
func (m BrowseModel) current() *browseLevel {
	return &m.Stack[len(m.Stack)-1]
}

// Selected returns the location under the cursor, if any.
func (m BrowseModel) Selected() *stix.Location {
	lvl := m.current()
	if len(lvl.Items) == 0 {
		return nil
	}
	return lvl.Items[lvl.Cursor]
}

// contents returns the locations with an edge pointing at id.
func (m BrowseModel) contents(id string) []*stix.Location {
	var out []*stix.Location
	for _, rel := range m.Graph.Children(id) {
		if rel.SourceRef == id {
			continue
		}
		if loc, ok := m.Graph.Location(rel.SourceRef); ok {
			out = append(out, loc)
		}
	}
	return out
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Copy the stack so earlier model values are not mutated.
		m.Stack = append([]browseLevel(nil), m.Stack...)
		lvl := m.current()

		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if lvl.Cursor > 0 {
				lvl.Cursor--
				if lvl.Cursor < lvl.Offset {
					lvl.Offset = lvl.Cursor
				}
			}
		case "down", "j":
			if lvl.Cursor < len(lvl.Items)-1 {
				lvl.Cursor++
				if lvl.Cursor >= lvl.Offset+m.Height {
					lvl.Offset = lvl.Cursor - m.Height + 1
				}
			}
		case "enter", "right", "l":
			sel := m.Selected()
			if sel == nil {
				return m, nil
			}
			items := m.contents(sel.ID)
			if len(items) == 0 {
				return m, nil
			}
			m.Stack = append(m.Stack, browseLevel{Parent: sel, Items: items})
		case "backspace", "left", "h":
			if len(m.Stack) > 1 {
				m.Stack = m.Stack[:len(m.Stack)-1]
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// breadcrumb renders the path from the roots to the current level.
func (m BrowseModel) breadcrumb() string {
	parts := []string{"All"}
	for _, lvl := range m.Stack[1:] {
		parts = append(parts, lvl.Parent.Name)
	}
	return strings.Join(parts, " "+iconArrow+" ")
}

func (m BrowseModel) View() string {
	var b strings.Builder
	lvl := m.current()

	b.WriteString(StyleTitle.Render(m.breadcrumb()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  ← back  q quit"))
	b.WriteString("\n\n")

	end := min(lvl.Offset+m.Height, len(lvl.Items))

	rows := [][]string{}
	for i := lvl.Offset; i < end; i++ {
		loc := lvl.Items[i]
		cursor := "  "
		if i == lvl.Cursor {
			cursor = "▸ "
		}
		code := loc.Country
		if code == "" {
			code = "—"
		}
		contains := "—"
		if n := len(m.Graph.Children(loc.ID)); n > 0 {
			contains = strconv.Itoa(n)
		}
		rows = append(rows, []string{cursor, loc.Name, loc.Kind().String(), code, contains})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Level", "Code", "Contains").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if lvl.Offset+row == lvl.Cursor {
				return listSelectedStyle
			}
			if col == 2 || col == 4 {
				return listDimStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	if len(lvl.Items) > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", lvl.Cursor+1, len(lvl.Items))))
	}
	if sel := m.Selected(); sel != nil && sel.Region != "" {
		b.WriteString("  " + StyleHighlight.Render(sel.Region))
	}

	return b.String()
}
