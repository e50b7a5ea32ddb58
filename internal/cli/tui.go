package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cardsheet/pkg/forms"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// SchoolListModel - Interactive school selection
// =============================================================================

// SchoolListModel is the bubbletea model for picking the school to export.
type SchoolListModel struct {
	Schools  []forms.School
	Cursor   int
	Selected *forms.School
	Height   int
	Offset   int
}

// NewSchoolListModel creates a new school list model.
func NewSchoolListModel(schools []forms.School) SchoolListModel {
	return SchoolListModel{Schools: schools, Height: 15}
}

func (m SchoolListModel) Init() tea.Cmd {
	return nil
}

func (m SchoolListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Schools)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Schools) == 0 || m.Schools[m.Cursor].TotalSubmissions == 0 {
				return m, nil
			}
			school := m.Schools[m.Cursor]
			m.Selected = &school
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m SchoolListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select School"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Schools))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		s := m.Schools[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, s.SchoolName, strconv.Itoa(len(s.Forms)), strconv.Itoa(s.TotalSubmissions)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "School", "Forms", "Submissions").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Schools) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if m.Schools[idx].TotalSubmissions == 0 {
				base = base.Foreground(colorDim)
			} else if col == 1 {
				base = base.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Schools))))

	return b.String()
}
