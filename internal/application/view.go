package application

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/nutrition/internal/core"
	"github.com/JonMunkholm/nutrition/internal/table"
)

var (
	brandStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("30")).Padding(0, 1)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	activeHeader  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	selectedRow   = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	labelStyle    = lipgloss.NewStyle().Width(10)
)

const brandName = "Nutrio Track"

const (
	checkWidth = 4
	nameWidth  = 18
	numWidth   = 10
)

// View renders the current screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(brandStyle.Render(brandName))
	b.WriteString("\n\n")

	switch m.mode {
	case modeForm:
		b.WriteString(m.formView())
	case modeMenu:
		b.WriteString(m.menuView())
	default:
		b.WriteString(m.tableView())
	}

	b.WriteString("\n")
	b.WriteString(m.noticesView())
	if m.status != "" {
		b.WriteString(faintStyle.Render(m.status))
		b.WriteString("\n")
	}
	if m.pending > 0 {
		b.WriteString(faintStyle.Render("Working..."))
		b.WriteString("\n")
	}

	if m.mode == modeForm {
		b.WriteString(m.help.View(formKeys{m.keys}))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m Model) tableView() string {
	v := m.sess.Table().View()
	var b strings.Builder

	if v.Selected > 0 {
		b.WriteString(selectedTitle.Render(v.Title()))
	} else {
		b.WriteString(titleStyle.Render(v.Title()))
	}
	b.WriteString("\n")

	cells := []string{pad(checkBox(v.SelectAll), checkWidth)}
	for i, h := range v.Headers {
		label := h.Label
		if ind := h.Indicator(); ind != "" {
			label += " " + ind
		}
		style := headerStyle
		if h.Active {
			style = activeHeader
		}
		cells = append(cells, style.Render(pad(label, columnWidth(i))))
	}
	b.WriteString(strings.Join(cells, " "))
	b.WriteString("\n")

	if len(v.Rows) == 0 {
		b.WriteString(faintStyle.Render("No items"))
		b.WriteString("\n")
	}
	for i, r := range v.Rows {
		mark := table.Unchecked
		if r.Selected {
			mark = table.Checked
		}
		line := []string{pad(checkBox(mark), checkWidth)}
		for j, c := range r.Cells {
			line = append(line, pad(c, columnWidth(j)))
		}
		text := strings.Join(line, " ")
		switch {
		case i == m.cursor:
			text = cursorStyle.Render(text)
		case r.Selected:
			text = selectedRow.Render(text)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	b.WriteString(faintStyle.Render(v.PageLabel()))
	b.WriteString(faintStyle.Render("  Rows per page: "))
	b.WriteString(faintStyle.Render(strconv.Itoa(v.PageSize)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) formView() string {
	form := m.sess.Form()
	var b strings.Builder

	b.WriteString(titleStyle.Render("Add / Update Item"))
	b.WriteString("\n\n")
	for i, f := range formFields {
		b.WriteString(labelStyle.Render(f.label))
		b.WriteString(m.inputs[i].View())
		if msg, ok := form.FieldErrors[f.name]; ok {
			b.WriteString("  ")
			b.WriteString(errorStyle.Render(msg))
		}
		b.WriteString("\n")
	}
	return boxStyle.Render(b.String()) + "\n"
}

func (m Model) menuView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.menu.Title))
	b.WriteString("\n\n")
	for i, item := range m.menu.Items {
		if i == m.menuCursor {
			b.WriteString(cursorStyle.Render("> " + item.Label))
		} else {
			b.WriteString("  " + item.Label)
		}
		b.WriteString("\n")
	}
	return boxStyle.Render(b.String()) + "\n"
}

func (m Model) noticesView() string {
	var b strings.Builder
	for _, n := range m.notices {
		text := n.Message
		if n.Code != "" {
			text += " (Code: " + n.Code + ")"
		}
		if n.Action != "" {
			text += ". " + n.Action
		}
		switch n.Level {
		case core.NoticeError:
			b.WriteString(errorStyle.Render(text))
		case core.NoticeSuccess:
			b.WriteString(successStyle.Render(text))
		default:
			b.WriteString(text)
		}
		b.WriteString("\n")
		for _, d := range n.Details {
			b.WriteString(faintStyle.Render("  " + d))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func checkBox(state table.CheckState) string {
	switch state {
	case table.Checked:
		return "[x]"
	case table.Indeterminate:
		return "[-]"
	default:
		return "[ ]"
	}
}

func columnWidth(i int) int {
	if i == 0 {
		return nameWidth
	}
	return numWidth
}

func pad(s string, width int) string {
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(s)
}
