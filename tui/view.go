package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ziyixi/tasklist/taskstore"
	"github.com/ziyixi/tasklist/utils"
)

// Screen rows of the form, used to place the date picker for hit testing.
const (
	labelWidth  = 10
	deadlineRow = 6
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	labelStyle    = lipgloss.NewStyle().Faint(true)
	focusedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3b82f6"))
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	overdueStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
	alertStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#ef4444")).Padding(0, 1)
	confirmStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f59e0b"))
	emptyStyle    = lipgloss.NewStyle().Faint(true).Italic(true)
	selectedStyle = lipgloss.NewStyle().Bold(true)
)

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	// Rows 0-5 precede the deadline field; keep deadlineRow in sync.
	status := ""
	if a.loading {
		status = a.spinner.View() + " loading"
	} else if a.busy {
		status = a.spinner.View() + " adding"
	}
	b.WriteString(titleStyle.Render("Tasks") + "  " + status + "\n")
	pct := Progress(a.tasks)
	b.WriteString(a.progress.ViewAs(float64(pct)/100) + "\n")
	b.WriteString("\n")
	b.WriteString(a.label("New", focusText) + a.textInput.View() + "\n")
	b.WriteString(a.label("Category", focusCategory) + fmt.Sprintf("‹ %s ›", a.draft.Category.Label()) + "\n")
	b.WriteString(a.label("Priority", focusPriority) + fmt.Sprintf("‹ %s ›", a.draft.Priority) + "\n")

	pad := strings.Repeat(" ", labelWidth)
	for i, line := range strings.Split(a.deadline.Render(), "\n") {
		if i == 0 {
			b.WriteString(a.label("Deadline", focusDeadline))
		} else {
			b.WriteString(pad)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	if len(a.tasks) == 0 && !a.loading {
		b.WriteString(emptyStyle.Render("Nothing to do yet.") + "\n")
	}
	for i, t := range a.tasks {
		b.WriteString(a.renderCard(t, i == a.cursor && a.focus == focusList) + "\n")
	}
	b.WriteString("\n")

	switch {
	case a.alert != "":
		b.WriteString(alertStyle.Render(a.alert+"\n"+helpStyle.Render("enter to dismiss")) + "\n")
	case a.pendingDelete != nil:
		b.WriteString(confirmStyle.Render(fmt.Sprintf("Delete %q? (y/n)", a.pendingDelete.Text)) + "\n")
	default:
		b.WriteString(helpStyle.Render(a.help()) + "\n")
	}
	return b.String()
}

func (a *App) label(name string, area focusArea) string {
	text := fmt.Sprintf("%-*s", labelWidth, name)
	if a.focus == area {
		return focusedStyle.Render(text)
	}
	return labelStyle.Render(text)
}

func (a *App) renderCard(t taskstore.Task, selected bool) string {
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(t.DisplayHex())).Render("▌")
	check := "[ ]"
	if t.IsDone {
		check = "[x]"
	}

	text := t.Text
	switch {
	case t.IsDone:
		text = doneStyle.Render(text)
	case selected:
		text = selectedStyle.Render(text)
	}

	parts := []string{t.Category.Label(), string(t.Priority)}
	if due := utils.FormatDisplayDate(t.DeadlineISO()); due != "" {
		parts = append(parts, "due "+due)
	}
	meta := labelStyle.Render(strings.Join(parts, " · "))
	if t.IsOverdue(a.now()) {
		meta += " " + overdueStyle.Render("overdue")
	}

	cursor := "  "
	if selected {
		cursor = "> "
	}
	return fmt.Sprintf("%s%s %s %s  %s", cursor, bar, check, text, meta)
}

func (a *App) help() string {
	switch a.focus {
	case focusList:
		return "↑/↓ move • space toggle • d delete • tab form • q quit"
	case focusDeadline:
		if a.deadline.IsOpen() {
			return "arrows move • enter pick • t today • x clear • [ ] month • esc close"
		}
		return "enter open • backspace clear • tab next"
	case focusCategory, focusPriority:
		return "←/→ change • enter add • tab next"
	}
	return "enter add • tab next • ctrl+c quit"
}
