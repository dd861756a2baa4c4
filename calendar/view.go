package calendar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ziyixi/tasklist/utils"
)

// Popover geometry, in terminal cells relative to the field's origin.
const (
	cellWidth    = 4
	Width        = daysPerWeek * cellWidth
	navWidth     = 3
	headerRow    = 1
	firstGridRow = 3
	placeholder  = "no deadline"
)

var controls = []struct {
	label string
	kind  HitKind
}{
	{"[Today]", HitToday},
	{"[Clear]", HitClear},
	{"[Close]", HitClose},
}

var weekdays = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

var (
	fieldStyle    = lipgloss.NewStyle().Underline(true)
	disabledStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	headerStyle   = lipgloss.NewStyle().Bold(true)
	weekdayStyle  = lipgloss.NewStyle().Faint(true)
	outsideStyle  = lipgloss.NewStyle().Faint(true)
	todayStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	controlStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6"))
)

// HitKind classifies what a pointer press landed on.
type HitKind int

const (
	HitNone HitKind = iota
	HitField
	HitPrev
	HitNext
	HitDay
	HitToday
	HitClear
	HitClose
)

// Hit is the result of HitTest. Cell is set for HitDay only.
type Hit struct {
	Kind HitKind
	Cell Cell
}

// Region is the screen area owned by the widget: the field line, plus the
// popover while open.
func (f *DateField) Region() Rect {
	h := 1
	if f.open {
		h = firstGridRow + len(f.view.Cells())/daysPerWeek + 1
	}
	return Rect{X: f.origin.X, Y: f.origin.Y, Width: Width, Height: h}
}

// HitTest maps a screen position to the part of the widget under it.
func (f *DateField) HitTest(p Point) Hit {
	if !f.Region().Contains(p) {
		return Hit{}
	}
	dx, dy := p.X-f.origin.X, p.Y-f.origin.Y
	if dy == 0 {
		return Hit{Kind: HitField}
	}

	cells := f.view.Cells()
	weeks := len(cells) / daysPerWeek
	switch {
	case dy == headerRow && dx < navWidth:
		return Hit{Kind: HitPrev}
	case dy == headerRow && dx >= Width-navWidth:
		return Hit{Kind: HitNext}
	case dy >= firstGridRow && dy < firstGridRow+weeks:
		idx := (dy-firstGridRow)*daysPerWeek + dx/cellWidth
		return Hit{Kind: HitDay, Cell: cells[idx]}
	case dy == firstGridRow+weeks:
		col := 0
		for _, c := range controls {
			if dx >= col && dx < col+len(c.label) {
				return Hit{Kind: c.kind}
			}
			col += len(c.label) + 1
		}
	}
	return Hit{}
}

// Render draws the field and, when open, the popover below it.
func (f *DateField) Render() string {
	text := f.DisplayValue()
	if text == "" {
		text = placeholder
	}
	line := fmt.Sprintf("%-*s▾", Width-1, text)
	if f.disabled {
		return disabledStyle.Render(line)
	}
	if !f.open {
		return fieldStyle.Render(line)
	}

	var b strings.Builder
	b.WriteString(fieldStyle.Render(line))
	b.WriteByte('\n')

	title := fmt.Sprintf("%s %d", f.view.Month, f.view.Year)
	b.WriteString(" ‹ ")
	b.WriteString(headerStyle.Render(lipgloss.PlaceHorizontal(Width-2*navWidth, lipgloss.Center, title)))
	b.WriteString(" › ")
	b.WriteByte('\n')

	writeWeekdays(&b)

	today := utils.ToISODate(f.now())
	cursor := utils.ToISODate(f.cursor)
	cells := f.view.Cells()
	for i, c := range cells {
		b.WriteString(f.cellStyle(c, today, cursor).Render(fmt.Sprintf("%3d", c.Day)))
		b.WriteByte(' ')
		if (i+1)%daysPerWeek == 0 {
			b.WriteByte('\n')
		}
	}

	labels := make([]string, 0, len(controls))
	for _, c := range controls {
		labels = append(labels, controlStyle.Render(c.label))
	}
	b.WriteString(strings.Join(labels, " "))
	return b.String()
}

func (f *DateField) cellStyle(c Cell, today, cursor string) lipgloss.Style {
	switch {
	case c.ISO == f.value:
		return selectedStyle
	case c.ISO == cursor:
		return cursorStyle
	case !c.InMonth:
		return outsideStyle
	case c.ISO == today:
		return todayStyle
	}
	return lipgloss.NewStyle()
}

// RenderMonth draws a read-only grid for v. Days listed in marked are
// highlighted, today is colored.
func RenderMonth(v MonthView, today string, marked map[string]bool) string {
	var b strings.Builder
	title := fmt.Sprintf("%s %d", v.Month, v.Year)
	b.WriteString(headerStyle.Render(lipgloss.PlaceHorizontal(Width, lipgloss.Center, title)))
	b.WriteByte('\n')
	writeWeekdays(&b)

	cells := v.Cells()
	for i, c := range cells {
		style := lipgloss.NewStyle()
		switch {
		case !c.InMonth:
			style = outsideStyle
		case marked[c.ISO]:
			style = selectedStyle
		case c.ISO == today:
			style = todayStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%3d", c.Day)))
		b.WriteByte(' ')
		if (i+1)%daysPerWeek == 0 && i+1 < len(cells) {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func writeWeekdays(b *strings.Builder) {
	for _, wd := range weekdays {
		b.WriteString(weekdayStyle.Render(fmt.Sprintf("%3s ", wd)))
	}
	b.WriteByte('\n')
}
