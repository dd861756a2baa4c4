package calendar

import (
	"time"

	"github.com/ziyixi/tasklist/utils"
)

// DateField is a date input with a month-grid popover. It is either closed
// or open; the committed value is always a YYYY-MM-DD string or empty.
type DateField struct {
	value    string
	view     MonthView
	cursor   time.Time
	open     bool
	disabled bool
	origin   Point
	sub      *Subscription

	now      func() time.Time
	onChange func(string)
}

// Option configures a DateField.
type Option func(*DateField)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(f *DateField) { f.now = now }
}

// WithOnChange registers fn to run after every commit, including clears.
func WithOnChange(fn func(string)) Option {
	return func(f *DateField) { f.onChange = fn }
}

// NewDateField returns a closed, empty field.
func NewDateField(opts ...Option) *DateField {
	f := &DateField{now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	f.cursor = utils.DateOnly(f.now())
	f.setView(MonthOf(f.cursor))
	return f
}

// Value is the committed YYYY-MM-DD date, or "" when none.
func (f *DateField) Value() string { return f.value }

// IsOpen reports whether the popover is shown.
func (f *DateField) IsOpen() bool { return f.open }

// Disabled reports whether the field ignores input.
func (f *DateField) Disabled() bool { return f.disabled }

// View is the month the popover shows.
func (f *DateField) View() MonthView { return f.view }

// Cursor is the keyboard-highlighted day.
func (f *DateField) Cursor() time.Time { return f.cursor }

// Subscribed reports whether the field holds a live outside-press listener.
func (f *DateField) Subscribed() bool { return !f.sub.Closed() }

// SetOrigin places the field's top-left cell on screen.
func (f *DateField) SetOrigin(p Point) { f.origin = p }

// DisplayValue is the committed date formatted for the user.
func (f *DateField) DisplayValue() string { return utils.FormatDisplayDate(f.value) }

// SetValue replaces the committed value without firing the change hook.
// Invalid dates clear the field.
func (f *DateField) SetValue(iso string) {
	if _, err := utils.ParseISODate(iso); err != nil {
		iso = ""
	}
	f.value = iso
}

// SetDisabled toggles the disabled state. Disabling an open field closes it.
func (f *DateField) SetDisabled(disabled bool) {
	f.disabled = disabled
	if disabled {
		f.open = false
	}
}

// Mount starts listening for presses outside the widget on bus.
func (f *DateField) Mount(bus *PointerBus) {
	f.Unmount()
	f.sub = bus.Subscribe(f.handleOutsidePress)
}

// Unmount releases the listener registered by Mount.
func (f *DateField) Unmount() {
	f.sub.Close()
	f.sub = nil
}

// Click opens the popover unless the field is disabled. Clicking an open
// field keeps it open.
func (f *DateField) Click() {
	if f.disabled || f.open {
		return
	}
	f.open = true
	f.cursor = utils.DateOnly(f.now())
	if t, err := utils.ParseISODate(f.value); err == nil {
		f.cursor = t
	}
	f.setView(MonthOf(f.cursor))
}

// Close hides the popover without changing the value.
func (f *DateField) Close() {
	f.open = false
}

// Select commits iso and closes the popover. Invalid dates are ignored.
func (f *DateField) Select(iso string) {
	if _, err := utils.ParseISODate(iso); err != nil {
		return
	}
	f.commit(iso)
	f.open = false
}

// Clear commits an empty value and closes the popover.
func (f *DateField) Clear() {
	f.commit("")
	f.open = false
}

// JumpToToday commits today's date and shows its month, leaving the popover
// in whatever state it was.
func (f *DateField) JumpToToday() {
	today := utils.DateOnly(f.now())
	f.cursor = today
	f.view = MonthOf(today)
	f.commit(utils.ToISODate(today))
}

// PrevMonth shows the previous month.
func (f *DateField) PrevMonth() {
	f.setView(f.view.Prev())
}

// NextMonth shows the following month.
func (f *DateField) NextMonth() {
	f.setView(f.view.Next())
}

// MoveCursor shifts the highlighted day, following it into other months.
func (f *DateField) MoveCursor(days int) {
	f.cursor = f.cursor.AddDate(0, 0, days)
	f.setView(MonthOf(f.cursor))
}

// HandleKey applies a key press and reports whether the field consumed it.
func (f *DateField) HandleKey(key string) bool {
	if !f.open {
		switch key {
		case "enter", " ":
			if f.disabled {
				return false
			}
			f.Click()
			return true
		case "backspace", "delete":
			if f.disabled || f.value == "" {
				return false
			}
			f.Clear()
			return true
		}
		return false
	}

	switch key {
	case "left", "h":
		f.MoveCursor(-1)
	case "right", "l":
		f.MoveCursor(1)
	case "up", "k":
		f.MoveCursor(-daysPerWeek)
	case "down", "j":
		f.MoveCursor(daysPerWeek)
	case "[", "pgup":
		f.PrevMonth()
	case "]", "pgdown":
		f.NextMonth()
	case "enter", " ":
		f.Select(utils.ToISODate(f.cursor))
	case "t":
		f.JumpToToday()
	case "x", "backspace", "delete":
		f.Clear()
	case "esc":
		f.Close()
	default:
		return false
	}
	return true
}

// Press applies a pointer press that landed inside Region.
func (f *DateField) Press(p Point) {
	if f.disabled {
		return
	}
	hit := f.HitTest(p)
	switch hit.Kind {
	case HitField:
		f.Click()
	case HitPrev:
		f.PrevMonth()
	case HitNext:
		f.NextMonth()
	case HitDay:
		f.Select(hit.Cell.ISO)
	case HitToday:
		f.JumpToToday()
	case HitClear:
		f.Clear()
	case HitClose:
		f.Close()
	}
}

func (f *DateField) handleOutsidePress(p Point) {
	if f.open && !f.Region().Contains(p) {
		f.Close()
	}
}

// setView shows v and moves the cursor into it, keeping the day of the
// month where possible.
func (f *DateField) setView(v MonthView) {
	f.view = v
	day := f.cursor.Day()
	if last := DaysIn(v.Year, v.Month); day > last {
		day = last
	}
	f.cursor = time.Date(v.Year, v.Month, day, 0, 0, 0, 0, time.Local)
}

func (f *DateField) commit(iso string) {
	f.value = iso
	if f.onChange != nil {
		f.onChange(iso)
	}
}
