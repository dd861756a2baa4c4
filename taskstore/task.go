package taskstore

import (
	"encoding/json"
	"time"

	"github.com/ziyixi/tasklist/palette"
	"github.com/ziyixi/tasklist/utils"
)

// Category is one of the fixed task categories.
type Category string

const (
	CategoryWork        Category = "work"
	CategoryAppointment Category = "appointment"
	CategoryShopping    Category = "shopping"
	CategoryPersonal    Category = "personal"
	CategoryIdea        Category = "idea"
)

// Categories lists every category in form order.
var Categories = []Category{
	CategoryWork,
	CategoryAppointment,
	CategoryShopping,
	CategoryPersonal,
	CategoryIdea,
}

var categoryColors = map[Category]string{
	CategoryWork:        "#3b82f6",
	CategoryAppointment: "#ef4444",
	CategoryShopping:    "#10b981",
	CategoryPersonal:    "#8b5cf6",
	CategoryIdea:        "#f59e0b",
}

var categoryLabels = map[Category]string{
	CategoryWork:        "Work",
	CategoryAppointment: "Important appointment",
	CategoryShopping:    "Shopping",
	CategoryPersonal:    "Personal",
	CategoryIdea:        "Idea / note",
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryColors[c]
	return ok
}

// BaseColor is the hex color tasks of this category get when they carry
// no color of their own.
func (c Category) BaseColor() string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return palette.DefaultColor
}

// Label is the human readable category name.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Priority orders tasks and shifts their display lightness.
type Priority string

const (
	PriorityLow    Priority = palette.PriorityLow
	PriorityMedium Priority = palette.PriorityMedium
	PriorityHigh   Priority = palette.PriorityHigh
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task is a to-do item as stored by the backend. ID and the timestamps are
// assigned by the backend and never originated here. The timestamps are kept
// as the backend sent them, whatever their format.
type Task struct {
	ID        int             `json:"id"`
	Text      string          `json:"text"`
	IsDone    bool            `json:"isDone"`
	Category  Category        `json:"category"`
	Priority  Priority        `json:"priority"`
	Color     *string         `json:"color,omitempty"`
	Deadline  *string         `json:"deadline,omitempty"`
	CreatedAt json.RawMessage `json:"createdAt,omitempty"`
	UpdatedAt json.RawMessage `json:"updatedAt,omitempty"`
}

// BaseColor is the task's own color, or its category's when it has none.
func (t Task) BaseColor() string {
	if t.Color != nil && *t.Color != "" {
		return *t.Color
	}
	return t.Category.BaseColor()
}

// DisplayColor is the CSS color for the task card.
func (t Task) DisplayColor() string {
	return palette.DeriveDisplayColor(t.BaseColor(), string(t.Priority))
}

// DisplayHex is DisplayColor as #rrggbb, for terminal rendering.
func (t Task) DisplayHex() string {
	return palette.Derive(t.BaseColor(), string(t.Priority)).Hex()
}

// DeadlineISO returns the deadline as YYYY-MM-DD, or empty when the task has
// none. Timestamps are cut down to their calendar date.
func (t Task) DeadlineISO() string {
	if t.Deadline == nil || len(*t.Deadline) < len(utils.ISODateLayout) {
		return ""
	}
	iso := (*t.Deadline)[:len(utils.ISODateLayout)]
	if _, err := utils.ParseISODate(iso); err != nil {
		return ""
	}
	return iso
}

// IsOverdue reports whether the task is open and its deadline day has passed.
func (t Task) IsOverdue(now time.Time) bool {
	iso := t.DeadlineISO()
	if iso == "" {
		return false
	}
	deadline, err := utils.ParseISODate(iso)
	if err != nil {
		return false
	}
	return utils.IsOverdue(deadline, t.IsDone, now)
}

// Draft is the payload for creating a task.
type Draft struct {
	Text     string   `json:"text"`
	IsDone   bool     `json:"isDone"`
	Category Category `json:"category"`
	Priority Priority `json:"priority"`
	Color    string   `json:"color"`
	Deadline *string  `json:"deadline"`
}

// NewDraft builds an open draft colored after its category. An empty
// deadline means none; an empty priority means medium.
func NewDraft(text string, category Category, priority Priority, deadline string) Draft {
	if priority == "" {
		priority = PriorityMedium
	}
	d := Draft{
		Text:     text,
		IsDone:   false,
		Category: category,
		Priority: priority,
		Color:    category.BaseColor(),
	}
	if deadline != "" {
		d.Deadline = &deadline
	}
	return d
}
