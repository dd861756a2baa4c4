// Package tui is the interactive terminal front end: a task form with a
// deadline picker above a list of task cards.
package tui

import (
	"context"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/ziyixi/tasklist/calendar"
	"github.com/ziyixi/tasklist/taskstore"
)

// TaskStore is the subset of the backend client the app needs.
type TaskStore interface {
	List(ctx context.Context) ([]taskstore.Task, error)
	Create(ctx context.Context, draft taskstore.Draft) (*taskstore.Task, error)
	SetDone(ctx context.Context, id int, isDone bool) (*taskstore.Task, error)
	Remove(ctx context.Context, id int) error
}

// focusArea is the form control or list that receives key presses.
type focusArea int

const (
	focusText focusArea = iota
	focusCategory
	focusPriority
	focusDeadline
	focusList
	focusAreaCount
)

// FormDraft is the unsaved state of the new-task form.
type FormDraft struct {
	Text     string
	Category taskstore.Category
	Priority taskstore.Priority
	Deadline string
}

// DefaultDraft is the form state on start and after every successful add.
func DefaultDraft() FormDraft {
	return FormDraft{
		Category: taskstore.CategoryWork,
		Priority: taskstore.PriorityMedium,
	}
}

// Message types
type tasksLoadedMsg struct {
	tasks []taskstore.Task
	err   error
}
type taskCreatedMsg struct {
	task *taskstore.Task
	err  error
}
type taskToggledMsg struct {
	id   int
	task *taskstore.Task
	err  error
}
type taskRemovedMsg struct {
	id  int
	err error
}

// App is the bubbletea model for the task list.
type App struct {
	store TaskStore
	log   logrus.FieldLogger
	now   func() time.Time

	tasks   []taskstore.Task
	draft   FormDraft
	busy    bool
	loading bool

	textInput textinput.Model
	deadline  *calendar.DateField
	pointer   calendar.PointerBus
	spinner   spinner.Model
	progress  progress.Model

	focus         focusArea
	cursor        int
	pendingDelete *taskstore.Task
	alert         string
	width         int
}

// Option configures an App.
type Option func(*App)

// WithLogger sets where failures are logged.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *App) { a.log = log }
}

// WithClock overrides time.Now for overdue checks and the date picker.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// NewApp creates an App backed by store. Call Close when the program exits.
func NewApp(store TaskStore, opts ...Option) *App {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	a := &App{
		store:   store,
		log:     discard,
		now:     time.Now,
		draft:   DefaultDraft(),
		loading: true,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.textInput = textinput.New()
	a.textInput.Placeholder = "What needs doing?"
	a.textInput.CharLimit = 200
	a.textInput.Width = calendar.Width
	a.textInput.Focus()

	a.spinner = spinner.New()
	a.spinner.Spinner = spinner.Dot

	a.progress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(calendar.Width+labelWidth))

	a.deadline = calendar.NewDateField(
		calendar.WithClock(a.now),
		calendar.WithOnChange(func(iso string) { a.draft.Deadline = iso }),
	)
	a.deadline.SetOrigin(calendar.Point{X: labelWidth, Y: deadlineRow})
	a.deadline.Mount(&a.pointer)
	return a
}

// Close releases the date picker's pointer listener.
func (a *App) Close() {
	a.deadline.Unmount()
}

// Tasks returns the tasks currently shown.
func (a *App) Tasks() []taskstore.Task { return a.tasks }

// Draft returns the current form state.
func (a *App) Draft() FormDraft { return a.draft }

// Busy reports whether a create request is in flight.
func (a *App) Busy() bool { return a.busy }

// Alert returns the blocking notification, if any.
func (a *App) Alert() string { return a.alert }

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		a.spinner.Tick,
		a.loadTasks(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a, a.handleKeyMsg(msg)

	case tea.MouseMsg:
		return a, a.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tasksLoadedMsg:
		a.loading = false
		if msg.err != nil {
			a.log.WithError(msg.err).Error("Failed to load tasks")
			a.tasks = []taskstore.Task{}
			return a, nil
		}
		a.tasks = msg.tasks
		a.clampCursor()
		return a, nil

	case taskCreatedMsg:
		a.setBusy(false)
		if msg.err != nil {
			a.log.WithError(msg.err).Error("Failed to create task")
			a.alert = "Could not add the task. Please try again."
			return a, nil
		}
		a.tasks = append([]taskstore.Task{*msg.task}, a.tasks...)
		a.resetDraft()
		return a, nil

	case taskToggledMsg:
		if msg.err != nil {
			a.log.WithError(msg.err).WithField("id", msg.id).Error("Failed to update task")
			a.alert = "Could not update the task. Please try again."
			return a, nil
		}
		for i := range a.tasks {
			if a.tasks[i].ID == msg.task.ID {
				a.tasks[i] = *msg.task
			}
		}
		return a, nil

	case taskRemovedMsg:
		if msg.err != nil {
			a.log.WithError(msg.err).WithField("id", msg.id).Error("Failed to delete task")
			a.alert = "Could not delete the task. Please try again."
			return a, nil
		}
		kept := make([]taskstore.Task, 0, len(a.tasks))
		for _, t := range a.tasks {
			if t.ID != msg.id {
				kept = append(kept, t)
			}
		}
		a.tasks = kept
		a.clampCursor()
		return a, nil
	}
	return a, nil
}

// handleKeyMsg routes a key press. An alert or a pending delete confirmation
// swallows every key except the ones that answer it.
func (a *App) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	if a.alert != "" {
		if key == "enter" || key == "esc" {
			a.alert = ""
		}
		return nil
	}

	if a.pendingDelete != nil {
		switch key {
		case "y", "Y":
			id := a.pendingDelete.ID
			a.pendingDelete = nil
			return a.removeTask(id)
		case "n", "N", "esc":
			a.pendingDelete = nil
		}
		return nil
	}

	if a.focus == focusDeadline && a.deadline.IsOpen() {
		a.deadline.HandleKey(key)
		return nil
	}

	switch key {
	case "tab":
		return a.setFocus((a.focus + 1) % focusAreaCount)
	case "shift+tab":
		return a.setFocus((a.focus + focusAreaCount - 1) % focusAreaCount)
	}

	switch a.focus {
	case focusText:
		if key == "enter" {
			return a.submit()
		}
		var cmd tea.Cmd
		a.textInput, cmd = a.textInput.Update(msg)
		a.draft.Text = a.textInput.Value()
		return cmd

	case focusCategory:
		switch key {
		case "left", "h":
			a.draft.Category = cycle(taskstore.Categories, a.draft.Category, -1)
		case "right", "l":
			a.draft.Category = cycle(taskstore.Categories, a.draft.Category, 1)
		case "enter":
			return a.submit()
		}

	case focusPriority:
		switch key {
		case "left", "h":
			a.draft.Priority = cycle(taskstore.Priorities, a.draft.Priority, -1)
		case "right", "l":
			a.draft.Priority = cycle(taskstore.Priorities, a.draft.Priority, 1)
		case "enter":
			return a.submit()
		}

	case focusDeadline:
		a.deadline.HandleKey(key)

	case focusList:
		switch key {
		case "up", "k":
			if a.cursor > 0 {
				a.cursor--
			}
		case "down", "j":
			if a.cursor < len(a.tasks)-1 {
				a.cursor++
			}
		case " ", "enter", "x":
			if t, ok := a.selectedTask(); ok {
				return a.toggleTask(t)
			}
		case "d", "delete":
			if t, ok := a.selectedTask(); ok {
				a.pendingDelete = &t
			}
		case "q":
			return tea.Quit
		}
	}
	return nil
}

// handleMouseMsg republishes presses for outside-click detection, then lets
// the date field handle presses that landed on it.
func (a *App) handleMouseMsg(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if a.alert != "" || a.pendingDelete != nil {
		return nil
	}
	p := calendar.Point{X: msg.X, Y: msg.Y}
	a.pointer.Publish(p)
	if a.deadline.Region().Contains(p) {
		cmd := a.setFocus(focusDeadline)
		a.deadline.Press(p)
		return cmd
	}
	return nil
}

func (a *App) setFocus(f focusArea) tea.Cmd {
	if a.focus == focusDeadline && f != focusDeadline {
		a.deadline.Close()
	}
	a.focus = f
	if f == focusText {
		return a.textInput.Focus()
	}
	a.textInput.Blur()
	return nil
}

func (a *App) setBusy(busy bool) {
	a.busy = busy
	a.deadline.SetDisabled(busy)
}

// submit starts a create unless the text is blank or one is in flight.
func (a *App) submit() tea.Cmd {
	text := strings.TrimSpace(a.draft.Text)
	if text == "" || a.busy {
		return nil
	}
	a.setBusy(true)
	draft := taskstore.NewDraft(text, a.draft.Category, a.draft.Priority, a.draft.Deadline)
	store := a.store
	return func() tea.Msg {
		task, err := store.Create(context.Background(), draft)
		return taskCreatedMsg{task: task, err: err}
	}
}

func (a *App) resetDraft() {
	a.draft = DefaultDraft()
	a.textInput.SetValue("")
	a.deadline.SetValue("")
	a.deadline.Close()
}

func (a *App) loadTasks() tea.Cmd {
	store := a.store
	return func() tea.Msg {
		tasks, err := store.List(context.Background())
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

// toggleTask asks the backend to flip the done flag. The list only changes
// once the backend answers.
func (a *App) toggleTask(t taskstore.Task) tea.Cmd {
	store := a.store
	id, isDone := t.ID, !t.IsDone
	return func() tea.Msg {
		task, err := store.SetDone(context.Background(), id, isDone)
		return taskToggledMsg{id: id, task: task, err: err}
	}
}

func (a *App) removeTask(id int) tea.Cmd {
	store := a.store
	return func() tea.Msg {
		return taskRemovedMsg{id: id, err: store.Remove(context.Background(), id)}
	}
}

func (a *App) selectedTask() (taskstore.Task, bool) {
	if a.cursor < 0 || a.cursor >= len(a.tasks) {
		return taskstore.Task{}, false
	}
	return a.tasks[a.cursor], true
}

func (a *App) clampCursor() {
	if a.cursor >= len(a.tasks) {
		a.cursor = len(a.tasks) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// Progress is the share of done tasks as a whole percentage. An empty list
// is 0%.
func Progress(tasks []taskstore.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.IsDone {
			done++
		}
	}
	return int(math.Round(float64(done) * 100 / float64(len(tasks))))
}

func cycle[T comparable](values []T, current T, step int) T {
	idx := 0
	for i, v := range values {
		if v == current {
			idx = i
			break
		}
	}
	n := len(values)
	return values[((idx+step)%n+n)%n]
}
