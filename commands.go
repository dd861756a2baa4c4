package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ziyixi/tasklist/calendar"
	"github.com/ziyixi/tasklist/taskstore"
	"github.com/ziyixi/tasklist/tui"
	"github.com/ziyixi/tasklist/utils"
)

func newRootCommand() *cobra.Command {
	config = loadConfig()

	rootCmd := &cobra.Command{
		Use:   "tasklist",
		Short: "Tasklist - a terminal client for your task backend",
		Long: `Tasklist keeps a list of categorized, prioritized tasks with optional deadlines.

Run without a sub-command to open the interactive list. The sub-commands
cover the same operations for scripts and quick edits.`,
		Version:      GitCommit,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logrus.ParseLevel(config.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", config.LogLevel, err)
			}
			log.SetLevel(level)

			if config.HealthAddr == "" {
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(config.HealthCheckTimeout)*time.Second)
			defer cancel()
			if err := utils.WaitForHealthy(ctx, config.HealthAddr); err != nil {
				return fmt.Errorf("task backend is not ready: %w", err)
			}
			log.Infof("Task backend at %s is healthy", config.HealthAddr)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&config.APIURL, "api-url", config.APIURL, "base URL of the task backend")
	rootCmd.PersistentFlags().StringVar(&config.HealthAddr, "health-addr", config.HealthAddr, "gRPC health address to wait for before starting")
	rootCmd.PersistentFlags().IntVar(&config.HealthCheckTimeout, "health-check-timeout", config.HealthCheckTimeout, "timeout for the health check in seconds")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&config.LogFile, "log-file", config.LogFile, "log file used while the interactive list is open")

	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newAddCommand())
	rootCmd.AddCommand(newDoneCommand("done", true))
	rootCmd.AddCommand(newDoneCommand("undo", false))
	rootCmd.AddCommand(newRemoveCommand())
	rootCmd.AddCommand(newCalendarCommand())

	return rootCmd
}

func newClient() *taskstore.Client {
	return taskstore.NewClient(config.APIURL, taskstore.WithLogger(log))
}

func runTUI(ctx context.Context) error {
	f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		_ = f.Close() // Best effort close
	}()
	// The terminal belongs to the program until it exits.
	log.SetOutput(f)
	defer log.SetOutput(os.Stderr)

	app := tui.NewApp(newClient(), tui.WithLogger(log))
	defer app.Close()

	log.Infof("Starting interactive list against %s", config.APIURL)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive list failed: %w", err)
	}
	return nil
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := newClient().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}
			printTasks(cmd.OutOrStdout(), tasks, time.Now())
			return nil
		},
	}
}

func printTasks(out io.Writer, tasks []taskstore.Task, now time.Time) {
	done := 0
	for _, t := range tasks {
		if t.IsDone {
			done++
		}
	}
	fmt.Fprintf(out, "Progress: %d%% (%d/%d done)\n", tui.Progress(tasks), done, len(tasks))
	if len(tasks) == 0 {
		fmt.Fprintln(out, "Nothing to do yet.")
		return
	}
	for _, t := range tasks {
		fmt.Fprintln(out, formatTask(t, now))
	}
}

func formatTask(t taskstore.Task, now time.Time) string {
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(t.DisplayHex())).Render("▌")
	check := "[ ]"
	if t.IsDone {
		check = "[x]"
	}
	parts := []string{t.Category.Label(), string(t.Priority)}
	if due := utils.FormatDisplayDate(t.DeadlineISO()); due != "" {
		parts = append(parts, "due "+due)
	}
	if t.IsOverdue(now) {
		parts = append(parts, "overdue")
	}
	return fmt.Sprintf("%s #%d %s %s · %s", bar, t.ID, check, t.Text, strings.Join(parts, " · "))
}

func newAddCommand() *cobra.Command {
	var category, priority, deadline string

	cmd := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.New("task text is empty")
			}
			c := taskstore.Category(category)
			if !c.Valid() {
				return fmt.Errorf("unknown category %q", category)
			}
			p := taskstore.Priority(priority)
			if !p.Valid() {
				return fmt.Errorf("unknown priority %q", priority)
			}
			if deadline != "" {
				if _, err := utils.ParseISODate(deadline); err != nil {
					return err
				}
			}

			task, err := newClient().Create(cmd.Context(), taskstore.NewDraft(text, c, p, deadline))
			if err != nil {
				return fmt.Errorf("failed to add task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", formatTask(*task, time.Now()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", string(taskstore.CategoryWork), "work, appointment, shopping, personal or idea")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(taskstore.PriorityMedium), "low, medium or high")
	cmd.Flags().StringVarP(&deadline, "deadline", "d", "", "deadline as YYYY-MM-DD")
	return cmd
}

func newDoneCommand(use string, isDone bool) *cobra.Command {
	short, verb := "Mark a task as done", "Completed"
	if !isDone {
		short, verb = "Mark a task as not done", "Reopened"
	}

	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := newClient().SetDone(cmd.Context(), id, isDone)
			if err != nil {
				return fmt.Errorf("failed to update task #%d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, formatTask(*task, time.Now()))
			return nil
		},
	}
}

func newRemoveCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a task after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete task #%d?", id)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			if err := newClient().Remove(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete task #%d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

func newCalendarCommand() *cobra.Command {
	var deadlines bool

	cmd := &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Print a month grid",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			view := calendar.MonthOf(now)
			if len(args) == 1 {
				month, err := time.Parse("2006-01", args[0])
				if err != nil {
					return fmt.Errorf("invalid month %q, expected YYYY-MM", args[0])
				}
				view = calendar.MonthOf(month)
			}

			marked := map[string]bool{}
			if deadlines {
				tasks, err := newClient().List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list tasks: %w", err)
				}
				for _, t := range tasks {
					if iso := t.DeadlineISO(); iso != "" && !t.IsDone {
						marked[iso] = true
					}
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), calendar.RenderMonth(view, utils.ToISODate(now), marked))
			return nil
		},
	}

	cmd.Flags().BoolVar(&deadlines, "deadlines", false, "highlight deadlines of open tasks")
	return cmd
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
