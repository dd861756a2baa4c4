package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziyixi/tasklist/taskstore"
	"github.com/ziyixi/tasklist/testutils"
)

type recordedRequest struct {
	Method string
	Body   map[string]any
}

// fakeBackend answers every call with status and body and records what it saw.
type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func newFakeBackend(t *testing.T, status int, body string) (*fakeBackend, string) {
	t.Helper()
	fb := &fakeBackend{status: status, body: body}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, taskstore.TasksPath, r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		req := recordedRequest{Method: r.Method}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &req.Body) // Best effort decode
		}
		fb.mu.Lock()
		fb.requests = append(fb.requests, req)
		fb.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(fb.status)
		_, _ = w.Write([]byte(fb.body)) // Best effort write
	}))
	t.Cleanup(server.Close)
	return fb, server.URL
}

func (fb *fakeBackend) Requests() []recordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]recordedRequest(nil), fb.requests...)
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const taskJSON = `{"id":3,"text":"Buy milk","isDone":false,"category":"shopping","priority":"low","color":"#10b981","deadline":"2026-10-20"}`

func TestListCommand(t *testing.T) {
	t.Run("prints progress and tasks", func(t *testing.T) {
		_, url := newFakeBackend(t, http.StatusOK, `[
			{"id":1,"text":"Pay rent","isDone":false,"category":"personal","priority":"high","deadline":"2020-01-01"},
			{"id":2,"text":"Read","isDone":true,"category":"idea","priority":"low"}
		]`)

		out, err := execute(t, "", "list", "--api-url", url)
		require.NoError(t, err)

		assert.Contains(t, out, "Progress: 50% (1/2 done)")
		assert.Contains(t, out, "#1 [ ] Pay rent · Personal · high · due Jan 1, 2020 · overdue")
		assert.Contains(t, out, "#2 [x] Read · Idea / note · low")
	})

	t.Run("empty list", func(t *testing.T) {
		_, url := newFakeBackend(t, http.StatusOK, `[]`)

		out, err := execute(t, "", "list", "--api-url", url)
		require.NoError(t, err)
		assert.Contains(t, out, "Progress: 0% (0/0 done)")
		assert.Contains(t, out, "Nothing to do yet.")
	})

	t.Run("backend failure", func(t *testing.T) {
		_, url := newFakeBackend(t, http.StatusInternalServerError, `{"error":"boom"}`)

		_, err := execute(t, "", "list", "--api-url", url)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("api url from the environment", func(t *testing.T) {
		fb, url := newFakeBackend(t, http.StatusOK, `[]`)
		testutils.SetEnv(t, "TASKLIST_API_URL", url)

		_, err := execute(t, "", "list")
		require.NoError(t, err)
		assert.Len(t, fb.Requests(), 1)
	})
}

func TestAddCommand(t *testing.T) {
	t.Run("sends a complete draft", func(t *testing.T) {
		fb, url := newFakeBackend(t, http.StatusCreated, `{"data":`+taskJSON+`}`)

		out, err := execute(t, "", "add", "Buy", "milk", "-c", "shopping", "-p", "low", "-d", "2026-10-20", "--api-url", url)
		require.NoError(t, err)
		assert.Contains(t, out, "Added")
		assert.Contains(t, out, "#3 [ ] Buy milk")

		requests := fb.Requests()
		require.Len(t, requests, 1)
		assert.Equal(t, http.MethodPost, requests[0].Method)
		assert.Equal(t, map[string]any{
			"text":     "Buy milk",
			"isDone":   false,
			"category": "shopping",
			"priority": "low",
			"color":    "#10b981",
			"deadline": "2026-10-20",
		}, requests[0].Body)
	})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"blank text", []string{"add", "   "}, "task text is empty"},
		{"unknown category", []string{"add", "x", "-c", "chores"}, "unknown category"},
		{"unknown priority", []string{"add", "x", "-p", "urgent"}, "unknown priority"},
		{"bad deadline", []string{"add", "x", "-d", "tomorrow"}, "YYYY-MM-DD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb, url := newFakeBackend(t, http.StatusCreated, `{"data":`+taskJSON+`}`)

			_, err := execute(t, "", append(tt.args, "--api-url", url)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, fb.Requests())
		})
	}
}

func TestDoneCommands(t *testing.T) {
	t.Run("done", func(t *testing.T) {
		fb, url := newFakeBackend(t, http.StatusOK, `{"data":`+strings.Replace(taskJSON, `"isDone":false`, `"isDone":true`, 1)+`}`)

		out, err := execute(t, "", "done", "3", "--api-url", url)
		require.NoError(t, err)
		assert.Contains(t, out, "Completed")
		assert.Contains(t, out, "[x]")

		requests := fb.Requests()
		require.Len(t, requests, 1)
		assert.Equal(t, http.MethodPatch, requests[0].Method)
		assert.Equal(t, map[string]any{"id": float64(3), "isDone": true}, requests[0].Body)
	})

	t.Run("undo", func(t *testing.T) {
		fb, url := newFakeBackend(t, http.StatusOK, `{"data":`+taskJSON+`}`)

		out, err := execute(t, "", "undo", "3", "--api-url", url)
		require.NoError(t, err)
		assert.Contains(t, out, "Reopened")
		assert.Equal(t, false, fb.Requests()[0].Body["isDone"])
	})

	t.Run("invalid id", func(t *testing.T) {
		fb, url := newFakeBackend(t, http.StatusOK, `{"data":`+taskJSON+`}`)

		_, err := execute(t, "", "done", "three", "--api-url", url)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid task id")
		assert.Empty(t, fb.Requests())
	})

	t.Run("not found", func(t *testing.T) {
		_, url := newFakeBackend(t, http.StatusNotFound, `{"error":"task not found"}`)

		_, err := execute(t, "", "done", "9", "--api-url", url)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}

func TestRemoveCommand(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		fb, url := newFakeBackend(t, http.StatusOK, `{"message":"task deleted"}`)

		out, err := execute(t, "n\n", "rm", "3", "--api-url", url)
		require.NoError(t, err)
		assert.Contains(t, out, "Delete task #3? [y/N]")
		assert.Contains(t, out, "Cancelled")
		assert.Empty(t, fb.Requests())
	})

	t.Run("no answer", func(t *testing.T) {
		fb, url := newFakeBackend(t, http.StatusOK, `{"message":"task deleted"}`)

		_, err := execute(t, "", "rm", "3", "--api-url", url)
		require.NoError(t, err)
		assert.Empty(t, fb.Requests())
	})

	t.Run("confirmed", func(t *testing.T) {
		fb, url := newFakeBackend(t, http.StatusOK, `{"message":"task deleted"}`)

		out, err := execute(t, "y\n", "rm", "3", "--api-url", url)
		require.NoError(t, err)
		assert.Contains(t, out, "Deleted #3")

		requests := fb.Requests()
		require.Len(t, requests, 1)
		assert.Equal(t, http.MethodDelete, requests[0].Method)
		assert.Equal(t, map[string]any{"id": float64(3)}, requests[0].Body)
	})

	t.Run("yes flag skips the prompt", func(t *testing.T) {
		fb, url := newFakeBackend(t, http.StatusOK, `{"message":"task deleted"}`)

		out, err := execute(t, "", "rm", "3", "--yes", "--api-url", url)
		require.NoError(t, err)
		assert.NotContains(t, out, "[y/N]")
		assert.Len(t, fb.Requests(), 1)
	})
}

func TestCalendarCommand(t *testing.T) {
	t.Run("given month", func(t *testing.T) {
		out, err := execute(t, "", "calendar", "2026-10")
		require.NoError(t, err)
		assert.Contains(t, out, "October 2026")
		assert.Contains(t, out, "Su")
		assert.Contains(t, out, " 31 ")
	})

	t.Run("marks deadlines", func(t *testing.T) {
		fb, url := newFakeBackend(t, http.StatusOK, `[`+taskJSON+`]`)

		_, err := execute(t, "", "calendar", "2026-10", "--deadlines", "--api-url", url)
		require.NoError(t, err)
		assert.Len(t, fb.Requests(), 1)
	})

	t.Run("invalid month", func(t *testing.T) {
		_, err := execute(t, "", "calendar", "October")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "YYYY-MM")
	})
}

func TestRootCommand(t *testing.T) {
	t.Run("invalid log level", func(t *testing.T) {
		_, err := execute(t, "", "calendar", "2026-10", "--log-level", "loud")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("interactive list needs a writable log file", func(t *testing.T) {
		_, err := execute(t, "", "--log-file", filepath.Join(testutils.TempDir(t, "tasklist_*"), "missing", "tasklist.log"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open log file")
	})

	t.Run("registers every sub-command", func(t *testing.T) {
		cmd := newRootCommand()
		var names []string
		for _, c := range cmd.Commands() {
			names = append(names, c.Name())
		}
		for _, want := range []string{"list", "add", "done", "undo", "rm", "calendar"} {
			assert.Contains(t, names, want)
		}
	})
}
