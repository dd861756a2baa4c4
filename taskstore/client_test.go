package taskstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

func assertCommonHeaders(t *testing.T, r *http.Request, method string) {
	t.Helper()
	assert.Equal(t, method, r.Method)
	assert.Equal(t, TasksPath, r.URL.Path)
	assert.Equal(t, "application/json", r.Header.Get("Accept"))
	assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
}

func TestClient_List(t *testing.T) {
	t.Run("successful list", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assertCommonHeaders(t, r, http.MethodGet)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"id": 1, "text": "Buy milk", "isDone": false, "category": "shopping", "priority": "low",
				 "color": "#10b981", "deadline": "2026-10-20", "createdAt": "2026-10-01T10:00:00Z", "updatedAt": "2026-10-01T10:00:00Z"},
				{"id": 2, "text": "Ship release", "isDone": true, "category": "work", "priority": "high",
				 "createdAt": "2026-10-02T10:00:00Z", "updatedAt": "2026-10-03T10:00:00Z"}
			]`)) // Best effort write
		})

		tasks, err := client.List(context.Background())

		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, 1, tasks[0].ID)
		assert.Equal(t, CategoryShopping, tasks[0].Category)
		assert.Equal(t, "2026-10-20", tasks[0].DeadlineISO())
		assert.True(t, tasks[1].IsDone)
		assert.Nil(t, tasks[1].Color)
	})

	t.Run("timestamps in any format are kept as sent", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"id": 1, "text": "Buy milk", "isDone": false, "category": "shopping", "priority": "low",
				 "createdAt": "2026-10-01 10:00:00", "updatedAt": 1791799200},
				{"id": 2, "text": "Ship release", "isDone": true, "category": "work", "priority": "high"}
			]`)) // Best effort write
		})

		tasks, err := client.List(context.Background())

		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.JSONEq(t, `"2026-10-01 10:00:00"`, string(tasks[0].CreatedAt))
		assert.JSONEq(t, `1791799200`, string(tasks[0].UpdatedAt))
		assert.Nil(t, tasks[1].CreatedAt)
	})

	t.Run("null body yields an empty list", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`null`)) // Best effort write
		})

		tasks, err := client.List(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("API error response", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "boom"}`)) // Best effort write
		})

		tasks, err := client.List(context.Background())

		assert.Nil(t, tasks)
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("network error", func(t *testing.T) {
		client := NewClient("http://non-existent-server.invalid")

		tasks, err := client.List(context.Background())

		assert.Error(t, err)
		assert.Nil(t, tasks)
	})
}

func TestClient_Create(t *testing.T) {
	t.Run("successful create unwraps the envelope", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assertCommonHeaders(t, r, http.MethodPost)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			var body map[string]any
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, "Buy milk", body["text"])
			assert.Equal(t, false, body["isDone"])
			assert.Equal(t, "shopping", body["category"])
			assert.Equal(t, "low", body["priority"])
			assert.Equal(t, "#10b981", body["color"])
			assert.Nil(t, body["deadline"])
			assert.NotContains(t, body, "id")
			assert.NotContains(t, body, "createdAt")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data": {"id": 7, "text": "Buy milk", "isDone": false,
				"category": "shopping", "priority": "low", "color": "#10b981",
				"createdAt": "2026-10-16T08:00:00Z", "updatedAt": "2026-10-16T08:00:00Z"}}`)) // Best effort write
		})

		task, err := client.Create(context.Background(), NewDraft("Buy milk", CategoryShopping, PriorityLow, ""))

		require.NoError(t, err)
		assert.Equal(t, 7, task.ID)
		assert.Equal(t, "Buy milk", task.Text)
		assert.JSONEq(t, `"2026-10-16T08:00:00Z"`, string(task.CreatedAt))
	})

	t.Run("missing envelope", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": 7}`)) // Best effort write
		})

		task, err := client.Create(context.Background(), NewDraft("x", CategoryWork, PriorityMedium, ""))

		assert.Nil(t, task)
		assert.ErrorIs(t, err, ErrMissingEnvelope)
	})

	t.Run("API error response", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})

		task, err := client.Create(context.Background(), NewDraft("x", CategoryWork, PriorityMedium, ""))

		assert.Nil(t, task)
		assert.Contains(t, err.Error(), "400")
	})
}

func TestClient_SetDone(t *testing.T) {
	t.Run("sends exactly id and isDone", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assertCommonHeaders(t, r, http.MethodPatch)
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.JSONEq(t, `{"id": 3, "isDone": true}`, string(raw))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data": {"id": 3, "text": "Call mom", "isDone": true,
				"category": "personal", "priority": "medium",
				"createdAt": "2026-10-16T08:00:00Z", "updatedAt": "2026-10-16T09:00:00Z"}}`)) // Best effort write
		})

		task, err := client.SetDone(context.Background(), 3, true)

		require.NoError(t, err)
		assert.Equal(t, 3, task.ID)
		assert.True(t, task.IsDone)
	})

	t.Run("not found", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		task, err := client.SetDone(context.Background(), 3, true)

		assert.Nil(t, task)
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.MethodPatch, statusErr.Method)
	})
}

func TestClient_Remove(t *testing.T) {
	t.Run("sends the id", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assertCommonHeaders(t, r, http.MethodDelete)
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.JSONEq(t, `{"id": 9}`, string(raw))
			w.WriteHeader(http.StatusNoContent)
		})

		assert.NoError(t, client.Remove(context.Background(), 9))
	})

	t.Run("API error response", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		err := client.Remove(context.Background(), 9)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})
}
