// Package mocks provides mock implementations for testing
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ziyixi/tasklist/taskstore"
)

// MockTaskStore is a mock implementation of the task backend client
type MockTaskStore struct {
	mock.Mock
}

// List returns the mocked task list
func (m *MockTaskStore) List(ctx context.Context) ([]taskstore.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]taskstore.Task), args.Error(1)
}

// Create stores a draft using the mock service
func (m *MockTaskStore) Create(ctx context.Context, draft taskstore.Draft) (*taskstore.Task, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taskstore.Task), args.Error(1)
}

// SetDone flips the done flag using the mock service
func (m *MockTaskStore) SetDone(ctx context.Context, id int, isDone bool) (*taskstore.Task, error) {
	args := m.Called(ctx, id, isDone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taskstore.Task), args.Error(1)
}

// Remove deletes a task using the mock service
func (m *MockTaskStore) Remove(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
