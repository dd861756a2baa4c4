package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ziyixi/tasklist/taskstore"
)

var errTaskNotFound = errors.New("task not found")

// TaskRecord is the stored form of a task. ID and timestamps are owned by
// the database.
type TaskRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Text      string `gorm:"not null"`
	IsDone    bool   `gorm:"not null;default:false"`
	Category  string `gorm:"index;not null"`
	Priority  string `gorm:"not null"`
	Color     *string
	Deadline  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r TaskRecord) toTask() taskstore.Task {
	return taskstore.Task{
		ID:        int(r.ID),
		Text:      r.Text,
		IsDone:    r.IsDone,
		Category:  taskstore.Category(r.Category),
		Priority:  taskstore.Priority(r.Priority),
		Color:     r.Color,
		Deadline:  r.Deadline,
		CreatedAt: timestampJSON(r.CreatedAt),
		UpdatedAt: timestampJSON(r.UpdatedAt),
	}
}

// timestampJSON encodes t as an RFC 3339 JSON string.
func timestampJSON(t time.Time) json.RawMessage {
	raw, err := t.MarshalJSON()
	if err != nil {
		return nil
	}
	return raw
}

func openDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.AutoMigrate(&TaskRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
	}
	return db, nil
}

type taskRepo struct {
	db *gorm.DB
}

// List returns every task, newest first.
func (r *taskRepo) List(ctx context.Context) ([]TaskRecord, error) {
	records := []TaskRecord{}
	if err := r.db.WithContext(ctx).Order("created_at desc, id desc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	return records, nil
}

func (r *taskRepo) Create(ctx context.Context, record *TaskRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *taskRepo) SetDone(ctx context.Context, id int, isDone bool) (*TaskRecord, error) {
	var record TaskRecord
	err := r.db.WithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task %d: %w", id, err)
	}

	record.IsDone = isDone
	if err := r.db.WithContext(ctx).Model(&record).Update("is_done", isDone).Error; err != nil {
		return nil, fmt.Errorf("failed to update task %d: %w", id, err)
	}
	return &record, nil
}

func (r *taskRepo) Delete(ctx context.Context, id int) error {
	result := r.db.WithContext(ctx).Delete(&TaskRecord{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return errTaskNotFound
	}
	return nil
}
