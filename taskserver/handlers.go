package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ziyixi/tasklist/taskstore"
	"github.com/ziyixi/tasklist/utils"
)

type updateTaskRequest struct {
	ID     *int  `json:"id"`
	IsDone *bool `json:"isDone"`
}

type deleteTaskRequest struct {
	ID *int `json:"id"`
}

// HandleListTasks answers GET /api/tasks with every task, newest first
func HandleListTasks(c *gin.Context) {
	repo := c.MustGet(utils.KeyTaskRepo).(*taskRepo)

	records, err := repo.List(c.Request.Context())
	if err != nil {
		log.Errorf("Failed to list tasks: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}

	tasks := make([]taskstore.Task, len(records))
	for i, record := range records {
		tasks[i] = record.toTask()
	}
	c.JSON(http.StatusOK, tasks)
}

// HandleCreateTask validates a draft and stores it as a new task
func HandleCreateTask(c *gin.Context) {
	repo := c.MustGet(utils.KeyTaskRepo).(*taskRepo)

	var draft taskstore.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body: " + err.Error()})
		return
	}
	record, err := recordFromDraft(draft)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := repo.Create(c.Request.Context(), record); err != nil {
		log.Errorf("Failed to create task: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}
	log.Infof("Created task %d in %s", record.ID, record.Category)
	c.JSON(http.StatusCreated, gin.H{"data": record.toTask()})
}

// HandleUpdateTask sets the done flag of one task
func HandleUpdateTask(c *gin.Context) {
	repo := c.MustGet(utils.KeyTaskRepo).(*taskRepo)

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body: " + err.Error()})
		return
	}
	if req.ID == nil || req.IsDone == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and isDone are required"})
		return
	}

	record, err := repo.SetDone(c.Request.Context(), *req.ID, *req.IsDone)
	if errors.Is(err, errTaskNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Errorf("Failed to update task %d: %v", *req.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record.toTask()})
}

// HandleDeleteTask removes one task
func HandleDeleteTask(c *gin.Context) {
	repo := c.MustGet(utils.KeyTaskRepo).(*taskRepo)

	var req deleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body: " + err.Error()})
		return
	}
	if req.ID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	err := repo.Delete(c.Request.Context(), *req.ID)
	if errors.Is(err, errTaskNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Errorf("Failed to delete task %d: %v", *req.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete task"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

// recordFromDraft validates a create request. An empty priority means
// medium and an empty deadline means none.
func recordFromDraft(draft taskstore.Draft) (*TaskRecord, error) {
	text := strings.TrimSpace(draft.Text)
	if text == "" {
		return nil, errors.New("text is empty")
	}
	if !draft.Category.Valid() {
		return nil, errors.New("unknown category: " + string(draft.Category))
	}
	priority := draft.Priority
	if priority == "" {
		priority = taskstore.PriorityMedium
	}
	if !priority.Valid() {
		return nil, errors.New("unknown priority: " + string(priority))
	}

	record := &TaskRecord{
		Text:     text,
		IsDone:   draft.IsDone,
		Category: string(draft.Category),
		Priority: string(priority),
	}
	if color := strings.TrimSpace(draft.Color); color != "" {
		record.Color = &color
	}
	if draft.Deadline != nil && *draft.Deadline != "" {
		deadline := *draft.Deadline
		if _, err := utils.ParseISODate(deadline); err != nil {
			return nil, errors.New("deadline must be YYYY-MM-DD")
		}
		record.Deadline = &deadline
	}
	return record, nil
}
