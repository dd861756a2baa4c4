package utils

// Key constants used throughout the application for context storage
const (
	// KeyTaskRepo is the gin context key for the task repository
	KeyTaskRepo = "taskRepo"
)
