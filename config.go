package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/ziyixi/tasklist/taskstore"
)

// Config holds all configuration parameters
type Config struct {
	APIURL             string
	HealthAddr         string
	HealthCheckTimeout int
	LogLevel           string
	LogFile            string
}

// loadConfig reads .env and the environment. Command line flags override
// these values.
func loadConfig() Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	timeout, err := strconv.Atoi(getEnv("TASKLIST_HEALTH_CHECK_TIMEOUT", "10"))
	if err != nil || timeout <= 0 {
		timeout = 10
	}

	return Config{
		APIURL:             getEnv("TASKLIST_API_URL", taskstore.DefaultBaseURL),
		HealthAddr:         getEnv("TASKLIST_HEALTH_ADDR", ""),
		HealthCheckTimeout: timeout,
		LogLevel:           getEnv("TASKLIST_LOG_LEVEL", "info"),
		LogFile:            getEnv("TASKLIST_LOG_FILE", "tasklist.log"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
