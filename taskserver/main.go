package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ziyixi/tasklist/taskstore"
	"github.com/ziyixi/tasklist/utils"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

var (
	port         = flag.Int("port", 8080, "The HTTP port of the task service")
	healthPort   = flag.Int("health-port", 50054, "The gRPC health check port, 0 to disable")
	databasePath = flag.String("database-path", "tasks.db", "Path to the SQLite database file")
	GitCommit    string
)

func repoMiddleware(repo *taskRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(utils.KeyTaskRepo, repo)
		c.Next()
	}
}

func setupRouter(repo *taskRepo) *gin.Engine {
	app := gin.New()
	app.Use(gin.Recovery(), requestLogger())

	tasks := app.Group(taskstore.TasksPath)
	tasks.Use(repoMiddleware(repo))
	tasks.GET("", HandleListTasks)
	tasks.POST("", HandleCreateTask)
	tasks.PATCH("", HandleUpdateTask)
	tasks.DELETE("", HandleDeleteTask)

	return app
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"request_id": c.GetHeader("X-Request-Id"),
			"duration":   time.Since(start),
		}).Info("request")
	}
}

func main() {
	log.Infof("Server Starting time: %s", time.Now().Format(time.RFC3339))
	flag.Parse()

	db, err := openDatabase(*databasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	repo := &taskRepo{db: db}
	log.Infof("Database initialized at %s", *databasePath)

	if *healthPort > 0 {
		go func() {
			log.Infof("Health server is running on port %d", *healthPort)
			if err := utils.StartGRPCServer(*healthPort, nil); err != nil {
				log.Fatalf("health server error: %v", err)
			}
		}()
	}

	gin.SetMode(gin.ReleaseMode)
	app := setupRouter(repo)
	listenAddr := fmt.Sprintf(":%d", *port)
	log.Infof("Git commit: %s", GitCommit)
	log.Infof("Gin has started in %s mode on %s", gin.Mode(), listenAddr)

	if err := app.Run(listenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
