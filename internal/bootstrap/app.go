package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"reportai-backend/internal/analysis"
	"reportai-backend/internal/llm"
	"reportai-backend/internal/llm/openai"
	"reportai-backend/internal/queue"
	"reportai-backend/internal/reports"
	"reportai-backend/internal/services/health"
	"reportai-backend/internal/shared/config"
	"reportai-backend/internal/shared/server"
	"reportai-backend/internal/shared/server/middleware"
	"reportai-backend/internal/shared/storage/db"
	"reportai-backend/internal/shared/storage/object"
	localstore "reportai-backend/internal/shared/storage/object/local"
	s3store "reportai-backend/internal/shared/storage/object/s3"
	"reportai-backend/internal/shared/telemetry"
	"reportai-backend/internal/workerproc"
	"reportai-backend/report/service"
)

const (
	dbConnectAttempts = 3
	dbConnectBackoff  = 500 * time.Millisecond
	llmRetryBaseDelay = 500 * time.Millisecond
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Store          object.ObjectStore
	Repo           reports.Repo
	LLM            llm.Client
	Analyzer       *analysis.Analyzer
	Generator      *service.Generator
	ReportsService *reports.Service
	ReportsHandler *reports.Handler
	Queue          queue.Client
	// LocalQueue is set when no SQS queue is configured; StartLocalWorkers
	// drains it in-process.
	LocalQueue *queue.MemoryQueue
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient, err := NewLLMClient(cfg)
	if err != nil {
		return nil, err
	}

	jobQueue, localQueue, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var repo reports.Repo
	if sqlDB != nil {
		repo = &reports.PGRepo{DB: sqlDB}
	} else {
		repo = reports.NewMemoryRepo()
	}

	analyzer := analysis.NewAnalyzer(llmClient)
	generator := service.NewGenerator(store, cfg.OutputPrefix)
	svc := &reports.Service{
		Store:          store,
		Repo:           repo,
		Analyzer:       analyzer,
		Generator:      generator,
		Queue:          jobQueue,
		UploadPrefix:   cfg.UploadPrefix,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	handler := reports.NewHandler(svc)

	app := &App{
		Config:         cfg,
		DB:             sqlDB,
		Store:          store,
		Repo:           repo,
		LLM:            llmClient,
		Analyzer:       analyzer,
		Generator:      generator,
		ReportsService: svc,
		ReportsHandler: handler,
		Queue:          jobQueue,
		LocalQueue:     localQueue,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:         cfg,
		ReportsHandler: handler,
		Health:         health.NewService(),
		Limiter:        middleware.NewRateLimiter(nil),
	})

	telemetry.Info("bootstrap_ready", map[string]any{
		"env":          cfg.Env,
		"object_store": cfg.ObjectStoreType,
		"llm_provider": cfg.LLMProvider,
		"database":     sqlDB != nil,
		"queue":        queueKind(localQueue),
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap_memory_repo", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.ConnectWithRetry(ctx, cfg.DatabaseURL, opts, dbConnectAttempts, dbConnectBackoff)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap_memory_repo", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// StartLocalWorkers consumes the in-process render queue until ctx is done.
// It is a no-op when jobs go to SQS.
func (a *App) StartLocalWorkers(ctx context.Context) {
	if a == nil || a.LocalQueue == nil {
		return
	}
	workers := a.Config.WorkerCount
	go a.LocalQueue.Consume(ctx, workers, func(ctx context.Context, body string) error {
		err := workerproc.HandleMessage(ctx, a.ReportsService, body)
		if err != nil {
			telemetry.Error("worker.render.failed", map[string]any{
				"queue": "memory",
				"error": err.Error(),
			})
		}
		return err
	})
	telemetry.Info("worker.render.started", map[string]any{"queue": "memory", "concurrency": workers})
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, *queue.MemoryQueue, error) {
	if cfg.QueueURL != "" {
		client, err := queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.QueueURL)
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	}
	local := queue.NewMemoryQueue(cfg.QueueBuffer)
	return local, local, nil
}

func queueKind(local *queue.MemoryQueue) string {
	if local != nil {
		return "memory"
	}
	return "sqs"
}

// NewLLMClient returns the configured analysis client. Providers other than
// "openai" get the offline placeholder.
func NewLLMClient(cfg config.Config) (llm.Client, error) {
	if cfg.LLMProvider != "openai" {
		return llm.PlaceholderClient{}, nil
	}
	client, err := openai.NewClient(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMBaseURL, cfg.LLMTimeout)
	if err != nil {
		return nil, err
	}
	return llm.WithRetry(client, cfg.LLMMaxAttempts, llmRetryBaseDelay), nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
