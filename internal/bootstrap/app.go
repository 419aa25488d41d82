package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"classwork-chatbot/internal/ai"
	"classwork-chatbot/internal/cache"
	"classwork-chatbot/internal/config"
	"classwork-chatbot/internal/platform/database"
	rabbitmqClient "classwork-chatbot/internal/platform/rabbitmq"
	redisClient "classwork-chatbot/internal/platform/redis"
	"classwork-chatbot/internal/repository"
	"classwork-chatbot/internal/storage"
	"classwork-chatbot/internal/worker"
)

// App holds the long-lived dependencies shared by the HTTP layer.
// MQConn, Publisher and FileWorker are nil when RabbitMQ is not configured.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	DB         *gorm.DB
	Redis      *redis.Client
	MQConn     *amqp.Connection
	Store      storage.BlobStore
	Publisher  *rabbitmqClient.FilePublisher
	Completer  ai.ChatCompleter
	FileWorker *worker.FileEventWorker

	StartedAt time.Time
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{
		Config:    cfg,
		Logger:    logger,
		StartedAt: time.Now(),
	}

	db, err := database.New(ctx, cfg.Database.Driver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	app.DB = db
	if err := database.Migrate(db); err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Redis, err = redisClient.New(ctx, cfg.Redis)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Store, err = NewBlobStore(ctx, cfg.Storage)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Completer, err = ai.NewOpenAICompatibleClient(ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLMTimeout(),
	})
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	if cfg.RabbitMQ.URL == "" {
		logger.Info("rabbitmq url empty, file events disabled")
		return app, nil
	}

	app.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.FileEventQueue)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Publisher = rabbitmqClient.NewFilePublisher(app.MQConn, cfg.RabbitMQ.FileEventQueue)
	app.FileWorker = worker.NewFileEventWorker(
		app.MQConn,
		repository.NewUploadedFileRepository(db),
		cache.NewContextCache(app.Redis, cfg.ContextTTL()),
		logger.Named("file-worker"),
		cfg.RabbitMQ.FileEventQueue,
	)
	if err := app.FileWorker.Start(ctx); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("start file event worker failed: %w", err)
	}

	return app, nil
}

// NewBlobStore picks the storage backend named by cfg.Driver.
func NewBlobStore(ctx context.Context, cfg config.StorageConfig) (storage.BlobStore, error) {
	switch cfg.Driver {
	case "local":
		return storage.NewLocalStore(cfg.LocalPath)
	case "minio":
		return storage.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.FileWorker != nil {
		a.FileWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			closeErr = err
		}
	}
	return closeErr
}
