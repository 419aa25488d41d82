package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"classwork-chatbot/internal/cache"
	"classwork-chatbot/internal/model"
	"classwork-chatbot/internal/platform/rabbitmq"
	"classwork-chatbot/internal/repository"
)

type ContextWriter interface {
	Set(ctx context.Context, doc cache.DocumentContext) error
	Delete(ctx context.Context, fileID uint) error
}

// FileEventWorker keeps the document context cache in step with uploads and
// deletions announced on the file event queue.
type FileEventWorker struct {
	conn      *amqp.Connection
	fileRepo  *repository.UploadedFileRepository
	contexts  ContextWriter
	logger    *zap.Logger
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewFileEventWorker(
	conn *amqp.Connection,
	fileRepo *repository.UploadedFileRepository,
	contexts ContextWriter,
	logger *zap.Logger,
	queueName string,
) *FileEventWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileEventWorker{
		conn:      conn,
		fileRepo:  fileRepo,
		contexts:  contexts,
		logger:    logger,
		queueName: queueName,
	}
}

func (w *FileEventWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.Handle(workerCtx, d.Body); err != nil {
					w.logger.Warn("file event dropped", zap.String("type", d.Type), zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	w.logger.Info("file event worker started", zap.String("queue", w.queueName))
	return nil
}

// Handle applies one encoded FileEvent to the context cache.
func (w *FileEventWorker) Handle(ctx context.Context, body []byte) error {
	var event model.FileEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode file event failed: %w", err)
	}
	if event.FileID == 0 {
		return fmt.Errorf("file event without file id")
	}

	switch event.Type {
	case model.FileEventUploaded:
		return w.warm(ctx, event.FileID)
	case model.FileEventDeleted:
		return w.contexts.Delete(ctx, event.FileID)
	default:
		return fmt.Errorf("unknown file event type %q", event.Type)
	}
}

func (w *FileEventWorker) warm(ctx context.Context, fileID uint) error {
	file, err := w.fileRepo.GetByID(fileID)
	if err != nil {
		return err
	}
	// deleted again before the event arrived, or nothing to cache
	if file == nil || !file.HasText() {
		return nil
	}
	return w.contexts.Set(ctx, cache.DocumentContext{
		FileID:   file.ID,
		Filename: file.OriginalFilename,
		Text:     *file.ExtractedText,
	})
}

func (w *FileEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
