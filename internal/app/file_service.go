package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"go.uber.org/zap"

	"classwork-chatbot/internal/cache"
	"classwork-chatbot/internal/model"
	"classwork-chatbot/internal/pkg/docparse"
	"classwork-chatbot/internal/repository"
	"classwork-chatbot/internal/storage"
)

var (
	ErrNoFile          = errors.New("no file provided")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileNotFound    = errors.New("file not found")
)

const maxExtractionErrorLen = 1000

// EventPublisher announces completed uploads and deletions.
type EventPublisher interface {
	Publish(ctx context.Context, event model.FileEvent) error
}

// ContextStore caches the text a chat prompt needs for one document.
type ContextStore interface {
	Get(ctx context.Context, fileID uint) (*cache.DocumentContext, bool, error)
	Set(ctx context.Context, doc cache.DocumentContext) error
	Delete(ctx context.Context, fileID uint) error
}

type FileService struct {
	fileRepo  *repository.UploadedFileRepository
	store     storage.BlobStore
	contexts  ContextStore
	publisher EventPublisher
	logger    *zap.Logger
	maxBytes  int64
	now       func() time.Time
}

type UploadInput struct {
	UserID     uint
	File       *multipart.FileHeader
	CourseName string
}

func NewFileService(
	fileRepo *repository.UploadedFileRepository,
	store storage.BlobStore,
	contexts ContextStore,
	publisher EventPublisher,
	logger *zap.Logger,
	maxBytes int64,
) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{
		fileRepo:  fileRepo,
		store:     store,
		contexts:  contexts,
		publisher: publisher,
		logger:    logger,
		maxBytes:  maxBytes,
		now:       time.Now,
	}
}

// Upload stores the document, records it and extracts its text inline.
// A failed extraction is recorded on the file and does not fail the upload.
func (s *FileService) Upload(ctx context.Context, input UploadInput) (*model.UploadedFile, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	if input.File == nil {
		return nil, ErrNoFile
	}
	fileType, ok := docparse.Classify(input.File.Filename)
	if !ok {
		return nil, ErrUnsupportedType
	}
	if s.maxBytes > 0 && input.File.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	src, err := input.File.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload failed: %w", err)
	}
	defer src.Close()

	now := s.now()
	key := storage.ObjectKey(now, input.File.Filename)
	if err := s.store.Put(ctx, key, src, input.File.Size, input.File.Header.Get("Content-Type")); err != nil {
		return nil, fmt.Errorf("store upload failed: %w", err)
	}

	file := &model.UploadedFile{
		UserID:           input.UserID,
		StorageKey:       key,
		FileType:         string(fileType),
		OriginalFilename: input.File.Filename,
		CourseName:       strings.TrimSpace(input.CourseName),
		ExtractionStatus: model.ExtractionPending,
		UploadedAt:       now,
	}
	if err := s.fileRepo.Create(file); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("remove orphaned blob failed", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	s.extract(ctx, file, fileType)
	if err := s.fileRepo.SaveExtraction(file); err != nil {
		return nil, err
	}

	s.publish(ctx, model.FileEventUploaded, file)
	return file, nil
}

func (s *FileService) extract(ctx context.Context, file *model.UploadedFile, fileType docparse.FileType) {
	data, err := s.readBlob(ctx, file.StorageKey)
	var res docparse.Result
	if err != nil {
		res = docparse.Result{Err: err}
	} else {
		res = docparse.Extract(fileType, data)
	}

	if !res.OK() {
		file.ExtractedText = nil
		file.ExtractionStatus = model.ExtractionFailed
		file.ExtractionError = truncate(res.Err.Error(), maxExtractionErrorLen)
		s.logger.Warn("document extraction failed",
			zap.Uint("file_id", file.ID),
			zap.String("file_type", file.FileType),
			zap.String("result", res.Marker()),
		)
		return
	}

	text := res.Text
	file.ExtractedText = &text
	file.ExtractionStatus = model.ExtractionOK
	file.ExtractionError = ""
}

func (s *FileService) readBlob(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r := io.Reader(rc)
	if s.maxBytes > 0 {
		r = io.LimitReader(rc, s.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read blob failed: %w", err)
	}
	return data, nil
}

func (s *FileService) ListMine(userID uint) ([]model.UploadedFile, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.fileRepo.ListByUserID(userID)
}

// Catalog lists documents across all users so students can pick a file to chat about.
func (s *FileService) Catalog(courseName string) ([]model.UploadedFile, error) {
	return s.fileRepo.List(strings.TrimSpace(courseName))
}

// Delete removes a file the user owns. Files of other users look absent.
func (s *FileService) Delete(ctx context.Context, userID, fileID uint) error {
	if userID == 0 || fileID == 0 {
		return ErrFileNotFound
	}
	file, err := s.fileRepo.GetByIDAndUserID(fileID, userID)
	if err != nil {
		return err
	}
	if file == nil {
		return ErrFileNotFound
	}

	if err := s.store.Delete(ctx, file.StorageKey); err != nil {
		return err
	}
	if err := s.fileRepo.DeleteByIDAndUserID(fileID, userID); err != nil {
		return err
	}
	if s.contexts != nil {
		if err := s.contexts.Delete(ctx, fileID); err != nil {
			s.logger.Warn("evict document context failed", zap.Uint("file_id", fileID), zap.Error(err))
		}
	}

	s.publish(ctx, model.FileEventDeleted, file)
	return nil
}

func (s *FileService) publish(ctx context.Context, eventType string, file *model.UploadedFile) {
	if s.publisher == nil {
		return
	}
	event := model.FileEvent{
		Type:     eventType,
		FileID:   file.ID,
		UserID:   file.UserID,
		Filename: file.OriginalFilename,
		At:       s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish file event failed",
			zap.String("type", eventType),
			zap.Uint("file_id", file.ID),
			zap.Error(err),
		)
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
