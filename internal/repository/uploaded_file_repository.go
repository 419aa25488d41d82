package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"classwork-chatbot/internal/model"
)

type UploadedFileRepository struct {
	db *gorm.DB
}

func NewUploadedFileRepository(db *gorm.DB) *UploadedFileRepository {
	return &UploadedFileRepository{db: db}
}

func (r *UploadedFileRepository) Create(file *model.UploadedFile) error {
	if err := r.db.Create(file).Error; err != nil {
		return fmt.Errorf("create uploaded file failed: %w", err)
	}
	return nil
}

// SaveExtraction attaches the extraction outcome to an existing record.
func (r *UploadedFileRepository) SaveExtraction(file *model.UploadedFile) error {
	err := r.db.Model(&model.UploadedFile{}).Where("id = ?", file.ID).Updates(map[string]interface{}{
		"extracted_text":    file.ExtractedText,
		"extraction_status": file.ExtractionStatus,
		"extraction_error":  file.ExtractionError,
	}).Error
	if err != nil {
		return fmt.Errorf("save extraction failed: %w", err)
	}
	return nil
}

// ListByUserID returns the user's files newest first, without extracted text.
func (r *UploadedFileRepository) ListByUserID(userID uint) ([]model.UploadedFile, error) {
	var files []model.UploadedFile
	err := r.listQuery().Where("user_id = ?", userID).Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("list uploaded files failed: %w", err)
	}
	return files, nil
}

// List returns every file newest first; courseName narrows the result when set.
func (r *UploadedFileRepository) List(courseName string) ([]model.UploadedFile, error) {
	q := r.listQuery()
	if courseName != "" {
		q = q.Where("course_name = ?", courseName)
	}
	var files []model.UploadedFile
	if err := q.Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list catalog files failed: %w", err)
	}
	return files, nil
}

func (r *UploadedFileRepository) GetByID(id uint) (*model.UploadedFile, error) {
	var file model.UploadedFile
	if err := r.db.First(&file, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get uploaded file failed: %w", err)
	}
	return &file, nil
}

func (r *UploadedFileRepository) GetByIDAndUserID(id, userID uint) (*model.UploadedFile, error) {
	var file model.UploadedFile
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get uploaded file failed: %w", err)
	}
	return &file, nil
}

func (r *UploadedFileRepository) DeleteByIDAndUserID(id, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.UploadedFile{}).Error; err != nil {
		return fmt.Errorf("delete uploaded file failed: %w", err)
	}
	return nil
}

func (r *UploadedFileRepository) listQuery() *gorm.DB {
	return r.db.Model(&model.UploadedFile{}).
		Omit("extracted_text").
		Order("uploaded_at DESC").
		Order("id DESC")
}
