package model

import "time"

const (
	ExtractionPending = "pending"
	ExtractionOK      = "ok"
	ExtractionFailed  = "failed"
)

// UploadedFile is a stored lecture document and the text extracted from it.
type UploadedFile struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	StorageKey       string    `gorm:"size:512;not null" json:"-"`
	FileType         string    `gorm:"size:10;not null" json:"file_type"`
	OriginalFilename string    `gorm:"size:255;not null" json:"filename"`
	CourseName       string    `gorm:"size:100;index" json:"course_name"`
	ExtractedText    *string   `json:"-"`
	ExtractionStatus string    `gorm:"size:10;not null;default:pending" json:"extraction_status"`
	ExtractionError  string    `gorm:"size:1024" json:"extraction_error,omitempty"`
	UploadedAt       time.Time `gorm:"not null;index" json:"uploaded_at"`
}

// HasText reports whether extraction succeeded and produced text.
func (f *UploadedFile) HasText() bool {
	return f.ExtractionStatus == ExtractionOK && f.ExtractedText != nil && *f.ExtractedText != ""
}
