package model

import "time"

const (
	FileEventUploaded = "file.uploaded"
	FileEventDeleted  = "file.deleted"
)

// FileEvent is published after an upload or deletion completes.
type FileEvent struct {
	Type     string    `json:"type"`
	FileID   uint      `json:"file_id"`
	UserID   uint      `json:"user_id"`
	Filename string    `json:"filename"`
	At       time.Time `json:"at"`
}
