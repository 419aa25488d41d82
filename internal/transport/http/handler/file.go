package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"classwork-chatbot/internal/app"
	"classwork-chatbot/internal/model"
	"classwork-chatbot/internal/transport/http/middleware"
	"classwork-chatbot/internal/transport/http/response"
)

// multipartOverhead leaves room for form fields and part headers around the file.
const multipartOverhead = 1 << 20

type FileHandler struct {
	fileService *app.FileService
	maxBytes    int64
}

type fileView struct {
	ID         uint      `json:"id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	CourseName string    `json:"course_name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func NewFileHandler(fileService *app.FileService, maxBytes int64) *FileHandler {
	return &FileHandler{fileService: fileService, maxBytes: maxBytes}
}

func (h *FileHandler) Upload(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Must be logged in")
		return
	}

	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			response.Error(c, http.StatusBadRequest, response.CodeFileTooLarge, "File too large")
			return
		}
		header = nil
	}

	file, err := h.fileService.Upload(c.Request.Context(), app.UploadInput{
		UserID:     userID,
		File:       header,
		CourseName: c.PostForm("course_name"),
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoFile):
			response.Error(c, http.StatusBadRequest, response.CodeNoFile, "No file provided")
		case errors.Is(err, app.ErrFileTooLarge):
			response.Error(c, http.StatusBadRequest, response.CodeFileTooLarge, "File too large")
		case errors.Is(err, app.ErrUnsupportedType):
			response.Error(c, http.StatusBadRequest, response.CodeUnsupportedType, "Unsupported file type")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed")
		}
		return
	}

	response.OK(c, gin.H{
		"message":           "File uploaded successfully",
		"file_id":           file.ID,
		"filename":          file.OriginalFilename,
		"file_type":         file.FileType,
		"course_name":       file.CourseName,
		"extraction_status": file.ExtractionStatus,
	})
}

func (h *FileHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Must be logged in")
		return
	}

	files, err := h.fileService.ListMine(userID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list files failed")
		return
	}
	response.OK(c, gin.H{"files": toFileViews(files)})
}

func (h *FileHandler) Catalog(c *gin.Context) {
	files, err := h.fileService.Catalog(c.Query("course_name"))
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, gin.H{"files": toFileViews(files)})
}

func (h *FileHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Must be logged in")
		return
	}

	fileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || fileID == 0 {
		response.Error(c, http.StatusNotFound, response.CodeFileNotFound, "File not found")
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), userID, uint(fileID)); err != nil {
		if errors.Is(err, app.ErrFileNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeFileNotFound, "File not found")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete file failed")
		return
	}
	response.OK(c, gin.H{"message": "File deleted"})
}

func toFileViews(files []model.UploadedFile) []fileView {
	out := make([]fileView, 0, len(files))
	for _, f := range files {
		out = append(out, fileView{
			ID:         f.ID,
			Filename:   f.OriginalFilename,
			FileType:   f.FileType,
			CourseName: f.CourseName,
			UploadedAt: f.UploadedAt,
		})
	}
	return out
}
