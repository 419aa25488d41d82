package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"classwork-chatbot/internal/ai"
	"classwork-chatbot/internal/app"
	"classwork-chatbot/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type ChatRequest struct {
	Question    string           `json:"question"`
	FileID      json.RawMessage  `json:"file_id"`
	ChatHistory []ai.ChatMessage `json:"chat_history"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Ask(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.Ask(c.Request.Context(), app.AskInput{
		Question: req.Question,
		FileID:   parseFileID(req.FileID),
		History:  req.ChatHistory,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoQuestion):
			response.Error(c, http.StatusBadRequest, response.CodeNoQuestion, "No question provided")
		case errors.Is(err, app.ErrUpstream):
			response.Error(c, http.StatusInternalServerError, response.CodeUpstream, err.Error())
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "chat failed")
		}
		return
	}

	response.OK(c, result)
}

// parseFileID accepts a positive integer or a numeric string. Anything else
// is treated as no file so the question is still answered.
func parseFileID(raw json.RawMessage) *uint {
	value := strings.TrimSpace(string(raw))
	if value == "" || value == "null" {
		return nil
	}
	if strings.HasPrefix(value, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		value = strings.TrimSpace(s)
	}
	id, err := strconv.ParseUint(value, 10, 0)
	if err != nil || id == 0 {
		return nil
	}
	fileID := uint(id)
	return &fileID
}
