package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"classwork-chatbot/internal/ai"
	"classwork-chatbot/internal/cache"
	"classwork-chatbot/internal/repository"
)

var (
	ErrNoQuestion = errors.New("no question provided")
	ErrUpstream   = errors.New("chat completion failed")
)

type ChatService struct {
	fileRepo        *repository.UploadedFileRepository
	contexts        ContextStore
	completer       ai.ChatCompleter
	logger          *zap.Logger
	maxHistory      int
	maxContextChars int
}

type AskInput struct {
	Question string
	FileID   *uint
	History  []ai.ChatMessage
}

type AskResult struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	FileUsed *string `json:"file_used"`
}

// NewChatService wires the completion backend. maxHistory and
// maxContextChars of 0 mean no limit.
func NewChatService(
	fileRepo *repository.UploadedFileRepository,
	contexts ContextStore,
	completer ai.ChatCompleter,
	logger *zap.Logger,
	maxHistory int,
	maxContextChars int,
) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		fileRepo:        fileRepo,
		contexts:        contexts,
		completer:       completer,
		logger:          logger,
		maxHistory:      maxHistory,
		maxContextChars: maxContextChars,
	}
}

func (s *ChatService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrNoQuestion
	}

	doc := s.resolveContext(ctx, input.FileID)
	messages := s.buildMessages(doc, input.History, question)

	answer, err := s.completer.Complete(ctx, messages)
	if err != nil {
		s.logger.Error("chat completion failed", zap.Int("messages", len(messages)), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	result := &AskResult{
		Question: input.Question,
		Answer:   answer,
	}
	if doc != nil {
		filename := doc.Filename
		result.FileUsed = &filename
	}
	return result, nil
}

// resolveContext returns nil when fileID is absent, unknown or has no text.
func (s *ChatService) resolveContext(ctx context.Context, fileID *uint) *cache.DocumentContext {
	if fileID == nil || *fileID == 0 {
		return nil
	}

	if s.contexts != nil {
		doc, hit, err := s.contexts.Get(ctx, *fileID)
		if err != nil {
			s.logger.Warn("read document context failed", zap.Uint("file_id", *fileID), zap.Error(err))
		} else if hit {
			return doc
		}
	}

	file, err := s.fileRepo.GetByID(*fileID)
	if err != nil {
		s.logger.Warn("load context file failed", zap.Uint("file_id", *fileID), zap.Error(err))
		return nil
	}
	if file == nil || !file.HasText() {
		return nil
	}

	doc := &cache.DocumentContext{
		FileID:   file.ID,
		Filename: file.OriginalFilename,
		Text:     *file.ExtractedText,
	}
	if s.contexts != nil {
		if err := s.contexts.Set(ctx, *doc); err != nil {
			s.logger.Warn("cache document context failed", zap.Uint("file_id", file.ID), zap.Error(err))
		}
	}
	return doc
}

func (s *ChatService) buildMessages(doc *cache.DocumentContext, history []ai.ChatMessage, question string) []ai.ChatMessage {
	turns := filterHistory(history)
	if s.maxHistory > 0 && len(turns) > s.maxHistory {
		turns = turns[len(turns)-s.maxHistory:]
	}

	messages := make([]ai.ChatMessage, 0, len(turns)+2)
	if doc != nil {
		messages = append(messages, ai.ChatMessage{
			Role:    ai.RoleSystem,
			Content: contextPrompt(doc.Filename, truncate(doc.Text, s.maxContextChars)),
		})
	}
	messages = append(messages, turns...)
	messages = append(messages, ai.ChatMessage{Role: ai.RoleUser, Content: question})
	return messages
}

func contextPrompt(filename, text string) string {
	return fmt.Sprintf(
		"Context from %s:\n%s\n\nAnswer the question concisely using this context when it is relevant.",
		filename, text,
	)
}

// filterHistory keeps user and assistant turns with content; caller system
// turns are dropped.
func filterHistory(history []ai.ChatMessage) []ai.ChatMessage {
	out := make([]ai.ChatMessage, 0, len(history))
	for _, m := range history {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != ai.RoleUser && role != ai.RoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, ai.ChatMessage{Role: role, Content: m.Content})
	}
	return out
}
