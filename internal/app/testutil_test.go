package app

import (
	"archive/zip"
	"bytes"
	"context"
	"mime/multipart"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"classwork-chatbot/internal/ai"
	"classwork-chatbot/internal/cache"
	"classwork-chatbot/internal/model"
	"classwork-chatbot/internal/platform/database"
	"classwork-chatbot/internal/storage"
)

type testEnv struct {
	db        *gorm.DB
	redis     *miniredis.Miniredis
	contexts  *cache.ContextCache
	blocklist *cache.TokenBlocklist
	store     *storage.LocalStore
	storeDir  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	db, err := database.New(context.Background(), "sqlite", filepath.Join(dir, "app.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	storeDir := filepath.Join(dir, "media")
	store, err := storage.NewLocalStore(storeDir)
	if err != nil {
		t.Fatalf("local store: %v", err)
	}

	return &testEnv{
		db:        db,
		redis:     srv,
		contexts:  cache.NewContextCache(client, time.Minute),
		blocklist: cache.NewTokenBlocklist(client),
		store:     store,
		storeDir:  storeDir,
	}
}

type fakeCompleter struct {
	mu       sync.Mutex
	answer   string
	err      error
	received [][]ai.ChatMessage
}

func (f *fakeCompleter) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeCompleter) last(t *testing.T) []ai.ChatMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.received) == 0 {
		t.Fatalf("completer was not called")
	}
	return f.received[len(f.received)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.FileEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event model.FileEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func docxWithParagraphs(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body string
	for _, p := range paragraphs {
		body += `<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document.xml: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body +
		`</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}
