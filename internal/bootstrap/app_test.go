package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"classwork-chatbot/internal/config"
	"classwork-chatbot/internal/storage"
)

func TestNewBlobStoreLocal(t *testing.T) {
	store, err := NewBlobStore(context.Background(), config.StorageConfig{
		Driver:    "local",
		LocalPath: filepath.Join(t.TempDir(), "media"),
	})
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}
	if _, ok := store.(*storage.LocalStore); !ok {
		t.Fatalf("expected *storage.LocalStore, got %T", store)
	}
}

func TestNewBlobStoreUnknownDriver(t *testing.T) {
	if _, err := NewBlobStore(context.Background(), config.StorageConfig{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver to fail")
	}
}

func TestCloseZeroApp(t *testing.T) {
	if err := (&App{}).Close(); err != nil {
		t.Fatalf("close empty app: %v", err)
	}
}
