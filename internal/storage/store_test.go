package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestObjectKeyIsDatePartitioned(t *testing.T) {
	now := time.Date(2026, 10, 6, 9, 0, 0, 0, time.UTC)
	key := ObjectKey(now, "Week 1/Intro.pdf")

	if !strings.HasPrefix(key, "uploads/2026/10/06/") {
		t.Fatalf("unexpected key prefix %q", key)
	}
	if !strings.HasSuffix(key, "_Intro.pdf") {
		t.Fatalf("expected sanitized filename suffix, got %q", key)
	}
	if ObjectKey(now, "Intro.pdf") == ObjectKey(now, "Intro.pdf") {
		t.Fatalf("expected unique keys for the same filename")
	}
}

func TestSafeFilename(t *testing.T) {
	cases := map[string]string{
		"lecture.pdf":          "lecture.pdf",
		"../../etc/passwd":     "passwd",
		`C:\Users\x\notes.doc`: "notes.doc",
		"  ":                   "document",
		"a?b*.docx":            "a_b_.docx",
	}
	for in, want := range cases {
		if got := safeFilename(in); got != want {
			t.Fatalf("safeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLocalStorePutOpenDelete(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	store, err := NewLocalStore(base)
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}

	key := "uploads/2026/10/06/abc_doc.pdf"
	if err := store.Put(ctx, key, strings.NewReader("%PDF-1.4"), 8, "application/pdf"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "uploads", "2026", "10", "06", "abc_doc.pdf")); err != nil {
		t.Fatalf("expected blob on disk: %v", err)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected blob content %q", data)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete of missing blob should succeed: %v", err)
	}
	if _, err := store.Open(ctx, key); err == nil {
		t.Fatalf("expected open after delete to fail")
	}
}

func TestLocalStoreKeepsKeysInsideBase(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	store, err := NewLocalStore(filepath.Join(base, "media"))
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}

	if err := store.Put(ctx, "../escape.txt", strings.NewReader("x"), 1, ""); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "escape.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected key to stay inside base dir")
	}
	if _, err := os.Stat(filepath.Join(base, "media", "escape.txt")); err != nil {
		t.Fatalf("expected blob inside base dir: %v", err)
	}

	if err := store.Put(ctx, "", strings.NewReader("x"), 1, ""); err == nil {
		t.Fatalf("expected empty key to fail")
	}
}
