package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"classwork-chatbot/internal/config"
)

func TestNewPingsServer(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := New(context.Background(), config.RedisConfig{Addr: srv.Addr()})
	if err != nil {
		t.Fatalf("new redis client: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
}

func TestNewFailsWhenServerDown(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	if _, err := New(context.Background(), config.RedisConfig{Addr: addr}); err == nil {
		t.Fatalf("expected ping failure against closed server")
	}
}
