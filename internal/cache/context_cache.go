package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// DocumentContext is the slice of an UploadedFile the chat prompt needs.
type DocumentContext struct {
	FileID   uint   `json:"file_id"`
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

type ContextCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewContextCache(client *redisv9.Client, ttl time.Duration) *ContextCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ContextCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *ContextCache) Get(ctx context.Context, fileID uint) (*DocumentContext, bool, error) {
	raw, err := c.client.Get(ctx, c.key(fileID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get document context failed: %w", err)
	}

	var doc DocumentContext
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached document context failed: %w", err)
	}
	return &doc, true, nil
}

func (c *ContextCache) Set(ctx context.Context, doc DocumentContext) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document context failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(doc.FileID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set document context failed: %w", err)
	}
	return nil
}

func (c *ContextCache) Delete(ctx context.Context, fileID uint) error {
	if err := c.client.Del(ctx, c.key(fileID)).Err(); err != nil {
		return fmt.Errorf("redis delete document context failed: %w", err)
	}
	return nil
}

func (c *ContextCache) key(fileID uint) string {
	return fmt.Sprintf("classwork:context:%d", fileID)
}
