package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/healthchat/backend/internal/config"
	"github.com/healthchat/backend/internal/logger"
	"github.com/healthchat/backend/internal/rag"
)

const embeddingTTL = 24 * time.Hour

// EmbeddingCache keeps query embeddings in Redis so repeated retrieval
// queries skip the embedding endpoint. A nil cache is valid and caches
// nothing.
type EmbeddingCache struct {
	client *redis.Client
	log    *slog.Logger
}

// NewEmbeddingCache connects to Redis. Returns nil (cache disabled) when no
// host is configured or the server is unreachable; retrieval works without it.
func NewEmbeddingCache(ctx context.Context, cfg config.RedisConfig) *EmbeddingCache {
	if cfg.Host == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Host + ":" + cfg.Port,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, embedding cache disabled", "error", err)
		return nil
	}
	return &EmbeddingCache{
		client: client,
		log:    logger.With("component", "embedding-cache"),
	}
}

func embeddingKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + hex.EncodeToString(sum[:])
}

// Get returns the cached embedding for the text, nil on miss or error.
func (c *EmbeddingCache) Get(ctx context.Context, text string) []float32 {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, embeddingKey(text)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("embedding cache read failed", "error", err)
		}
		return nil
	}
	return rag.DecodeVector(raw)
}

// Put stores the embedding with a TTL. Errors are logged and swallowed; the
// cache is best-effort.
func (c *EmbeddingCache) Put(ctx context.Context, text string, vec []float32) {
	if c == nil || len(vec) == 0 {
		return
	}
	if err := c.client.Set(ctx, embeddingKey(text), rag.EncodeVector(vec), embeddingTTL).Err(); err != nil {
		c.log.Warn("embedding cache write failed", "error", err)
	}
}

// Close releases the underlying connection.
func (c *EmbeddingCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
