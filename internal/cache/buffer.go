package cache

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"cambiacartas-api/internal/model"

	"github.com/redis/go-redis/v9"
)

// Buffer configuration
const (
	MaxFlushBatch = 200
	FlushTimeout  = 60 * time.Second
)

// FlushFunc is called to persist buffered catalog entries to the mirror.
type FlushFunc func(ctx context.Context, entries []model.CatalogEntry) error

// deleteIfUnchangedScript removes a buffered entry only when it still
// holds the value that was flushed, so a concurrent update during a slow
// flush is not lost.
var deleteIfUnchangedScript = redis.NewScript(`
	if redis.call("HGET", KEYS[1], ARGV[1]) == ARGV[2] then
		redis.call("HDEL", KEYS[1], ARGV[1])
		return 1
	else
		return 0
	end
`)

// RedisCardBuffer batches catalog upserts through Redis so the sync job
// never stalls on a slow mirror database (write-behind caching).
type RedisCardBuffer struct {
	client      *redis.Client
	flushFunc   FlushFunc
	flushTicker *time.Ticker
	stopFlush   chan struct{}
	stopOnce    sync.Once
	bufferKey   string
}

// RedisCardBufferConfig holds configuration for the card buffer.
type RedisCardBufferConfig struct {
	FlushInterval time.Duration
	KeyPrefix     string
}

// NewRedisCardBuffer creates a Redis-backed catalog upsert buffer on an
// existing client.
func NewRedisCardBuffer(client *redis.Client, cfg RedisCardBufferConfig, flushFunc FlushFunc) (*RedisCardBuffer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "cambiacartas:cards"
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 30 * time.Second
	}

	b := &RedisCardBuffer{
		client:      client,
		flushFunc:   flushFunc,
		flushTicker: time.NewTicker(cfg.FlushInterval),
		stopFlush:   make(chan struct{}),
		bufferKey:   keyPrefix + ":buffer",
	}

	go b.backgroundFlush()

	log.Printf("[RedisCardBuffer] Started - key:%s, flush:%v, batch:%d",
		b.bufferKey, cfg.FlushInterval, MaxFlushBatch)
	return b, nil
}

// Add buffers a catalog entry upsert in Redis.
func (b *RedisCardBuffer) Add(ctx context.Context, entry model.CatalogEntry) error {
	jsonData, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return b.client.HSet(ctx, b.bufferKey, entry.ID, jsonData).Err()
}

// Pending returns the number of buffered entries awaiting flush.
func (b *RedisCardBuffer) Pending(ctx context.Context) (int64, error) {
	return b.client.HLen(ctx, b.bufferKey).Result()
}

// Flush persists all buffered entries through the flush function and
// removes entries that were not modified meanwhile.
func (b *RedisCardBuffer) Flush(ctx context.Context) error {
	raw, err := b.client.HGetAll(ctx, b.bufferKey).Result()
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	entries := make([]model.CatalogEntry, 0, len(raw))
	payloads := make(map[string]string, len(raw))
	for id, data := range raw {
		var entry model.CatalogEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			log.Printf("[RedisCardBuffer] Dropping undecodable entry %s: %v", id, err)
			b.client.HDel(ctx, b.bufferKey, id)
			continue
		}
		entries = append(entries, entry)
		payloads[id] = data

		if len(entries) >= MaxFlushBatch {
			if err := b.flushBatch(ctx, entries, payloads); err != nil {
				return err
			}
			entries = entries[:0]
			payloads = make(map[string]string)
		}
	}

	if len(entries) > 0 {
		return b.flushBatch(ctx, entries, payloads)
	}
	return nil
}

func (b *RedisCardBuffer) flushBatch(ctx context.Context, entries []model.CatalogEntry, payloads map[string]string) error {
	if err := b.flushFunc(ctx, entries); err != nil {
		return err
	}

	for id, data := range payloads {
		if err := deleteIfUnchangedScript.Run(ctx, b.client, []string{b.bufferKey}, id, data).Err(); err != nil {
			log.Printf("[RedisCardBuffer] Failed to clear flushed entry %s: %v", id, err)
		}
	}
	return nil
}

func (b *RedisCardBuffer) backgroundFlush() {
	for {
		select {
		case <-b.flushTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), FlushTimeout)
			if err := b.Flush(ctx); err != nil {
				log.Printf("[RedisCardBuffer] Flush failed: %v", err)
			}
			cancel()
		case <-b.stopFlush:
			return
		}
	}
}

// Close stops the background flush and drains pending entries.
func (b *RedisCardBuffer) Close() error {
	var err error
	b.stopOnce.Do(func() {
		b.flushTicker.Stop()
		close(b.stopFlush)

		ctx, cancel := context.WithTimeout(context.Background(), FlushTimeout)
		defer cancel()
		err = b.Flush(ctx)
	})
	return err
}
