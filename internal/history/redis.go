package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"applytrack/internal/config"
	"applytrack/internal/logging"
	"applytrack/pkg/models"
)

// RedisHistory stores each resume's history as one JSON document with a TTL
type RedisHistory struct {
	client     *redis.Client
	ttl        time.Duration
	maxEntries int
	logger     logging.Logger
}

// NewRedisHistory connects to the configured Redis instance
func NewRedisHistory(cfg *config.Config) (*RedisHistory, error) {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	opts.DialTimeout = cfg.Redis.Timeout
	opts.ReadTimeout = cfg.Redis.Timeout
	opts.WriteTimeout = cfg.Redis.Timeout

	return &RedisHistory{
		client:     redis.NewClient(opts),
		ttl:        cfg.Redis.HistoryTTL,
		maxEntries: cfg.Redis.MaxEntries,
		logger:     logging.GetGlobalLogger().WithField("component", "history"),
	}, nil
}

// Ping tests the Redis connection
func (r *RedisHistory) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisHistory) Close() error {
	return r.client.Close()
}

// historyKey generates the Redis key for a resume's history
func historyKey(resumeID string) string {
	return fmt.Sprintf("analysis:resume:%s", resumeID)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisHistory) load(ctx context.Context, g getter, resumeID string) (*models.AnalysisHistory, bool, error) {
	raw, err := g.Get(ctx, historyKey(resumeID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get analysis history: %w", err)
	}

	var h models.AnalysisHistory
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal analysis history: %w", err)
	}
	if h.Entries == nil {
		h.Entries = []models.AnalysisHistoryEntry{}
	}
	return &h, true, nil
}

// Record appends an entry to the resume's history and refreshes its TTL.
// The read-modify-write runs under WATCH so concurrent writers retry instead of losing entries.
func (r *RedisHistory) Record(ctx context.Context, resumeID string, entry models.AnalysisHistoryEntry) error {
	key := historyKey(resumeID)

	txf := func(tx *redis.Tx) error {
		h, found, err := r.load(ctx, tx, resumeID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if !found {
			h = newHistory(resumeID, now)
		}
		stored := appendEntry(h, entry, r.maxEntries, now)

		data, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("failed to marshal analysis history: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err == nil {
			r.logger.Debug("Analysis history recorded", map[string]interface{}{
				"resume_id": resumeID,
				"entry_id":  stored.ID,
				"kind":      stored.Kind,
			})
		}
		return err
	}

	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to save analysis history: %w", err)
	}
	return nil
}

// Get returns the resume's history, or an empty one if nothing was recorded or it expired
func (r *RedisHistory) Get(ctx context.Context, resumeID string) (*models.AnalysisHistory, error) {
	h, found, err := r.load(ctx, r.client, resumeID)
	if err != nil {
		return nil, err
	}
	if !found {
		return newHistory(resumeID, time.Now().UTC()), nil
	}
	return h, nil
}
