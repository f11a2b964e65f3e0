package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-ingest-go/internal/config"
	"resume-ingest-go/internal/constants"
	"resume-ingest-go/internal/types"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key is not found in Redis.
// It wraps the underlying redis.Nil error for abstraction.
var ErrNotFound = redis.Nil

// Redis 提取结果缓存
// 纯读透缓存：命中只省掉一次模型调用，摄取管线的其余阶段照常执行，
// 缓存不可用时管线退化为每次调用模型，不影响正确性
type Redis struct {
	Client *redis.Client
	cfg    *config.RedisConfig
	ttl    time.Duration
}

// NewRedisAdapter 创建Redis客户端连接
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	ttlHours := cfg.ExtractionCacheTTLHours
	if ttlHours <= 0 {
		ttlHours = 24
	}

	return &Redis{
		Client: client,
		cfg:    cfg,
		ttl:    time.Duration(ttlHours) * time.Hour,
	}, nil
}

// Close 关闭Redis连接
func (r *Redis) Close() error {
	return r.Client.Close()
}

// cachedExtraction 缓存中存储的提取结果
type cachedExtraction struct {
	Info        *types.CandidateInfo `json:"info"`
	AIProcessed bool                 `json:"ai_processed"`
}

// extractionCacheKey 以文本内容的MD5作为缓存键
// 同一份简历文本无论来自哪个URL都命中同一条缓存
func extractionCacheKey(text string) string {
	sum := md5.Sum([]byte(text))
	return constants.ExtractionCacheKeyPrefix + hex.EncodeToString(sum[:])
}

// GetExtractionResult 查询缓存的提取结果，未命中时返回(nil, nil)
func (r *Redis) GetExtractionResult(ctx context.Context, text string) (*types.ExtractionResult, error) {
	raw, err := r.Client.Get(ctx, extractionCacheKey(text)).Bytes()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取提取缓存失败: %w", err)
	}

	var cached cachedExtraction
	if err := json.Unmarshal(raw, &cached); err != nil {
		// 格式损坏的缓存条目按未命中处理，等TTL过期自然淘汰
		return nil, nil
	}
	if cached.Info == nil {
		return nil, nil
	}

	return &types.ExtractionResult{
		Info:        cached.Info,
		AIProcessed: cached.AIProcessed,
	}, nil
}

// SetExtractionResult 写入提取结果缓存
func (r *Redis) SetExtractionResult(ctx context.Context, text string, result *types.ExtractionResult) error {
	if result == nil || result.Info == nil {
		return nil
	}

	raw, err := json.Marshal(cachedExtraction{
		Info:        result.Info,
		AIProcessed: result.AIProcessed,
	})
	if err != nil {
		return fmt.Errorf("序列化提取缓存失败: %w", err)
	}

	if err := r.Client.Set(ctx, extractionCacheKey(text), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("写入提取缓存失败: %w", err)
	}
	return nil
}
