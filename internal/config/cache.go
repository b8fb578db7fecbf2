package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds all cache-related configuration
type CacheConfig struct {
	// LRU Cache settings
	ResultLRUSize       int
	ResultLRUTTLMinutes int

	// DynamoDB settings
	ResultDynamoTTLDays int

	// Tide series LRU settings
	TideLRUSize int

	// Batch processing settings
	BatchSize       int
	MaxBatchRetries int

	// General settings
	EnableLRUCache    bool
	EnableDynamoCache bool
}

const (
	defaultResultLRUSize    = 100
	defaultResultTTLMinutes = 60
	defaultDynamoTTLDays    = 30
	defaultTideLRUSize      = 50
	defaultBatchSize        = 25
	defaultMaxBatchRetries  = 3
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		ResultLRUSize:       getEnvInt("CACHE_RESULT_LRU_SIZE", defaultResultLRUSize),
		ResultLRUTTLMinutes: getEnvInt("CACHE_RESULT_LRU_TTL_MINUTES", defaultResultTTLMinutes),
		ResultDynamoTTLDays: getEnvInt("CACHE_DYNAMO_TTL_DAYS", defaultDynamoTTLDays),
		TideLRUSize:         getEnvInt("CACHE_TIDE_LRU_SIZE", defaultTideLRUSize),
		BatchSize:           getEnvInt("CACHE_BATCH_SIZE", defaultBatchSize),
		MaxBatchRetries:     getEnvInt("CACHE_MAX_BATCH_RETRIES", defaultMaxBatchRetries),
		EnableLRUCache:      getEnvBool("CACHE_ENABLE_LRU", true),
		EnableDynamoCache:   getEnvBool("CACHE_ENABLE_DYNAMO", true),
	}

	log.Debug().
		Int("ResultLRUSize", config.ResultLRUSize).
		Int("ResultLRUTTLMinutes", config.ResultLRUTTLMinutes).
		Int("ResultDynamoTTLDays", config.ResultDynamoTTLDays).
		Int("TideLRUSize", config.TideLRUSize).
		Int("BatchSize", config.BatchSize).
		Int("MaxBatchRetries", config.MaxBatchRetries).
		Bool("EnableLRUCache", config.EnableLRUCache).
		Bool("EnableDynamoCache", config.EnableDynamoCache).
		Msg("Cache configuration loaded")

	return config
}

func (c *CacheConfig) GetResultLRUTTL() time.Duration {
	return time.Duration(c.ResultLRUTTLMinutes) * time.Minute
}

func (c *CacheConfig) GetDynamoTTL() time.Duration {
	return time.Duration(c.ResultDynamoTTLDays) * 24 * time.Hour
}
