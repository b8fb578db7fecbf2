package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetCacheConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected CacheConfig
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			expected: CacheConfig{
				ResultLRUSize:       defaultResultLRUSize,
				ResultLRUTTLMinutes: defaultResultTTLMinutes,
				ResultDynamoTTLDays: defaultDynamoTTLDays,
				TideLRUSize:         defaultTideLRUSize,
				BatchSize:           defaultBatchSize,
				MaxBatchRetries:     defaultMaxBatchRetries,
				EnableLRUCache:      true,
				EnableDynamoCache:   true,
			},
		},
		{
			name: "custom values",
			envVars: map[string]string{
				"CACHE_RESULT_LRU_SIZE":        "10",
				"CACHE_RESULT_LRU_TTL_MINUTES": "5",
				"CACHE_DYNAMO_TTL_DAYS":        "1",
				"CACHE_TIDE_LRU_SIZE":          "3",
				"CACHE_BATCH_SIZE":             "10",
				"CACHE_MAX_BATCH_RETRIES":      "5",
				"CACHE_ENABLE_LRU":             "false",
				"CACHE_ENABLE_DYNAMO":          "yes",
			},
			expected: CacheConfig{
				ResultLRUSize:       10,
				ResultLRUTTLMinutes: 5,
				ResultDynamoTTLDays: 1,
				TideLRUSize:         3,
				BatchSize:           10,
				MaxBatchRetries:     5,
				EnableLRUCache:      false,
				EnableDynamoCache:   true,
			},
		},
		{
			name: "invalid integer falls back to default",
			envVars: map[string]string{
				"CACHE_BATCH_SIZE": "many",
			},
			expected: CacheConfig{
				ResultLRUSize:       defaultResultLRUSize,
				ResultLRUTTLMinutes: defaultResultTTLMinutes,
				ResultDynamoTTLDays: defaultDynamoTTLDays,
				TideLRUSize:         defaultTideLRUSize,
				BatchSize:           defaultBatchSize,
				MaxBatchRetries:     defaultMaxBatchRetries,
				EnableLRUCache:      true,
				EnableDynamoCache:   true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			got := GetCacheConfig()
			assert.Equal(t, tt.expected, *got)
		})
	}
}

func TestCacheConfigDurations(t *testing.T) {
	cfg := &CacheConfig{ResultLRUTTLMinutes: 15, ResultDynamoTTLDays: 2}

	assert.Equal(t, 15*time.Minute, cfg.GetResultLRUTTL())
	assert.Equal(t, 48*time.Hour, cfg.GetDynamoTTL())
}
