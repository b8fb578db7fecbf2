package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bbernstein/shorewatch/internal/analysis"
	"github.com/bbernstein/shorewatch/internal/api"
	"github.com/bbernstein/shorewatch/internal/archive"
	"github.com/bbernstein/shorewatch/internal/cache"
	"github.com/bbernstein/shorewatch/internal/config"
	"github.com/bbernstein/shorewatch/internal/handler"
	"github.com/bbernstein/shorewatch/internal/tide"
	"github.com/bbernstein/shorewatch/pkg/http/client"
	"github.com/rs/zerolog/log"
)

var (
	lambdaStart       = lambda.Start // Allow mocking of lambda.Start in tests
	shorelinesHandler *handler.ShorelinesHandler
	resultCache       *cache.ResultCache
	setupErr          error
	setupOnce         sync.Once
)

func init() {
	setupOnce.Do(func() {
		cfg := config.LoadFromEnv()
		cfg.InitializeLogging()
		cacheConfig := config.GetCacheConfig()
		ctx := context.Background()

		s3Client, err := archive.NewS3Client(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create S3 client")
			setupErr = err
			return
		}

		opts := []analysis.Option{analysis.WithNOAA(noaaSources(cfg, cacheConfig))}
		if cacheConfig.EnableDynamoCache || cacheConfig.EnableLRUCache {
			resultCache, err = newResultCache(ctx, cfg, cacheConfig)
			if err != nil {
				log.Error().Err(err).Msg("Failed to create result cache")
				setupErr = err
				return
			}
			opts = append(opts, analysis.WithResultStore(resultCache))
		}

		service := analysis.NewService(
			archive.New(s3Client, cfg.ArchiveBucket),
			config.SettingsFromEnv(),
			opts...,
		)
		shorelinesHandler = handler.NewShorelinesHandler(service)
	})
}

func newResultCache(ctx context.Context, cfg *config.Config, cacheConfig *config.CacheConfig) (*cache.ResultCache, error) {
	var store cache.ResultStore
	if cacheConfig.EnableDynamoCache {
		dynamoClient, err := cache.NewDynamoClient(ctx)
		if err != nil {
			return nil, err
		}
		store = cache.NewDynamoResultStore(dynamoClient, cfg.ResultsTable, cacheConfig)
	}
	return cache.NewResultCache(store, cacheConfig)
}

// noaaSources shares one cached source per station across invocations
func noaaSources(cfg *config.Config, cacheConfig *config.CacheConfig) analysis.TideSourceFactory {
	httpClient := client.New(client.Options{
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.MaxRetries,
		BaseURL:    cfg.NOAABaseURL,
	})

	var mu sync.Mutex
	sources := make(map[string]*cache.TideCache)
	return func(stationID string) (tide.Source, error) {
		mu.Lock()
		defer mu.Unlock()
		if s, ok := sources[stationID]; ok {
			return s, nil
		}
		source, err := tide.NewNOAASource(httpClient, stationID)
		if err != nil {
			return nil, err
		}
		s, err := cache.NewTideCache(source, stationID, cacheConfig.TideLRUSize)
		if err != nil {
			return nil, err
		}
		sources[stationID] = s
		return s, nil
	}
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if setupErr != nil {
		return api.Error("Service unavailable", http.StatusInternalServerError)
	}
	resp, err := shorelinesHandler.HandleRequest(ctx, request)
	if resultCache != nil {
		logCacheStats(resultCache.GetCacheStats())
	}
	return resp, err
}

func logCacheStats(stats map[string]uint64) {
	event := log.Debug()
	for _, name := range []string{"lru_hits", "lru_misses", "store_hits", "store_misses"} {
		event = event.Uint64(name, stats[name])
	}
	event.Msg("Result cache stats")
}

func main() {
	lambdaStart(handleRequest)
}
