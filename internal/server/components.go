package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Nishanth-cyber/Job-search/internal/auth"
	"github.com/Nishanth-cyber/Job-search/internal/blob"
	"github.com/Nishanth-cyber/Job-search/internal/config"
	"github.com/Nishanth-cyber/Job-search/internal/database"
	"github.com/Nishanth-cyber/Job-search/internal/logger"
	"github.com/Nishanth-cyber/Job-search/internal/middleware"
	"github.com/Nishanth-cyber/Job-search/internal/scorer"
)

const blacklistCleanupInterval = 10 * time.Minute

// Components are the collaborators a server is built from
type Components struct {
	Blobs     blob.Store
	Scorer    scorer.Scorer
	Blacklist auth.JwtBlacklistStore
	RateStore ratelimit.Store
	SkillTest scorer.SkillTest
}

// BuildComponents create collaborators selected by cfg. The returned cleanup
// release every client that was opened, also when an error is returned.
func BuildComponents(ctx context.Context, cfg *config.Config, db *database.DBinstanceStruct, log *zap.Logger) (Components, func(), error) {
	log = logger.OrNop(log)
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("failed to close component", zap.Error(err))
			}
		}
	}

	var comp Components

	var storage blob.StorageClient
	if cfg.Storage.Bucket != "" {
		gcs, err := blob.NewCloudStorageClient(ctx, cfg.Storage.Bucket)
		if err != nil {
			return comp, cleanup, err
		}
		closers = append(closers, gcs.Close)
		storage = gcs
		log.Info("blobs stored in cloud storage", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		log.Info("cloud storage bucket not set, blobs stored in database")
	}
	comp.Blobs = blob.NewFileStore(db, storage, log)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, client.Close)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return comp, cleanup, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		redisClient = client
		comp.Blacklist = auth.NewRedisBlacklistStore(client, "")
		log.Info("token blacklist and rate limit shared through redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		memory := auth.NewInMemoryBlacklistStore(blacklistCleanupInterval)
		closers = append(closers, memory.Close)
		comp.Blacklist = memory
	}
	comp.RateStore = middleware.NewRateLimitStore(cfg.RateLimit, redisClient)

	sc, err := NewScorer(ctx, cfg.Scorer, log)
	if err != nil {
		return comp, cleanup, err
	}
	comp.Scorer = sc

	tests, err := NewSkillTest(ctx, cfg.Scorer, log)
	if err != nil {
		return comp, cleanup, err
	}
	comp.SkillTest = tests

	return comp, cleanup, nil
}

// NewSkillTest use Gemini for skills tests whenever an api key is set, whatever scorer provider is chosen
func NewSkillTest(ctx context.Context, cfg config.ScorerConfig, log *zap.Logger) (scorer.SkillTest, error) {
	log = logger.OrNop(log)
	if cfg.Gemini.APIKey == "" {
		log.Info("gemini api key not set, skills tests use default questions")
		return scorer.HeuristicSkillTest{}, nil
	}
	return scorer.NewGeminiSkillTest(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
}

// NewScorer build the configured scorer wrapped with retries
func NewScorer(ctx context.Context, cfg config.ScorerConfig, log *zap.Logger) (scorer.Scorer, error) {
	log = logger.OrNop(log)
	var inner scorer.Scorer
	switch cfg.Provider {
	case config.ProviderWebhook:
		if cfg.URL == "" {
			return nil, errors.New("scorer url is required for webhook scorer")
		}
		inner = scorer.NewWebhookScorer(cfg.URL, cfg.ConnectTimeout, cfg.ReadTimeout, log)
	case config.ProviderGemini:
		g, err := scorer.NewGeminiScorer(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
		if err != nil {
			return nil, err
		}
		inner = g
	default:
		return nil, fmt.Errorf("unknown scorer provider %q", cfg.Provider)
	}

	log.Info("resume scorer configured",
		zap.String("provider", cfg.Provider),
		zap.Int("max_attempts", cfg.MaxAttempts),
	)
	return scorer.NewRetrying(inner, cfg.MaxAttempts, cfg.ConnectTimeout+cfg.ReadTimeout, log), nil
}
