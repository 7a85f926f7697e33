package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/guestflow/faqbot/internal/domain/retrieval"
	"github.com/guestflow/faqbot/internal/infra/config"
	"github.com/guestflow/faqbot/internal/infra/corpusrepo"
	"github.com/guestflow/faqbot/internal/infra/embcache"
	"github.com/guestflow/faqbot/internal/infra/encoder"
	"github.com/guestflow/faqbot/internal/infra/exportarchive"
	"github.com/guestflow/faqbot/internal/infra/llm/embedapi"
	"github.com/guestflow/faqbot/internal/infra/notify"
	"github.com/guestflow/faqbot/internal/infra/tenantcfg"
)

func provideCorpusRepository(cfg *config.Config, logger *slog.Logger) retrieval.CorpusRepository {
	fallback := corpusrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory corpus repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory corpus repository", "error", err)
		return fallback
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory corpus repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory corpus repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("postgres corpus repository enabled")
	return corpusrepo.NewPostgresRepository(pool)
}

func provideNotifier(cfg *config.Config, logger *slog.Logger) retrieval.Notifier {
	sink, err := notify.NewLineNotifier(cfg.Line.ChannelToken, cfg.Line.RecipientID, cfg.Line.PushURL)
	if err != nil {
		logger.Info("line credentials not configured, logging escalations instead")
		return notify.NewLogNotifier(logger)
	}
	logger.Info("line escalation notifier enabled")
	return sink
}

func provideArchiver(cfg *config.Config, logger *slog.Logger) retrieval.Archiver {
	if !cfg.Export.Enabled {
		return nil
	}
	archiver, err := exportarchive.NewMinioArchiver(exportarchive.Options{
		Endpoint:  cfg.Export.Endpoint,
		AccessKey: cfg.Export.AccessKey,
		SecretKey: cfg.Export.SecretKey,
		Bucket:    cfg.Export.Bucket,
		UseSSL:    cfg.Export.UseSSL,
	})
	if err != nil {
		logger.Error("export archiver unavailable, exports will not be archived", "error", err)
		return nil
	}
	logger.Info("export archiving enabled", "bucket", cfg.Export.Bucket)
	return archiver
}

func provideTenantProvider(cfg *config.Config) retrieval.ConfigProvider {
	overrides := make(map[string]retrieval.TenantSettings, len(cfg.Tenants))
	for tenantID, tenant := range cfg.Tenants {
		overrides[tenantID] = retrieval.TenantSettings{
			SimilarityThreshold: tenant.SimilarityThreshold,
			EscalateThreshold:   tenant.EscalateThreshold,
			EncoderMode:         retrieval.EncoderMode(tenant.EncoderMode),
		}
	}
	return tenantcfg.NewStaticProvider(overrides)
}

func provideRetrievalService(
	cfg *config.Config,
	repo retrieval.CorpusRepository,
	notifier retrieval.Notifier,
	tenants retrieval.ConfigProvider,
	archiver retrieval.Archiver,
	logger *slog.Logger,
) *retrieval.Service {
	offline := encoder.NewDeterministicEncoder(cfg.Encoder.Dimension)

	var primary retrieval.Encoder = offline
	if cfg.Encoder.Mode == "provider" {
		client, err := embedapi.NewClient(cfg.Encoder.APIKey, cfg.Encoder.BaseURL)
		if err != nil {
			logger.Error("embedding provider not configured, using offline encoder", "error", err)
		} else {
			provider := encoder.NewProviderEncoder(client, cfg.Encoder.Model, cfg.Encoder.Dimension, logger)
			primary = encoder.NewFallbackEncoder(provider, offline, logger)
		}
	}

	if store := provideEmbeddingCache(cfg, logger); store != nil {
		primary = encoder.NewCachedEncoder(primary, store, logger)
	}

	retrievalCfg := retrieval.Config{
		Dimension:           cfg.Encoder.Dimension,
		SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
		EscalateThreshold:   cfg.Retrieval.EscalateThreshold,
		EscalationAnswer:    cfg.Retrieval.EscalationAnswer,
		HedgeDisclaimer:     cfg.Retrieval.HedgeDisclaimer,
		FailureAnswer:       cfg.Retrieval.FailureAnswer,
		SeedOnCreate:        cfg.Retrieval.SeedOnCreate,
	}
	return retrieval.NewService(retrievalCfg, repo, primary, offline, notifier, tenants, archiver, logger)
}

func provideEmbeddingCache(cfg *config.Config, logger *slog.Logger) encoder.KVStore {
	if !cfg.Valkey.Enabled {
		return nil
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, embedding cache disabled", "error", err)
		return nil
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, embedding cache disabled", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, embedding cache disabled", "error", err)
		return nil
	}
	logger.Info("valkey embedding cache enabled", "addr", cfg.Valkey.Addr)
	return embcache.NewValkeyStore(client, cfg.Encoder.CacheTTL)
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
