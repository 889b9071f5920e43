package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"salvo-backend/internal/analytics"
	"salvo-backend/internal/api/recovery"
	"salvo-backend/internal/bloom"
	"salvo-backend/internal/catalog"
	"salvo-backend/internal/config"
	"salvo-backend/internal/conversation"
	"salvo-backend/internal/discovery"
	"salvo-backend/internal/httpapi"
	"salvo-backend/internal/kstream"
	"salvo-backend/internal/logger"
	"salvo-backend/internal/matcher"
	"salvo-backend/internal/projections"
	"salvo-backend/internal/whatsapp"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	log := logger.New("salvo-api")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable at startup, continuing")
	}

	source := newCatalogSource(cfg, rdb)
	m, err := matcher.New(source, matcher.Config{
		DefaultRadiusKm: cfg.DefaultRadiusKm,
		ResultLimit:     cfg.ResultLimit,
	}, matcher.WithLogger(log.With().Str("component", "matcher").Logger()))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create matcher")
	}

	events, closeEvents := newAnalytics(ctx, cfg, rdb, log)
	defer closeEvents()

	sender := whatsapp.NewSender(cfg.WhatsAppBaseURL, cfg.WhatsAppToken, cfg.WhatsAppPhoneNumberID,
		log.With().Str("component", "whatsapp").Logger())
	processor := conversation.NewProcessor(m, sender,
		conversation.NewRedisSessions(rdb, cfg.SessionTTL),
		conversation.WithAnalytics(events),
		conversation.WithLogger(log.With().Str("component", "conversation").Logger()),
	)

	r := mux.NewRouter()
	r.Use(recovery.New(log))

	httpapi.NewServer(
		httpapi.Status{
			Service:            "salvo-api",
			Version:            version,
			Environment:        string(cfg.Environment),
			CatalogDriver:      cfg.CatalogDriver,
			KafkaEnabled:       cfg.KafkaBroker != "",
			WhatsAppConfigured: cfg.WhatsAppConfigured(),
		},
		source,
		httpapi.Webhook{
			VerifyToken: cfg.WhatsAppVerifyToken,
			Dedupe:      bloom.New(ctx, rdb, bloom.DefaultKey, log),
			Handler:     processor,
			Workers:     cfg.Workers,
		},
		log,
	).RegisterRoutes(r)
	discovery.NewService(m, log.With().Str("component", "discovery").Logger()).RegisterRoutes(r)

	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("version", version).Msg("Salvô API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server…")
	cancel()
	ctxShutdown, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func newCatalogSource(cfg *config.Config, rdb redis.Cmdable) catalog.Source {
	if cfg.CatalogDriver == config.CatalogRedis {
		return catalog.NewRedisSource(rdb, cfg.CatalogRedisKey)
	}
	return catalog.NewFileSource(cfg.CatalogPath)
}

// newAnalytics always keeps the daily JSONL files. With a Kafka broker the
// projections run as a consumer of the search topic; without one they are
// applied inline.
func newAnalytics(ctx context.Context, cfg *config.Config, rdb redis.Cmdable, log zerolog.Logger) (analytics.Publisher, func()) {
	alog := log.With().Str("component", "analytics").Logger()
	projector := projections.NewProjector(rdb, alog)
	jsonl := analytics.NewJSONLWriter(cfg.AnalyticsDir)

	if cfg.KafkaBroker == "" {
		return analytics.Multi{jsonl, projector}, func() {}
	}

	pub := kstream.NewPublisher(cfg.KafkaBroker, cfg.AnalyticsTopic)
	reader := kstream.NewReader(cfg.KafkaBroker, cfg.AnalyticsTopic, cfg.ProjectorsGroup)
	go func() {
		if err := projector.Run(ctx, reader); err != nil && ctx.Err() == nil {
			alog.Error().Err(err).Msg("projectors consumer stopped")
		}
	}()

	return analytics.Multi{jsonl, pub}, func() {
		if err := pub.Close(); err != nil {
			alog.Error().Err(err).Msg("failed to flush search events")
		}
	}
}
