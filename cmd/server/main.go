package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Plaza/internal/adapters/http"
	"github.com/dkeye/Plaza/internal/adapters/ws"
	"github.com/dkeye/Plaza/internal/app"
	"github.com/dkeye/Plaza/internal/auth"
	"github.com/dkeye/Plaza/internal/catalog"
	"github.com/dkeye/Plaza/internal/config"
	"github.com/dkeye/Plaza/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using environment as-is")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Secret == "" {
		log.Fatal().Msg("no token secret configured, refusing to start")
	}

	spaces, profiles, err := buildCatalog(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("catalog init")
	}

	rooms := app.NewRegistry(cfg.ProximityRange)
	deps := app.Deps{
		Rooms:         rooms,
		Relay:         &app.Relay{Rooms: rooms},
		Verifier:      auth.NewJWT(cfg.Secret),
		Spaces:        spaces,
		Profiles:      profiles,
		Chat:          app.NewRateLimiter(cfg.ChatBurst, cfg.ChatWindow),
		Step:          cfg.Step,
		ChatMaxLen:    cfg.ChatMaxLen,
		DefaultAvatar: cfg.DefaultAvatar,
	}
	ctl := ws.NewController(cfg, deps)

	r := router.SetupRouter(ctx, cfg, rooms, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Plaza server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

func buildCatalog(ctx context.Context, cfg *config.Config) (catalog.Spaces, catalog.Profiles, error) {
	switch cfg.Catalog {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		c := catalog.NewRedis(rdb)
		return c, c, nil
	default:
		m := catalog.NewMemory()
		// Standalone dev has no admin side; seed one space to join.
		m.PutSpace(domain.Space{ID: "lobby", Width: 800, Height: 600})
		return m, m, nil
	}
}
