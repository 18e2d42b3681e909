package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"svitlo-monitor/internal/adapters/repo"
	"svitlo-monitor/internal/domain"
	"svitlo-monitor/internal/infra/cache"
	"svitlo-monitor/internal/infra/config"
	"svitlo-monitor/internal/infra/db"
	httpinfra "svitlo-monitor/internal/infra/http"
	applog "svitlo-monitor/internal/infra/log"
	"svitlo-monitor/internal/infra/metrics"
	"svitlo-monitor/internal/infra/queue"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	channels, err := cfg.ParseChannels()
	if err != nil {
		logger.Fatal().Err(err).Msg("api: некоректний список каналів")
	}

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: немає підключення до БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool, logger.With().Str("component", "repo").Logger())
	redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	cacheAdapter := cache.NewRedis(redisClient)
	statuses := cache.NewStatusCache(cacheAdapter)
	refreshQueue := queue.NewRedisRefreshQueue(redisClient, cfg.Queues.Refresh)

	server := httpinfra.NewServer(logger.With().Str("component", "http").Logger())
	registerRoutes(server.Router, logger.With().Str("component", "api").Logger(), channels, repoAdapter, repoAdapter, statuses, refreshQueue)

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), ":9090")

	go func() {
		if err := server.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logger.Error().Err(err).Msg("api: сервер зупинено з помилкою")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("api: зупинка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

func registerRoutes(r chi.Router, logger zerolog.Logger, channels []domain.Channel, windows domain.WindowRepo, history domain.HistoryRepo, statuses domain.StatusStore, refreshQueue domain.RefreshQueue) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpinfra.WriteJSON(w, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/schedule/today", windowHandler(logger, windows, "today"))
		r.Get("/schedule/tomorrow", windowHandler(logger, windows, "tomorrow"))

		r.Get("/schedule/history", func(w http.ResponseWriter, req *http.Request) {
			result := make(map[string][]domain.HistoryEntry, len(channels))
			for _, channel := range channels {
				entries, err := history.LoadHistory(req.Context(), channel.ID)
				if err != nil {
					logger.Error().Err(err).Int64("channel", channel.ID).Msg("api: читання архіву")
					httpinfra.WriteError(w, http.StatusInternalServerError, "failed to load history")
					return
				}
				result[strconv.FormatInt(channel.ID, 10)] = entries
			}
			httpinfra.WriteJSON(w, result)
		})

		r.Get("/schedule/history/{channelID}", func(w http.ResponseWriter, req *http.Request) {
			channelID, err := strconv.ParseInt(chi.URLParam(req, "channelID"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, "invalid channel id")
				return
			}
			entries, err := history.LoadHistory(req.Context(), channelID)
			if err != nil {
				logger.Error().Err(err).Int64("channel", channelID).Msg("api: читання архіву")
				httpinfra.WriteError(w, http.StatusInternalServerError, "failed to load history")
				return
			}
			httpinfra.WriteJSON(w, entries)
		})

		r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
			status, err := statuses.GetStatus()
			if err != nil {
				logger.Error().Err(err).Msg("api: читання стану циклу")
				httpinfra.WriteError(w, http.StatusInternalServerError, "failed to load status")
				return
			}
			httpinfra.WriteJSON(w, status)
		})

		r.Post("/refresh", func(w http.ResponseWriter, req *http.Request) {
			job := domain.RefreshJob{
				ID:          uuid.NewString(),
				Cause:       domain.RefreshCauseAPI,
				RequestedAt: time.Now().UTC(),
			}
			if err := refreshQueue.Enqueue(req.Context(), job); err != nil {
				logger.Error().Err(err).Msg("api: не вдалося поставити запит у чергу")
				httpinfra.WriteError(w, http.StatusInternalServerError, "failed to enqueue refresh")
				return
			}
			httpinfra.WriteJSON(w, map[string]string{"job_id": job.ID, "status": "queued"})
		})
	})
}

func windowHandler(logger zerolog.Logger, windows domain.WindowRepo, bucket string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		entries, err := windows.LoadWindow(req.Context(), bucket)
		if err != nil {
			logger.Error().Err(err).Str("bucket", bucket).Msg("api: читання вікна")
			httpinfra.WriteError(w, http.StatusInternalServerError, "failed to load window")
			return
		}
		httpinfra.WriteJSON(w, entries)
	}
}
