package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"svitlo-monitor/internal/adapters/mtproto"
	"svitlo-monitor/internal/adapters/repo"
	"svitlo-monitor/internal/adapters/telegram"
	"svitlo-monitor/internal/domain"
	"svitlo-monitor/internal/infra/cache"
	"svitlo-monitor/internal/infra/config"
	"svitlo-monitor/internal/infra/db"
	applog "svitlo-monitor/internal/infra/log"
	"svitlo-monitor/internal/infra/metrics"
	"svitlo-monitor/internal/infra/queue"
	"svitlo-monitor/internal/usecase/monitor"
	"svitlo-monitor/internal/usecase/parse"
)

const cycleLockKey = "monitor:cycle_lock"

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), ":9090")

	channels, err := cfg.ParseChannels()
	if err != nil {
		logger.Fatal().Err(err).Msg("collector: некоректний список каналів")
	}
	if cfg.Telegram.APIID == 0 || cfg.Telegram.APIHash == "" {
		logger.Fatal().Msg("collector: не задано облікові дані Telegram (TG_API_ID, TG_API_HASH)")
	}

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("collector: немає підключення до БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool, logger.With().Str("component", "repo").Logger())
	if err := repoAdapter.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("collector: не вдалося підготувати схему БД")
	}

	redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	cacheAdapter := cache.NewRedis(redisClient)
	statuses := cache.NewStatusCache(cacheAdapter)
	refreshQueue := queue.NewRedisRefreshQueue(redisClient, cfg.Queues.Refresh)

	var notifier domain.Notifier
	if cfg.Notify.BotToken != "" && cfg.Notify.ChatID != 0 {
		botAPI, err := tgbotapi.NewBotAPI(cfg.Notify.BotToken)
		if err != nil {
			logger.Error().Err(err).Msg("collector: бот сповіщень недоступний, працюємо без нього")
		} else {
			notifier = telegram.NewNotifier(botAPI, cfg.Notify.ChatID, logger.With().Str("component", "notify").Logger())
		}
	}

	source := mtproto.NewSource(cfg.Telegram.APIID, cfg.Telegram.APIHash, cfg.MTProto.SessionFile, logger.With().Str("component", "mtproto").Logger())

	service := monitor.NewService(monitor.Config{
		Channels:       channels,
		BatchSize:      cfg.Fetch.BatchSize,
		BatchDelay:     cfg.Fetch.BatchDelay,
		LimitMessages:  cfg.Fetch.LimitMessages,
		ChannelTimeout: cfg.Fetch.ChannelTimeout,
		Location:       cfg.Location(),
	}, source, parse.NewExtractor(), repoAdapter, repoAdapter, statuses, notifier, logger.With().Str("component", "monitor").Logger())

	logger.Info().Int("channels", len(channels)).Dur("interval", cfg.Fetch.UpdateInterval).Msg("collector: запуск")

	err = source.Run(ctx, func(ctx context.Context) error {
		runLoop(ctx, cfg, logger, service, cacheAdapter, refreshQueue)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("collector: з'єднання з Telegram завершилося помилкою")
	}
	logger.Info().Msg("collector: зупинено")
}

// runLoop виконує цикли за розкладом і за запитами з черги, доки не
// скасовано контекст.
func runLoop(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger, service *monitor.Service, cacheAdapter *cache.RedisCache, refreshQueue domain.RefreshQueue) {
	runCycle := func(cause string) {
		err := cacheAdapter.Once(ctx, cycleLockKey, cfg.Fetch.CycleTimeout, func() error {
			cycleCtx, cancel := context.WithTimeout(ctx, cfg.Fetch.CycleTimeout)
			defer cancel()
			status, err := service.RunCycle(cycleCtx)
			if err != nil {
				return err
			}
			logger.Info().Str("cause", cause).Int("ok", status.OKChannels).Int("errors", status.ErrChannels).Msg("collector: цикл завершено")
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Str("cause", cause).Msg("collector: цикл завершився помилкою")
		}
	}

	jobs := make(chan domain.RefreshJob)
	go func() {
		for {
			job, err := refreshQueue.Pop(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				logger.Error().Err(err).Msg("collector: помилка читання черги")
				time.Sleep(time.Second)
				continue
			}
			select {
			case jobs <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	runCycle("startup")

	ticker := time.NewTicker(cfg.Fetch.UpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCycle("interval")
		case job := <-jobs:
			logger.Info().Str("job_id", job.ID).Str("cause", job.Cause).Msg("collector: позачерговий цикл")
			runCycle(job.Cause)
		}
	}
}
