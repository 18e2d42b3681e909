package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	CycleDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "monitor_cycle_duration_seconds",
		Help:    "Тривалість одного циклу збору розкладів",
		Buckets: prometheus.DefBuckets,
	})
	CycleErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "monitor_cycle_errors_total",
		Help: "Цикли, що завершилися помилкою",
	})
	ChannelErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "monitor_channel_errors_total",
		Help: "Канали, пропущені через помилку в межах циклу",
	})
	MessagesScannedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "monitor_messages_scanned_total",
		Help: "Переглянуті повідомлення каналів",
	})
	SchedulesParsedByChannel = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "monitor_schedules_parsed_total",
		Help: "Успішно розібрані оголошення розкладів по каналах",
	}, []string{"channel_id"})
	RotationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "monitor_rotations_total",
		Help: "Обертання вікна доби",
	})
	EmergencyActive = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "monitor_emergency_active",
		Help: "Чи діють аварійні відключення по каналу (1/0)",
	}, []string{"channel_id"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Тривалість мережевих запитів",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60, 120},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Кількість мережевих запитів",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister реєструє метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		CycleDurationSeconds,
		CycleErrorsTotal,
		ChannelErrorsTotal,
		MessagesScannedTotal,
		SchedulesParsedByChannel,
		RotationsTotal,
		EmergencyActive,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускає HTTP сервер з ендпоінтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: сервер запущено")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: сервер зупинено")
		}
	}()
}

// ObserveCycle записує тривалість і результат циклу збору.
func ObserveCycle(start time.Time, err error) {
	CycleDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		CycleErrorsTotal.Inc()
	}
}

// ObserveNetworkRequest записує тривалість і статус мережевого запиту.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncChannelError збільшує лічильник пропущених каналів.
func IncChannelError() {
	ChannelErrorsTotal.Inc()
}

// AddMessagesScanned додає кількість переглянутих повідомлень.
func AddMessagesScanned(count int) {
	MessagesScannedTotal.Add(float64(count))
}

// IncParsedSchedule збільшує лічильник розібраних оголошень каналу.
func IncParsedSchedule(channelID int64) {
	SchedulesParsedByChannel.WithLabelValues(strconv.FormatInt(channelID, 10)).Inc()
}

// IncRotation збільшує лічильник обертань вікна доби.
func IncRotation() {
	RotationsTotal.Inc()
}

// SetEmergency виставляє індикатор аварійних відключень каналу.
func SetEmergency(channelID int64, active bool) {
	value := 0.0
	if active {
		value = 1
	}
	EmergencyActive.WithLabelValues(strconv.FormatInt(channelID, 10)).Set(value)
}
