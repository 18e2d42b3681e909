package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"svitlo-monitor/internal/domain"
	"svitlo-monitor/internal/infra/metrics"
	"svitlo-monitor/internal/usecase/window"
)

// ErrNoChannels повертається, коли список каналів порожній.
var ErrNoChannels = errors.New("немає каналів для збору")

// ErrCycleInProgress повертається, коли попередній цикл ще не завершився.
var ErrCycleInProgress = errors.New("цикл збору вже триває")

const dateLayout = "2006-01-02"

// Config — параметри циклу збору.
type Config struct {
	Channels       []domain.Channel
	BatchSize      int
	BatchDelay     time.Duration
	LimitMessages  int
	ChannelTimeout time.Duration
	Location       *time.Location
}

// Service — оркестратор циклу: обхід каналів пакетами, розбір повідомлень,
// накопичення вікон і обертання доби. Вікна і архів змінює лише цей потік.
type Service struct {
	cfg       Config
	source    domain.MessageSource
	extractor domain.ScheduleExtractor
	windows   domain.WindowRepo
	history   domain.HistoryRepo
	statuses  domain.StatusStore
	notifier  domain.Notifier
	log       zerolog.Logger

	record  *StatusRecord
	store   *window.Store
	archive *window.Archive
	loaded  bool
}

// NewService створює оркестратор. statuses і notifier можуть бути nil.
func NewService(cfg Config, source domain.MessageSource, extractor domain.ScheduleExtractor, windows domain.WindowRepo, history domain.HistoryRepo, statuses domain.StatusStore, notifier domain.Notifier, log zerolog.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 3
	}
	if cfg.LimitMessages <= 0 {
		cfg.LimitMessages = 30
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		cfg:       cfg,
		source:    source,
		extractor: extractor,
		windows:   windows,
		history:   history,
		statuses:  statuses,
		notifier:  notifier,
		log:       log,
		record:    NewStatusRecord(),
		store:     window.NewStore(),
		archive:   window.NewArchive(),
	}
}

// Status повертає стан останнього циклу.
func (s *Service) Status() domain.CycleStatus {
	return s.record.Current()
}

// результат обходу одного каналу: всі розклади на сьогодні й на завтра
// (від найстарішого до найновішого) та один запасний з іншою датою.
type channelResult struct {
	channel   domain.Channel
	todays    []domain.ParsedSchedule
	tomorrows []domain.ParsedSchedule
	fallback  *domain.ParsedSchedule
	err       error
}

// RunCycle виконує один цикл збору. Скасування контексту зупиняє обхід,
// але вже збережений стан оброблених каналів лишається недоторканим.
func (s *Service) RunCycle(ctx context.Context) (domain.CycleStatus, error) {
	if len(s.cfg.Channels) == 0 {
		return s.record.Current(), ErrNoChannels
	}

	now := time.Now().In(s.cfg.Location)
	if !s.record.Begin(now) {
		return s.record.Current(), ErrCycleInProgress
	}
	s.publishStatus()
	start := time.Now()

	okChannels, errChannels, err := s.runCycle(ctx, now)

	lastError := ""
	if err != nil {
		lastError = err.Error()
	}
	s.record.Finish(time.Now().In(s.cfg.Location), okChannels, errChannels, lastError)
	s.publishStatus()
	metrics.ObserveCycle(start, err)

	return s.record.Current(), err
}

func (s *Service) runCycle(ctx context.Context, now time.Time) (okChannels, errChannels int, err error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return 0, 0, err
	}

	today := now.Format(dateLayout)
	tomorrow := now.AddDate(0, 0, 1).Format(dateLayout)

	if err := s.rotate(ctx, today); err != nil {
		return 0, 0, err
	}

	channels := s.cfg.Channels
	for batchStart := 0; batchStart < len(channels); batchStart += s.cfg.BatchSize {
		if ctx.Err() != nil {
			return okChannels, errChannels, ctx.Err()
		}
		batchEnd := batchStart + s.cfg.BatchSize
		if batchEnd > len(channels) {
			batchEnd = len(channels)
		}
		results := s.fetchBatch(ctx, channels[batchStart:batchEnd], now, today, tomorrow)
		for _, result := range results {
			if result.err != nil {
				errChannels++
				metrics.IncChannelError()
				s.log.Error().Err(result.err).Int64("channel", result.channel.ID).Str("handle", result.channel.Handle).Msg("monitor: канал пропущено в цьому циклі")
				continue
			}
			if applyErr := s.applyResult(ctx, result, today); applyErr != nil {
				errChannels++
				metrics.IncChannelError()
				s.log.Error().Err(applyErr).Int64("channel", result.channel.ID).Msg("monitor: не вдалося зберегти вікна каналу")
				continue
			}
			okChannels++
		}
		if batchEnd < len(channels) && s.cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return okChannels, errChannels, ctx.Err()
			case <-time.After(s.cfg.BatchDelay):
			}
		}
	}
	return okChannels, errChannels, nil
}

// ensureLoaded піднімає збережені документи один раз на життя сервісу.
// Відсутні чи зіпсовані документи репозиторій повертає порожніми.
func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	today, err := s.windows.LoadWindow(ctx, string(window.BucketToday))
	if err != nil {
		return fmt.Errorf("читання вікна 'сьогодні': %w", err)
	}
	tomorrow, err := s.windows.LoadWindow(ctx, string(window.BucketTomorrow))
	if err != nil {
		return fmt.Errorf("читання вікна 'завтра': %w", err)
	}
	s.store.Load(today, tomorrow)
	for _, channel := range s.cfg.Channels {
		entries, err := s.history.LoadHistory(ctx, channel.ID)
		if err != nil {
			return fmt.Errorf("читання архіву каналу %d: %w", channel.ID, err)
		}
		s.archive.Load(channel.ID, entries)
	}
	s.loaded = true
	return nil
}

// rotate пересуває вікно доби, коли дата у вікні "сьогодні" відстала від
// стінного годинника, і зберігає архів та вікна.
func (s *Service) rotate(ctx context.Context, today string) error {
	archived, rotated := s.store.Rotate(today, s.archive)
	if !rotated {
		return nil
	}
	metrics.IncRotation()
	s.log.Info().Str("date", today).Ints64("channels", archived).Msg("monitor: вікно доби обернено")
	for _, channelID := range archived {
		if err := s.history.SaveHistory(ctx, channelID, s.archive.Channel(channelID)); err != nil {
			return fmt.Errorf("збереження архіву каналу %d: %w", channelID, err)
		}
	}
	return s.saveWindows(ctx)
}

// fetchBatch обходить пакет каналів паралельно. Результати лише збираються:
// вікна змінює викликач послідовно.
func (s *Service) fetchBatch(ctx context.Context, batch []domain.Channel, now time.Time, today, tomorrow string) []channelResult {
	results := make([]channelResult, len(batch))
	var wg sync.WaitGroup
	for i, channel := range batch {
		wg.Add(1)
		go func(i int, channel domain.Channel) {
			defer wg.Done()
			results[i] = s.fetchChannel(ctx, channel, now, today, tomorrow)
		}(i, channel)
	}
	wg.Wait()
	return results
}

func (s *Service) fetchChannel(ctx context.Context, channel domain.Channel, now time.Time, today, tomorrow string) channelResult {
	result := channelResult{channel: channel}

	fetchCtx := ctx
	if s.cfg.ChannelTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.cfg.ChannelTimeout)
		defer cancel()
	}

	messages, err := s.source.GetRecentMessages(fetchCtx, channel.Handle, s.cfg.LimitMessages)
	if err != nil {
		result.err = fmt.Errorf("читання повідомлень %s: %w", channel.Handle, err)
		return result
	}
	metrics.AddMessagesScanned(len(messages))

	// Джерело віддає повідомлення від найновішого до найстарішого. Розклади
	// накопичуються, тож розбираємо всі в межах ліміту, а вносити будемо у
	// зворотному порядку, щоб час спостереження рухався лише вперед.
	for _, message := range messages {
		message.ChannelID = channel.ID
		parsed, ok := s.extractor.Extract(message, now)
		if !ok {
			continue
		}
		metrics.IncParsedSchedule(channel.ID)
		switch parsed.ScheduleDate {
		case today:
			result.todays = append(result.todays, parsed)
		case tomorrow:
			result.tomorrows = append(result.tomorrows, parsed)
		default:
			if result.fallback == nil {
				result.fallback = &parsed
			}
		}
	}
	reverse(result.todays)
	reverse(result.tomorrows)
	return result
}

func reverse(schedules []domain.ParsedSchedule) {
	for i, j := 0, len(schedules)-1; i < j; i, j = i+1, j-1 {
		schedules[i], schedules[j] = schedules[j], schedules[i]
	}
}

// applyResult вносить знахідки каналу у вікна і зберігає документи.
// Оголошення з чужою датою стає сьогоднішнім лише коли справжнього
// сьогоднішнього не знайшлося: відома евристика джерела, яка може видати
// застаріле оголошення за поточне.
func (s *Service) applyResult(ctx context.Context, result channelResult, today string) error {
	todays := result.todays
	if len(todays) == 0 && result.fallback != nil {
		stamped := *result.fallback
		stamped.ScheduleDate = today
		todays = []domain.ParsedSchedule{stamped}
	}

	changed := false
	if len(todays) > 0 {
		previous, hadPrevious := s.store.Entry(window.BucketToday, result.channel.ID)
		for _, parsed := range todays {
			s.store.Upsert(window.BucketToday, result.channel, parsed)
		}
		current, _ := s.store.Entry(window.BucketToday, result.channel.ID)
		metrics.SetEmergency(result.channel.ID, current.Emergency)
		if current.Emergency && (!hadPrevious || !previous.Emergency) {
			s.notifyEmergency(result.channel, current)
		}
		changed = true
	}
	for _, parsed := range result.tomorrows {
		s.store.Upsert(window.BucketTomorrow, result.channel, parsed)
		changed = true
	}
	if !changed {
		return nil
	}
	return s.saveWindows(ctx)
}

func (s *Service) saveWindows(ctx context.Context) error {
	if err := s.windows.SaveWindow(ctx, string(window.BucketToday), s.store.Snapshot(window.BucketToday)); err != nil {
		return fmt.Errorf("збереження вікна 'сьогодні': %w", err)
	}
	if err := s.windows.SaveWindow(ctx, string(window.BucketTomorrow), s.store.Snapshot(window.BucketTomorrow)); err != nil {
		return fmt.Errorf("збереження вікна 'завтра': %w", err)
	}
	return nil
}

func (s *Service) notifyEmergency(channel domain.Channel, entry domain.DayWindowEntry) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyEmergency(channel, entry); err != nil {
		s.log.Error().Err(err).Int64("channel", channel.ID).Msg("monitor: не вдалося сповістити про аварійні відключення")
	}
}

func (s *Service) publishStatus() {
	if s.statuses == nil {
		return
	}
	if err := s.statuses.SetStatus(s.record.Current()); err != nil {
		s.log.Error().Err(err).Msg("monitor: не вдалося опублікувати стан циклу")
	}
}
