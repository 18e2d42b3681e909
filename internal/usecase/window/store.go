package window

import (
	"sort"

	"svitlo-monitor/internal/domain"
	"svitlo-monitor/internal/usecase/interval"
)

// Bucket — одне з двох рухомих вікон доби.
type Bucket string

// Назви вікон, вони ж імена збережених документів.
const (
	BucketToday    Bucket = "today"
	BucketTomorrow Bucket = "tomorrow"
)

// Store тримає вікна "сьогодні" і "завтра" по каналах. Записи змінює лише
// потік оркестратора, тому внутрішньої синхронізації немає.
type Store struct {
	today    map[int64]*domain.DayWindowEntry
	tomorrow map[int64]*domain.DayWindowEntry
}

// NewStore створює порожні вікна.
func NewStore() *Store {
	return &Store{
		today:    make(map[int64]*domain.DayWindowEntry),
		tomorrow: make(map[int64]*domain.DayWindowEntry),
	}
}

// Load наповнює вікна збереженими документами. Запис без ключа schedule
// читається з порожньою мапою: зіпсований стан не має валити процес.
func (s *Store) Load(today, tomorrow []domain.DayWindowEntry) {
	for i := range today {
		entry := today[i]
		if entry.Schedule == nil {
			entry.Schedule = make(map[string][]string)
		}
		s.today[entry.ChannelID] = &entry
	}
	for i := range tomorrow {
		entry := tomorrow[i]
		if entry.Schedule == nil {
			entry.Schedule = make(map[string][]string)
		}
		s.tomorrow[entry.ChannelID] = &entry
	}
}

// Upsert доливає розібране оголошення у вікно. Черги зливаються з уже
// накопиченими, решта черг запису лишається недоторканою. Піднятий прапорець
// аварійних відключень пізніші оголошення не скидають.
func (s *Store) Upsert(bucket Bucket, channel domain.Channel, parsed domain.ParsedSchedule) {
	entries := s.bucket(bucket)
	entry, ok := entries[channel.ID]
	if !ok {
		entry = &domain.DayWindowEntry{
			ChannelID:    channel.ID,
			ChannelName:  channel.Name,
			ScheduleDate: parsed.ScheduleDate,
			ScheduleTime: parsed.ScheduleTime,
			Schedule:     make(map[string][]string),
		}
		entries[channel.ID] = entry
	}
	for queue, periods := range parsed.Schedule {
		entry.Schedule[queue] = interval.Merge(append(append([]string(nil), entry.Schedule[queue]...), periods...))
	}
	entry.ScheduleDate = parsed.ScheduleDate
	entry.ScheduleTime = parsed.ScheduleTime
	entry.Emergency = entry.Emergency || parsed.Emergency
}

// Entry повертає копію запису каналу у вікні.
func (s *Store) Entry(bucket Bucket, channelID int64) (domain.DayWindowEntry, bool) {
	entry, ok := s.bucket(bucket)[channelID]
	if !ok {
		return domain.DayWindowEntry{}, false
	}
	return *entry, true
}

// Snapshot повертає вміст вікна, впорядкований за ідентифікатором каналу.
func (s *Store) Snapshot(bucket Bucket) []domain.DayWindowEntry {
	entries := s.bucket(bucket)
	out := make([]domain.DayWindowEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })
	return out
}

// NeedsRotation перевіряє, чи лишилися у вікні "сьогодні" записи з датою,
// відмінною від поточної. Порожнє вікно обертання не потребує.
func (s *Store) NeedsRotation(todayDate string) bool {
	for _, entry := range s.today {
		if entry.ScheduleDate != todayDate {
			return true
		}
	}
	return false
}

// Rotate архівує вікно "сьогодні" і пересуває "завтра" на його місце,
// примусово ставлячи записам поточну дату. Повертає канали, чий архів
// змінився, і ознаку, що обертання відбулося. Повторний виклик без нових
// повідомлень нічого не робить: дати вже збігаються, а дублікати відсікає
// Archive.Append.
func (s *Store) Rotate(todayDate string, archive *Archive) ([]int64, bool) {
	if !s.NeedsRotation(todayDate) {
		return nil, false
	}
	var archived []int64
	for _, entry := range s.today {
		appended := archive.Append(domain.HistoryEntry{
			ChannelID:    entry.ChannelID,
			ChannelName:  entry.ChannelName,
			ScheduleDate: entry.ScheduleDate,
			ScheduleTime: entry.ScheduleTime,
			Schedule:     entry.Schedule,
			Emergency:    entry.Emergency,
		})
		if appended {
			archived = append(archived, entry.ChannelID)
		}
	}
	s.today = s.tomorrow
	for _, entry := range s.today {
		entry.ScheduleDate = todayDate
	}
	s.tomorrow = make(map[int64]*domain.DayWindowEntry)
	sort.Slice(archived, func(i, j int) bool { return archived[i] < archived[j] })
	return archived, true
}

func (s *Store) bucket(bucket Bucket) map[int64]*domain.DayWindowEntry {
	if bucket == BucketTomorrow {
		return s.tomorrow
	}
	return s.today
}
