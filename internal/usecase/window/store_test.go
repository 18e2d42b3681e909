package window

import (
	"reflect"
	"testing"

	"svitlo-monitor/internal/domain"
)

var testChannel = domain.Channel{ID: 1, Name: "Обленерго", Handle: "oblenergo"}

func TestUpsertProgressiveMerge(t *testing.T) {
	store := NewStore()
	store.Upsert(BucketToday, testChannel, domain.ParsedSchedule{
		ChannelID:    1,
		ScheduleDate: "2026-08-31",
		ScheduleTime: "08:00:00",
		Schedule:     map[string][]string{"1": {"10:00-12:00"}},
	})
	store.Upsert(BucketToday, testChannel, domain.ParsedSchedule{
		ChannelID:    1,
		ScheduleDate: "2026-08-31",
		ScheduleTime: "09:00:00",
		Schedule:     map[string][]string{"2": {"14:00-16:00"}},
	})

	entry, ok := store.Entry(BucketToday, 1)
	if !ok {
		t.Fatalf("очікували запис для каналу")
	}
	if !reflect.DeepEqual(entry.Schedule["1"], []string{"10:00-12:00"}) {
		t.Fatalf("черга 1 мала лишитися недоторканою: %v", entry.Schedule["1"])
	}
	if !reflect.DeepEqual(entry.Schedule["2"], []string{"14:00-16:00"}) {
		t.Fatalf("черга 2 мала додатися: %v", entry.Schedule["2"])
	}
	if entry.ScheduleTime != "09:00:00" {
		t.Fatalf("час спостереження мав оновитися: %s", entry.ScheduleTime)
	}
}

func TestUpsertMergesSameQueue(t *testing.T) {
	store := NewStore()
	store.Upsert(BucketToday, testChannel, domain.ParsedSchedule{
		ChannelID: 1, ScheduleDate: "2026-08-31",
		Schedule: map[string][]string{"3": {"08:00-10:00"}},
	})
	store.Upsert(BucketToday, testChannel, domain.ParsedSchedule{
		ChannelID: 1, ScheduleDate: "2026-08-31",
		Schedule: map[string][]string{"3": {"09:00-11:00"}},
	})
	entry, _ := store.Entry(BucketToday, 1)
	if !reflect.DeepEqual(entry.Schedule["3"], []string{"08:00-11:00"}) {
		t.Fatalf("очікували злитий період, отримали %v", entry.Schedule["3"])
	}
}

func TestUpsertEmergencyNeverCleared(t *testing.T) {
	store := NewStore()
	store.Upsert(BucketToday, testChannel, domain.ParsedSchedule{
		ChannelID: 1, ScheduleDate: "2026-08-31",
		Schedule: map[string][]string{"1": {"10:00-12:00"}}, Emergency: true,
	})
	store.Upsert(BucketToday, testChannel, domain.ParsedSchedule{
		ChannelID: 1, ScheduleDate: "2026-08-31",
		Schedule: map[string][]string{"1": {"12:00-14:00"}}, Emergency: false,
	})
	entry, _ := store.Entry(BucketToday, 1)
	if !entry.Emergency {
		t.Fatalf("піднятий прапорець не мав скинутися")
	}
}

func TestLoadDefaultsMissingSchedule(t *testing.T) {
	store := NewStore()
	store.Load(
		[]domain.DayWindowEntry{{ChannelID: 1, ScheduleDate: "2026-08-31"}},
		[]domain.DayWindowEntry{{ChannelID: 1, ScheduleDate: "2026-09-01"}},
	)

	store.Upsert(BucketToday, testChannel, domain.ParsedSchedule{
		ChannelID: 1, ScheduleDate: "2026-08-31",
		Schedule: map[string][]string{"1": {"10:00-12:00"}},
	})
	store.Upsert(BucketTomorrow, testChannel, domain.ParsedSchedule{
		ChannelID: 1, ScheduleDate: "2026-09-01",
		Schedule: map[string][]string{"2": {"14:00-16:00"}},
	})

	entry, _ := store.Entry(BucketToday, 1)
	if !reflect.DeepEqual(entry.Schedule["1"], []string{"10:00-12:00"}) {
		t.Fatalf("запис без мапи розкладу мав прийняти чергу: %v", entry.Schedule)
	}
	entry, _ = store.Entry(BucketTomorrow, 1)
	if !reflect.DeepEqual(entry.Schedule["2"], []string{"14:00-16:00"}) {
		t.Fatalf("запис без мапи розкладу мав прийняти чергу: %v", entry.Schedule)
	}
}

func TestRotateMovesTomorrowIntoToday(t *testing.T) {
	store := NewStore()
	archive := NewArchive()
	store.Upsert(BucketToday, testChannel, domain.ParsedSchedule{
		ChannelID: 1, ScheduleDate: "2026-08-30", ScheduleTime: "20:00:00",
		Schedule: map[string][]string{"1": {"10:00-12:00"}},
	})
	store.Upsert(BucketTomorrow, testChannel, domain.ParsedSchedule{
		ChannelID: 1, ScheduleDate: "2026-08-31", ScheduleTime: "21:00:00",
		Schedule: map[string][]string{"2": {"14:00-16:00"}},
	})

	archived, rotated := store.Rotate("2026-08-31", archive)
	if !rotated || !reflect.DeepEqual(archived, []int64{1}) {
		t.Fatalf("очікували архівацію каналу 1, отримали %v (rotated=%v)", archived, rotated)
	}

	entry, ok := store.Entry(BucketToday, 1)
	if !ok {
		t.Fatalf("після обертання 'завтра' мало стати 'сьогодні'")
	}
	if entry.ScheduleDate != "2026-08-31" {
		t.Fatalf("дата мала бути примусово виставлена: %s", entry.ScheduleDate)
	}
	if _, ok := entry.Schedule["2"]; !ok {
		t.Fatalf("очікували розклад із завтрашнього вікна")
	}
	if len(store.Snapshot(BucketTomorrow)) != 0 {
		t.Fatalf("вікно 'завтра' мало спорожніти")
	}

	history := archive.Channel(1)
	if len(history) != 1 || history[0].ScheduleDate != "2026-08-30" {
		t.Fatalf("в архіві мав опинитися вчорашній розклад: %v", history)
	}
}

func TestRotateIdempotent(t *testing.T) {
	store := NewStore()
	archive := NewArchive()
	store.Upsert(BucketToday, testChannel, domain.ParsedSchedule{
		ChannelID: 1, ScheduleDate: "2026-08-30",
		Schedule: map[string][]string{"1": {"10:00-12:00"}},
	})

	store.Rotate("2026-08-31", archive)
	todayAfterFirst := store.Snapshot(BucketToday)
	historyAfterFirst := archive.Channel(1)

	if archived, rotated := store.Rotate("2026-08-31", archive); rotated {
		t.Fatalf("повторне обертання зайве: %v", archived)
	}
	if !reflect.DeepEqual(store.Snapshot(BucketToday), todayAfterFirst) {
		t.Fatalf("повторне обертання зіпсувало вікно 'сьогодні'")
	}
	if !reflect.DeepEqual(archive.Channel(1), historyAfterFirst) {
		t.Fatalf("повторне обертання продублювало архів")
	}
}

func TestRotateEmptyTodayLeavesGap(t *testing.T) {
	store := NewStore()
	archive := NewArchive()
	store.Upsert(BucketTomorrow, testChannel, domain.ParsedSchedule{
		ChannelID: 1, ScheduleDate: "2026-08-31",
		Schedule: map[string][]string{"1": {"10:00-12:00"}},
	})

	if archived, rotated := store.Rotate("2026-08-31", archive); rotated {
		t.Fatalf("порожнє вікно 'сьогодні' не обертається: %v", archived)
	}
	if _, ok := store.Entry(BucketToday, 1); ok {
		t.Fatalf("без розбіжності дат обертання не відбувається")
	}
}

func TestArchiveUniquePerDate(t *testing.T) {
	archive := NewArchive()
	entry := domain.HistoryEntry{ChannelID: 1, ScheduleDate: "2026-08-30", Schedule: map[string][]string{"1": {"10:00-12:00"}}}
	if !archive.Append(entry) {
		t.Fatalf("перший запис мав додатися")
	}
	if archive.Append(entry) {
		t.Fatalf("дублікат мав бути відкинутий")
	}
	if len(archive.Channel(1)) != 1 {
		t.Fatalf("довжина архіву мала лишитися 1")
	}
}

func TestArchiveSortedNewestFirst(t *testing.T) {
	archive := NewArchive()
	archive.Append(domain.HistoryEntry{ChannelID: 1, ScheduleDate: "2026-08-28"})
	archive.Append(domain.HistoryEntry{ChannelID: 1, ScheduleDate: "2026-08-30"})
	archive.Append(domain.HistoryEntry{ChannelID: 1, ScheduleDate: "2026-08-29"})
	entries := archive.Channel(1)
	dates := []string{entries[0].ScheduleDate, entries[1].ScheduleDate, entries[2].ScheduleDate}
	if !reflect.DeepEqual(dates, []string{"2026-08-30", "2026-08-29", "2026-08-28"}) {
		t.Fatalf("очікували спадний порядок дат, отримали %v", dates)
	}
}
