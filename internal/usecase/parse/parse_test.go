package parse

import (
	"reflect"
	"testing"
	"time"

	"svitlo-monitor/internal/domain"
)

func TestParseDate(t *testing.T) {
	date, ok := ParseDate("Графік відключень на 25 грудня:", 2026)
	if !ok {
		t.Fatalf("очікували дату")
	}
	if date != "2026-12-25" {
		t.Fatalf("очікували 2026-12-25, отримали %s", date)
	}
}

func TestParseDateWithPunctuation(t *testing.T) {
	date, ok := ParseDate("Оновлений графік на 1 Вересня.", 2026)
	if !ok || date != "2026-09-01" {
		t.Fatalf("очікували 2026-09-01, отримали %q (%v)", date, ok)
	}
}

func TestParseDateNone(t *testing.T) {
	for _, text := range []string{"", "Світло буде", "45 грудня", "12 000 абонентів"} {
		if _, ok := ParseDate(text, 2026); ok {
			t.Fatalf("не очікували дату в %q", text)
		}
	}
}

func TestParseQueuesBasic(t *testing.T) {
	text := "Графік на 31 серпня:\n1 черга: 08:00-12:00\n2 черга: 12:00-16:00, 20:00-22:00"
	queues := ParseQueues(text)
	if len(queues) != 2 {
		t.Fatalf("очікували 2 черги, отримали %v", queues)
	}
	if !reflect.DeepEqual(queues["2"], []string{"12:00-16:00", "20:00-22:00"}) {
		t.Fatalf("черга 2: %v", queues["2"])
	}
}

func TestParseQueuesSubQueuesAndDashes(t *testing.T) {
	text := "⚡1.1 — 09:00–13:00\n⚡1.2 — 13:00–17:00"
	queues := ParseQueues(text)
	if !reflect.DeepEqual(queues["1.1"], []string{"09:00-13:00"}) {
		t.Fatalf("черга 1.1: %v", queues["1.1"])
	}
	if !reflect.DeepEqual(queues["1.2"], []string{"13:00-17:00"}) {
		t.Fatalf("черга 1.2: %v", queues["1.2"])
	}
}

func TestParseQueuesNonBreakingSpace(t *testing.T) {
	text := "3 черга: 08:00 - 10:00"
	queues := ParseQueues(text)
	if !reflect.DeepEqual(queues["3"], []string{"08:00-10:00"}) {
		t.Fatalf("черга 3: %v", queues["3"])
	}
}

func TestParseQueuesSemicolon(t *testing.T) {
	queues := ParseQueues("4: 08:00-10:00; 14:00-16:00")
	if !reflect.DeepEqual(queues["4"], []string{"08:00-10:00", "14:00-16:00"}) {
		t.Fatalf("черга 4: %v", queues["4"])
	}
}

func TestParseQueuesIgnoresGarbageLines(t *testing.T) {
	text := "Шановні споживачі!\nЗа командою Укренерго.\n08:00-12:00 без черги\n5 - 10:00-14:00"
	queues := ParseQueues(text)
	if len(queues) != 1 {
		t.Fatalf("очікували лише чергу 5, отримали %v", queues)
	}
	if !reflect.DeepEqual(queues["5"], []string{"10:00-14:00"}) {
		t.Fatalf("черга 5: %v", queues["5"])
	}
}

func TestParseQueuesDropsInvalidCandidates(t *testing.T) {
	queues := ParseQueues("2: 08:00-10:00, до обіду, 25:00-26:00")
	if !reflect.DeepEqual(queues["2"], []string{"08:00-10:00"}) {
		t.Fatalf("черга 2: %v", queues["2"])
	}
}

func TestParseQueuesEmpty(t *testing.T) {
	if queues := ParseQueues("Сьогодні відключень не планується."); queues != nil {
		t.Fatalf("очікували порожню мапу, отримали %v", queues)
	}
}

func TestIsScheduleAnnouncement(t *testing.T) {
	if IsScheduleAnnouncement("") {
		t.Fatalf("порожній текст не є оголошенням")
	}
	if !IsScheduleAnnouncement("ГРАФІК ПОГОДИННИХ ВІДКЛЮЧЕНЬ на завтра") {
		t.Fatalf("очікували збіг без огляду на регістр")
	}
	if !IsScheduleAnnouncement("Оновлений графік на 31 серпня") {
		t.Fatalf("очікували збіг за 'оновлений графік'")
	}
	if IsScheduleAnnouncement("Ремонтні роботи завершено") {
		t.Fatalf("не очікували збігу")
	}
}

func TestIsEmergencyActiveSegmentLocalNegation(t *testing.T) {
	text := "Застосовано аварійні відключення. Попередні графіки скасовано."
	if !IsEmergencyActive(text) {
		t.Fatalf("скасування в іншому реченні не гасить оголошення")
	}
}

func TestIsEmergencyActiveNegatedInSameSegment(t *testing.T) {
	text := "Аварійні відключення скасовано, діють аварійні відключення більше не будуть"
	if IsEmergencyActive(text) {
		t.Fatalf("заперечення в тому ж реченні мало спрацювати")
	}
	if IsEmergencyActive("Аварійні відключення не застосовуються") {
		t.Fatalf("не очікували активних аварійних відключень")
	}
	if IsEmergencyActive("") {
		t.Fatalf("порожній текст")
	}
}

func TestExtract(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	ref := time.Date(2026, 8, 31, 12, 0, 0, 0, loc)
	msg := domain.RawMessage{
		ChannelID:   7,
		PublishedAt: time.Date(2026, 8, 31, 6, 30, 0, 0, time.UTC),
		Text:        "Оновлений графік погодинних відключень на 31 серпня:\n1 черга: 08:00-12:00\n2 черга: 16:00-20:00",
	}
	parsed, ok := NewExtractor().Extract(msg, ref)
	if !ok {
		t.Fatalf("очікували розклад")
	}
	if parsed.ScheduleDate != "2026-08-31" {
		t.Fatalf("дата: %s", parsed.ScheduleDate)
	}
	if parsed.ScheduleTime != "09:30:00" {
		t.Fatalf("час спостереження мав бути в поясі джерела: %s", parsed.ScheduleTime)
	}
	if len(parsed.Schedule) != 2 {
		t.Fatalf("черги: %v", parsed.Schedule)
	}
	if parsed.Emergency {
		t.Fatalf("не очікували аварійних відключень")
	}
}

func TestExtractRejectsNonAnnouncement(t *testing.T) {
	msg := domain.RawMessage{Text: "1 черга: 08:00-12:00"}
	if _, ok := NewExtractor().Extract(msg, time.Now()); ok {
		t.Fatalf("без ключових фраз повідомлення відкидається")
	}
}

func TestExtractRejectsWithoutDateOrQueues(t *testing.T) {
	extractor := NewExtractor()
	noDate := domain.RawMessage{Text: "Оновлений графік відключень:\n1 черга: 08:00-12:00"}
	if _, ok := extractor.Extract(noDate, time.Now()); ok {
		t.Fatalf("без дати повідомлення відкидається")
	}
	noQueues := domain.RawMessage{Text: "Оновлений графік відключень на 31 серпня, деталі згодом"}
	if _, ok := extractor.Extract(noQueues, time.Now()); ok {
		t.Fatalf("без жодної черги повідомлення відкидається")
	}
}
