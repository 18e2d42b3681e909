package telegram

import (
	"strings"
	"testing"

	"svitlo-monitor/internal/domain"
)

func TestFormatEmergency(t *testing.T) {
	channel := domain.Channel{ID: 1, Name: "Обленерго", Handle: "oblenergo"}
	entry := domain.DayWindowEntry{
		ScheduleDate: "2026-08-31",
		Schedule: map[string][]string{
			"2": {"14:00-16:00"},
			"1": {"08:00-10:00", "18:00-20:00"},
		},
	}
	text := FormatEmergency(channel, entry)
	lines := strings.Split(text, "\n")
	if len(lines) != 3 {
		t.Fatalf("очікували 3 рядки, отримали %q", text)
	}
	if !strings.Contains(lines[0], "Обленерго") || !strings.Contains(lines[0], "2026-08-31") {
		t.Fatalf("заголовок: %s", lines[0])
	}
	if lines[1] != "Черга 1: 08:00-10:00, 18:00-20:00" {
		t.Fatalf("черги мають іти за порядком: %s", lines[1])
	}
}

func TestFormatEmergencyFallsBackToHandle(t *testing.T) {
	text := FormatEmergency(domain.Channel{Handle: "oblenergo"}, domain.DayWindowEntry{ScheduleDate: "2026-08-31"})
	if !strings.Contains(text, "oblenergo") {
		t.Fatalf("без назви використовується handle: %s", text)
	}
}
