package parse

import "strings"

// Ключові фрази оголошень про графіки відключень.
var announcementKeywords = []string{
	"графік погодинних відключень",
	"графіки погодинних відключень",
	"графік відключень",
	"оновлений графік",
	"оновлено графік",
	"гпв",
}

// Фрази про застосування аварійних відключень та їх скасування.
var (
	emergencyPositive = []string{
		"аварійні відключення застосовано",
		"застосовано аварійні відключення",
		"діють аварійні відключення",
		"аварійні відключення діють",
	}
	emergencyNegative = []string{
		"скасовано",
		"відмінено",
		"не застосовуються",
		"не застосовано",
		"не діють",
	}
)

// IsScheduleAnnouncement вирішує, чи є текст оголошенням розкладу.
// Порожній текст ніколи не збігається.
func IsScheduleAnnouncement(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range announcementKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsEmergencyActive шукає речення, у якому аварійні відключення оголошено
// чинними і в тому ж реченні немає скасування. Скасування в іншому реченні
// не гасить позитивне твердження.
func IsEmergencyActive(text string) bool {
	if text == "" {
		return false
	}
	segments := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == '\n' || r == '.' || r == '!' || r == '?'
	})
	for _, segment := range segments {
		if !containsAny(segment, emergencyPositive) {
			continue
		}
		if containsAny(segment, emergencyNegative) {
			continue
		}
		return true
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
