package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"svitlo-monitor/internal/domain"
	"svitlo-monitor/internal/usecase/interval"
)

// Назви місяців у родовому відмінку, як вони трапляються в оголошеннях.
var monthNumbers = map[string]time.Month{
	"січня":     time.January,
	"лютого":    time.February,
	"березня":   time.March,
	"квітня":    time.April,
	"травня":    time.May,
	"червня":    time.June,
	"липня":     time.July,
	"серпня":    time.August,
	"вересня":   time.September,
	"жовтня":    time.October,
	"листопада": time.November,
	"грудня":    time.December,
}

var (
	dateRe      = regexp.MustCompile(`(\d{1,2})\s+([а-яіїєґА-ЯІЇЄҐ]+)`)
	queueLineRe = regexp.MustCompile(`^([0-6](?:\.[12])?)(?:\s*черга)?[\s:\-)]+(\d{1,2}:\d{2}.*)$`)
	periodRe    = regexp.MustCompile(`(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)
	dashRe      = regexp.MustCompile(`[–—−‒]`)
)

// Normalize зводить варіанти тире до дефіса та нерозривні пробіли до звичайних.
func Normalize(text string) string {
	text = dashRe.ReplaceAllString(text, "-")
	return strings.Map(func(r rune) rune {
		if r == '\u00a0' {
			return ' '
		}
		return r
	}, text)
}

// ParseDate шукає в тексті дату виду "<число> <місяць>" і добудовує рік.
// Другим значенням повертає false, якщо дати немає.
func ParseDate(text string, referenceYear int) (string, bool) {
	for _, match := range dateRe.FindAllStringSubmatch(text, -1) {
		day, err := strconv.Atoi(match[1])
		if err != nil || day < 1 || day > 31 {
			continue
		}
		month, ok := monthNumbers[strings.ToLower(strings.TrimRight(match[2], ",.!?:;"))]
		if !ok {
			continue
		}
		return fmt.Sprintf("%04d-%02d-%02d", referenceYear, int(month), day), true
	}
	return "", false
}

// ParseQueues дістає з тексту мапу "черга -> періоди". Текст обробляється
// порядково: рядок враховується, коли починається з токена черги і містить
// час. Рядки іншого вигляду ігноруються, тому заголовок не обов'язковий.
// Порожня мапа означає "розкладу не знайдено".
func ParseQueues(text string) map[string][]string {
	queues := make(map[string][]string)
	for _, line := range strings.Split(Normalize(text), "\n") {
		line = strings.TrimSpace(stripDecorations(line))
		match := queueLineRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		periods := extractPeriods(match[2])
		if len(periods) == 0 {
			continue
		}
		queue := match[1]
		queues[queue] = interval.Merge(append(queues[queue], periods...))
	}
	if len(queues) == 0 {
		return nil
	}
	return queues
}

// extractPeriods ділить залишок рядка на кандидатів за першим знайденим
// роздільником і лишає тільки валідні пари HH:MM-HH:MM.
func extractPeriods(rest string) []string {
	var candidates []string
	switch {
	case strings.Contains(rest, ","):
		candidates = strings.Split(rest, ",")
	case strings.Contains(rest, ";"):
		candidates = strings.Split(rest, ";")
	default:
		candidates = []string{rest}
	}
	var periods []string
	for _, candidate := range candidates {
		match := periodRe.FindStringSubmatch(candidate)
		if match == nil {
			continue
		}
		period := match[1] + "-" + match[2]
		if _, ok := interval.ToInterval(period); ok {
			periods = append(periods, period)
		}
	}
	return periods
}

// stripDecorations прибирає маркери списків та емодзі на кшталт "⚡" і "✅".
func stripDecorations(line string) string {
	return strings.Map(func(r rune) rune {
		if r == '•' || r == '▪' || r == '◦' || r == '‣' || r == '*' {
			return -1
		}
		if unicode.Is(unicode.So, r) {
			return -1
		}
		return r
	}, line)
}

// Extractor реалізує стратегію розбору оголошень обленерго.
type Extractor struct{}

var _ domain.ScheduleExtractor = (*Extractor)(nil)

// NewExtractor створює стратегію розбору.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract перетворює повідомлення в ParsedSchedule. Повертає false, коли
// повідомлення не є оголошенням розкладу або з нього не вдалося дістати
// дату чи жодної черги.
func (e *Extractor) Extract(msg domain.RawMessage, ref time.Time) (domain.ParsedSchedule, bool) {
	if !IsScheduleAnnouncement(msg.Text) {
		return domain.ParsedSchedule{}, false
	}
	normalized := Normalize(msg.Text)
	date, ok := ParseDate(normalized, ref.Year())
	if !ok {
		return domain.ParsedSchedule{}, false
	}
	queues := ParseQueues(normalized)
	if len(queues) == 0 {
		return domain.ParsedSchedule{}, false
	}
	return domain.ParsedSchedule{
		ChannelID:    msg.ChannelID,
		ScheduleDate: date,
		ScheduleTime: msg.PublishedAt.In(ref.Location()).Format("15:04:05"),
		Schedule:     queues,
		Emergency:    IsEmergencyActive(msg.Text),
	}, true
}
