package interval

import (
	"fmt"
	"sort"
	"strings"
)

const minutesPerDay = 24 * 60

// Span — період відключення у хвилинах від початку доби.
// Якщо період переходить через північ, End більший за minutesPerDay.
type Span struct {
	Start int
	End   int
}

// ToInterval розбирає період виду "HH:MM-HH:MM". Якщо кінець не пізніший за
// початок, період вважається таким, що переходить через північ.
// Другим значенням повертає false для зіпсованого тексту.
func ToInterval(period string) (Span, bool) {
	parts := strings.SplitN(strings.TrimSpace(period), "-", 2)
	if len(parts) != 2 {
		return Span{}, false
	}
	start, ok := clockMinutes(parts[0])
	if !ok {
		return Span{}, false
	}
	end, ok := clockMinutes(parts[1])
	if !ok {
		return Span{}, false
	}
	if end <= start {
		end += minutesPerDay
	}
	return Span{Start: start, End: end}, true
}

// Merge зливає періоди, що перетинаються або дотикаються, і повертає їх
// відсортованими за початком. Зіпсовані періоди мовчки відкидаються.
// Результат не залежить від порядку входу.
func Merge(periods []string) []string {
	spans := make([]Span, 0, len(periods))
	for _, p := range periods {
		if span, ok := ToInterval(p); ok {
			spans = append(spans, span)
		}
	}
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start == spans[j].Start {
			return spans[i].End < spans[j].End
		}
		return spans[i].Start < spans[j].Start
	})

	merged := spans[:1]
	for _, span := range spans[1:] {
		last := &merged[len(merged)-1]
		if span.Start <= last.End {
			if span.End > last.End {
				last.End = span.End
			}
			continue
		}
		merged = append(merged, span)
	}

	// Хвіст, що перейшов через північ, накриває ранок наступної доби і
	// може дотягуватися до найраніших періодів у списку. Лише останній
	// період може виходити за межі доби: будь-який раніший перетнувся б
	// із наступниками ще в лінійному проході.
	for len(merged) > 1 {
		last := &merged[len(merged)-1]
		first := merged[0]
		if last.End <= minutesPerDay || first.Start+minutesPerDay > last.End {
			break
		}
		if first.End+minutesPerDay > last.End {
			last.End = first.End + minutesPerDay
		}
		merged = merged[1:]
	}

	out := make([]string, 0, len(merged))
	for _, span := range merged {
		out = append(out, render(span))
	}
	return out
}

func clockMinutes(text string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(text), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, ok := parseTwoDigits(parts[0])
	if !ok || hour > 23 {
		return 0, false
	}
	minute, ok := parseTwoDigits(parts[1])
	if !ok || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func parseTwoDigits(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if len(text) == 0 || len(text) > 2 {
		return 0, false
	}
	value := 0
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
		value = value*10 + int(r-'0')
	}
	return value, true
}

// render показує злитий період у 24-годинному форматі. Кінець береться за
// модулем доби, тому період через північ не містить маркера наступного дня.
func render(span Span) string {
	end := span.End % minutesPerDay
	return fmt.Sprintf("%02d:%02d-%02d:%02d", span.Start/60, span.Start%60, end/60, end%60)
}
