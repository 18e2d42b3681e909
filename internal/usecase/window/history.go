package window

import (
	"sort"

	"svitlo-monitor/internal/domain"
)

// Archive — архів добових розкладів по каналах. Записи впорядковані за датою
// спаданням; унікальність пари (канал, дата) є ключовою властивістю.
type Archive struct {
	entries map[int64][]domain.HistoryEntry
}

// NewArchive створює порожній архів.
func NewArchive() *Archive {
	return &Archive{entries: make(map[int64][]domain.HistoryEntry)}
}

// Load наповнює архів каналу збереженим документом.
func (a *Archive) Load(channelID int64, entries []domain.HistoryEntry) {
	a.entries[channelID] = append([]domain.HistoryEntry(nil), entries...)
	a.sortChannel(channelID)
}

// Append додає запис, якщо для каналу ще немає запису з тією ж датою.
// Дублікат мовчки відкидається, архів лишається незмінним.
func (a *Archive) Append(entry domain.HistoryEntry) bool {
	for _, existing := range a.entries[entry.ChannelID] {
		if existing.ScheduleDate == entry.ScheduleDate {
			return false
		}
	}
	a.entries[entry.ChannelID] = append(a.entries[entry.ChannelID], entry)
	a.sortChannel(entry.ChannelID)
	return true
}

// Channel повертає копію архіву каналу, найновіші записи першими.
func (a *Archive) Channel(channelID int64) []domain.HistoryEntry {
	return append([]domain.HistoryEntry(nil), a.entries[channelID]...)
}

// Channels повертає ідентифікатори каналів, що мають архів.
func (a *Archive) Channels() []int64 {
	ids := make([]int64, 0, len(a.entries))
	for id := range a.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (a *Archive) sortChannel(channelID int64) {
	entries := a.entries[channelID]
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ScheduleDate > entries[j].ScheduleDate
	})
}
