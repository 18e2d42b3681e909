package domain

import (
	"context"
	"time"
)

// MessageSource повертає останні повідомлення каналу, найновіші першими.
// Кожен виклик читає історію з голови заново.
type MessageSource interface {
	GetRecentMessages(ctx context.Context, handle string, limit int) ([]RawMessage, error)
}

// ScheduleExtractor перетворює текст оголошення в ParsedSchedule.
// Друге значення false, коли повідомлення не є розкладом або з нього не
// вдалося дістати дату чи жодної черги.
type ScheduleExtractor interface {
	Extract(msg RawMessage, ref time.Time) (ParsedSchedule, bool)
}

// WindowRepo зберігає документи вікон "сьогодні" та "завтра".
// Відсутній або зіпсований документ читається як порожня колекція.
type WindowRepo interface {
	LoadWindow(ctx context.Context, bucket string) ([]DayWindowEntry, error)
	SaveWindow(ctx context.Context, bucket string, entries []DayWindowEntry) error
}

// HistoryRepo зберігає архів розкладів, по документу на канал.
type HistoryRepo interface {
	LoadHistory(ctx context.Context, channelID int64) ([]HistoryEntry, error)
	SaveHistory(ctx context.Context, channelID int64, entries []HistoryEntry) error
}

// StatusStore публікує стан циклу для процесу API.
type StatusStore interface {
	SetStatus(status CycleStatus) error
	GetStatus() (CycleStatus, error)
}

// RefreshQueue передає запити на позачерговий цикл від API до збирача.
type RefreshQueue interface {
	Enqueue(ctx context.Context, job RefreshJob) error
	Pop(ctx context.Context) (RefreshJob, error)
}

// Notifier сповіщає про щойно оголошені аварійні відключення.
type Notifier interface {
	NotifyEmergency(channel Channel, entry DayWindowEntry) error
}
