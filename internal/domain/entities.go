package domain

import "time"

// Channel описує Telegram-канал обленерго, з якого збираються оголошення.
type Channel struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

// RawMessage представляє одне повідомлення каналу до класифікації.
type RawMessage struct {
	ChannelID   int64
	PublishedAt time.Time
	Text        string
}

// ParsedSchedule — результат розбору одного оголошення про відключення.
// Після створення не змінюється.
type ParsedSchedule struct {
	ChannelID    int64
	ScheduleDate string
	ScheduleTime string
	Schedule     map[string][]string
	Emergency    bool
}

// DayWindowEntry — накопичений розклад каналу на одну добу ("сьогодні" або
// "завтра"). Повторні оголошення про ту саму дату доливаються в Schedule.
type DayWindowEntry struct {
	ChannelID    int64               `json:"channel_id"`
	ChannelName  string              `json:"channel_name,omitempty"`
	ScheduleDate string              `json:"schedule_date"`
	ScheduleTime string              `json:"schedule_time"`
	Schedule     map[string][]string `json:"schedule"`
	Emergency    bool                `json:"emergency_outages"`
}

// HistoryEntry — фіналізований добовий розклад в архіві каналу.
// Пара (канал, дата) зустрічається в архіві не більше одного разу.
type HistoryEntry struct {
	ChannelID    int64               `json:"channel_id"`
	ChannelName  string              `json:"channel_name,omitempty"`
	ScheduleDate string              `json:"schedule_date"`
	ScheduleTime string              `json:"schedule_time"`
	Schedule     map[string][]string `json:"schedule"`
	Emergency    bool                `json:"emergency_outages"`
}

// CycleStatus — стан останнього циклу збору, який читає API.
type CycleStatus struct {
	Running     bool       `json:"running"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	OKChannels  int        `json:"ok_channels"`
	ErrChannels int        `json:"err_channels"`
	LastError   string     `json:"last_error,omitempty"`
}

// RefreshJob — запит на позачерговий цикл збору.
type RefreshJob struct {
	ID          string    `json:"id"`
	Cause       string    `json:"cause"`
	RequestedAt time.Time `json:"requested_at"`
}

// Причини запуску позачергового циклу.
const (
	RefreshCauseManual = "manual"
	RefreshCauseAPI    = "api"
)
