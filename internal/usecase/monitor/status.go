package monitor

import (
	"sync"
	"time"

	"svitlo-monitor/internal/domain"
)

// StatusRecord — стан циклу з єдиним писарем. Його читає акцесор Current,
// а збирач публікує копію через domain.StatusStore для процесу API.
type StatusRecord struct {
	mu     sync.Mutex
	status domain.CycleStatus
}

// NewStatusRecord створює запис стану.
func NewStatusRecord() *StatusRecord {
	return &StatusRecord{}
}

// Begin позначає цикл як запущений. Повертає false, якщо попередній цикл
// ще триває: перекриття циклів заборонено.
func (r *StatusRecord) Begin(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.Running {
		return false
	}
	started := now
	r.status.Running = true
	r.status.StartedAt = &started
	r.status.FinishedAt = nil
	r.status.OKChannels = 0
	r.status.ErrChannels = 0
	r.status.LastError = ""
	return true
}

// Finish фіксує підсумок циклу.
func (r *StatusRecord) Finish(now time.Time, okChannels, errChannels int, lastError string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	finished := now
	r.status.Running = false
	r.status.FinishedAt = &finished
	r.status.OKChannels = okChannels
	r.status.ErrChannels = errChannels
	r.status.LastError = lastError
	if lastError == "" {
		success := now
		r.status.LastSuccess = &success
	}
}

// Current повертає копію стану.
func (r *StatusRecord) Current() domain.CycleStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}
