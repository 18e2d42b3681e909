package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"svitlo-monitor/internal/domain"
	"svitlo-monitor/internal/infra/metrics"
)

// Postgres зберігає вікна та архіви як jsonb-документи: по документу на
// колекцію, як у вихідному json-сховищі. Відсутній або зіпсований документ
// читається як порожня колекція і виправляється наступним записом.
type Postgres struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

var (
	_ domain.WindowRepo  = (*Postgres)(nil)
	_ domain.HistoryRepo = (*Postgres)(nil)
)

// NewPostgres створює адаптер БД.
func NewPostgres(pool *pgxpool.Pool, log zerolog.Logger) *Postgres {
	return &Postgres{pool: pool, log: log}
}

// EnsureSchema створює таблицю документів, якщо її ще немає.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS documents (
    name       text PRIMARY KEY,
    payload    jsonb NOT NULL,
    updated_at timestamptz NOT NULL DEFAULT now()
)
`)
	if err != nil {
		return fmt.Errorf("створення таблиці documents: %w", err)
	}
	return nil
}

// LoadWindow читає документ вікна.
func (p *Postgres) LoadWindow(ctx context.Context, bucket string) ([]domain.DayWindowEntry, error) {
	var entries []domain.DayWindowEntry
	if err := p.loadDocument(ctx, windowDocument(bucket), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveWindow зберігає документ вікна цілком.
func (p *Postgres) SaveWindow(ctx context.Context, bucket string, entries []domain.DayWindowEntry) error {
	if entries == nil {
		entries = []domain.DayWindowEntry{}
	}
	return p.saveDocument(ctx, windowDocument(bucket), entries)
}

// LoadHistory читає документ архіву каналу.
func (p *Postgres) LoadHistory(ctx context.Context, channelID int64) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	if err := p.loadDocument(ctx, historyDocument(channelID), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveHistory зберігає документ архіву каналу цілком.
func (p *Postgres) SaveHistory(ctx context.Context, channelID int64, entries []domain.HistoryEntry) error {
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return p.saveDocument(ctx, historyDocument(channelID), entries)
}

func (p *Postgres) loadDocument(ctx context.Context, name string, out any) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var payload []byte
	start := time.Now()
	err := p.pool.QueryRow(ctx, `SELECT payload FROM documents WHERE name = $1`, name).Scan(&payload)
	metrics.ObserveNetworkRequest("postgres", "document_select", name, start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("читання документа %s: %w", name, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		p.log.Warn().Err(err).Str("document", name).Msg("repo: зіпсований документ, читаємо як порожній")
		return nil
	}
	return nil
}

func (p *Postgres) saveDocument(ctx context.Context, name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("серіалізація документа %s: %w", name, err)
	}

	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err = p.pool.Exec(ctx, `
INSERT INTO documents (name, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
`, name, payload)
	metrics.ObserveNetworkRequest("postgres", "document_upsert", name, start, err)
	if err != nil {
		return fmt.Errorf("запис документа %s: %w", name, err)
	}
	return nil
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 5*time.Second)
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

func windowDocument(bucket string) string {
	return "window_" + bucket
}

func historyDocument(channelID int64) string {
	return fmt.Sprintf("history_%d", channelID)
}
