package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"svitlo-monitor/internal/domain"
)

// AppConfig описує конфігурацію сервісів.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	Telegram struct {
		APIID   int    `envconfig:"TG_API_ID"`
		APIHash string `envconfig:"TG_API_HASH"`
	} `envconfig:""`

	MTProto struct {
		SessionFile string `envconfig:"MTPROTO_SESSION_FILE" default:"mtproto.session"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	// Channels — JSON-масив каналів обленерго: [{"id":1,"name":"...","handle":"..."}].
	Channels string `envconfig:"CHANNELS"`

	Fetch struct {
		BatchSize      int           `envconfig:"BATCH_SIZE" default:"3"`
		BatchDelay     time.Duration `envconfig:"BATCH_DELAY" default:"5s"`
		LimitMessages  int           `envconfig:"LIMIT_MESSAGES" default:"30"`
		ChannelTimeout time.Duration `envconfig:"CHANNEL_TIMEOUT" default:"20s"`
		CycleTimeout   time.Duration `envconfig:"CYCLE_TIMEOUT" default:"10m"`
		UpdateInterval time.Duration `envconfig:"UPDATE_INTERVAL" default:"15m"`
	} `envconfig:""`

	// TimezoneOffset — години, що додаються до UTC для меж "сьогодні"/"завтра".
	TimezoneOffset int `envconfig:"TIMEZONE_OFFSET" default:"3"`

	Queues struct {
		Refresh string `envconfig:"REFRESH_QUEUE_KEY" default:"refresh_jobs"`
	} `envconfig:""`

	Notify struct {
		BotToken string `envconfig:"NOTIFY_BOT_TOKEN"`
		ChatID   int64  `envconfig:"NOTIFY_CHAT_ID"`
	} `envconfig:""`
}

// ErrNoChannels повертається, коли список каналів порожній або не заданий.
var ErrNoChannels = errors.New("не задано список каналів (CHANNELS)")

// Load завантажує конфіг з оточення.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не вдалося завантажити конфіг: %v", err)
	}
	return cfg
}

// ParseChannels розбирає і валідує список каналів. Порожній або зіпсований
// список — фатальна помилка конфігурації: без каналів цикл не має сенсу.
func (c AppConfig) ParseChannels() ([]domain.Channel, error) {
	raw := strings.TrimSpace(c.Channels)
	if raw == "" {
		return nil, ErrNoChannels
	}
	var channels []domain.Channel
	if err := json.Unmarshal([]byte(raw), &channels); err != nil {
		return nil, fmt.Errorf("розбір CHANNELS: %w", err)
	}
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	seen := make(map[int64]struct{}, len(channels))
	for _, channel := range channels {
		if channel.ID == 0 || strings.TrimSpace(channel.Handle) == "" {
			return nil, fmt.Errorf("канал %+v: потрібні id і handle", channel)
		}
		if _, ok := seen[channel.ID]; ok {
			return nil, fmt.Errorf("канал %d задано двічі", channel.ID)
		}
		seen[channel.ID] = struct{}{}
	}
	return channels, nil
}

// Location повертає часовий пояс джерела за зсувом у годинах.
func (c AppConfig) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", c.TimezoneOffset), c.TimezoneOffset*3600)
}
