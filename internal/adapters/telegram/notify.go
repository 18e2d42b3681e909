package telegram

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"svitlo-monitor/internal/domain"
	"svitlo-monitor/internal/infra/metrics"
)

// Notifier надсилає сповіщення про аварійні відключення в чат адміністратора.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

var _ domain.Notifier = (*Notifier)(nil)

// NewNotifier створює сповіщувач.
func NewNotifier(bot *tgbotapi.BotAPI, chatID int64, log zerolog.Logger) *Notifier {
	return &Notifier{bot: bot, chatID: chatID, log: log}
}

// NotifyEmergency надсилає повідомлення про щойно оголошені аварійні
// відключення в каналі.
func (n *Notifier) NotifyEmergency(channel domain.Channel, entry domain.DayWindowEntry) error {
	msg := tgbotapi.NewMessage(n.chatID, FormatEmergency(channel, entry))
	start := time.Now()
	_, err := n.bot.Send(msg)
	metrics.ObserveNetworkRequest("telegram_bot", "send_message", channel.Handle, start, err)
	if err != nil {
		return fmt.Errorf("надсилання сповіщення: %w", err)
	}
	n.log.Info().Int64("channel", channel.ID).Msg("notify: сповіщення про аварійні відключення надіслано")
	return nil
}

// FormatEmergency будує текст сповіщення з поточним розкладом каналу.
func FormatEmergency(channel domain.Channel, entry domain.DayWindowEntry) string {
	var b strings.Builder
	name := channel.Name
	if name == "" {
		name = channel.Handle
	}
	fmt.Fprintf(&b, "Аварійні відключення: %s, %s\n", name, entry.ScheduleDate)

	queues := make([]string, 0, len(entry.Schedule))
	for queue := range entry.Schedule {
		queues = append(queues, queue)
	}
	sort.Strings(queues)
	for _, queue := range queues {
		fmt.Fprintf(&b, "Черга %s: %s\n", queue, strings.Join(entry.Schedule[queue], ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
