package mtproto

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"

	"svitlo-monitor/internal/domain"
	"svitlo-monitor/internal/infra/metrics"
)

// ErrNotAuthorized повертається, коли сесія MTProto не авторизована.
var ErrNotAuthorized = errors.New("mtproto: сесія не авторизована, імпортуйте файл сесії")

// Source читає історію каналів через gotd. Доступові хеші каналів кешуються
// на час життя процесу, щоб не смикати resolve на кожному циклі.
type Source struct {
	client *telegram.Client
	log    zerolog.Logger

	mu    sync.Mutex
	peers map[string]*tg.InputPeerChannel
}

var _ domain.MessageSource = (*Source)(nil)

// NewSource створює MTProto клієнт із файловою сесією.
func NewSource(apiID int, apiHash, sessionFile string, log zerolog.Logger) *Source {
	client := telegram.NewClient(apiID, apiHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: sessionFile},
	})
	return &Source{
		client: client,
		log:    log,
		peers:  make(map[string]*tg.InputPeerChannel),
	}
}

// Run тримає з'єднання з Telegram відкритим на час роботи fn.
// GetRecentMessages можна викликати лише зсередини fn.
func (s *Source) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.client.Run(ctx, func(ctx context.Context) error {
		status, err := s.client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("перевірка авторизації: %w", err)
		}
		if !status.Authorized {
			return ErrNotAuthorized
		}
		return fn(ctx)
	})
}

// GetRecentMessages повертає останні текстові повідомлення каналу,
// найновіші першими. Кожен виклик читає історію з голови заново.
func (s *Source) GetRecentMessages(ctx context.Context, handle string, limit int) ([]domain.RawMessage, error) {
	peer, err := s.resolvePeer(ctx, handle)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	history, err := s.client.API().MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  peer,
		Limit: limit,
	})
	metrics.ObserveNetworkRequest("mtproto", "messages_get_history", handle, start, err)
	if err != nil {
		return nil, fmt.Errorf("історія каналу %s: %w", handle, err)
	}

	channelMessages, ok := history.(*tg.MessagesChannelMessages)
	if !ok {
		return nil, fmt.Errorf("історія каналу %s: неочікуваний тип %T", handle, history)
	}

	out := make([]domain.RawMessage, 0, len(channelMessages.Messages))
	for _, raw := range channelMessages.Messages {
		message, ok := raw.(*tg.Message)
		if !ok || message.Message == "" {
			continue
		}
		out = append(out, domain.RawMessage{
			PublishedAt: time.Unix(int64(message.Date), 0).UTC(),
			Text:        message.Message,
		})
	}
	return out, nil
}

func (s *Source) resolvePeer(ctx context.Context, handle string) (*tg.InputPeerChannel, error) {
	s.mu.Lock()
	peer, ok := s.peers[handle]
	s.mu.Unlock()
	if ok {
		return peer, nil
	}

	start := time.Now()
	resolved, err := s.client.API().ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: handle,
	})
	metrics.ObserveNetworkRequest("mtproto", "contacts_resolve_username", handle, start, err)
	if err != nil {
		return nil, fmt.Errorf("resolve каналу %s: %w", handle, err)
	}

	for _, chat := range resolved.Chats {
		channel, ok := chat.(*tg.Channel)
		if !ok {
			continue
		}
		peer = &tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash}
		s.mu.Lock()
		s.peers[handle] = peer
		s.mu.Unlock()
		s.log.Debug().Str("handle", handle).Int64("channel_id", channel.ID).Msg("mtproto: канал знайдено")
		return peer, nil
	}
	return nil, fmt.Errorf("канал %s не знайдено серед публічних", handle)
}
