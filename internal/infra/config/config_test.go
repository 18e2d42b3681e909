package config

import (
	"errors"
	"testing"
	"time"
)

func TestParseChannels(t *testing.T) {
	cfg := AppConfig{Channels: `[{"id":1,"name":"Обленерго","handle":"oblenergo"},{"id":2,"name":"Міськсвітло","handle":"misksvitlo"}]`}
	channels, err := cfg.ParseChannels()
	if err != nil {
		t.Fatalf("не очікували помилку: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("очікували 2 канали, отримали %d", len(channels))
	}
	if channels[0].Handle != "oblenergo" {
		t.Fatalf("очікували handle oblenergo, отримали %s", channels[0].Handle)
	}
}

func TestParseChannelsEmpty(t *testing.T) {
	for _, raw := range []string{"", "  ", "[]"} {
		cfg := AppConfig{Channels: raw}
		if _, err := cfg.ParseChannels(); !errors.Is(err, ErrNoChannels) {
			t.Fatalf("очікували ErrNoChannels для %q, отримали %v", raw, err)
		}
	}
}

func TestParseChannelsMalformed(t *testing.T) {
	cfg := AppConfig{Channels: `{"id":1}`}
	if _, err := cfg.ParseChannels(); err == nil {
		t.Fatalf("очікували помилку розбору")
	}
}

func TestParseChannelsDuplicate(t *testing.T) {
	cfg := AppConfig{Channels: `[{"id":1,"handle":"a"},{"id":1,"handle":"b"}]`}
	if _, err := cfg.ParseChannels(); err == nil {
		t.Fatalf("очікували помилку про дубль каналу")
	}
}

func TestLocation(t *testing.T) {
	cfg := AppConfig{TimezoneOffset: 3}
	_, offset := time.Now().In(cfg.Location()).Zone()
	if offset != 3*3600 {
		t.Fatalf("очікували зсув 10800 секунд, отримали %d", offset)
	}
}
