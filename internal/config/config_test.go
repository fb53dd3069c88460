package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MIN_PRICE_RATIO", "")
	t.Setenv("DEPOSIT_RATE", "0.15")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CHAT_POLL_INTERVAL", "not-a-duration")

	cfg := Load()

	if cfg.MinPriceRatio != 0.8 {
		t.Fatalf("expected default min price ratio 0.8, got %v", cfg.MinPriceRatio)
	}
	if cfg.DepositRate != 0.15 {
		t.Fatalf("expected deposit rate 0.15, got %v", cfg.DepositRate)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers: %#v", cfg.KafkaBrokers)
	}
	if cfg.ChatPollInterval != 3*time.Second {
		t.Fatalf("expected fallback poll interval, got %v", cfg.ChatPollInterval)
	}
}
