package server

import (
	"log/slog"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TCPAddr == "" {
		t.Error("Expected a default TCP address")
	}
	if cfg.WSAddr != "" {
		t.Error("Expected the WebSocket gateway to be disabled by default")
	}
	if cfg.QueueSize != DefaultQueueSize {
		t.Errorf("Expected queue size %d, got %d", DefaultQueueSize, cfg.QueueSize)
	}
	if cfg.MaxClients != 0 {
		t.Error("Expected unlimited clients by default")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("RELAY_TCP_ADDR", "127.0.0.1:9000")
	t.Setenv("RELAY_WS_ADDR", "127.0.0.1:9001")
	t.Setenv("RELAY_QUEUE_SIZE", "128")
	t.Setenv("RELAY_MAX_CLIENTS", "32")
	t.Setenv("RELAY_MCP", "true")
	t.Setenv("RELAY_LOG_LEVEL", "debug")

	cfg := ConfigFromEnv()

	if cfg.TCPAddr != "127.0.0.1:9000" {
		t.Errorf("Expected TCP addr from env, got %q", cfg.TCPAddr)
	}
	if cfg.WSAddr != "127.0.0.1:9001" {
		t.Errorf("Expected WS addr from env, got %q", cfg.WSAddr)
	}
	if cfg.QueueSize != 128 {
		t.Errorf("Expected queue size 128, got %d", cfg.QueueSize)
	}
	if cfg.MaxClients != 32 {
		t.Errorf("Expected max clients 32, got %d", cfg.MaxClients)
	}
	if !cfg.MCPEnabled {
		t.Error("Expected MCP to be enabled")
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v", cfg.LogLevel)
	}
}

func TestConfigFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RELAY_QUEUE_SIZE", "not-a-number")
	t.Setenv("RELAY_MAX_CLIENTS", "-5")
	t.Setenv("RELAY_LOG_LEVEL", "loud")

	cfg := ConfigFromEnv()

	if cfg.QueueSize != DefaultQueueSize {
		t.Errorf("Expected default queue size, got %d", cfg.QueueSize)
	}
	if cfg.MaxClients != 0 {
		t.Errorf("Expected default max clients, got %d", cfg.MaxClients)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("Expected info level, got %v", cfg.LogLevel)
	}
}
