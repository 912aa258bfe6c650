package server

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TCPAddr    string     // TCP listen address
	WSAddr     string     // WebSocket gateway address; empty disables the gateway
	QueueSize  int        // per-subscriber outbound queue capacity
	MaxClients int        // per-transport connection cap, 0 means unlimited
	MCPEnabled bool       // run the stdio MCP introspection server
	LogLevel   slog.Level
}

func DefaultConfig() Config {
	return Config{
		TCPAddr:   "0.0.0.0:8080",
		QueueSize: DefaultQueueSize,
		LogLevel:  slog.LevelInfo,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for anything unset or unparsable.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if addr := os.Getenv("RELAY_TCP_ADDR"); addr != "" {
		cfg.TCPAddr = addr
	}
	if addr := os.Getenv("RELAY_WS_ADDR"); addr != "" {
		cfg.WSAddr = addr
	}
	if size := os.Getenv("RELAY_QUEUE_SIZE"); size != "" {
		cfg.QueueSize = parsePositiveInt(size, cfg.QueueSize)
	}
	if max := os.Getenv("RELAY_MAX_CLIENTS"); max != "" {
		cfg.MaxClients = parsePositiveInt(max, cfg.MaxClients)
	}
	if mcp := os.Getenv("RELAY_MCP"); mcp != "" {
		cfg.MCPEnabled = parseBool(mcp)
	}
	if level := os.Getenv("RELAY_LOG_LEVEL"); level != "" {
		cfg.LogLevel = parseLogLevel(level, cfg.LogLevel)
	}

	return cfg
}

func parsePositiveInt(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}

func parseBool(value string) bool {
	parsed, err := strconv.ParseBool(value)
	return err == nil && parsed
}

func parseLogLevel(value string, defaultValue slog.Level) slog.Level {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return defaultValue
}
