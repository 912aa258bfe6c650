package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

type Options struct {
	Hub       *Hub            // Optional (defaults to new Hub if nil)
	Registry  *Registry       // Optional (defaults to new Registry if nil)
	MCPServer *MCPServer      // Optional MCP introspection server to run alongside
	Context   context.Context // Optional (defaults to context.Background())
	LogLevel  slog.Level      // Defaults to slog.LevelInfo
}

// RelayServer owns the hub, the registry, and the registered transports,
// and ties their lifetime to the process. No ambient globals: every
// session receives these references through its transport.
type RelayServer struct {
	hub        *Hub
	registry   *Registry
	mcp        *MCPServer
	ctx        context.Context
	logLevel   slog.Level
	transports []Transport
}

func New(opts Options) *RelayServer {
	if opts.Hub == nil {
		opts.Hub = NewHub(0)
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.MCPServer != nil {
		opts.MCPServer.registerTools(opts.Registry)
	}

	return &RelayServer{
		hub:      opts.Hub,
		registry: opts.Registry,
		mcp:      opts.MCPServer,
		ctx:      opts.Context,
		logLevel: opts.LogLevel,
	}
}

func (s *RelayServer) Hub() *Hub {
	return s.hub
}

func (s *RelayServer) Registry() *Registry {
	return s.registry
}

func (s *RelayServer) RegisterTransport(t Transport) {
	s.transports = append(s.transports, t)
}

func setupLogger(level slog.Level) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// Start runs every registered transport and blocks until the context is
// cancelled or the process receives SIGINT/SIGTERM.
func (s *RelayServer) Start() error {
	setupLogger(s.logLevel)
	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.mcp != nil {
		go s.mcp.Start()
	}
	for _, t := range s.transports {
		go func(t Transport) {
			if err := t.Start(); err != nil {
				slog.Error("Transport stopped", "name", t.Meta().Name, "error", err.Error())
			}
		}(t)
	}

	<-ctx.Done()
	slog.Info("Shutting down transports and server")

	for _, t := range s.transports {
		if err := t.Shutdown(); err != nil {
			slog.Error("There was an error when shutting down transport", "error", err.Error())
		}
	}
	return nil
}
