package main

import (
	"log/slog"

	"github.com/askova/chatrelay/server"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env file; real environment variables win.
	godotenv.Load()

	cfg := server.ConfigFromEnv()

	// Create dependencies
	hub := server.NewHub(cfg.QueueSize)
	registry := server.NewRegistry()

	var mcpServer *server.MCPServer
	if cfg.MCPEnabled {
		mcpServer = server.NewMCPServer()
	}

	relay := server.New(server.Options{
		Hub:       hub,
		Registry:  registry,
		MCPServer: mcpServer,
		LogLevel:  cfg.LogLevel,
	})

	tcpServer := server.NewTCPTransport(cfg.TCPAddr, hub, registry)
	tcpServer.SetName("Main TCP relay")
	tcpServer.SetDescription("Line-delimited JSON chat relay")
	tcpServer.SetMaxClients(cfg.MaxClients)
	relay.RegisterTransport(tcpServer)

	if cfg.WSAddr != "" {
		wsServer := server.NewWSTransport(cfg.WSAddr, hub, registry)
		wsServer.SetName("WebSocket gateway")
		wsServer.SetDescription("Same relay protocol over WebSocket frames")
		wsServer.SetMaxClients(cfg.MaxClients)
		relay.RegisterTransport(wsServer)
	}

	if err := relay.Start(); err != nil {
		slog.Error("Error starting relay server", "error", err.Error())
	}
}
