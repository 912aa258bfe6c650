package server

type Transport interface {
	Start() error
	Shutdown() error
	Meta() TransportMetadata
	SetName(name string)
	SetDescription(description string)
}

type TransportMetadata struct {
	Name        string // Human-friendly name, e.g., "Main TCP relay"
	Protocol    string // Protocol name, e.g., "tcp", "websocket"
	Address     string // Bind address, e.g., "0.0.0.0:8080"
	Description string // Optional, short purpose/use case

	Sessions   int  // Currently connected sessions
	MaxClients int  // Max allowed clients (0 means unlimited)
	Connected  bool // Whether the transport is currently running/bound
}
