package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// MCPServer exposes relay introspection over stdio MCP.
type MCPServer struct {
	Server *mcpserver.MCPServer
}

func NewMCPServer() *MCPServer {
	return &MCPServer{Server: mcpserver.NewMCPServer("chatrelay", "1.0.0")}
}

func (s *MCPServer) Start() error {
	slog.Info("Started stdio MCP server")
	defer func() {
		slog.Info("Shut down stdio MCP server")
	}()
	return mcpserver.ServeStdio(s.Server)
}

func (s *MCPServer) registerTools(registry *Registry) {
	listClients := mcp.NewTool("list_clients", mcp.WithDescription("Get a list of the clients connected to this relay"))
	s.Server.AddTool(listClients, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		type clientElement struct {
			Id          string `json:"id"`
			RemoteAddr  string `json:"remote_addr"`
			ConnectedAt string `json:"connected_at"`
		}
		records := registry.List()
		res := make([]clientElement, 0, len(records))
		for _, rec := range records {
			res = append(res, clientElement{
				Id:          rec.ID.String(),
				RemoteAddr:  rec.RemoteAddr,
				ConnectedAt: rec.ConnectedAt.UTC().Format("2006-01-02T15:04:05Z"),
			})
		}

		jsonBytes, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return nil, err
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: string(jsonBytes),
				},
			}}, nil
	})
}
