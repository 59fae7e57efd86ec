// Package mcp exposes the command surface as a Model Context Protocol
// server so AI agents can drive the editing environment as tools.
//
// Tool calls funnel into the same router and dispatch bridge as the TCP
// and HTTP transports; the MCP goroutine never touches the graph model.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rigwire/rigwire/internal/router"
	"github.com/rigwire/rigwire/pkg/protocol"
)

// Server wraps the router and exposes it over MCP.
type Server struct {
	router    *router.Router
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server instance.
func NewServer(rt *router.Router, version string) *Server {
	s := &Server{
		router:    rt,
		mcpServer: server.NewMCPServer("rigwire", version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: ping
	s.mcpServer.AddTool(mcp.NewTool("ping",
		mcp.WithDescription("Liveness probe. Round-trips through the owner thread and returns pong."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.run(ctx, &protocol.Command{Name: "ping", Params: map[string]any{}})
	})

	// TOOL: run_command
	runTool := mcp.NewTool("run_command",
		mcp.WithDescription("Run one bridge command (graph_batch, graph_query, graph_describe, "+
			"graph_resolve, asset_open, asset_close, asset_save, asset_status, status)."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Command name")),
		mcp.WithString("params", mcp.Description("JSON object of command parameters")),
	)
	s.mcpServer.AddTool(runTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("type")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		params := map[string]any{}
		if raw := request.GetString("params", ""); raw != "" {
			if err := json.Unmarshal([]byte(raw), &params); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("params is not a JSON object: %v", err)), nil
			}
		}
		return s.run(ctx, &protocol.Command{Name: name, Params: params})
	})
}

func (s *Server) run(ctx context.Context, cmd *protocol.Command) (*mcp.CallToolResult, error) {
	resp := s.router.Dispatch(ctx, cmd)
	if resp.Status == protocol.StatusError {
		return mcp.NewToolResultError(resp.Error), nil
	}
	data, err := json.Marshal(resp.Result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
