// Package mcp exposes dump analysis as Model Context Protocol tools so that
// editors and agents can call it over stdio.
package mcp

import (
	"context"
	"fmt"
	"io"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"abapai/config"
	"abapai/model"
)

const (
	ServerName = "abapai"

	ToolAnalyzeDump   = "analyze_dump"
	ToolListModels    = "list_models"
	ToolListProviders = "list_providers"
)

// Analyzer runs one dump analysis. *analyzer.Service implements it.
type Analyzer interface {
	Analyze(ctx context.Context, title, content string) model.AnalysisResult
}

// ModelLister fetches the models of the configured provider.
// *provider.Dispatcher implements it.
type ModelLister interface {
	DispatchListModels(ctx context.Context, cfg model.ClientConfig) ([]string, error)
}

// ConfigSource supplies the active client settings. *config.Settings implements it.
type ConfigSource interface {
	ClientConfig() model.ClientConfig
}

// Server wires the analysis tools into an MCP server.
type Server struct {
	analyzer Analyzer
	lister   ModelLister
	source   ConfigSource
	mcp      *server.MCPServer
}

func NewServer(version string, a Analyzer, l ModelLister, src ConfigSource) *Server {
	s := &Server{
		analyzer: a,
		lister:   l,
		source:   src,
		mcp: server.NewMCPServer(ServerName, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcptypes.NewTool(ToolAnalyzeDump,
		mcptypes.WithDescription("Analyze an ABAP runtime dump (ST22 short dump text) and explain its root cause, fixes and prevention."),
		mcptypes.WithString("content",
			mcptypes.Required(),
			mcptypes.Description("Full text of the ABAP dump"),
		),
		mcptypes.WithString("title",
			mcptypes.Description("Short dump title, e.g. the runtime error name"),
		),
	), s.handleAnalyzeDump)

	s.mcp.AddTool(mcptypes.NewTool(ToolListModels,
		mcptypes.WithDescription("List the models available from the configured LLM provider."),
	), s.handleListModels)

	s.mcp.AddTool(mcptypes.NewTool(ToolListProviders,
		mcptypes.WithDescription("List the supported LLM providers and which one is active."),
	), s.handleListProviders)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves MCP requests on in/out until ctx is done or in closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	config.Logger.Debug().Str("server", ServerName).Msg("serving MCP over stdio")
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) handleAnalyzeDump(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcptypes.NewToolResultError(err.Error()), nil
	}
	title := req.GetString("title", "")

	result := s.analyzer.Analyze(ctx, title, content)
	if !result.IsSuccess() {
		return mcptypes.NewToolResultError(result.Message()), nil
	}
	return mcptypes.NewToolResultText(result.Text()), nil
}

func (s *Server) handleListModels(ctx context.Context, _ mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
	cfg := s.source.ClientConfig()

	models, err := s.lister.DispatchListModels(ctx, cfg)
	if err != nil {
		return mcptypes.NewToolResultError(err.Error()), nil
	}
	if len(models) == 0 {
		return mcptypes.NewToolResultText(fmt.Sprintf("No models reported by %s.", cfg.Provider.DisplayName())), nil
	}
	return mcptypes.NewToolResultText(strings.Join(models, "\n")), nil
}

func (s *Server) handleListProviders(_ context.Context, _ mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
	active := s.source.ClientConfig()

	var b strings.Builder
	for _, p := range model.Providers() {
		marker := " "
		if p == active.Provider {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s (%s) default model: %s\n", marker, p, p.DisplayName(), p.DefaultModel())
	}
	return mcptypes.NewToolResultText(b.String()), nil
}
