// Package mcp exposes contextweaver analyses as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	cwdebug "github.com/standardbeagle/contextweaver/internal/debug"
	"github.com/standardbeagle/contextweaver/internal/indexing"
	"github.com/standardbeagle/contextweaver/internal/report"
	"github.com/standardbeagle/contextweaver/internal/version"
)

// DefaultCacheSize bounds the results kept per analysed root
const DefaultCacheSize = 4096

// Server answers analysis requests for any directory. Each root gets its own
// result cache so repeated requests only re-analyse changed files.
type Server struct {
	server    *mcp.Server
	root      string
	opts      indexing.ProjectOptions
	renderers *report.Registry

	mu     sync.Mutex
	caches map[string]*indexing.ResultCache
}

// NewServer creates a server whose relative paths resolve against root.
// opts are applied to every project the server opens; its Cache is ignored.
func NewServer(root string, opts indexing.ProjectOptions) *Server {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	opts.Cache = nil

	s := &Server{
		root:      root,
		opts:      opts,
		renderers: report.DefaultRegistry(),
		caches:    make(map[string]*indexing.ResultCache),
	}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "contextweaver",
		Version: version.Version,
	}, nil)
	s.registerTools()
	cwdebug.LogMCP("server created for %s", root)
	return s
}

func (s *Server) registerTools() {
	pathSchema := &jsonschema.Schema{
		Type:        "string",
		Description: "Directory to analyse, absolute or relative to the server root. Defaults to the server root.",
	}

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze",
		Description: "Analyse a C# code base and return the full report: hotspots, module instability, dependency cycles, class dependency graph and per-file public API, imports and metrics.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": pathSchema,
				"format": {
					Type:        "string",
					Description: "Report format: markdown (default), json or yaml",
					Enum:        []any{"markdown", "json", "yaml"},
				},
			},
		},
	}, s.handleAnalyze)

	s.server.AddTool(&mcp.Tool{
		Name:        "module_metrics",
		Description: "Return afferent coupling, efferent coupling and instability of every top-level module, with module dependencies and cycles, as JSON.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": pathSchema,
			},
		},
	}, s.handleModuleMetrics)

	s.server.AddTool(&mcp.Tool{
		Name:        "file_summary",
		Description: "Return the analysis of one file (public API, imports, dependency edges, metrics) as JSON, without its source text.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": pathSchema,
				"file": {
					Type:        "string",
					Description: "File path relative to the analysed directory, e.g. Services/CustomerService.cs",
				},
			},
			Required: []string{"file"},
		},
	}, s.handleFileSummary)
}

// resolveRoot turns a request path into an absolute directory
func (s *Server) resolveRoot(path string) (string, error) {
	if path == "" {
		path = s.root
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("cannot analyse %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("cannot analyse %s: not a directory", path)
	}
	return path, nil
}

func (s *Server) cacheFor(root string) (*indexing.ResultCache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.caches[root]; ok {
		return c, nil
	}
	c, err := indexing.NewResultCache(DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	s.caches[root] = c
	return c, nil
}

// analyze runs the pipeline for a request path. The configuration is
// re-read every time so edits to the settings files take effect.
func (s *Server) analyze(ctx context.Context, path string) (*indexing.Report, error) {
	root, err := s.resolveRoot(path)
	if err != nil {
		return nil, err
	}
	cache, err := s.cacheFor(root)
	if err != nil {
		return nil, err
	}

	opts := s.opts
	opts.Cache = cache
	project, err := indexing.OpenProject(root, opts)
	if err != nil {
		return nil, err
	}
	cwdebug.LogMCP("analysing %s", root)
	return project.Analyze(ctx)
}

// recoverFromPanic turns a panicking handler into an error result
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			cwdebug.LogMCP("panic in %s: %v\n%s", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()
	return handler()
}

// Start serves the tools over stdin/stdout until ctx is cancelled or the
// client disconnects
func (s *Server) Start(ctx context.Context) error {
	cwdebug.LogMCP("starting MCP server with stdio transport")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetHandlerForTesting returns the handler of a registered tool
func (s *Server) GetHandlerForTesting(toolName string) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch toolName {
	case "analyze":
		return s.handleAnalyze
	case "module_metrics":
		return s.handleModuleMetrics
	case "file_summary":
		return s.handleFileSummary
	default:
		return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return createErrorResponse("GetHandlerForTesting", fmt.Errorf("unknown tool: %s", toolName))
		}
	}
}
