package mcp

import (
	"bytes"
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/contextweaver/internal/modules"
	"github.com/standardbeagle/contextweaver/internal/types"
	"github.com/standardbeagle/contextweaver/pkg/pathutil"
)

type AnalyzeParams struct {
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
}

type ModuleMetricsParams struct {
	Path string `json:"path,omitempty"`
}

type FileSummaryParams struct {
	Path string `json:"path,omitempty"`
	File string `json:"file"`
}

// ModuleEntry is one module of a module_metrics response
type ModuleEntry struct {
	Name             string   `json:"name"`
	AfferentCoupling int      `json:"afferent_coupling"`
	EfferentCoupling int      `json:"efferent_coupling"`
	Instability      float64  `json:"instability"`
	Stability        string   `json:"stability"`
	DependsOn        []string `json:"depends_on"`
}

// ModuleMetricsResponse lists modules in name order
type ModuleMetricsResponse struct {
	Root        string             `json:"root"`
	Modules     []ModuleEntry      `json:"modules"`
	Cycles      [][]string         `json:"cycles"`
	Diagnostics []types.Diagnostic `json:"diagnostics"`
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("analyze", func() (*mcp.CallToolResult, error) {
		var params AnalyzeParams
		if err := parseArguments(req.Params.Arguments, &params); err != nil {
			return createErrorResponse("analyze", err)
		}
		if params.Format == "" {
			params.Format = "markdown"
		}

		// An unknown format fails before any work is done
		renderer, err := s.renderers.Lookup(params.Format)
		if err != nil {
			return createErrorResponse("analyze", err)
		}

		rep, err := s.analyze(ctx, params.Path)
		if err != nil {
			return createErrorResponse("analyze", err)
		}

		var buf bytes.Buffer
		if err := renderer.Render(&buf, rep); err != nil {
			return createErrorResponse("analyze", err)
		}
		return createTextResponse(buf.String()), nil
	})
}

func (s *Server) handleModuleMetrics(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("module_metrics", func() (*mcp.CallToolResult, error) {
		var params ModuleMetricsParams
		if err := parseArguments(req.Params.Arguments, &params); err != nil {
			return createErrorResponse("module_metrics", err)
		}

		rep, err := s.analyze(ctx, params.Path)
		if err != nil {
			return createErrorResponse("module_metrics", err)
		}

		graph := rep.Graph()
		resp := ModuleMetricsResponse{
			Root:        rep.Root,
			Modules:     make([]ModuleEntry, 0, len(rep.Modules)),
			Cycles:      rep.Cycles,
			Diagnostics: rep.Diagnostics,
		}
		if resp.Diagnostics == nil {
			resp.Diagnostics = []types.Diagnostic{}
		}
		for _, name := range modules.SortedNames(rep.Modules) {
			m := rep.Modules[name]
			deps := graph.Dependencies(name)
			if deps == nil {
				deps = []string{}
			}
			resp.Modules = append(resp.Modules, ModuleEntry{
				Name:             name,
				AfferentCoupling: m.AfferentCoupling,
				EfferentCoupling: m.EfferentCoupling,
				Instability:      m.Instability,
				Stability:        modules.Describe(m.Instability),
				DependsOn:        deps,
			})
		}
		return createJSONResponse(resp)
	})
}

func (s *Server) handleFileSummary(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("file_summary", func() (*mcp.CallToolResult, error) {
		var params FileSummaryParams
		if err := parseArguments(req.Params.Arguments, &params); err != nil {
			return createErrorResponse("file_summary", err)
		}
		if params.File == "" {
			return createErrorResponse("file_summary", errors.New("file parameter is required"))
		}

		rep, err := s.analyze(ctx, params.Path)
		if err != nil {
			return createErrorResponse("file_summary", err)
		}

		rel := pathutil.Normalize(params.File)
		result, ok := rep.File(rel)
		if !ok {
			for _, d := range rep.Diagnostics {
				if d.Path == rel {
					return createErrorResponse("file_summary", errors.New(d.String()))
				}
			}
			return createErrorResponse("file_summary", errors.New(rel+" was not analysed; it may be excluded by the analysis settings"))
		}
		return createJSONResponse(result.WithoutSource())
	})
}
