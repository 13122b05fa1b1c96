package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/athapong/ldbc-dense/pkg/config"
	"github.com/athapong/ldbc-dense/pkg/graph"
	"github.com/athapong/ldbc-dense/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// RegisterGraphTools adds the conversion tools to the MCP server. Every call
// starts from a copy of base, so tool arguments never leak between calls.
func RegisterGraphTools(s *server.MCPServer, base *config.Config, logger logrus.FieldLogger) {
	s.AddTool(resolveTool(), resolveHandler(base))
	s.AddTool(classifyTool(), classifyHandler())
	s.AddTool(transformTool(), transformHandler(base, logger))
	s.AddTool(synthesizeTool(), synthesizeHandler(base, logger))
	s.AddTool(streamTool(), streamHandler(base, logger))
	s.AddTool(verifyTool(), verifyHandler(base))
}

// --- resolve_dense_id ---

func resolveTool() mcp.Tool {
	return mcp.NewTool("resolve_dense_id",
		mcp.WithDescription("Compute the dense id the converter assigns to a sparse LDBC id"),
		mcp.WithString("entity", mcp.Required(), mcp.Description("Entity type: comment, forum, person, post, place, tag, tagclass or organisation")),
		mcp.WithString("sparse_id", mcp.Required(), mcp.Description("Sparse id as it appears in the LDBC CSV files")),
		mcp.WithBoolean("hash", mcp.Description("Use hashed ids instead of prefixed ids")),
	)
}

func resolveHandler(base *config.Config) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entity, ok := graph.ParseEntityType(req.GetString("entity", ""))
		if !ok {
			return toolError(fmt.Errorf("unknown entity type %q", req.GetString("entity", "")))
		}

		cfg := *base
		cfg.HashIDs = req.GetBool("hash", cfg.HashIDs)
		rc, err := cfg.RegistryConfig()
		if err != nil {
			return toolError(err)
		}
		registry, err := graph.NewRegistry(rc)
		if err != nil {
			return toolError(err)
		}

		dense, err := registry.Resolve(entity, req.GetString("sparse_id", ""))
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(dense.String()), nil
	}
}

// --- classify_file ---

func classifyTool() mcp.Tool {
	return mcp.NewTool("classify_file",
		mcp.WithDescription("Show how the converter treats an LDBC file name"),
		mcp.WithString("filename", mcp.Required(), mcp.Description("File name such as person_knows_person_0_0.csv")),
	)
}

func classifyHandler() server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		c := graph.Classify(req.GetString("filename", ""))
		switch c.Kind {
		case graph.VertexFile:
			return mcp.NewToolResultText(fmt.Sprintf("vertex %s (prefix %s, id column %s)",
				c.Entity, c.Entity.Prefix(), c.Entity.Header())), nil
		case graph.EdgeFile:
			return mcp.NewToolResultText(fmt.Sprintf("edge %s (code %d, %s partition)",
				c.Edge.Name(), c.Edge.Relation.Code(), graph.TemporalClassOf(c.Edge.Src, c.Edge.Relation))), nil
		default:
			return mcp.NewToolResultText("unrecognized, the file would be skipped"), nil
		}
	}
}

// --- transform_dataset ---

func transformTool() mcp.Tool {
	return mcp.NewTool("transform_dataset",
		mcp.WithDescription("Densify an LDBC export with static/ and dynamic/ subdirectories"),
		mcp.WithString("input_path", mcp.Required(), mcp.Description("Directory holding static/ and dynamic/")),
		mcp.WithString("output_path", mcp.Required(), mcp.Description("Directory for vertex/, edges/ and dic.json")),
		mcp.WithBoolean("hash", mcp.Description("Use hashed ids instead of prefixed ids")),
		mcp.WithNumber("workers", mcp.Description("Files transformed concurrently within a pass")),
	)
}

func transformHandler(base *config.Config, logger logrus.FieldLogger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cfg := withDirs(base, req)
		cfg.HashIDs = req.GetBool("hash", cfg.HashIDs)
		cfg.Workers = req.GetInt("workers", cfg.Workers)

		summary, err := runner.Transform(ctx, cfg, runner.TransformOptions{}, logger)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("run %s wrote %d files and %d dictionary entries in %s",
			summary.RunID, len(summary.Outputs), summary.DictionarySize, summary.Duration)), nil
	}
}

// --- synthesize_graph ---

func synthesizeTool() mcp.Tool {
	return mcp.NewTool("synthesize_graph",
		mcp.WithDescription("Build plain vertex and edge lists from a transformed directory"),
		mcp.WithString("input_path", mcp.Required(), mcp.Description("Transformed directory holding vertex/ and edges/")),
		mcp.WithString("output_path", mcp.Required(), mcp.Description("Directory for the plain lists")),
	)
}

func synthesizeHandler(base *config.Config, logger logrus.FieldLogger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := runner.Synthesize(ctx, withDirs(base, req), logger)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(strings.Join([]string{
			result.Vertices, result.StaticEdges, result.DynamicEdges,
		}, "\n")), nil
	}
}

// --- ingest_update_stream ---

func streamTool() mcp.Tool {
	return mcp.NewTool("ingest_update_stream",
		mcp.WithDescription("Merge updateStream*.csv files into vertex and edge event logs"),
		mcp.WithString("input_path", mcp.Required(), mcp.Description("Directory holding the update stream files")),
		mcp.WithString("output_path", mcp.Required(), mcp.Description("Directory for vertex_stream.csv and edge_stream.csv")),
	)
}

func streamHandler(base *config.Config, logger logrus.FieldLogger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := runner.Stream(ctx, withDirs(base, req), logger)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("%d files: %d vertex events, %d edge events",
			result.Files, result.VertexEvents, result.EdgeEvents)), nil
	}
}

// --- verify_graph ---

func verifyTool() mcp.Tool {
	return mcp.NewTool("verify_graph",
		mcp.WithDescription("Check plain lists for duplicate vertex ids and dangling edge endpoints"),
		mcp.WithString("input_path", mcp.Required(), mcp.Description("Directory holding vertex.csv and the edge lists")),
	)
}

func verifyHandler(base *config.Config) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		report, err := runner.Verify(ctx, withDirs(base, req))
		if err != nil {
			return toolError(err)
		}
		status := "ok"
		if !report.OK() {
			status = "failed"
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s: %d vertices, %d static edges, %d dynamic edges, %d duplicates, %d dangling endpoints",
			status, report.Vertices, report.StaticEdges, report.DynamicEdges,
			len(report.DuplicateVertices), len(report.DanglingEndpoints))), nil
	}
}

func withDirs(base *config.Config, req mcp.CallToolRequest) *config.Config {
	cfg := *base
	cfg.InputDir = req.GetString("input_path", cfg.InputDir)
	cfg.OutputDir = req.GetString("output_path", cfg.OutputDir)
	return &cfg
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
