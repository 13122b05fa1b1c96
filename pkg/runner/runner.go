// Package runner wires configuration, registry, transformers and stores
// into the operations exposed by the CLI and the MCP server.
package runner

import (
	"context"
	"os"
	"path/filepath"

	"github.com/athapong/ldbc-dense/pkg/config"
	"github.com/athapong/ldbc-dense/pkg/graph"
	"github.com/athapong/ldbc-dense/pkg/graph/algorithms"
	"github.com/athapong/ldbc-dense/pkg/graph/storage"
	"github.com/athapong/ldbc-dense/pkg/graph/stream"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrStreamHashMode is returned when stream ingestion is asked for hashed ids.
// Hashed ids depend on the resolve order of the transform run and dic.json
// does not keep entity types, so a stream cannot reproduce them.
var ErrStreamHashMode = errors.New("update streams support prefixed ids only")

// TransformOptions tunes a transform run beyond the shared config
type TransformOptions struct {
	// ReserveDictionary seeds hash mode with the dense ids of a previous
	// run's dic.json found in the output directory.
	ReserveDictionary bool
}

// Transform densifies <input>/static and <input>/dynamic into the output
// directory and writes dic.json.
func Transform(ctx context.Context, cfg *config.Config, opts TransformOptions, logger logrus.FieldLogger) (*graph.RunSummary, error) {
	if err := cfg.RequireDirs(); err != nil {
		return nil, err
	}
	rc, err := cfg.RegistryConfig()
	if err != nil {
		return nil, err
	}
	registry, err := graph.NewRegistry(rc)
	if err != nil {
		return nil, err
	}

	store := storage.NewJSONDictionaryStore(filepath.Join(cfg.OutputDir, storage.DictionaryFile))
	if opts.ReserveDictionary {
		if _, err := os.Stat(store.Path()); err == nil {
			n, err := storage.ReserveDictionary(ctx, store, registry)
			if err != nil {
				return nil, err
			}
			logger.WithField("reserved", n).Info("Reserved dense ids of previous dictionary")
		}
	}

	pipeline := graph.NewPipeline(graph.PipelineConfig{
		InputDir:  cfg.InputDir,
		OutputDir: cfg.OutputDir,
		Workers:   cfg.Workers,
	}, registry, store, logger)
	return pipeline.Run(ctx)
}

// SynthesisResult lists the plain files written by Synthesize
type SynthesisResult struct {
	Vertices     string
	StaticEdges  string
	DynamicEdges string
}

// Synthesize turns a transformed directory into plain vertex and edge lists
func Synthesize(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*SynthesisResult, error) {
	if err := cfg.RequireDirs(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := graph.NewSynthesizer(logger)
	vertices, err := s.SynthesizeVertices(cfg.InputDir, cfg.OutputDir)
	if err != nil {
		return nil, errors.Wrap(err, "synthesize vertices")
	}
	staticEdges, dynamicEdges, err := s.SynthesizeEdges(cfg.InputDir, cfg.OutputDir)
	if err != nil {
		return nil, errors.Wrap(err, "synthesize edges")
	}
	return &SynthesisResult{
		Vertices:     vertices,
		StaticEdges:  staticEdges,
		DynamicEdges: dynamicEdges,
	}, nil
}

// StreamResult summarises an update stream ingest
type StreamResult struct {
	Files        int
	VertexEvents int
	EdgeEvents   int
	VertexPath   string
	EdgePath     string
}

// Stream ingests every update stream file of the input directory. Stream
// ids are prefixed ids, matching a transform run without hashing.
func Stream(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*StreamResult, error) {
	if err := cfg.RequireDirs(); err != nil {
		return nil, err
	}
	if cfg.HashIDs {
		return nil, ErrStreamHashMode
	}
	rc, err := cfg.RegistryConfig()
	if err != nil {
		return nil, err
	}
	registry, err := graph.NewRegistry(rc)
	if err != nil {
		return nil, err
	}

	files, err := stream.FindStreamFiles(cfg.InputDir)
	if err != nil {
		return nil, err
	}
	result, err := stream.NewIngester(registry, logger).Ingest(ctx, files)
	if err != nil {
		return nil, err
	}
	vertexPath, edgePath, err := stream.WriteResult(result, cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	return &StreamResult{
		Files:        len(files),
		VertexEvents: len(result.Vertices),
		EdgeEvents:   len(result.Edges),
		VertexPath:   vertexPath,
		EdgePath:     edgePath,
	}, nil
}

// Verify checks the plain lists found in the input directory
func Verify(ctx context.Context, cfg *config.Config) (*algorithms.IntegrityReport, error) {
	if cfg.InputDir == "" {
		return nil, errors.New("input directory must be specified")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return algorithms.CheckPlainGraph(cfg.InputDir)
}

// Load writes the plain lists found in the input directory into Neo4j
func Load(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) error {
	if cfg.InputDir == "" {
		return errors.New("input directory must be specified")
	}

	vertices, err := graph.ReadPlainVertices(filepath.Join(cfg.InputDir, graph.PlainVertexFile))
	if err != nil {
		return err
	}
	staticEdges, err := graph.ReadPlainEdges(filepath.Join(cfg.InputDir, graph.PlainStaticEdgesFile))
	if err != nil {
		return err
	}
	dynamicEdges, err := graph.ReadPlainEdges(filepath.Join(cfg.InputDir, graph.PlainDynamicEdgesFile))
	if err != nil {
		return err
	}

	loader, err := storage.NewNeo4jLoader(cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.BatchSize, logger)
	if err != nil {
		return err
	}
	defer loader.Close()

	if err := loader.Connect(ctx); err != nil {
		return err
	}
	if err := loader.LoadVertices(ctx, vertices); err != nil {
		return err
	}
	if err := loader.LoadEdges(ctx, graph.StaticDirName, staticEdges); err != nil {
		return err
	}
	return loader.LoadEdges(ctx, graph.DynamicDirName, dynamicEdges)
}
