package graph

import (
	"context"
	"path/filepath"
	"time"

	"github.com/athapong/ldbc-dense/pkg/graph/metrics"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DictionaryStore persists the sparse to dense dictionary of a run
type DictionaryStore interface {
	StoreDictionary(ctx context.Context, dict map[string]DenseID) error
	LoadDictionary(ctx context.Context) (map[string]DenseID, error)
}

// PipelineConfig configures a transform run
type PipelineConfig struct {
	InputDir  string
	OutputDir string
	Workers   int
}

// RunSummary describes a finished transform run
type RunSummary struct {
	RunID          string
	Outputs        []string
	DictionarySize int
	Duration       time.Duration
}

// Pipeline runs the three transform passes: static files, dynamic vertex
// files, then dynamic edge files joined against the cached vertex tables.
type Pipeline struct {
	cfg      PipelineConfig
	registry *Registry
	cache    *VertexCache
	router   *FileRouter
	store    DictionaryStore
	logger   logrus.FieldLogger
}

// NewPipeline creates a transform pipeline. store may be nil, in which case
// the dictionary is not persisted.
func NewPipeline(cfg PipelineConfig, registry *Registry, store DictionaryStore, logger logrus.FieldLogger) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	cache := NewVertexCache()
	return &Pipeline{
		cfg:      cfg,
		registry: registry,
		cache:    cache,
		router: NewFileRouter(
			NewVertexTransformer(registry, cache, logger),
			NewEdgeTransformer(registry, cache, logger),
			cfg.OutputDir,
			logger,
		),
		store:  store,
		logger: logger,
	}
}

// Run transforms every file of <input>/static and <input>/dynamic
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := p.logger.WithField("run_id", runID)
	idCfg := p.registry.Config()
	logger.WithFields(logrus.Fields{
		"input":    p.cfg.InputDir,
		"output":   p.cfg.OutputDir,
		"workers":  p.cfg.Workers,
		"hash_ids": idCfg.HashMode,
		"id_bits":  idCfg.NumBits,
	}).Info("Starting transform run")

	if err := EnsureLayout(p.cfg.OutputDir); err != nil {
		return nil, err
	}
	defer p.cache.Reset()

	staticGroups, err := GroupFiles(filepath.Join(p.cfg.InputDir, StaticDirName), logger)
	if err != nil {
		return nil, err
	}
	dynamicGroups, err := GroupFiles(filepath.Join(p.cfg.InputDir, DynamicDirName), logger)
	if err != nil {
		return nil, err
	}

	var dynamicVertices, dynamicEdges []FileGroup
	for _, g := range dynamicGroups {
		if g.Classification.Kind == VertexFile {
			dynamicVertices = append(dynamicVertices, g)
		} else {
			dynamicEdges = append(dynamicEdges, g)
		}
	}

	summary := &RunSummary{RunID: runID}
	passes := []struct {
		name    string
		groups  []FileGroup
		dynamic bool
	}{
		{"static", staticGroups, false},
		{"dynamic-vertex", dynamicVertices, false},
		{"dynamic-edge", dynamicEdges, true},
	}
	for _, pass := range passes {
		if pass.dynamic {
			p.cache.Freeze()
		}
		outputs, err := p.runPass(ctx, logger.WithField("pass", pass.name), pass.name, pass.groups, pass.dynamic)
		if err != nil {
			return nil, errors.Wrapf(err, "pass %s", pass.name)
		}
		summary.Outputs = append(summary.Outputs, outputs...)
	}

	dict := p.registry.Dictionary()
	summary.DictionarySize = len(dict)
	if p.store != nil {
		if err := p.store.StoreDictionary(ctx, dict); err != nil {
			return nil, errors.Wrap(err, "store dictionary")
		}
	}

	summary.Duration = time.Since(start)
	logger.WithFields(logrus.Fields{
		"outputs":    len(summary.Outputs),
		"dictionary": summary.DictionarySize,
		"time_cost":  summary.Duration.String(),
	}).Info("Transform run completed")
	return summary, nil
}

// runPass transforms the groups of one pass on at most cfg.Workers
// goroutines. The pass returns only after every group is written.
func (p *Pipeline) runPass(ctx context.Context, logger logrus.FieldLogger, name string, groups []FileGroup, dynamic bool) ([]string, error) {
	timer := prometheus.NewTimer(metrics.PassDuration.WithLabelValues(name))
	defer timer.ObserveDuration()

	logger.WithField("groups", len(groups)).Info("Starting pass")

	outputs := make([]string, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, group := range groups {
		g.Go(func() error {
			out, err := p.router.Route(gctx, group.Classification, dynamic, group.Paths...)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("Pass completed")
	return outputs, nil
}
