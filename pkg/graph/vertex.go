package graph

import (
	"context"
	"path/filepath"

	"github.com/athapong/ldbc-dense/pkg/graph/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// VertexTransformer rewrites sparse vertex files into dense vertex files
type VertexTransformer struct {
	registry *Registry
	cache    *VertexCache
	logger   logrus.FieldLogger
}

// NewVertexTransformer creates a vertex transformer sharing the registry and cache
func NewVertexTransformer(registry *Registry, cache *VertexCache, logger logrus.FieldLogger) *VertexTransformer {
	return &VertexTransformer{
		registry: registry,
		cache:    cache,
		logger:   logger,
	}
}

// Transform densifies the vertex shards of one entity type and writes
// <vertexDir>/<type>.csv. The transformed table is kept in the cache.
func (v *VertexTransformer) Transform(ctx context.Context, entity EntityType, vertexDir string, inputs ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if entity.Prefix() == "" {
		return "", errors.Wrapf(ErrUnknownEntity, "%q", entity)
	}

	logger := v.logger.WithField("label", entity)
	logger.Info("Processing vertex files")

	t, err := ReadTables(inputs...)
	if err != nil {
		return "", errors.Wrapf(err, "vertex %s", entity)
	}
	t.DropEmptyRows()

	idIdx := t.ColumnIndex(ColumnID)
	if idIdx < 0 {
		return "", errors.Wrapf(ErrMissingColumn, "vertex %s has no %q column", entity, ColumnID)
	}
	if err := t.InsertColumn(idIdx+1, ColumnLabel, string(entity)); err != nil {
		return "", errors.Wrapf(err, "vertex %s", entity)
	}

	err = t.MapColumn(ColumnID, func(sparse string) (string, error) {
		dense, err := v.registry.ResolveAndRecord(entity, sparse)
		if err != nil {
			return "", err
		}
		return dense.String(), nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "vertex %s", entity)
	}
	t.RenameColumn(ColumnID, entity.Header())

	if err := v.cache.Put(entity, t); err != nil {
		return "", err
	}

	output := filepath.Join(vertexDir, string(entity)+".csv")
	if err := t.WriteFile(output); err != nil {
		return "", err
	}

	metrics.RowsTransformed.WithLabelValues("vertex", string(entity)).Add(float64(len(t.Rows)))
	logger.WithFields(logrus.Fields{
		"rows":   len(t.Rows),
		"output": output,
	}).Info("Finished processing vertex files")
	return output, nil
}
