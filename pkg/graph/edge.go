package graph

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/athapong/ldbc-dense/pkg/graph/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// labelColumnPos is where the relation column is inserted, right after the
// two endpoint columns.
const labelColumnPos = 2

// EdgeTransformer rewrites sparse edge files into dense edge files
type EdgeTransformer struct {
	registry *Registry
	cache    *VertexCache
	logger   logrus.FieldLogger
}

// NewEdgeTransformer creates an edge transformer sharing the registry and cache
func NewEdgeTransformer(registry *Registry, cache *VertexCache, logger logrus.FieldLogger) *EdgeTransformer {
	return &EdgeTransformer{
		registry: registry,
		cache:    cache,
		logger:   logger,
	}
}

// JoinEntity returns the vertex type whose table supplies the creation time
// of a dynamic edge. Forum containerOf post edges take it from the post.
func JoinEntity(label EdgeLabel) EntityType {
	if label.Src == EntityForum && label.Dst == EntityPost {
		return label.Dst
	}
	return label.Src
}

// Transform densifies the edge shards of one relation and writes them to
// <edgesDir>/static or <edgesDir>/dynamic depending on the relation. When
// dynamic is set the edges are joined against the cached vertex table.
func (e *EdgeTransformer) Transform(ctx context.Context, label EdgeLabel, edgesDir string, dynamic bool, inputs ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	code := label.Relation.Code()
	if code == 0 {
		return "", errors.Wrapf(ErrUnknownRelation, "%q in %s", label.Relation, label.Name())
	}
	if label.Src.Prefix() == "" || label.Dst.Prefix() == "" {
		return "", errors.Wrapf(ErrUnknownEntity, "edge %s", label.Name())
	}

	logger := e.logger.WithField("label", label.Name())
	logger.Info("Processing edge files")

	t, err := ReadTables(inputs...)
	if err != nil {
		return "", errors.Wrapf(err, "edge %s", label.Name())
	}
	t.DropEmptyRows()

	if err := t.InsertColumn(labelColumnPos, ColumnLabel, strconv.Itoa(code)); err != nil {
		return "", errors.Wrapf(err, "edge %s", label.Name())
	}
	if err := t.MapColumn(label.SrcHeader(), e.resolver(label.Src)); err != nil {
		return "", errors.Wrapf(err, "edge %s source", label.Name())
	}
	if err := t.MapColumn(label.DstHeader(), e.resolver(label.Dst)); err != nil {
		return "", errors.Wrapf(err, "edge %s destination", label.Name())
	}
	t.RenameColumn(ColumnJoinDate, ColumnCreationDate)

	if dynamic {
		join := JoinEntity(label)
		vertices, err := e.cache.Get(join)
		if err != nil {
			return "", errors.Wrapf(err, "edge %s", label.Name())
		}
		t, err = t.LeftJoin(vertices, join.Header())
		if err != nil {
			return "", errors.Wrapf(err, "edge %s join with %s", label.Name(), join)
		}
		t.RenameColumn(ColumnCreationDate+"_x", ColumnCreationDate)
		t.RenameColumn(ColumnLabel+"_x", ColumnLabel)
	}

	class := TemporalClassOf(label.Src, label.Relation)
	output := filepath.Join(edgesDir, class.String(), label.Name()+".csv")
	if err := t.WriteFile(output); err != nil {
		return "", err
	}

	metrics.RowsTransformed.WithLabelValues("edge", label.Name()).Add(float64(len(t.Rows)))
	logger.WithFields(logrus.Fields{
		"rows":      len(t.Rows),
		"partition": class.String(),
		"joined":    dynamic,
	}).Info("Finished processing edge files")
	return output, nil
}

func (e *EdgeTransformer) resolver(entity EntityType) func(string) (string, error) {
	return func(sparse string) (string, error) {
		dense, err := e.registry.Resolve(entity, sparse)
		if err != nil {
			return "", err
		}
		return dense.String(), nil
	}
}
