package graph

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/athapong/ldbc-dense/pkg/graph/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FileKind is the outcome of classifying an input file name
type FileKind int

const (
	Unrecognized FileKind = iota
	VertexFile
	EdgeFile
)

func (k FileKind) String() string {
	switch k {
	case VertexFile:
		return "vertex"
	case EdgeFile:
		return "edge"
	default:
		return "unrecognized"
	}
}

// Classification is a tagged variant: Entity is set for vertex files, Edge
// for edge files and neither for unrecognized files.
type Classification struct {
	Kind   FileKind
	Entity EntityType
	Edge   EdgeLabel
}

// Key identifies the output a file contributes to; shards share a key
func (c Classification) Key() string {
	switch c.Kind {
	case VertexFile:
		return string(c.Entity)
	case EdgeFile:
		return c.Edge.Name()
	default:
		return ""
	}
}

var shardSuffix = regexp.MustCompile(`_\d+_\d+$`)

// Classify inspects a file name such as person_0_0.csv or
// person_knows_person_0_0.csv.
func Classify(filename string) Classification {
	base := filepath.Base(filename)
	if strings.HasPrefix(base, ".") {
		return Classification{}
	}

	name := strings.TrimSuffix(base, filepath.Ext(base))
	loc := shardSuffix.FindStringIndex(name)
	if loc == nil {
		return Classification{}
	}

	tokens := strings.Split(name[:loc[0]], "_")
	switch len(tokens) {
	case 1:
		if entity, ok := ParseEntityType(tokens[0]); ok {
			return Classification{Kind: VertexFile, Entity: entity}
		}
	case 3:
		src, srcOK := ParseEntityType(tokens[0])
		dst, dstOK := ParseEntityType(tokens[2])
		if srcOK && dstOK {
			return Classification{
				Kind: EdgeFile,
				Edge: EdgeLabel{Src: src, Relation: RelationType(tokens[1]), Dst: dst},
			}
		}
	}
	return Classification{}
}

// FileGroup is a set of shards that share one classification
type FileGroup struct {
	Classification Classification
	Paths          []string
}

// GroupFiles lists dir in name order and groups recognised files by their
// classification. Unrecognized files are skipped.
func GroupFiles(dir string, logger logrus.FieldLogger) ([]FileGroup, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dir)
	}

	var groups []FileGroup
	index := make(map[string]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		c := Classify(entry.Name())
		if c.Kind == Unrecognized {
			metrics.FilesSkipped.Inc()
			logger.WithField("file", entry.Name()).Debug("Skipping unrecognized file")
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if i, ok := index[c.Key()]; ok {
			groups[i].Paths = append(groups[i].Paths, path)
			continue
		}
		index[c.Key()] = len(groups)
		groups = append(groups, FileGroup{Classification: c, Paths: []string{path}})
	}
	return groups, nil
}

// Output layout below the transformed directory
const (
	VertexDirName  = "vertex"
	EdgesDirName   = "edges"
	StaticDirName  = "static"
	DynamicDirName = "dynamic"
)

// EnsureLayout creates vertex/, edges/static/ and edges/dynamic/
func EnsureLayout(outputDir string) error {
	for _, dir := range []string{
		filepath.Join(outputDir, VertexDirName),
		filepath.Join(outputDir, EdgesDirName, StaticDirName),
		filepath.Join(outputDir, EdgesDirName, DynamicDirName),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	return nil
}

// FileRouter dispatches classified files to the vertex and edge transformers
type FileRouter struct {
	vertices  *VertexTransformer
	edges     *EdgeTransformer
	outputDir string
	logger    logrus.FieldLogger
}

// NewFileRouter creates a router writing below outputDir
func NewFileRouter(vertices *VertexTransformer, edges *EdgeTransformer, outputDir string, logger logrus.FieldLogger) *FileRouter {
	return &FileRouter{
		vertices:  vertices,
		edges:     edges,
		outputDir: outputDir,
		logger:    logger,
	}
}

// Route transforms the shards of one classification. Unrecognized input
// returns an empty output path and no error.
func (r *FileRouter) Route(ctx context.Context, c Classification, dynamic bool, inputs ...string) (string, error) {
	if err := EnsureLayout(r.outputDir); err != nil {
		return "", err
	}

	switch c.Kind {
	case VertexFile:
		return r.vertices.Transform(ctx, c.Entity, filepath.Join(r.outputDir, VertexDirName), inputs...)
	case EdgeFile:
		return r.edges.Transform(ctx, c.Edge, filepath.Join(r.outputDir, EdgesDirName), dynamic, inputs...)
	default:
		metrics.FilesSkipped.Inc()
		r.logger.WithField("files", inputs).Debug("Skipping unrecognized file")
		return "", nil
	}
}

// RouteFile classifies and transforms a single file of inputDir
func (r *FileRouter) RouteFile(ctx context.Context, inputDir, filename string, dynamic bool) (string, error) {
	return r.Route(ctx, Classify(filename), dynamic, filepath.Join(inputDir, filename))
}
