package stream

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/athapong/ldbc-dense/pkg/graph"
	"github.com/athapong/ldbc-dense/pkg/graph/metrics"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Output file names
const (
	VertexStreamFile = "vertex_stream.csv"
	EdgeStreamFile   = "edge_stream.csv"
)

const maxLineSize = 16 * 1024 * 1024

var streamFilePattern = regexp.MustCompile(`^updateStream.*\.csv$`)

// Missing optional references in the update stream
var sentinels = mapset.NewSet("", "nan", "-1")

// ErrUnknownStreamFile is returned for stream files that are neither person
// nor forum streams
var ErrUnknownStreamFile = errors.New("unknown update stream file")

// VertexEvent is a vertex creation decoded from the update stream
type VertexEvent struct {
	ID        graph.DenseID
	Label     string
	Timestamp string
}

// EdgeEvent is an edge creation decoded from the update stream
type EdgeEvent struct {
	Src       graph.DenseID
	Dst       graph.DenseID
	SrcLabel  string
	DstLabel  string
	Value     int
	Timestamp string
}

// Result holds the events of an ingest in arrival order
type Result struct {
	Vertices []VertexEvent
	Edges    []EdgeEvent
}

// Ingester decodes update stream files into dense vertex and edge events
type Ingester struct {
	registry *graph.Registry
	logger   logrus.FieldLogger
}

// NewIngester creates an ingester resolving ids through registry
func NewIngester(registry *graph.Registry, logger logrus.FieldLogger) *Ingester {
	return &Ingester{registry: registry, logger: logger}
}

// FindStreamFiles returns the update stream files of dir in name order
func FindStreamFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dir)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && streamFilePattern.MatchString(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// Ingest decodes files in order and appends their events to one result
func (i *Ingester) Ingest(ctx context.Context, files []string) (*Result, error) {
	result := &Result{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := i.ingestFile(file, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (i *Ingester) ingestFile(path string, result *Result) error {
	name := filepath.Base(path)
	var forum bool
	switch {
	case strings.HasSuffix(name, "forum.csv"):
		forum = true
	case strings.HasSuffix(name, "person.csv"):
	default:
		return errors.Wrapf(ErrUnknownStreamFile, "%s", path)
	}

	logger := i.logger.WithField("file", name)
	logger.Info("Processing update stream file")

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	vertices, edges := len(result.Vertices), len(result.Edges)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r\n")
		if text == "" {
			continue
		}
		row := strings.Split(text, "|")

		kind := AddPerson
		if forum {
			kind, err = ParseEventKind(field(row, colDiscriminant))
			if err != nil {
				return errors.Wrapf(err, "%s line %d", path, line)
			}
		}
		if err := i.decode(kind, row, result); err != nil {
			return errors.Wrapf(err, "%s line %d (%s)", path, line, kind)
		}
		metrics.StreamEvents.WithLabelValues(kind.String()).Inc()
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "read %s", path)
	}

	logger.WithFields(logrus.Fields{
		"lines":    line,
		"vertices": len(result.Vertices) - vertices,
		"edges":    len(result.Edges) - edges,
	}).Info("Finished update stream file")
	return nil
}

// decode appends the vertex and edge events of one record
func (i *Ingester) decode(kind EventKind, row []string, result *Result) error {
	schema, ok := schemas[kind]
	if !ok {
		return errors.Wrapf(ErrUnknownEventKind, "%d", kind)
	}
	timestamp := field(row, schema.timestampCol)

	if v := schema.vertex; v != nil {
		id, err := i.registry.Resolve(v.entity, field(row, v.idCol))
		if err != nil {
			return err
		}
		result.Vertices = append(result.Vertices, VertexEvent{
			ID:        id,
			Label:     v.entity.Prefix(),
			Timestamp: timestamp,
		})
	}

	for _, e := range schema.edges {
		if err := i.appendEdges(e, row, timestamp, result); err != nil {
			return err
		}
	}
	return nil
}

func (i *Ingester) appendEdges(e edgeField, row []string, timestamp string, result *Result) error {
	srcValue, dstValue := field(row, e.srcCol), field(row, e.dstCol)
	if sentinels.Contains(srcValue) || sentinels.Contains(dstValue) {
		metrics.SentinelsSkipped.Inc()
		return nil
	}

	src, err := i.registry.Resolve(e.srcEntity, srcValue)
	if err != nil {
		return err
	}
	for _, token := range ParseIDList(dstValue) {
		dst, err := i.registry.Resolve(e.dstEntity, token)
		if err != nil {
			return err
		}
		result.Edges = append(result.Edges, EdgeEvent{
			Src:       src,
			Dst:       dst,
			SrcLabel:  e.srcEntity.Prefix(),
			DstLabel:  e.dstEntity.Prefix(),
			Timestamp: timestamp,
		})
	}
	return nil
}

// ParseIDList splits a multi-valued reference such as "12,2010;13,2011"
// into ids, keeping the text before the first comma of each token.
// Empty and sentinel tokens are dropped.
func ParseIDList(s string) []string {
	var ids []string
	for _, token := range strings.Split(s, ";") {
		id, _, _ := strings.Cut(token, ",")
		id = strings.TrimSpace(id)
		if sentinels.Contains(id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// WriteResult writes vertex_stream.csv and edge_stream.csv into outputDir
func WriteResult(result *Result, outputDir string) (string, string, error) {
	vertices := &graph.Table{Header: []string{"id", "label", "timestamp"}}
	for _, v := range result.Vertices {
		vertices.Rows = append(vertices.Rows, []string{v.ID.String(), v.Label, v.Timestamp})
	}
	edges := &graph.Table{Header: []string{"src", "dst", "label_src", "label_dst", "value", "timestamp"}}
	for _, e := range result.Edges {
		edges.Rows = append(edges.Rows, []string{
			e.Src.String(), e.Dst.String(), e.SrcLabel, e.DstLabel, strconv.Itoa(e.Value), e.Timestamp,
		})
	}

	vertexPath := filepath.Join(outputDir, VertexStreamFile)
	if err := vertices.WriteFile(vertexPath); err != nil {
		return "", "", err
	}
	edgePath := filepath.Join(outputDir, EdgeStreamFile)
	if err := edges.WriteFile(edgePath); err != nil {
		return "", "", err
	}
	return vertexPath, edgePath, nil
}
