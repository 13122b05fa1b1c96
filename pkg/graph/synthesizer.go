package graph

import (
	"bufio"
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/athapong/ldbc-dense/pkg/graph/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Plain list file names
const (
	PlainVertexFile       = "vertex.csv"
	PlainStaticEdgesFile  = "static_edges.csv"
	PlainDynamicEdgesFile = "dynamic_edges.csv"
)

// Synthesizer concatenates dense vertex and edge files into the plain,
// space-delimited lists consumed by the graph engine.
type Synthesizer struct {
	logger logrus.FieldLogger
}

// NewSynthesizer creates a synthesizer
func NewSynthesizer(logger logrus.FieldLogger) *Synthesizer {
	return &Synthesizer{logger: logger}
}

// PlainEdge is one edge of a plain edge list
type PlainEdge struct {
	Src          string
	Dst          string
	Relation     string
	CreationDate string
}

// SynthesizeVertices writes <outputDir>/vertex.csv with one "<id> <prefix>"
// line per vertex of <transformedDir>/vertex.
func (s *Synthesizer) SynthesizeVertices(transformedDir, outputDir string) (string, error) {
	files, err := listDataFiles(filepath.Join(transformedDir, VertexDirName))
	if err != nil {
		return "", err
	}

	var lines [][2]string
	for _, file := range files {
		name := fileStem(file)
		entity, ok := ParseEntityType(strings.Split(name, "-")[0])
		if !ok {
			return "", errors.Wrapf(ErrUnknownEntity, "vertex file %s", file)
		}

		t, err := ReadTable(file)
		if err != nil {
			return "", err
		}
		ids, err := t.Column(entity.Header())
		if err != nil {
			return "", errors.Wrapf(err, "vertex file %s", file)
		}
		for _, id := range ids {
			lines = append(lines, [2]string{id, entity.Prefix()})
		}
		s.logger.WithField("file", filepath.Base(file)).Info("Processed vertex file")
	}

	output := filepath.Join(outputDir, PlainVertexFile)
	if err := writePairs(output, lines); err != nil {
		return "", err
	}
	metrics.PlainRecordsWritten.WithLabelValues(PlainVertexFile).Add(float64(len(lines)))
	return output, nil
}

// SynthesizeEdges writes static_edges.csv and dynamic_edges.csv. Dynamic
// edges are sorted by creation date with ties kept in input order.
func (s *Synthesizer) SynthesizeEdges(transformedDir, outputDir string) (string, string, error) {
	edgesDir := filepath.Join(transformedDir, EdgesDirName)

	staticEdges, err := s.readEdges(filepath.Join(edgesDir, StaticDirName), false)
	if err != nil {
		return "", "", err
	}
	dynamicEdges, err := s.readEdges(filepath.Join(edgesDir, DynamicDirName), true)
	if err != nil {
		return "", "", err
	}
	SortByCreationDate(dynamicEdges)

	staticOutput := filepath.Join(outputDir, PlainStaticEdgesFile)
	if err := writePairs(staticOutput, edgePairs(staticEdges)); err != nil {
		return "", "", err
	}
	dynamicOutput := filepath.Join(outputDir, PlainDynamicEdgesFile)
	if err := writePairs(dynamicOutput, edgePairs(dynamicEdges)); err != nil {
		return "", "", err
	}

	metrics.PlainRecordsWritten.WithLabelValues(PlainStaticEdgesFile).Add(float64(len(staticEdges)))
	metrics.PlainRecordsWritten.WithLabelValues(PlainDynamicEdgesFile).Add(float64(len(dynamicEdges)))
	return staticOutput, dynamicOutput, nil
}

func (s *Synthesizer) readEdges(dir string, withDate bool) ([]PlainEdge, error) {
	files, err := listDataFiles(dir)
	if err != nil {
		return nil, err
	}

	var edges []PlainEdge
	for _, file := range files {
		label, err := parseEdgeFileName(file)
		if err != nil {
			return nil, err
		}

		t, err := ReadTable(file)
		if err != nil {
			return nil, err
		}
		cols := []string{label.SrcHeader(), label.DstHeader(), ColumnLabel}
		if withDate {
			cols = append(cols, ColumnCreationDate)
		}
		selected, err := t.Select(cols...)
		if err != nil {
			return nil, errors.Wrapf(err, "edge file %s", file)
		}

		for _, row := range selected.Rows {
			e := PlainEdge{Src: row[0], Dst: row[1], Relation: row[2]}
			if withDate {
				e.CreationDate = row[3]
			}
			edges = append(edges, e)
		}
		s.logger.WithField("file", filepath.Base(file)).Info("Processed edge file")
	}
	return edges, nil
}

// SortByCreationDate stably sorts edges ascending by creation date. Integer
// dates come first in numeric order, then other dates in string order, then
// empty dates.
func SortByCreationDate(edges []PlainEdge) {
	slices.SortStableFunc(edges, func(a, b PlainEdge) int {
		return compareTimestamps(a.CreationDate, b.CreationDate)
	})
}

func compareTimestamps(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		return cmp.Compare(ai, bi)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	return strings.Compare(a, b)
}

func parseEdgeFileName(file string) (EdgeLabel, error) {
	tokens := strings.Split(fileStem(file), "-")
	if len(tokens) != 3 {
		return EdgeLabel{}, errors.Errorf("edge file %s is not named <src>-<relation>-<dst>", file)
	}
	src, srcOK := ParseEntityType(tokens[0])
	dst, dstOK := ParseEntityType(tokens[2])
	if !srcOK || !dstOK {
		return EdgeLabel{}, errors.Wrapf(ErrUnknownEntity, "edge file %s", file)
	}
	return EdgeLabel{Src: src, Relation: RelationType(tokens[1]), Dst: dst}, nil
}

func edgePairs(edges []PlainEdge) [][2]string {
	pairs := make([][2]string, len(edges))
	for i, e := range edges {
		pairs[i] = [2]string{e.Src, e.Dst}
	}
	return pairs
}

// listDataFiles returns the non-hidden regular files of dir in name order
func listDataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dir)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

func fileStem(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

func writePairs(path string, pairs [][2]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}

	w := bufio.NewWriter(f)
	for _, p := range pairs {
		w.WriteString(p[0])
		w.WriteByte(' ')
		w.WriteString(p[1])
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
