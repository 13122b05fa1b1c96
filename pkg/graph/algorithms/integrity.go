package algorithms

import (
	"path/filepath"
	"slices"

	"github.com/athapong/ldbc-dense/pkg/graph"
	mapset "github.com/deckarep/golang-set/v2"
)

// IntegrityReport summarises a referential integrity check of plain lists
type IntegrityReport struct {
	Vertices          int
	StaticEdges       int
	DynamicEdges      int
	DuplicateVertices []string
	DanglingEndpoints []string
}

// OK reports whether every vertex is unique and every endpoint resolves
func (r *IntegrityReport) OK() bool {
	return len(r.DuplicateVertices) == 0 && len(r.DanglingEndpoints) == 0
}

// CheckPlainGraph reads vertex.csv, static_edges.csv and dynamic_edges.csv
// from dir and verifies that dense ids are unique and that every edge
// endpoint names a vertex.
func CheckPlainGraph(dir string) (*IntegrityReport, error) {
	vertices, err := graph.ReadPlainVertices(filepath.Join(dir, graph.PlainVertexFile))
	if err != nil {
		return nil, err
	}
	staticEdges, err := graph.ReadPlainEdges(filepath.Join(dir, graph.PlainStaticEdgesFile))
	if err != nil {
		return nil, err
	}
	dynamicEdges, err := graph.ReadPlainEdges(filepath.Join(dir, graph.PlainDynamicEdgesFile))
	if err != nil {
		return nil, err
	}
	return Check(vertices, staticEdges, dynamicEdges), nil
}

// Check runs the integrity check on lists already in memory
func Check(vertices []graph.PlainVertex, edgeLists ...[][2]string) *IntegrityReport {
	report := &IntegrityReport{Vertices: len(vertices)}
	if len(edgeLists) > 0 {
		report.StaticEdges = len(edgeLists[0])
	}
	if len(edgeLists) > 1 {
		report.DynamicEdges = len(edgeLists[1])
	}

	ids := mapset.NewThreadUnsafeSetWithSize[string](len(vertices))
	duplicates := mapset.NewThreadUnsafeSet[string]()
	for _, v := range vertices {
		if !ids.Add(v.ID) {
			duplicates.Add(v.ID)
		}
	}

	dangling := mapset.NewThreadUnsafeSet[string]()
	for _, edges := range edgeLists {
		for _, e := range edges {
			for _, endpoint := range e {
				if !ids.Contains(endpoint) {
					dangling.Add(endpoint)
				}
			}
		}
	}

	report.DuplicateVertices = sortedSlice(duplicates)
	report.DanglingEndpoints = sortedSlice(dangling)
	return report
}

func sortedSlice(s mapset.Set[string]) []string {
	out := s.ToSlice()
	slices.Sort(out)
	return out
}
