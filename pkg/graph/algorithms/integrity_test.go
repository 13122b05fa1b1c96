package algorithms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/athapong/ldbc-dense/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	vertices := []graph.PlainVertex{
		{ID: "1", Prefix: "3"},
		{ID: "2", Prefix: "3"},
		{ID: "2", Prefix: "4"},
	}
	static := [][2]string{{"1", "2"}}
	dynamic := [][2]string{{"2", "9"}, {"8", "1"}}

	report := Check(vertices, static, dynamic)
	assert.False(t, report.OK())
	assert.Equal(t, 3, report.Vertices)
	assert.Equal(t, 1, report.StaticEdges)
	assert.Equal(t, 2, report.DynamicEdges)
	assert.Equal(t, []string{"2"}, report.DuplicateVertices)
	assert.Equal(t, []string{"8", "9"}, report.DanglingEndpoints)

	assert.True(t, Check(vertices[:2], static).OK())
}

func TestCheckPlainGraph(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	write(graph.PlainVertexFile, "10 3\n11 3\n20 2\n")
	write(graph.PlainStaticEdgesFile, "20 10\n")
	write(graph.PlainDynamicEdgesFile, "10 11\n11 10\n")

	report, err := CheckPlainGraph(dir)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 2, report.DynamicEdges)

	require.NoError(t, os.Remove(filepath.Join(dir, graph.PlainStaticEdgesFile)))
	_, err = CheckPlainGraph(dir)
	assert.Error(t, err)
}
