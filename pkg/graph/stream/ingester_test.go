package stream

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/athapong/ldbc-dense/pkg/graph"
	"github.com/athapong/ldbc-dense/pkg/graph/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIngester(t *testing.T) *Ingester {
	t.Helper()
	registry, err := graph.NewRegistry(graph.DefaultRegistryConfig())
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	return NewIngester(registry, logger)
}

func writeStream(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

// person record columns: time|dependency|kind|id|first|last|gender|birthday|
// creation|ip|browser|city|languages|emails|tags|studyAt|workAt
const personRecord = "1000|0|1|42|Ann|Lee|female|1990|1000|1.2.3.4|Firefox|7|en|a@b.c|1;2|9,2010|-1"

func TestIngestPersonStream(t *testing.T) {
	dir := t.TempDir()
	path := writeStream(t, dir, "updateStream_0_0_person.csv", personRecord)

	before := testutil.ToFloat64(metrics.SentinelsSkipped)
	result, err := newTestIngester(t).Ingest(context.Background(), []string{path})
	require.NoError(t, err)

	assert.Equal(t, []VertexEvent{
		{ID: 300000000000000042, Label: "3", Timestamp: "1000"},
	}, result.Vertices)

	person := graph.DenseID(300000000000000042)
	assert.Equal(t, []EdgeEvent{
		{Src: person, Dst: 500000000000000007, SrcLabel: "3", DstLabel: "5", Timestamp: "1000"},
		{Src: person, Dst: 600000000000000001, SrcLabel: "3", DstLabel: "6", Timestamp: "1000"},
		{Src: person, Dst: 600000000000000002, SrcLabel: "3", DstLabel: "6", Timestamp: "1000"},
		{Src: person, Dst: 800000000000000009, SrcLabel: "3", DstLabel: "8", Timestamp: "1000"},
	}, result.Edges)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SentinelsSkipped)-before)
}

func TestIngestForumStream(t *testing.T) {
	dir := t.TempDir()
	path := writeStream(t, dir, "updateStream_0_0_forum.csv",
		"2000|0|4|5|Wall|2000|42|3",
		"2100|0|5|5|42|2100",
		"2200|0|8|42|43|2200",
		"2300|0|2|42|9|2300",
		"",
	)

	result, err := newTestIngester(t).Ingest(context.Background(), []string{path})
	require.NoError(t, err)

	forum := graph.DenseID(200000000000000005)
	ann := graph.DenseID(300000000000000042)
	bob := graph.DenseID(300000000000000043)
	assert.Equal(t, []VertexEvent{{ID: forum, Label: "2", Timestamp: "2000"}}, result.Vertices)
	assert.Equal(t, []EdgeEvent{
		{Src: forum, Dst: ann, SrcLabel: "2", DstLabel: "3", Timestamp: "2000"},
		{Src: forum, Dst: 600000000000000003, SrcLabel: "2", DstLabel: "6", Timestamp: "2000"},
		{Src: forum, Dst: ann, SrcLabel: "2", DstLabel: "3", Timestamp: "2100"},
		{Src: ann, Dst: bob, SrcLabel: "3", DstLabel: "3", Timestamp: "2200"},
		{Src: bob, Dst: ann, SrcLabel: "3", DstLabel: "3", Timestamp: "2200"},
		{Src: ann, Dst: 400000000000000009, SrcLabel: "3", DstLabel: "4", Timestamp: "2300"},
	}, result.Edges)
}

func TestIngestCommentStream(t *testing.T) {
	dir := t.TempDir()
	// comment columns: time|dependency|kind|id|creation|ip|browser|content|
	// length|author|country|replyOfPost|replyOfComment|tags
	path := writeStream(t, dir, "updateStream_0_0_forum.csv",
		"3000|0|7|11|2999|1.1.1.1|Chrome|hey|3|42|7|9|-1|",
	)

	result, err := newTestIngester(t).Ingest(context.Background(), []string{path})
	require.NoError(t, err)

	comment := graph.DenseID(100000000000000011)
	assert.Equal(t, []VertexEvent{{ID: comment, Label: "1", Timestamp: "2999"}}, result.Vertices)
	assert.Equal(t, []EdgeEvent{
		{Src: comment, Dst: 300000000000000042, SrcLabel: "1", DstLabel: "3", Timestamp: "2999"},
		{Src: comment, Dst: 500000000000000007, SrcLabel: "1", DstLabel: "5", Timestamp: "2999"},
		{Src: comment, Dst: 400000000000000009, SrcLabel: "1", DstLabel: "4", Timestamp: "2999"},
	}, result.Edges)
}

func TestIngestErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("unknown event kind", func(t *testing.T) {
		path := writeStream(t, dir, "updateStream_1_0_forum.csv", "1|0|9|5")
		_, err := newTestIngester(t).Ingest(context.Background(), []string{path})
		assert.ErrorIs(t, err, ErrUnknownEventKind)
	})

	t.Run("unknown stream file", func(t *testing.T) {
		path := writeStream(t, dir, "updateStream_1_0_comment.csv", personRecord)
		_, err := newTestIngester(t).Ingest(context.Background(), []string{path})
		assert.ErrorIs(t, err, ErrUnknownStreamFile)
	})

	t.Run("malformed id", func(t *testing.T) {
		path := writeStream(t, dir, "updateStream_2_0_person.csv", "1|0|1|x42")
		_, err := newTestIngester(t).Ingest(context.Background(), []string{path})
		assert.ErrorIs(t, err, graph.ErrMalformedID)
	})

	t.Run("cancelled", func(t *testing.T) {
		path := writeStream(t, dir, "updateStream_3_0_person.csv", personRecord)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newTestIngester(t).Ingest(ctx, []string{path})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParseIDList(t *testing.T) {
	assert.Equal(t, []string{"12", "13"}, ParseIDList("12,2010;13,2011"))
	assert.Equal(t, []string{"1", "2"}, ParseIDList("1;;2;-1;nan"))
	assert.Empty(t, ParseIDList(""))
}

func TestParseEventKind(t *testing.T) {
	k, err := ParseEventKind("6")
	require.NoError(t, err)
	assert.Equal(t, AddPost, k)
	assert.Equal(t, "add_post", k.String())

	for _, s := range []string{"0", "9", "x", ""} {
		_, err := ParseEventKind(s)
		assert.ErrorIs(t, err, ErrUnknownEventKind, s)
	}
}

func TestFindStreamFilesAndWriteResult(t *testing.T) {
	dir := t.TempDir()
	writeStream(t, dir, "updateStream_0_1_person.csv", personRecord)
	writeStream(t, dir, "updateStream_0_0_forum.csv", "2100|0|5|5|42|2100")
	writeStream(t, dir, "person_0_0.csv", "id")

	files, err := FindStreamFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "updateStream_0_0_forum.csv"),
		filepath.Join(dir, "updateStream_0_1_person.csv"),
	}, files)

	result, err := newTestIngester(t).Ingest(context.Background(), files)
	require.NoError(t, err)

	out := t.TempDir()
	vertexPath, edgePath, err := WriteResult(result, out)
	require.NoError(t, err)

	data, err := os.ReadFile(vertexPath)
	require.NoError(t, err)
	assert.Equal(t, "id|label|timestamp\n300000000000000042|3|1000\n", string(data))

	data, err = os.ReadFile(edgePath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "src|dst|label_src|label_dst|value|timestamp", lines[0])
	assert.Equal(t, "200000000000000005|300000000000000042|2|3|0|2100", lines[1])
	assert.Len(t, lines, 6)
}
