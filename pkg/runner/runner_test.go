package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/athapong/ldbc-dense/pkg/config"
	"github.com/athapong/ldbc-dense/pkg/graph"
	"github.com/athapong/ldbc-dense/pkg/graph/storage"
	"github.com/athapong/ldbc-dense/pkg/graph/stream"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T) string {
	t.Helper()
	in := t.TempDir()
	files := map[string]string{
		"static/tag_0_0.csv":                     "id|name\n1|go\n",
		"static/tagclass_0_0.csv":                "id|name\n2|lang\n",
		"static/tag_hasType_tagclass_0_0.csv":    "Tag.id|TagClass.id\n1|2\n",
		"dynamic/person_0_0.csv":                 "creationDate|id\n100|10\n200|11\n",
		"dynamic/person_knows_person_0_0.csv":    "Person.id|Person.id|creationDate\n11|10|300\n10|11|250\n",
		"dynamic/person_hasInterest_tag_0_0.csv": "Person.id|Tag.id\n10|1\n",
	}
	for name, content := range files {
		path := filepath.Join(in, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return in
}

func TestTransformSynthesizeVerify(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()

	cfg := config.Default()
	cfg.InputDir = writeDataset(t)
	cfg.OutputDir = t.TempDir()

	summary, err := Transform(ctx, cfg, TransformOptions{}, logger)
	require.NoError(t, err)
	assert.Len(t, summary.Outputs, 6)
	assert.Equal(t, 4, summary.DictionarySize)

	dict, err := storage.NewJSONDictionaryStore(filepath.Join(cfg.OutputDir, storage.DictionaryFile)).LoadDictionary(ctx)
	require.NoError(t, err)
	assert.Equal(t, graph.DenseID(300000000000000010), dict["10"])

	plain := *cfg
	plain.InputDir = cfg.OutputDir
	plain.OutputDir = t.TempDir()
	result, err := Synthesize(ctx, &plain, logger)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(plain.OutputDir, graph.PlainVertexFile), result.Vertices)

	dynamicEdges, err := graph.ReadPlainEdges(result.DynamicEdges)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{
		{"300000000000000010", "600000000000000001"},
		{"300000000000000010", "300000000000000011"},
		{"300000000000000011", "300000000000000010"},
	}, dynamicEdges)

	verify := &config.Config{InputDir: plain.OutputDir}
	report, err := Verify(ctx, verify)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 4, report.Vertices)
	assert.Equal(t, 1, report.StaticEdges)
}

func TestTransformHashModeReservesDictionary(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()

	cfg := config.Default()
	cfg.InputDir = writeDataset(t)
	cfg.OutputDir = t.TempDir()
	cfg.HashIDs = true

	_, err := Transform(ctx, cfg, TransformOptions{ReserveDictionary: true}, logger)
	require.NoError(t, err)
	store := storage.NewJSONDictionaryStore(filepath.Join(cfg.OutputDir, storage.DictionaryFile))
	first, err := store.LoadDictionary(ctx)
	require.NoError(t, err)

	_, err = Transform(ctx, cfg, TransformOptions{ReserveDictionary: true}, logger)
	require.NoError(t, err)
	second, err := store.LoadDictionary(ctx)
	require.NoError(t, err)

	for sparse, id := range second {
		assert.NotEqual(t, first[sparse], id, sparse)
	}
}

func TestStream(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := config.Default()
	cfg.InputDir = t.TempDir()
	cfg.OutputDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, "updateStream_0_0_forum.csv"),
		[]byte("2200|0|8|42|43|2200\n"), 0644))

	result, err := Stream(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, 2, result.EdgeEvents)
	assert.FileExists(t, result.VertexPath)
	assert.FileExists(t, result.EdgePath)
}

func TestStreamRejectsHashMode(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := config.Default()
	cfg.InputDir = t.TempDir()
	cfg.OutputDir = t.TempDir()
	cfg.HashIDs = true
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, "updateStream_0_0_forum.csv"),
		[]byte("2200|0|8|42|43|2200\n"), 0644))

	_, err := Stream(context.Background(), cfg, logger)
	assert.ErrorIs(t, err, ErrStreamHashMode)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, stream.VertexStreamFile))
}

func TestMissingDirectories(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	cfg := config.Default()

	_, err := Transform(ctx, cfg, TransformOptions{}, logger)
	assert.Error(t, err)
	_, err = Synthesize(ctx, cfg, logger)
	assert.Error(t, err)
	_, err = Stream(ctx, cfg, logger)
	assert.Error(t, err)
	_, err = Verify(ctx, cfg)
	assert.Error(t, err)
	assert.Error(t, Load(ctx, cfg, logger))
}
