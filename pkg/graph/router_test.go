package graph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/athapong/ldbc-dense/pkg/graph/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want Classification
	}{
		{"person_0_0.csv", Classification{Kind: VertexFile, Entity: EntityPerson}},
		{"tagclass_12_3.csv", Classification{Kind: VertexFile, Entity: EntityTagClass}},
		{"/data/static/place_0_0.csv", Classification{Kind: VertexFile, Entity: EntityPlace}},
		{"person_knows_person_0_0.csv", Classification{
			Kind: EdgeFile,
			Edge: EdgeLabel{EntityPerson, RelationKnows, EntityPerson},
		}},
		{"comment_replyOf_post_1_0.csv", Classification{
			Kind: EdgeFile,
			Edge: EdgeLabel{EntityComment, RelationReplyOf, EntityPost},
		}},
		{"person_follows_person_0_0.csv", Classification{
			Kind: EdgeFile,
			Edge: EdgeLabel{EntityPerson, RelationType("follows"), EntityPerson},
		}},
		{"person.csv", Classification{}},
		{"city_0_0.csv", Classification{}},
		{"person_email_emailaddress_0_0.csv", Classification{}},
		{"person_speaks_language_0_0.csv", Classification{}},
		{".person_0_0.csv", Classification{}},
		{"_SUCCESS", Classification{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name))
		})
	}
}

func TestClassificationKey(t *testing.T) {
	assert.Equal(t, "person", Classify("person_0_0.csv").Key())
	assert.Equal(t, "person-knows-person", Classify("person_knows_person_3_0.csv").Key())
	assert.Equal(t, "", Classify("readme.txt").Key())
}

func TestGroupFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"person_1_0.csv",
		"person_0_0.csv",
		"person_knows_person_0_0.csv",
		"person_email_emailaddress_0_0.csv",
		".hidden_0_0.csv",
	} {
		writeTestFile(t, filepath.Join(dir, name), "id")
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "forum_0_0.csv"), 0755))

	logger, _ := test.NewNullLogger()
	before := testutil.ToFloat64(metrics.FilesSkipped)

	groups, err := GroupFiles(dir, logger)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, EntityPerson, groups[0].Classification.Entity)
	assert.Equal(t, []string{
		filepath.Join(dir, "person_0_0.csv"),
		filepath.Join(dir, "person_1_0.csv"),
	}, groups[0].Paths)
	assert.Equal(t, "person-knows-person", groups[1].Classification.Key())
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.FilesSkipped)-before)

	_, err = GroupFiles(filepath.Join(dir, "missing"), logger)
	assert.Error(t, err)
}

func TestEnsureLayout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, EnsureLayout(dir))
	require.NoError(t, EnsureLayout(dir))

	for _, sub := range []string{
		VertexDirName,
		filepath.Join(EdgesDirName, StaticDirName),
		filepath.Join(EdgesDirName, DynamicDirName),
	} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestFileRouter(t *testing.T) {
	f := newTransformFixture(t)
	logger, _ := test.NewNullLogger()
	router := NewFileRouter(f.vertices, f.edges, f.out, logger)

	writeTestFile(t, filepath.Join(f.in, "tag_0_0.csv"), "id|name", "1|go")
	writeTestFile(t, filepath.Join(f.in, "tag_hasType_tagclass_0_0.csv"), "Tag.id|TagClass.id", "1|2")
	writeTestFile(t, filepath.Join(f.in, "notes.txt"), "hello")

	output, err := router.RouteFile(context.Background(), f.in, "tag_0_0.csv", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.out, VertexDirName, "tag.csv"), output)

	output, err = router.RouteFile(context.Background(), f.in, "tag_hasType_tagclass_0_0.csv", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.out, EdgesDirName, StaticDirName, "tag-hasType-tagclass.csv"), output)
	assert.Equal(t, []string{
		"Tag.id|TagClass.id|label",
		"600000000000000001|700000000000000002|1",
	}, readTestFile(t, output))

	output, err = router.RouteFile(context.Background(), f.in, "notes.txt", false)
	require.NoError(t, err)
	assert.Empty(t, output)
}
