package graph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, path string, lines ...string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func readTestFile(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestReadTable(t *testing.T) {
	dir := t.TempDir()

	t.Run("repeated headers", func(t *testing.T) {
		path := writeTestFile(t, filepath.Join(dir, "knows.csv"),
			"Person.id|Person.id|creationDate",
			"1|2|100",
		)
		table, err := ReadTable(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Person.id", "Person.id.1", "creationDate"}, table.Header)
		assert.Equal(t, [][]string{{"1", "2", "100"}}, table.Rows)
	})

	t.Run("short rows are padded", func(t *testing.T) {
		path := writeTestFile(t, filepath.Join(dir, "short.csv"), "a|b|c", "1")
		table, err := ReadTable(path)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"1", "", ""}}, table.Rows)
	})

	t.Run("long rows fail", func(t *testing.T) {
		path := writeTestFile(t, filepath.Join(dir, "long.csv"), "a|b", "1|2|3")
		_, err := ReadTable(path)
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.csv")
		require.NoError(t, os.WriteFile(path, nil, 0644))
		_, err := ReadTable(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadTable(filepath.Join(dir, "nope.csv"))
		assert.Error(t, err)
	})
}

func TestReadTables(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, filepath.Join(dir, "person_0_0.csv"), "id|firstName", "1|Ann")
	b := writeTestFile(t, filepath.Join(dir, "person_1_0.csv"), "id|firstName", "2|Bob")
	c := writeTestFile(t, filepath.Join(dir, "person_2_0.csv"), "id|lastName", "3|Cox")

	table, err := ReadTables(a, b)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "Ann"}, {"2", "Bob"}}, table.Rows)

	_, err = ReadTables(a, c)
	assert.Error(t, err)

	_, err = ReadTables()
	assert.Error(t, err)
}

func TestDedupeHeader(t *testing.T) {
	assert.Equal(t,
		[]string{"a", "a.1", "a.2", "b"},
		dedupeHeader([]string{"a", "a", "a", "b"}))
	assert.Equal(t,
		[]string{"a", "a.1", "a.2"},
		dedupeHeader([]string{"a", "a.1", "a"}))
}

func TestTableEditing(t *testing.T) {
	table := &Table{
		Header: []string{"id", "name"},
		Rows:   [][]string{{"1", "x"}, {"", ""}, {"2", ""}},
	}

	table.DropEmptyRows()
	assert.Equal(t, [][]string{{"1", "x"}, {"2", ""}}, table.Rows)

	require.NoError(t, table.InsertColumn(1, "label", "person"))
	assert.Equal(t, []string{"id", "label", "name"}, table.Header)
	assert.Equal(t, []string{"1", "person", "x"}, table.Rows[0])
	assert.Error(t, table.InsertColumn(0, "label", "again"))

	assert.True(t, table.RenameColumn("id", "Person.id"))
	assert.False(t, table.RenameColumn("id", "other"))

	err := table.MapColumn("Person.id", func(s string) (string, error) { return "3" + s, nil })
	require.NoError(t, err)
	ids, err := table.Column("Person.id")
	require.NoError(t, err)
	assert.Equal(t, []string{"31", "32"}, ids)

	_, err = table.Column("id")
	assert.ErrorIs(t, err, ErrMissingColumn)

	selected, err := table.Select("name", "Person.id")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x", "31"}, {"", "32"}}, selected.Rows)
}

func TestLeftJoin(t *testing.T) {
	left := &Table{
		Header: []string{"Person.id", "Person.id.1", "label", "creationDate"},
		Rows: [][]string{
			{"1", "2", "15", "100"},
			{"3", "1", "15", "200"},
			{"9", "1", "15", "300"},
		},
	}
	right := &Table{
		Header: []string{"creationDate", "Person.id", "label", "firstName"},
		Rows: [][]string{
			{"10", "1", "person", "Ann"},
			{"30", "3", "person", "Cid"},
			{"31", "3", "person", "Cid2"},
		},
	}

	joined, err := left.LeftJoin(right, "Person.id")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Person.id", "Person.id.1", "label_x", "creationDate_x",
		"creationDate_y", "label_y", "firstName",
	}, joined.Header)
	assert.Equal(t, [][]string{
		{"1", "2", "15", "100", "10", "person", "Ann"},
		{"3", "1", "15", "200", "30", "person", "Cid"},
		{"3", "1", "15", "200", "31", "person", "Cid2"},
		{"9", "1", "15", "300", "", "", ""},
	}, joined.Rows)

	_, err = left.LeftJoin(right, "Forum.id")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestTableWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	table := &Table{Header: []string{"a", "b"}, Rows: [][]string{{"1", "2"}, {"3", ""}}}

	require.NoError(t, table.WriteFile(path))
	assert.Equal(t, []string{"a|b", "1|2", "3|"}, readTestFile(t, path))

	reread, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, table, reread)
}

func TestVertexCache(t *testing.T) {
	c := NewVertexCache()
	table := &Table{Header: []string{"Person.id"}}

	require.NoError(t, c.Put(EntityPerson, table))
	got, err := c.Get(EntityPerson)
	require.NoError(t, err)
	assert.Same(t, table, got)

	_, err = c.Get(EntityForum)
	assert.ErrorIs(t, err, ErrVertexTableMissing)

	c.Freeze()
	assert.Error(t, c.Put(EntityForum, table))

	c.Reset()
	assert.Equal(t, 0, c.Len())
	assert.NoError(t, c.Put(EntityForum, table))
}
