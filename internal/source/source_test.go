package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"cdm-mapper/internal/frame"
)

const demoCSV = "\ufeffSubject_ID, sex ,dob\n101,M,1980-05-17\n102,F,\n101,M,1980-05-17\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestReadCSV(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(demoCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Subject_ID", "sex", "dob"}, f.Columns())
	assert.Equal(t, 3, f.Len())

	col, _ := f.Column("dob")
	assert.Equal(t, []any{"1980-05-17", nil, "1980-05-17"}, col)
}

func TestReadCSV_Empty(t *testing.T) {
	f, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, f.Empty())
}

func TestReadCSV_RaggedRows(t *testing.T) {
	f, err := ReadCSV(strings.NewReader("a,b\n1\n2,3,4\n"))
	require.NoError(t, err)

	col, _ := f.Column("b")
	assert.Equal(t, []any{nil, "3"}, col)
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "demographics.csv", TableName("/data/Demographics.csv", Options{}))
	assert.Equal(t, "demographics", TableName("/data/Demographics.csv", Options{TrimSuffix: true}))
	assert.Equal(t, "demo", TableName("Demographics.csv", Options{TrimSuffix: true, StripName: 4}))
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	demo := writeFile(t, dir, "Demo.csv", demoCSV)
	obs := writeFile(t, dir, "obs.csv", "subject_id,code\n101,A\n")

	core, logs := observer.New(zap.InfoLevel)

	ds, err := LoadCSV([]string{demo, obs}, Options{TrimSuffix: true, Logger: zap.New(core)})
	require.NoError(t, err)

	assert.Equal(t, []string{"demo", "obs"}, ds.Names())
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 3, ds.Rows())
	assert.Equal(t, 2, logs.FilterMessage("loaded input").Len())

	f, ok := ds.Table("DEMO")
	require.True(t, ok)
	assert.Equal(t, 3, f.Len())
}

func TestLoadCSV_NoInputs(t *testing.T) {
	_, err := LoadCSV(nil, Options{})
	assert.True(t, errors.Is(err, ErrNoInputs))

	_, err = LoadDir(t.TempDir(), Options{})
	assert.True(t, errors.Is(err, ErrNoInputs))

	_, err = LoadCSV([]string{filepath.Join(t.TempDir(), "missing.csv")}, Options{})
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "x\n1\n")
	writeFile(t, dir, "a.csv", "y\n2\n")
	writeFile(t, dir, "notes.txt", "ignored")

	ds, err := LoadDir(dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.csv"}, ds.Names())
}

func demoDataset(t *testing.T) *Dataset {
	t.Helper()

	f, err := ReadCSV(strings.NewReader(demoCSV))
	require.NoError(t, err)

	ds := NewDataset()
	ds.Add("Demo", f)
	ds.Add("obs", frame.FromRecords([]string{"subject_id", "code", "unused"}, [][]string{{"101", "A", "x"}}))

	return ds
}

func TestCatalog(t *testing.T) {
	c := demoDataset(t).Catalog()
	assert.True(t, c.Has("demo", "sex"))
	assert.True(t, c.Has("OBS", "code"))
	assert.False(t, c.Has("obs", "sex"))
}

func TestSetIndexing(t *testing.T) {
	ds := demoDataset(t)

	diags := ds.SetIndexing(map[string]string{
		"demo":    "subject_id",
		"obs":     "missing",
		"nothere": "id",
	})

	assert.Equal(t, []string{"index_table_not_loaded", "index_column_not_found"}, diags.Codes())

	f, _ := ds.Table("demo")
	assert.Equal(t, "Subject_ID", f.IndexName())

	row, ok := f.Lookup(102)
	require.True(t, ok)
	assert.Equal(t, 1, row)

	obs, _ := ds.Table("obs")
	assert.Equal(t, "", obs.IndexName())
}

func TestReduce(t *testing.T) {
	ds := demoDataset(t)
	ds.Add("extra", frame.FromRecords([]string{"a"}, [][]string{{"1"}}))
	ds.SetIndexing(map[string]string{"obs": "subject_id"})

	diags := ds.Reduce(map[string][]string{
		"Demo": {"sex"},
		"obs":  {"code"},
	}, nil)

	assert.Equal(t, []string{"table_not_referenced"}, diags.Codes())
	assert.Equal(t, []string{"demo", "obs"}, ds.Names())

	demo, _ := ds.Table("demo")
	assert.Equal(t, []string{"sex"}, demo.Columns())

	obs, _ := ds.Table("obs")
	assert.Equal(t, []string{"subject_id", "code"}, obs.Columns())

	_, ok := ds.Table("extra")
	assert.False(t, ok)
}

func TestReduce_KeepsPersonIDBeforeIndexing(t *testing.T) {
	ds := demoDataset(t)
	ds.Add("labs", frame.FromRecords([]string{"subject_id", "val"}, [][]string{{"102", "X"}, {"101", "Y"}}))

	personIDs := map[string]string{"demo": "subject_id", "LABS": "Subject_ID", "missing": "id"}

	ds.Reduce(map[string][]string{
		"demo": {"sex"},
		"labs": {"val"},
	}, personIDs)

	demo, _ := ds.Table("demo")
	assert.Equal(t, []string{"Subject_ID", "sex"}, demo.Columns())

	labs, _ := ds.Table("labs")
	assert.Equal(t, []string{"subject_id", "val"}, labs.Columns())

	diags := ds.SetIndexing(personIDs)
	assert.Equal(t, []string{"index_table_not_loaded"}, diags.Codes())
	assert.Equal(t, "subject_id", labs.IndexName())
	assert.Equal(t, "Subject_ID", demo.IndexName())
}

func TestChunks(t *testing.T) {
	ds := demoDataset(t)
	assert.Empty(t, ds.SetIndexing(map[string]string{"obs": "subject_id"}).Codes())

	chunks := ds.Chunks("Demo", 2, 0)
	require.Len(t, chunks, 2)

	first, _ := chunks[0].Table("demo")
	second, _ := chunks[1].Table("demo")
	assert.Equal(t, 2, first.Len())
	assert.Equal(t, 1, second.Len())

	start, total := chunks[1].Span("demo")
	assert.Equal(t, 2, start)
	assert.Equal(t, 3, total)

	obs, _ := chunks[1].Table("obs")
	whole, _ := ds.Table("obs")
	assert.Same(t, whole, obs)

	start, total = chunks[1].Span("obs")
	assert.Equal(t, 0, start)
	assert.Equal(t, 1, total)

	assert.Len(t, ds.Chunks("demo", 1, 2), 2)
	assert.Same(t, ds, ds.Chunks("demo", 0, 0)[0].Dataset)
	assert.Same(t, ds, ds.Chunks("missing", 1, 0)[0].Dataset)
	assert.Len(t, NewDataset().Chunks("demo", 10, 0), 1)

	original, _ := ds.Table("demo")
	assert.Equal(t, 3, original.Len())
}
