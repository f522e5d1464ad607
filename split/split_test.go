package split

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-sif/progressive/datasource/file"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func writeInputs(t *testing.T) (string, string) {
	dir, err := ioutil.TempDir("", "progressive-split")
	require.Nil(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	for i := 0; i < 2; i++ {
		lines := []string{"id,name,score,flag"}
		for j := 0; j < 5; j++ {
			lines = append(lines, fmt.Sprintf("%d,row %d,%d.5,%v", i*5+j, i*5+j, j, j%2 == 0))
		}
		lines = append(lines, fmt.Sprintf("%d,,,", 10+i))
		path := filepath.Join(dir, fmt.Sprintf("input_%d.csv", i))
		require.Nil(t, ioutil.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	}
	return filepath.Join(dir, "input_*.csv"), filepath.Join(dir, "out")
}

func TestSplitByNumRows(t *testing.T) {
	inputs, out := writeInputs(t)
	meta, err := Split(context.Background(), &Options{
		Inputs:     []string{inputs},
		OutputDir:  out,
		NumRows:    5,
		Fields:     []string{"score", "id"},
		InferTypes: true,
	})
	require.Nil(t, err)
	require.Len(t, meta.InputFiles, 2)
	require.Equal(t, []HeaderEntry{{Name: "score", Type: "numeric"}, {Name: "id", Type: "integer"}}, meta.Header)
	require.Equal(t, []OutputFile{
		{Index: 0, Path: "0.csv", NumRows: 5},
		{Index: 1, Path: "1.csv", NumRows: 5},
		{Index: 2, Path: "2.csv", NumRows: 2},
	}, meta.OutputFiles)

	first, err := ioutil.ReadFile(filepath.Join(out, "0.csv"))
	require.Nil(t, err)
	require.Equal(t, "0.5,0\n1.5,1\n2.5,2\n3.5,3\n4.5,4\n", string(first))

	written, err := ioutil.ReadFile(filepath.Join(out, MetadataFileName))
	require.Nil(t, err)
	require.Equal(t, "2.csv", gjson.GetBytes(written, "output_files.2.path").String())

	ds, err := file.Open(out, nil)
	require.Nil(t, err)
	require.Equal(t, int64(12), ds.NumRows())
	last, err := ds.ReadPartition(context.Background(), ds.ListPartitions()[2], nil)
	require.Nil(t, err)
	require.Equal(t, 2, last.GetNumRows())
	require.Equal(t, 4.5, last.GetRow(0).Get(0))
	require.True(t, last.GetRow(1).IsNil(0))
	require.Equal(t, int64(11), last.GetRow(1).Get(1))
}

func TestSplitByNumBatches(t *testing.T) {
	inputs, out := writeInputs(t)
	seed := int64(7)
	meta, err := Split(context.Background(), &Options{
		Inputs:      []string{inputs},
		OutputDir:   out,
		NumBatches:  3,
		Compress:    true,
		InferTypes:  true,
		Seed:        &seed,
		Parallelism: 2,
	})
	require.Nil(t, err)
	require.Len(t, meta.OutputFiles, 3)
	require.Equal(t, []HeaderEntry{
		{Name: "id", Type: "integer"},
		{Name: "name", Type: "string"},
		{Name: "score", Type: "numeric"},
		{Name: "flag", Type: "boolean"},
	}, meta.Header)
	total := int64(0)
	for i, f := range meta.OutputFiles {
		require.Equal(t, i, f.Index)
		require.Equal(t, fmt.Sprintf("%d.csv.zst", i), f.Path)
		total += f.NumRows
	}
	require.Equal(t, int64(12), total)

	ds, err := file.Open(out, nil)
	require.Nil(t, err)
	seen := map[int64]bool{}
	for _, p := range ds.ListPartitions() {
		part, err := ds.ReadPartition(context.Background(), p, nil)
		require.Nil(t, err)
		require.Equal(t, int(p.NumRows), part.GetNumRows())
		for r := 0; r < part.GetNumRows(); r++ {
			seen[part.GetRow(r).Get(0).(int64)] = true
		}
	}
	require.Len(t, seen, 12)
}

func TestSplitErrors(t *testing.T) {
	inputs, out := writeInputs(t)
	ctx := context.Background()
	_, err := Split(ctx, nil)
	require.NotNil(t, err)
	_, err = Split(ctx, &Options{Inputs: []string{inputs}, OutputDir: out})
	require.Contains(t, err.Error(), "exactly one")
	_, err = Split(ctx, &Options{Inputs: []string{inputs}, OutputDir: out, NumRows: 1, NumBatches: 1})
	require.Contains(t, err.Error(), "exactly one")
	_, err = Split(ctx, &Options{Inputs: []string{filepath.Join(out, "missing_*.csv")}, OutputDir: out, NumRows: 1})
	require.Contains(t, err.Error(), "matches no files")
	_, err = Split(ctx, &Options{Inputs: []string{inputs}, OutputDir: out, NumRows: 1, Fields: []string{"dog"}})
	require.Contains(t, err.Error(), "no column dog")
}
