package adapters

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// readColumns parses a whitespace-delimited file into columns.
func readColumns(t *testing.T, path string) [][]float64 {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cols [][]float64
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		fields := strings.Fields(line)
		if cols == nil {
			cols = make([][]float64, len(fields))
		}
		require.Len(t, fields, len(cols))
		for j, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			require.NoError(t, err)
			cols[j] = append(cols[j], v)
		}
	}
	return cols
}

func TestNormalizeColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motion.txt")
	content := "1 10 -3.5\n2 20 0.5\n3 35 7\n4 41 2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, err := NormalizeColumns(path)
	require.NoError(t, err)
	assert.Equal(t, path, out)

	cols := readColumns(t, path)
	require.Len(t, cols, 3)
	for _, col := range cols {
		require.Len(t, col, 4)
		mean, variance := stat.PopMeanVariance(col, nil)
		assert.InDelta(t, 0, mean, 1e-7)
		assert.InDelta(t, 1, math.Sqrt(variance), 1e-7)
	}

	// First column: (x-2.5)/sqrt(1.25)
	assert.InDelta(t, -1.34164079, cols[0][0], 1e-8)
	assert.NoFileExists(t, path+".tmp")
}

func TestNormalizeColumnsFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("0 2\n2 4\n"), 0644))

	_, err := NormalizeColumns(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "-1.00000000 -1.00000000\n1.00000000 1.00000000\n", string(data))
}

func TestNormalizeColumnsFixedPoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("0 2\n2 4\n"), 0644))

	_, err := NormalizeColumns(path)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = NormalizeColumns(path)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestNormalizeColumnsSkipsCommentsAndBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("# header\n1\t5\n\n3\t7\n"), 0644))

	_, err := NormalizeColumns(path)
	require.NoError(t, err)

	cols := readColumns(t, path)
	require.Len(t, cols, 2)
	assert.InDeltaSlice(t, []float64{-1, 1}, cols[0], 1e-8)
	assert.InDeltaSlice(t, []float64{-1, 1}, cols[1], 1e-8)
}

func TestNormalizeColumnsSingleRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "row.txt")
	require.NoError(t, os.WriteFile(path, []byte("1 2 3\n"), 0644))

	_, err := NormalizeColumns(path)
	require.NoError(t, err)

	cols := readColumns(t, path)
	require.Len(t, cols, 1)
	require.Len(t, cols[0], 3)
	assert.InDelta(t, 0, cols[0][1], 1e-8)
}

func TestNormalizeColumnsConstantColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("1 5\n2 5\n"), 0644))

	_, err := NormalizeColumns(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "-1.00000000 nan\n1.00000000 nan\n", string(data))
}

func TestNormalizeColumnsKeepsSiblingsAndMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("1\n3\n"), 0600))
	require.NoError(t, os.Chmod(path, 0600))
	sibling := path + ".tmp"
	require.NoError(t, os.WriteFile(sibling, []byte("unrelated"), 0644))

	_, err := NormalizeColumns(path)
	require.NoError(t, err)

	data, err := os.ReadFile(sibling)
	require.NoError(t, err)
	assert.Equal(t, "unrelated", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary file may be left behind")
}

func TestNormalizeColumnsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NormalizeColumns(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, ErrFileNotFound)

	ragged := filepath.Join(dir, "ragged.txt")
	require.NoError(t, os.WriteFile(ragged, []byte("1 2\n3\n"), 0644))
	_, err = NormalizeColumns(ragged)
	assert.ErrorIs(t, err, ErrMalformedArray)

	text := filepath.Join(dir, "text.txt")
	require.NoError(t, os.WriteFile(text, []byte("1 a\n"), 0644))
	_, err = NormalizeColumns(text)
	assert.ErrorIs(t, err, ErrMalformedArray)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = NormalizeColumns(empty)
	assert.ErrorIs(t, err, ErrMalformedArray)

	// Failed loads leave the file alone
	data, err := os.ReadFile(ragged)
	require.NoError(t, err)
	assert.Equal(t, "1 2\n3\n", string(data))
}
