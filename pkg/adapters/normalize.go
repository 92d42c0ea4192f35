package adapters

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// NormalizeColumns rescales every column of the whitespace-delimited array
// stored at path to zero mean and unit (population) standard deviation and
// overwrites the file with the result, eight decimals per value. A file with
// a single row is treated as one vector and written back one value per line.
// Constant columns divide by zero and come out as nan.
func NormalizeColumns(path string) (string, error) {
	m, err := loadArray(path)
	if err != nil {
		return "", err
	}

	rows, cols := m.Dims()
	if rows == 1 {
		m = mat.NewDense(cols, 1, mat.Row(nil, 0, m))
	}
	standardizeColumns(m)

	if err := saveArray(path, m); err != nil {
		return "", err
	}
	return path, nil
}

// standardizeColumns subtracts the column mean and divides by the column
// standard deviation in place.
func standardizeColumns(m *mat.Dense) {
	rows, cols := m.Dims()
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		mean, variance := stat.PopMeanVariance(col, nil)
		std := math.Sqrt(variance)
		for i := 0; i < rows; i++ {
			m.Set(i, j, (col[i]-mean)/std)
		}
	}
}

// loadArray reads a 2D array of floats. Blank lines and lines starting with
// '#' are skipped.
func loadArray(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, ErrFileNotFound)
	}
	defer f.Close()

	var data []float64
	rows, cols := 0, 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if rows == 0 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, fmt.Errorf("%w: line %d has %d columns, expected %d", ErrMalformedArray, line, len(fields), cols)
		}

		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedArray, line, err)
			}
			data = append(data, v)
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: %s holds no values", ErrMalformedArray, path)
	}

	return mat.NewDense(rows, cols, data), nil
}

// saveArray writes m to a temporary file next to path and renames it over
// path, so a failed write leaves the input untouched. The file mode of path
// is kept.
func saveArray(path string, m *mat.Dense) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%q: %w", path, ErrFileNotFound)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("error creating temporary file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if j > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(formatValue(m.At(i, j)))
		}
		bw.WriteByte('\n')
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err = tmp.Chmod(info.Mode().Perm()); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}

	return os.Rename(tmp.Name(), path)
}

// formatValue prints v with eight decimals, and non-finite values as nan,
// inf and -inf.
func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf("%5.8f", v)
}
