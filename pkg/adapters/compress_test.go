package adapters

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeGzip creates a gzip file at path holding content.
func writeGzip(t *testing.T, path string, content []byte) {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

// readGzip returns the decompressed content of the gzip file at path.
func readGzip(t *testing.T, path string) []byte {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	return data
}

// binaryPayload holds bytes a text-mode copy would mangle.
var binaryPayload = []byte{0x00, 0x0a, 0x0d, 0x0a, 0xff, 0x1a, 'n', 'i', 'i', 0x00}

func TestGunzip(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	src := filepath.Join(srcDir, "test_file.gz")
	writeGzip(t, src, binaryPayload)

	out, err := Gunzip(src, WithOutputDirectory(outDir), WithPrefix("u"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "utest_file"), out)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, binaryPayload, data)
	assert.FileExists(t, src)
}

func TestGunzipDefaults(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "anat.nii.gz")
	writeGzip(t, src, []byte("voxels"))

	out, err := Gunzip(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "uanat.nii"), out)

	out, err = Gunzip(src, WithPrefix(""), WithOutputDirectory(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, "anat.nii", filepath.Base(out))
}

func TestGunzipPassthrough(t *testing.T) {
	src := filepath.Join(t.TempDir(), "test_file.txt")
	require.NoError(t, os.WriteFile(src, []byte("plain"), 0644))

	out, err := Gunzip(src, WithOutputDirectory(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestGunzipDotName(t *testing.T) {
	src := filepath.Join(t.TempDir(), ".gz")
	writeGzip(t, src, []byte("hidden"))

	out, err := Gunzip(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"anat.nii.gz":  ".gz",
		"/data/a.nii":  ".nii",
		".gz":          "",
		"..gz":         "",
		".hidden.gz":   ".gz",
		"README":       "",
		"dir.d/README": "",
	}
	for path, want := range tests {
		assert.Equal(t, want, extension(path), path)
	}
}

func TestGunzipErrors(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "test_file.gz")
	writeGzip(t, src, []byte("x"))

	_, err := Gunzip(filepath.Join(dir, "missing.gz"))
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = Gunzip(dir)
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = Gunzip(src, WithOutputDirectory(filepath.Join(dir, "non_existent")))
	assert.ErrorIs(t, err, ErrInvalidDirectory)

	_, err = Gunzip(src, WithOutputDirectory(src))
	assert.ErrorIs(t, err, ErrInvalidDirectory)
}

func TestGunzipCorruptInput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.gz")
	require.NoError(t, os.WriteFile(src, []byte("not gzip at all"), 0644))

	_, err := Gunzip(src)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "ubroken"))
}

func TestGunzipAll(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.nii.gz")
	b := filepath.Join(dir, "b.txt")
	writeGzip(t, a, []byte("a"))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0644))

	out, err := GunzipAll([]string{a, b})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "ua.nii"), b}, out)

	_, err = GunzipAll([]string{a, filepath.Join(dir, "missing.gz")})
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestGzip(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	src := filepath.Join(srcDir, "test_file.txt")
	require.NoError(t, os.WriteFile(src, binaryPayload, 0644))

	out, err := Gzip(src, WithOutputDirectory(outDir), WithPrefix("g"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "gtest_file.txt.gz"), out)
	assert.Equal(t, binaryPayload, readGzip(t, out))
	assert.FileExists(t, src)
}

func TestGzipNaming(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		opts   []Option
		expect string
	}{
		{name: "default prefix", file: "anat.nii", expect: "ganat.nii.gz"},
		{name: "custom prefix", file: "anat.nii", opts: []Option{WithPrefix("z_")}, expect: "z_anat.nii.gz"},
		{name: "empty prefix", file: "anat.nii", opts: []Option{WithPrefix("")}, expect: "anat.nii.gz"},
		{name: "no extension", file: "README", expect: "gREADME.gz"},
		{name: "dot name", file: ".gz", expect: "g.gz.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(src, []byte(tt.name), 0644))

			out, err := Gzip(src, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.expect), out)
			assert.Equal(t, []byte(tt.name), readGzip(t, out))
		})
	}
}

func TestGzipRemoveOriginal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "test_file.txt")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0644))

	out, err := Gzip(src, WithRemoveOriginal(true))
	require.NoError(t, err)

	assert.NoFileExists(t, src)
	assert.Equal(t, []byte("content"), readGzip(t, out))
}

func TestGzipPassthrough(t *testing.T) {
	src := filepath.Join(t.TempDir(), "test_file.gz")
	writeGzip(t, src, []byte("x"))

	out, err := Gzip(src, WithRemoveOriginal(true))
	require.NoError(t, err)
	assert.Equal(t, src, out)
	assert.FileExists(t, src)
}

func TestGzipErrors(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "test_file.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))

	_, err := Gzip(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = Gzip(src, WithOutputDirectory(filepath.Join(dir, "non_existent")))
	assert.ErrorIs(t, err, ErrInvalidDirectory)
}

func TestGzipGunzipRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scan.nii")
	require.NoError(t, os.WriteFile(src, binaryPayload, 0644))

	gz, err := Gzip(src, WithPrefix(""))
	require.NoError(t, err)

	out, err := Gunzip(gz, WithOutputDirectory(t.TempDir()), WithPrefix(""))
	require.NoError(t, err)
	assert.Equal(t, "scan.nii", filepath.Base(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, binaryPayload, data)
}
