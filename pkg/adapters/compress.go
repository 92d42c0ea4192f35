package adapters

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// gzipExt is the only extension the compression adapters recognize.
const gzipExt = ".gz"

const (
	defaultUnzipPrefix = "u"
	defaultZipPrefix   = "g"
)

type compressOptions struct {
	prefix         *string
	outputDir      string
	removeOriginal bool
}

// Option configures Gzip, Gunzip and GunzipAll.
type Option func(*compressOptions)

// WithPrefix sets the prefix of the output file name. An empty prefix keeps
// the input base name.
func WithPrefix(prefix string) Option {
	return func(o *compressOptions) {
		o.prefix = &prefix
	}
}

// WithOutputDirectory writes the output file to dir instead of the directory
// of the input file. dir must exist.
func WithOutputDirectory(dir string) Option {
	return func(o *compressOptions) {
		o.outputDir = dir
	}
}

// WithRemoveOriginal deletes the input file once Gzip has written its output.
func WithRemoveOriginal(remove bool) Option {
	return func(o *compressOptions) {
		o.removeOriginal = remove
	}
}

func buildOptions(defaultPrefix string, opts []Option) compressOptions {
	o := compressOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.prefix == nil {
		o.prefix = &defaultPrefix
	}
	return o
}

// resolvePaths checks that path is a regular file and returns the directory
// the output should be written to.
func resolvePaths(path string, o compressOptions) (string, os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", nil, fmt.Errorf("%q: %w", path, ErrFileNotFound)
	}

	if o.outputDir == "" {
		return filepath.Dir(path), info, nil
	}

	dirInfo, err := os.Stat(o.outputDir)
	if err != nil || !dirInfo.IsDir() {
		return "", nil, fmt.Errorf("%q: %w", o.outputDir, ErrInvalidDirectory)
	}

	return o.outputDir, info, nil
}

// Gunzip decompresses a .gz file to <dir>/<prefix><name without .gz> and
// returns the new path. Files without the .gz extension are returned as is.
// The default prefix is "u" and the default directory is the one holding path.
func Gunzip(path string, opts ...Option) (string, error) {
	o := buildOptions(defaultUnzipPrefix, opts)

	outDir, _, err := resolvePaths(path, o)
	if err != nil {
		return "", err
	}

	ext := extension(path)
	if ext != gzipExt {
		return path, nil
	}

	base := strings.TrimSuffix(filepath.Base(path), ext)
	outPath := filepath.Join(outDir, *o.prefix+base)

	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening %s: %w", path, err)
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return "", fmt.Errorf("error reading gzip header of %s: %w", path, err)
	}
	defer zr.Close()

	err = writeFile(outPath, func(w io.Writer) error {
		_, err := io.Copy(w, zr)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("error decompressing %s: %w", path, err)
	}

	return outPath, nil
}

// extension returns the extension of the base name of path. Leading dots
// belong to the name, so ".gz" has no extension.
func extension(path string) string {
	base := filepath.Base(path)
	if !strings.Contains(strings.TrimLeft(base, "."), ".") {
		return ""
	}
	return filepath.Ext(base)
}

// GunzipAll applies Gunzip to every path, in order, and stops at the first error.
func GunzipAll(paths []string, opts ...Option) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		p, err := Gunzip(path, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Gzip compresses a file to <dir>/<prefix><name>.gz, keeping the original
// extension in the name, and returns the new path. A file that already has
// the .gz extension is returned as is. The default prefix is "g" and the
// default directory is the one holding path.
func Gzip(path string, opts ...Option) (string, error) {
	o := buildOptions(defaultZipPrefix, opts)

	outDir, info, err := resolvePaths(path, o)
	if err != nil {
		return "", err
	}

	if extension(path) == gzipExt {
		return path, nil
	}

	name := filepath.Base(path)
	outPath := filepath.Join(outDir, *o.prefix+name+gzipExt)

	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening %s: %w", path, err)
	}
	defer in.Close()

	err = writeFile(outPath, func(w io.Writer) error {
		zw := gzip.NewWriter(w)
		zw.Name = name
		zw.ModTime = info.ModTime()
		if _, err := io.Copy(zw, in); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	})
	if err != nil {
		return "", fmt.Errorf("error compressing %s: %w", path, err)
	}

	if o.removeOriginal {
		in.Close()
		if err := os.Remove(path); err != nil {
			return "", fmt.Errorf("error removing %s: %w", path, err)
		}
	}

	return outPath, nil
}

// writeFile creates path, hands it to fill and closes it. The file is removed
// if fill or the close fails.
func writeFile(path string, fill func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	return fill(f)
}
