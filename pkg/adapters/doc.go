// Package adapters holds the glue nodes a pipeline engine places between
// processing steps: wrapping and unwrapping singleton lists, gzip and gunzip
// of image files, renaming, the SPM tissue probability map table, column
// normalization of text arrays and a no-op pass-through.
//
// Every adapter is a synchronous function of its arguments. None of them log;
// failures are returned as errors wrapping one of the sentinels in errors.go.
package adapters
