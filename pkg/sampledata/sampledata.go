// Package sampledata resolves reference datasets shipped with third-party
// neuroimaging toolboxes (FSL, SPM) to files on disk.
package sampledata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrResourceUnavailable is returned when a dataset cannot be provided.
	ErrResourceUnavailable = errors.New("sample data resource unavailable")

	// ErrUnknownDataset is returned for dataset names the provider does not know.
	ErrUnknownDataset = errors.New("unknown sample dataset")
)

// Dirs are the toolbox installation directories a lookup may search.
type Dirs struct {
	FSL string
	SPM string
}

// Dataset is a resolved sample dataset.
type Dataset struct {
	// Name is the dataset name used in the lookup
	Name string

	// All is the combined file holding every component of the dataset
	All string
}

// Provider looks up a named dataset.
type Provider interface {
	Lookup(name string, dirs Dirs) (Dataset, error)
}

// FS resolves datasets from the toolbox installation directories.
type FS struct{}

// Lookup implements Provider.
func (FS) Lookup(name string, dirs Dirs) (Dataset, error) {
	switch name {
	case "tpm":
		return lookupTPM(dirs)
	default:
		return Dataset{}, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
}

// lookupTPM returns the SPM8 unified segmentation priors.
func lookupTPM(dirs Dirs) (Dataset, error) {
	if dirs.SPM == "" {
		return Dataset{}, fmt.Errorf("%w: no spm directory given", ErrResourceUnavailable)
	}

	ds := Dataset{
		Name: "tpm",
		All:  filepath.Join(dirs.SPM, "toolbox", "Seg", "TPM.nii"),
	}
	if err := requireFile(ds.All); err != nil {
		return Dataset{}, err
	}

	return ds, nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrResourceUnavailable, path)
	}
	return nil
}
