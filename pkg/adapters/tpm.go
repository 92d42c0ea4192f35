package adapters

import (
	"fmt"
	"path/filepath"
	"strings"

	"mmutils/internal/models"
	"mmutils/pkg/config"
	"mmutils/pkg/sampledata"
)

// tissueClass is one row of the SPM unified segmentation tissue table.
type tissueClass struct {
	gaussians int
	native    models.BoolPair
	warped    models.BoolPair
}

// tissueClasses lists grey matter, white matter, CSF, bone, soft tissue and
// air/background, in map order.
var tissueClasses = [...]tissueClass{
	{gaussians: 2, native: models.BoolPair{First: true, Second: true}, warped: models.BoolPair{First: false, Second: true}},
	{gaussians: 2, native: models.BoolPair{First: true, Second: true}, warped: models.BoolPair{First: false, Second: true}},
	{gaussians: 2, native: models.BoolPair{First: true, Second: false}, warped: models.BoolPair{}},
	{gaussians: 3},
	{gaussians: 4},
	{gaussians: 2},
}

// legacyTissueCount is the size of the table before the background class was added.
const legacyTissueCount = 5

// TissueProbabilityMaps returns the SPM tissue probability map table. When
// cfg.SPMDir is an spm8 installation the map file is resolved through
// provider, otherwise it is <SPMDir>/tpm/TPM.nii. Every row references the
// same file, with map indices 1..N.
func TissueProbabilityMaps(cfg config.TPM, provider sampledata.Provider) ([]models.TissueDescriptor, error) {
	file, err := resolveTPMFile(cfg, provider)
	if err != nil {
		return nil, err
	}

	classes := tissueClasses[:]
	if cfg.Legacy {
		classes = classes[:legacyTissueCount]
	}

	tpm := make([]models.TissueDescriptor, len(classes))
	for i, c := range classes {
		tpm[i] = models.TissueDescriptor{
			Map:       models.TissueMap{File: file, Index: i + 1},
			Gaussians: c.gaussians,
			Native:    c.native,
			Warped:    c.warped,
		}
	}

	return tpm, nil
}

func resolveTPMFile(cfg config.TPM, provider sampledata.Provider) (string, error) {
	if !strings.Contains(cfg.SPMDir, "spm8") {
		return filepath.Join(cfg.SPMDir, "tpm", "TPM.nii"), nil
	}

	if provider == nil {
		return "", fmt.Errorf("%w: no sample data provider", ErrResourceUnavailable)
	}
	ds, err := provider.Lookup("tpm", sampledata.Dirs{FSL: cfg.FSLDir, SPM: cfg.SPMDir})
	if err != nil {
		return "", fmt.Errorf("error resolving tissue probability maps: %w", err)
	}

	return ds.All, nil
}
