package models

// TissueMap points at one 3D map inside a 4D tissue probability map file.
// Index is 1-based, as segmentation tools number the frames.
type TissueMap struct {
	File  string `yaml:"file" json:"file"`
	Index int    `yaml:"index" json:"index"`
}

// BoolPair is a pair of output switches for one tissue class.
type BoolPair struct {
	First  bool `yaml:"first" json:"first"`
	Second bool `yaml:"second" json:"second"`
}

// TissueDescriptor describes one tissue class for a unified segmentation:
// the prior map, how many Gaussians model its intensities, which native
// space images to write (native, DARTEL imported) and which warped images
// to write (modulated, unmodulated).
type TissueDescriptor struct {
	Map       TissueMap `yaml:"map" json:"map"`
	Gaussians int       `yaml:"gaussians" json:"gaussians"`
	Native    BoolPair  `yaml:"native" json:"native"`
	Warped    BoolPair  `yaml:"warped" json:"warped"`
}
