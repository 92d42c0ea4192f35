// Package config provides configuration loading and management for mmutils.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Compression holds the file naming defaults of the gzip adapters.
type Compression struct {
	// UnzipPrefix is prepended to the name of every decompressed file
	UnzipPrefix string `yaml:"unzipPrefix"`

	// ZipPrefix is prepended to the name of every compressed file
	ZipPrefix string `yaml:"zipPrefix"`

	// RemoveOriginal deletes the source file after a successful compression
	RemoveOriginal bool `yaml:"removeOriginal"`
}

// TPM locates the tissue probability map shipped with the segmentation tools.
type TPM struct {
	// FSLDir is the FSL installation directory
	FSLDir string `yaml:"fslDir"`

	// SPMDir is the SPM installation directory. An spm8 directory resolves
	// the map through the sample data provider.
	SPMDir string `yaml:"spmDir"`

	// Legacy returns the five-class table instead of the six-class one
	Legacy bool `yaml:"legacy"`
}

// Plot holds the rendering parameters of the diagnostic snapshot.
type Plot struct {
	// Scale is the upsampling factor applied to each slice before compositing
	Scale int `yaml:"scale"`

	// EdgeThreshold is the normalized gradient magnitude above which a pixel is an edge
	EdgeThreshold float64 `yaml:"edgeThreshold"`

	// ContourAlpha is the opacity of filled contours
	ContourAlpha float64 `yaml:"contourAlpha"`

	// OverlayColormap is the colormap used when none is requested
	OverlayColormap string `yaml:"overlayColormap"`
}

// Config represents the application configuration loaded from YAML
type Config struct {
	Compression Compression `yaml:"compression"`
	TPM         TPM         `yaml:"tpm"`
	Plot        Plot        `yaml:"plot"`

	// Output parameters
	Output struct {
		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Compression.UnzipPrefix = "u"
	cfg.Compression.ZipPrefix = "g"
	cfg.Compression.RemoveOriginal = false

	cfg.TPM.FSLDir = "/usr/share/fsl/4.1"
	cfg.TPM.SPMDir = "/i2bm/local/spm8/"
	cfg.TPM.Legacy = false

	cfg.Plot.Scale = 3
	cfg.Plot.EdgeThreshold = 0.3
	cfg.Plot.ContourAlpha = 0.6
	cfg.Plot.OverlayColormap = ""

	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
