package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mmutils/pkg/config"
	"mmutils/version"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "mmutils",
		Short: "mmutils - adapter nodes for neuroimaging pipelines",
		Long: `mmutils exposes the small glue steps of a neuroimaging pipeline as commands:

  - gzip/gunzip: compress and decompress images next to, or away from, the originals
  - rename: move a file without ever overwriting one
  - tpm: print the SPM tissue probability map table
  - normalize: standardize the columns of a text array in place
  - plot: write a PDF snapshot of an image with edges, overlay and contours
  - wrap/unwrap/noprocess: list shape adapters

Every command prints its result on stdout.`,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	groupFiles := "files"
	groupData := "data"
	rootCmd.AddGroup(&cobra.Group{ID: groupFiles, Title: "File Adapters"})
	rootCmd.AddGroup(&cobra.Group{ID: groupData, Title: "Data Adapters"})

	for _, cmd := range []*cobra.Command{
		newGunzipCmd(a),
		newGzipCmd(a),
		newRenameCmd(a),
		newNormalizeCmd(a),
		newPlotCmd(a),
	} {
		cmd.GroupID = groupFiles
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		newTPMCmd(a),
		newWrapCmd(a),
		newUnwrapCmd(a),
		newNoProcessCmd(a),
	} {
		cmd.GroupID = groupData
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// init loads the configuration and builds the logger.
func (a *app) init() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	zcfg := zap.NewProductionConfig()
	if a.verbose || cfg.Output.Verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	a.logger.Debug("Configuration loaded", zap.String("path", a.configPath))
	return nil
}
