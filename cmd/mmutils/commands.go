package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"mmutils/pkg/adapters"
	"mmutils/pkg/config"
	"mmutils/pkg/plot"
	"mmutils/pkg/sampledata"
	"mmutils/version"
)

// compressFlags are shared by gzip and gunzip.
type compressFlags struct {
	prefix    string
	outputDir string
}

func (f *compressFlags) register(cmd *cobra.Command, defaultPrefix string) {
	cmd.Flags().StringVarP(&f.prefix, "prefix", "p", defaultPrefix, "Prefix of the output file name")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "Output directory (default: directory of the input)")
}

// options converts the flags to adapter options. The prefix comes from the
// configuration unless the flag was given.
func (f *compressFlags) options(cmd *cobra.Command, configured string) []adapters.Option {
	prefix := configured
	if cmd.Flags().Changed("prefix") {
		prefix = f.prefix
	}
	opts := []adapters.Option{adapters.WithPrefix(prefix)}
	if f.outputDir != "" {
		opts = append(opts, adapters.WithOutputDirectory(f.outputDir))
	}
	return opts
}

func newGunzipCmd(a *app) *cobra.Command {
	var flags compressFlags

	cmd := &cobra.Command{
		Use:   "gunzip FILE...",
		Short: "Decompress .gz files",
		Long: `Decompress each .gz file to <output-dir>/<prefix><name without .gz>.

Files without the .gz extension are printed back unchanged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := adapters.GunzipAll(args, flags.options(cmd, a.cfg.Compression.UnzipPrefix)...)
			if err != nil {
				return err
			}
			a.logger.Info("Decompressed files", zap.Strings("inputs", args), zap.Strings("outputs", out))
			for _, p := range out {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	flags.register(cmd, "u")

	return cmd
}

func newGzipCmd(a *app) *cobra.Command {
	var (
		flags          compressFlags
		removeOriginal bool
	)

	cmd := &cobra.Command{
		Use:   "gzip FILE",
		Short: "Compress a file",
		Long: `Compress FILE to <output-dir>/<prefix><name>.gz, keeping its extension.

A file that already ends in .gz is printed back unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(cmd, a.cfg.Compression.ZipPrefix)
			remove := a.cfg.Compression.RemoveOriginal
			if cmd.Flags().Changed("remove-original") {
				remove = removeOriginal
			}
			opts = append(opts, adapters.WithRemoveOriginal(remove))

			out, err := adapters.Gzip(args[0], opts...)
			if err != nil {
				return err
			}
			a.logger.Info("Compressed file",
				zap.String("input", args[0]),
				zap.String("output", out),
				zap.Bool("removeOriginal", remove))
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	flags.register(cmd, "g")
	cmd.Flags().BoolVar(&removeOriginal, "remove-original", false, "Delete FILE after compressing it")

	return cmd
}

func newRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename SRC DST",
		Short: "Move a file, refusing to overwrite DST",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := adapters.Rename(args[0], args[1])
			if err != nil {
				return err
			}
			a.logger.Info("Renamed file", zap.String("from", args[0]), zap.String("to", out))
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newNormalizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize FILE",
		Short: "Standardize the columns of a text array in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := adapters.NormalizeColumns(args[0])
			if err != nil {
				return err
			}
			a.logger.Info("Normalized array", zap.String("file", out))
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newTPMCmd(a *app) *cobra.Command {
	var (
		fslDir string
		spmDir string
		legacy bool
	)

	cmd := &cobra.Command{
		Use:   "tpm",
		Short: "Print the SPM tissue probability map table as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.TPM
			if cmd.Flags().Changed("fsl-dir") {
				cfg.FSLDir = fslDir
			}
			if cmd.Flags().Changed("spm-dir") {
				cfg.SPMDir = spmDir
			}
			if cmd.Flags().Changed("legacy") {
				cfg.Legacy = legacy
			}

			tpm, err := adapters.TissueProbabilityMaps(cfg, sampledata.FS{})
			if err != nil {
				return err
			}
			a.logger.Info("Resolved tissue probability maps",
				zap.String("file", tpm[0].Map.File),
				zap.Int("classes", len(tpm)))

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(tpm)
		},
	}
	cmd.Flags().StringVar(&fslDir, "fsl-dir", "", "FSL installation directory")
	cmd.Flags().StringVar(&spmDir, "spm-dir", "", "SPM installation directory")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "Return the five-class table")

	return cmd
}

func newPlotCmd(a *app) *cobra.Command {
	var (
		outputDir   string
		edgeFile    string
		overlayFile string
		contourFile string
		name        string
		cmap        string
	)

	cmd := &cobra.Command{
		Use:   "plot IMAGE...",
		Short: "Write a PDF snapshot of the first IMAGE",
		Long: `Render sagittal, coronal and axial cuts through the centre of the first IMAGE,
optionally with the edges of one image, the colored overlay of another and the
filled contours of a label image on top, and write <output-dir>/<name>.pdf.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []plot.Option{plot.WithConfig(a.cfg.Plot)}
			if edgeFile != "" {
				opts = append(opts, plot.WithEdges(edgeFile))
			}
			if overlayFile != "" {
				opts = append(opts, plot.WithOverlay(overlayFile))
			}
			if contourFile != "" {
				opts = append(opts, plot.WithContour(contourFile))
			}
			if name != "" {
				opts = append(opts, plot.WithTitle(name))
			}
			if cmd.Flags().Changed("cmap") {
				opts = append(opts, plot.WithOverlayColormap(cmap))
			}

			snap, err := plot.PlotImage(args, outputDir, opts...)
			if err != nil {
				return err
			}
			a.logger.Info("Wrote snapshot", zap.String("image", args[0]), zap.String("snapshot", snap))
			fmt.Fprintln(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "Directory the PDF is written to")
	cmd.Flags().StringVar(&edgeFile, "edges", "", "Image whose edges are drawn")
	cmd.Flags().StringVar(&overlayFile, "overlay", "", "Image drawn as a colored overlay")
	cmd.Flags().StringVar(&contourFile, "contour", "", "Label image drawn as filled contours")
	cmd.Flags().StringVar(&name, "name", "", "Title of the plot")
	cmd.Flags().StringVar(&cmap, "cmap", "", "Overlay colormap: cold_hot, blue_red, or empty for yellow")

	return cmd
}

func newWrapCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "wrap VALUE",
		Short: "Print VALUE as a single-element YAML list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(adapters.Wrap(args[0]))
		},
	}
}

func newUnwrapCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "unwrap VALUE...",
		Short: "Print the only VALUE, failing when there are several",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := adapters.Unwrap(args, force)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Print the first VALUE even when there are several")

	return cmd
}

func newNoProcessCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "noprocess VALUE",
		Short: "Print VALUE unchanged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), adapters.NoProcess(args[0]))
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init PATH",
		Short: "Write the default configuration to PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfigFile(args[0]); err != nil {
				return err
			}
			a.logger.Info("Wrote default configuration", zap.String("path", args[0]))
			fmt.Fprintln(cmd.OutOrStdout(), args[0])
			return nil
		},
	})
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			version.PrintVersion(cmd.OutOrStdout(), "mmutils")
		},
	}
}
