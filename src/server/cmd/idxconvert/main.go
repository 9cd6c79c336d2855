// Command idxconvert unpacks the MNIST handwritten-digit dataset into one PGM image per sample,
// sorted into a directory per label.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pachyderm/idxconvert/src/internal/cmdutil"
	"github.com/pachyderm/idxconvert/src/internal/convert"
	"github.com/pachyderm/idxconvert/src/internal/errors"
	"github.com/pachyderm/idxconvert/src/internal/idx"
	"github.com/pachyderm/idxconvert/src/internal/log"
	"github.com/pachyderm/idxconvert/src/internal/pctx"
	"github.com/spf13/cobra"
)

type options struct {
	config     convert.Config
	verbose    bool
	logFile    string
	logLevel   cmdutil.LevelFlag
	maxPath    int
	noProgress bool
	endLogging func(error)
}

// setup reads the environment, lets flags override it, and starts logging.
func (o *options) setup(cmd *cobra.Command, stderr io.Writer) error {
	if err := cmdutil.Populate(&o.config); err != nil {
		return errors.Wrap(err, "read configuration from the environment")
	}
	flags := cmd.Flags()
	if flags.Changed("max-path") {
		o.config.MaxPath = o.maxPath
	}
	if o.noProgress {
		o.config.Progress = false
	}
	if flags.Changed("log-level") {
		o.config.LogLevel = o.logLevel.String()
	}
	end, err := log.InitCLILogger(stderr, o.logFile)
	if err != nil {
		return err
	}
	o.endLogging = end
	if err := log.SetLevelFromString(o.config.LogLevel); err != nil {
		return err
	}
	if o.verbose {
		log.SetLevel(log.DebugLevel)
	}
	cmdutil.PrintErrorStacks = o.verbose
	cmd.SetContext(pctx.Background("idxconvert"))
	return nil
}

func (o *options) params(args []string, stdout, stderr io.Writer) convert.Params {
	return convert.Params{
		LabelsPath:  args[0],
		ImagesPath:  args[1],
		OutputDir:   args[2],
		Config:      o.config,
		Stdout:      stdout,
		ProgressOut: stderr,
	}
}

func newRoot(stdout, stderr io.Writer) (*cobra.Command, *options) {
	o := &options{config: convert.DefaultConfig()}
	root := &cobra.Command{
		Use:   "idxconvert <labels_file> <images_file> <output_dir>",
		Short: "Convert an MNIST label/image file pair into PGM images.",
		Long: "Convert an MNIST label/image file pair into PGM images.\n\n" +
			"Sample i with label L is written to <output_dir>/L/image<i>.pgm.  The output directory must\n" +
			"already exist; label directories are created as needed.\n\n" +
			"Environment:\n" +
			"  IDXCONVERT_MAX_PATH   longest path to compose, in bytes; 0 for no limit (default 255)\n" +
			"  IDXCONVERT_PROGRESS   draw a progress bar on terminals (default true)\n" +
			"  IDXCONVERT_LOG_LEVEL  minimum level of log messages on stderr (default warn)\n\n" +
			"A labels file named like a subcommand (verify, inspect, help) must be given with a\n" +
			"directory, as in ./verify.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true, // This avoids usage on errors.
		SilenceErrors: true, // We print our own errors.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd, stderr)
		},
		RunE: cmdutil.RunFixedArgs(3, func(ctx context.Context, args []string) error {
			_, err := convert.Run(ctx, o.params(args, stdout, stderr))
			return err
		}),
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "If true, show all log messages and print stacks with errors.")
	root.PersistentFlags().StringVar(&o.logFile, "log", "", "If set, also log to this file as JSON, at every level.")
	root.PersistentFlags().Var(&o.logLevel, "log-level", "Minimum level of log messages on stderr; overrides IDXCONVERT_LOG_LEVEL.")
	root.PersistentFlags().IntVar(&o.maxPath, "max-path", 0, "Longest path to compose, in bytes; 0 for no limit.  Overrides IDXCONVERT_MAX_PATH.")
	root.PersistentFlags().BoolVar(&o.noProgress, "no-progress", false, "If true, never draw a progress bar.")

	root.AddCommand(&cobra.Command{
		Use:   "inspect <file> [<file>]",
		Short: "Describe IDX label or image files.",
		Long:  "Describe IDX label or image files.  Every file is decoded in full, so a clean run means the files would be accepted.",
		RunE: cmdutil.RunBoundedArgs(1, 2, func(ctx context.Context, args []string) error {
			return inspect(ctx, stdout, args)
		}),
	})
	root.AddCommand(&cobra.Command{
		Use:   "verify <labels_file> <images_file> <output_dir>",
		Short: "Check that an output directory holds every sample of a label/image file pair.",
		RunE: cmdutil.RunFixedArgs(3, func(ctx context.Context, args []string) error {
			return convert.RunVerify(ctx, o.params(args, stdout, stderr))
		}),
	})
	return root, o
}

func inspect(ctx context.Context, w io.Writer, paths []string) error {
	for _, path := range paths {
		info, err := idx.Inspect(path)
		if err != nil {
			return err
		}
		switch info.Kind {
		case idx.Labels:
			fmt.Fprintf(w, "%s: %s labels, %s\n", path, humanize.Comma(int64(info.Count)), humanize.Bytes(uint64(info.FileSize)))
		case idx.Images:
			fmt.Fprintf(w, "%s: %s images of %v, %s\n", path, humanize.Comma(int64(info.Count)), info.Dimensions,
				humanize.Bytes(uint64(info.FileSize)))
		}
		log.Debug(ctx, "inspected", log.Size("payload", int(info.PayloadSize)))
	}
	return nil
}

// run executes the command line args and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	root, o := newRoot(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(pctx.Background(""))
	if o.endLogging != nil {
		o.endLogging(err)
	}
	if err != nil {
		cmdutil.PrintError(stderr, err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
