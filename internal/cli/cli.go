// Package cli wires configuration, logging, metrics and storage into the
// cobra commands behind the mmrrc-* binaries.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mmrrcingest/internal/blob"
	"mmrrcingest/internal/config"
	"mmrrcingest/internal/infra/persistence"
	"mmrrcingest/internal/logging"
	"mmrrcingest/internal/metrics"
)

// Version is stamped at build time with -ldflags "-X mmrrcingest/internal/cli.Version=...".
var Version = "dev"

// app carries the state shared by one command invocation.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	configPath string
	logLevel   string

	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Recorder
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr, log: zap.NewNop()}
}

// bind installs the global flags and lifecycle hooks on cmd.
func (a *app) bind(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides config")
	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		c.SilenceUsage = true
		return a.setup()
	}
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		return a.finish()
	}
	cmd.SilenceErrors = true
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	log, err := logging.NewWithWriter(cfg.Log.Level, a.stderr)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	a.metrics = metrics.New()
	return nil
}

func (a *app) finish() error {
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		return err
	}
	_ = a.log.Sync()
	return nil
}

// blobConfig resolves the blob configuration. A non-empty dir overrides the
// filesystem root.
func (a *app) blobConfig(dir string) blob.Config {
	bc := a.cfg.BlobStore()
	if dir != "" {
		if bc.Driver != "" && bc.Driver != blob.DriverFilesystem {
			a.log.Warn("output directory ignored for non-filesystem blob driver", zap.String("dir", dir), zap.String("driver", string(bc.Driver)))
		} else {
			bc.FSRoot = dir
		}
	}
	return bc
}

// store opens the configured blob store, creating the filesystem root.
func (a *app) store(ctx context.Context, dir string) (blob.Store, error) {
	return blob.Open(ctx, a.blobConfig(dir))
}

// existingStore opens the configured blob store for commands that only read
// earlier outputs. A missing filesystem root is logged and yields a nil store.
func (a *app) existingStore(ctx context.Context, dir string) (blob.Store, error) {
	bc := a.blobConfig(dir)
	bc.MustExist = true
	store, err := blob.Open(ctx, bc)
	if errors.Is(err, iofs.ErrNotExist) {
		a.log.Warn("output directory does not exist", zap.String("dir", bc.FSRoot))
		return nil, nil
	}
	return store, err
}

// publisher opens the configured relational sink, or returns nil when none is set.
func (a *app) publisher(ctx context.Context) (persistence.Publisher, error) {
	if a.cfg.Publish.Driver == config.PublishNone {
		return nil, nil
	}
	return persistence.Open(ctx, persistence.Driver(a.cfg.Publish.Driver), a.cfg.Publish.DSN)
}

// NewRootCommand returns the mmrrc-ingest command tree.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := newApp(stdout, stderr)
	root := &cobra.Command{
		Use:   "mmrrc-ingest",
		Short: "Normalize the MMRRC catalog and emit biolink KGX, reports and RDF",
		Long: `mmrrc-ingest turns the MMRRC strain catalog export into three normalized
tables, maps them onto biolink Genotype nodes and association edges written as
KGX TSV files, and summarizes or converts those files.

Typical run:

  mmrrc-ingest download
  mmrrc-ingest preprocess data/mmrrc_catalog_data.csv output
  mmrrc-ingest transform
  mmrrc-ingest report
  mmrrc-ingest rdf`,
	}
	a.bind(root)
	preprocess := newPreprocessCommand(a)
	preprocess.Use = "preprocess <input_csv> [output_dir]"
	preprocess.Args = cobra.RangeArgs(1, 2)
	root.AddCommand(preprocess)
	root.AddCommand(newDownloadCommand(a))
	root.AddCommand(newTransformCommand(a))
	root.AddCommand(newReportCommand(a))
	root.AddCommand(newRDFCommand(a))
	root.AddCommand(newVersionCommand(a))
	return root
}

// NewPreprocessCommand returns the standalone mmrrc-preprocess command.
func NewPreprocessCommand(stdout, stderr io.Writer) *cobra.Command {
	a := newApp(stdout, stderr)
	cmd := newPreprocessCommand(a)
	cmd.Use = "mmrrc-preprocess <input_csv> <output_dir>"
	cmd.Args = cobra.ExactArgs(2)
	a.bind(cmd)
	return cmd
}

// NewReportCommand returns the standalone mmrrc-report command.
func NewReportCommand(stdout, stderr io.Writer) *cobra.Command {
	a := newApp(stdout, stderr)
	cmd := newReportCommand(a)
	cmd.Use = "mmrrc-report [output_dir]"
	a.bind(cmd)
	return cmd
}

// Execute runs cmd with args and returns the process exit status. Interrupts
// cancel the command context.
func Execute(cmd *cobra.Command, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		if errors.Is(err, context.Canceled) {
			return 130
		}
		return 1
	}
	return 0
}
