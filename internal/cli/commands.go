package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mmrrcingest/internal/blob"
	"mmrrcingest/internal/download"
	"mmrrcingest/internal/ingest"
	"mmrrcingest/internal/preprocess"
	"mmrrcingest/internal/rdf"
	"mmrrcingest/internal/report"
)

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// urlFlags holds the --urls and --url-expiry options shared by commands that
// write outputs.
type urlFlags struct {
	enabled bool
	expiry  time.Duration
}

func (u *urlFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&u.enabled, "urls", false, "append a download URL for each written key (file:// or presigned S3)")
	cmd.Flags().DurationVar(&u.expiry, "url-expiry", 15*time.Minute, "lifetime of presigned URLs")
}

// printKey writes line, followed by a tab and the URL of key when --urls is set
// and the driver can produce one.
func (u *urlFlags) printKey(ctx context.Context, w io.Writer, store blob.Store, key, line string) error {
	if !u.enabled {
		_, err := fmt.Fprintln(w, line)
		return err
	}
	link, err := blob.Locate(ctx, store, key, u.expiry)
	if err != nil {
		return err
	}
	if link == "" {
		_, err = fmt.Fprintln(w, line)
		return err
	}
	_, err = fmt.Fprintf(w, "%s\t%s\n", line, link)
	return err
}

func newPreprocessCommand(a *app) *cobra.Command {
	var urls urlFlags
	cmd := &cobra.Command{
		Short: "Normalize the raw catalog into genotype, allele and phenotype tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.store(ctx, optionalArg(args, 1))
			if err != nil {
				return err
			}
			delimiter, err := a.cfg.Delimiter()
			if err != nil {
				return err
			}
			opts := preprocess.Options{
				Input:     args[0],
				Store:     store,
				Delimiter: delimiter,
				Metrics:   a.metrics,
				Logger:    a.log,
			}
			pub, err := a.publisher(ctx)
			if err != nil {
				return err
			}
			if pub != nil {
				defer func() { _ = pub.Close() }()
				opts.Publisher = pub
			}
			summary, err := preprocess.Run(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d catalog rows\n", summary.RowsLoaded)
			for _, t := range summary.Tables {
				if err := urls.printKey(ctx, cmd.OutOrStdout(), store, t.Key, fmt.Sprintf("%s\t%d rows", t.Key, t.Rows)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	urls.register(cmd)
	return cmd
}

func newDownloadCommand(a *app) *cobra.Command {
	var (
		force bool
		name  string
	)
	cmd := &cobra.Command{
		Use:   "download [url] [dest_dir]",
		Short: "Fetch the raw MMRRC catalog export",
		Long: "Fetch the raw catalog export into dest_dir (default data). The URL defaults to\n" +
			download.DefaultURL + ". An existing file is kept unless --force is given.",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dest := optionalArg(args, 1)
			if dest == "" {
				dest = "data"
			}
			store, err := a.store(ctx, dest)
			if err != nil {
				return err
			}
			res, err := download.Fetch(ctx, download.Options{
				URL:     optionalArg(args, 0),
				Key:     name,
				Store:   store,
				Force:   force,
				Metrics: a.metrics,
				Logger:  a.log,
			})
			if err != nil {
				return err
			}
			status := "downloaded"
			if res.Cached {
				status = "cached"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d bytes\t%s\n", res.Key, res.Size, status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "download even if the file already exists")
	cmd.Flags().StringVar(&name, "name", "", "file name to store the export under (default: last URL path segment)")
	return cmd
}

func newTransformCommand(a *app) *cobra.Command {
	var (
		rowLimit int
		list     bool
	)
	cmd := &cobra.Command{
		Use:   "transform [output_dir]",
		Short: "Map the normalized tables onto biolink records written as KGX TSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				for _, s := range ingest.Specs() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.Name, s.Table)
				}
				return nil
			}
			ctx := cmd.Context()
			names, err := cmd.Flags().GetStringSlice("ingest")
			if err != nil {
				return err
			}
			specs := ingest.Specs()
			if len(names) > 0 {
				specs = nil
				for _, n := range names {
					s, ok := ingest.Lookup(n)
					if !ok {
						return fmt.Errorf("unknown ingest %q", n)
					}
					specs = append(specs, s)
				}
			}
			store, err := a.store(ctx, optionalArg(args, 0))
			if err != nil {
				return err
			}
			limit := a.cfg.Ingest.RowLimit
			if cmd.Flags().Changed("row-limit") {
				limit = rowLimit
			}
			results, err := ingest.RunAll(ctx, specs, ingest.Options{Store: store, RowLimit: limit, Metrics: a.metrics, Logger: a.log})
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d rows\t%d records\t%d skipped\n", r.Name, r.Rows, r.Emitted, r.Skipped)
			}
			return nil
		},
	}
	cmd.Flags().StringSlice("ingest", nil, "run only the named ingest (repeatable)")
	cmd.Flags().IntVar(&rowLimit, "row-limit", 0, "stop each ingest after this many rows; overrides config")
	cmd.Flags().BoolVar(&list, "list", false, "list the available ingests and their input tables, then exit")
	return cmd
}

func newReportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report [output_dir]",
		Short: "Write category and prefix count reports for every KGX node/edge pair",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.existingStore(ctx, optionalArg(args, 0))
			if err != nil || store == nil {
				return err
			}
			res, err := report.Generate(ctx, report.Options{Store: store, Metrics: a.metrics, Logger: a.log})
			if err != nil {
				return err
			}
			for _, key := range res.Written {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			if len(res.Failed) > 0 {
				a.log.Warn("some reports failed", zap.Strings("sources", res.Failed))
			}
			return nil
		},
	}
}

func newRDFCommand(a *app) *cobra.Command {
	var urls urlFlags
	cmd := &cobra.Command{
		Use:   "rdf [output_dir]",
		Short: "Convert every KGX node/edge pair into gzipped N-Triples",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.existingStore(ctx, optionalArg(args, 0))
			if err != nil || store == nil {
				return err
			}
			res, err := rdf.Export(ctx, rdf.Options{Store: store, Metrics: a.metrics, Logger: a.log})
			if err != nil {
				return err
			}
			for _, key := range res.Written {
				if err := urls.printKey(ctx, cmd.OutOrStdout(), store, key, key); err != nil {
					return err
				}
			}
			if len(res.Written) == 0 && len(res.Failed) > 0 {
				return errors.New("rdf export failed for every ingest")
			}
			return nil
		},
	}
	urls.register(cmd)
	return cmd
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "mmrrc-ingest %s\n", Version)
			return nil
		},
	}
}
