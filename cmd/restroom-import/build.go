package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mr30303/taxiDriver/internal/config"
	"github.com/mr30303/taxiDriver/internal/csvsource"
	"github.com/mr30303/taxiDriver/internal/dataset"
	"github.com/mr30303/taxiDriver/internal/debug"
	"github.com/mr30303/taxiDriver/internal/export"
	"github.com/mr30303/taxiDriver/internal/store"
)

// buildOptions are the flags of the build command
type buildOptions struct {
	dryRun      bool
	upload      bool
	noExport    bool
	exportPath  string
	dataDir     string
	sourcesPath string
	uploadOptions
}

func (b buildOptions) validate() error {
	if b.dryRun && b.upload {
		return usagef("--dry-run and --upload cannot be combined")
	}
	return b.uploadOptions.validate()
}

func createBuildCmd(opts *globalOptions) *cobra.Command {
	b := buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the deduplicated restroom dataset",
		Long: `Reads every registered regional CSV, normalizes and deduplicates the rows, writes a JSONL export and optionally uploads a window of the documents.

--dry-run and --upload are mutually exclusive: combining them is rejected with exit status 2 instead of uploading.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("no-export") && cmd.Flags().Changed("export-jsonl") {
				return usagef("--no-export and --export-jsonl cannot be combined")
			}
			if cmd.Flags().Changed("data-dir") && !cmd.Flags().Changed("export-jsonl") && os.Getenv("RESTROOM_EXPORT_PATH") == "" {
				b.exportPath = filepath.Join(b.dataDir, "restrooms_master.jsonl")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBuild(ctx, cmd.OutOrStdout(), opts, b)
		},
	}

	s := opts.settings
	cmd.Flags().BoolVar(&b.dryRun, "dry-run", false, "Build dataset without uploading")
	cmd.Flags().BoolVar(&b.upload, "upload", false, "Upload deduplicated records to the document store")
	cmd.Flags().BoolVar(&b.noExport, "no-export", false, "Skip writing the JSONL export")
	cmd.Flags().StringVar(&b.exportPath, "export-jsonl", s.ExportPath, "Write normalized deduplicated records to JSONL")
	cmd.Flags().StringVar(&b.dataDir, "data-dir", s.DataDir, "Directory holding the regional CSV files")
	cmd.Flags().StringVar(&b.sourcesPath, "sources", s.SourcesPath, "YAML file overriding the built-in source registry")
	addUploadFlags(cmd, &b.uploadOptions, s.BatchSize)

	return cmd
}

func addUploadFlags(cmd *cobra.Command, u *uploadOptions, batchSize int) {
	cmd.Flags().IntVar(&u.batchSize, "batch-size", batchSize, "Documents per write batch (max 500)")
	cmd.Flags().IntVar(&u.startIndex, "start-index", 0, "Start index in sorted documents for partial/resume uploads")
	cmd.Flags().IntVar(&u.maxDocs, "max-docs", 0, "Maximum docs to upload from start index; 0 means all remaining")
	cmd.Flags().StringVar(&u.label, "label", "", "Label recorded with the import run")
}

func runBuild(ctx context.Context, out io.Writer, opts *globalOptions, b buildOptions) error {
	if err := b.validate(); err != nil {
		return err
	}

	reg, err := config.LoadRegistry(b.sourcesPath)
	if err != nil {
		return err
	}

	source := csvsource.NewDir(b.dataDir)
	if len(opts.settings.Encodings) > 0 {
		source.Encodings = opts.settings.Encodings
	}

	builder := dataset.NewBuilder(reg, source)
	builder.Debug = opts.debug

	done := debug.Timing(opts.debug, "build")
	res, err := builder.Run(ctx)
	done()
	if err != nil {
		return fmt.Errorf("failed to build dataset: %w", err)
	}

	exportPath := b.exportPath
	if b.noExport {
		exportPath = "(skipped)"
	} else if err := export.WriteJSONL(b.exportPath, res.Documents); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	r := store.SelectRange(len(res.Documents), b.startIndex, b.maxDocs)

	fmt.Fprintln(out, "=== Restroom import summary ===")
	fmt.Fprintf(out, "rows_total        : %d\n", res.Stats.RowsTotal)
	fmt.Fprintf(out, "rows_invalid_coord: %d\n", res.Stats.RowsInvalidCoord)
	fmt.Fprintf(out, "rows_unique       : %d\n", res.Stats.RowsUnique)
	fmt.Fprintf(out, "rows_duplicate    : %d\n", res.Stats.RowsDuplicate)
	fmt.Fprintf(out, "conflicts         : %d\n", len(res.Conflicts))
	fmt.Fprintf(out, "export_jsonl      : %s\n", exportPath)
	fmt.Fprintf(out, "upload_range      : [%d:%d] (%d docs)\n", r.Start, r.End, r.Len())

	if opts.debug {
		for _, c := range res.Conflicts {
			debug.Output(true, "conflict %s %s: kept %q, ignored %q from %s row %s",
				c.DedupeKey, c.Field, c.Kept, c.Incoming, c.SourceFile, c.SourceRowID)
		}
	}

	switch {
	case b.upload:
		backend, err := openBackend(ctx, opts)
		if err != nil {
			return err
		}
		defer backend.Close()

		run, err := uploadDocuments(ctx, out, backend, opts.collection, res.Documents, res.Stats, r, b.uploadOptions)
		if run != nil {
			fmt.Fprintf(out, "import_run        : %s\n", run.RunID)
		}
		return err
	case b.dryRun:
		fmt.Fprintln(out, "Dry-run mode: upload skipped.")
	default:
		fmt.Fprintln(out, "Upload skipped. Use --upload to write to the document store.")
	}
	return nil
}
