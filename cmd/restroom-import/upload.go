package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mr30303/taxiDriver/internal/export"
	"github.com/mr30303/taxiDriver/internal/model"
	"github.com/mr30303/taxiDriver/internal/store"
)

func createUploadCmd(opts *globalOptions) *cobra.Command {
	u := uploadOptions{}

	cmd := &cobra.Command{
		Use:   "upload [jsonl-file]",
		Short: "Upload a previously exported JSONL dataset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.settings.ExportPath
			if len(args) == 1 {
				path = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runUpload(ctx, cmd.OutOrStdout(), opts, path, u)
		},
	}
	addUploadFlags(cmd, &u, opts.settings.BatchSize)

	return cmd
}

func runUpload(ctx context.Context, out io.Writer, opts *globalOptions, path string, u uploadOptions) error {
	if err := u.validate(); err != nil {
		return err
	}

	docs, err := export.ReadJSONL(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	// the export carries no row counters; record what the file holds
	stats := model.Stats{RowsUnique: len(docs)}
	for _, d := range docs {
		stats.RowsDuplicate += d.DuplicateCount
	}
	stats.RowsTotal = stats.RowsUnique + stats.RowsDuplicate

	r := store.SelectRange(len(docs), u.startIndex, u.maxDocs)
	fmt.Fprintf(out, "upload_range      : [%d:%d] (%d docs)\n", r.Start, r.End, r.Len())

	backend, err := openBackend(ctx, opts)
	if err != nil {
		return err
	}
	defer backend.Close()

	run, err := uploadDocuments(ctx, out, backend, opts.collection, docs, stats, r, u)
	if run != nil {
		fmt.Fprintf(out, "import_run        : %s\n", run.RunID)
	}
	return err
}
