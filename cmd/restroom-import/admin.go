package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mr30303/taxiDriver/internal/store"
	"github.com/mr30303/taxiDriver/internal/web"
)

// createServeCmd runs the read-only HTTP API
func createServeCmd(opts *globalOptions) *cobra.Command {
	config := web.DefaultConfig()
	config.Host = opts.settings.WebHost
	config.Port = opts.settings.WebPort

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the restroom dataset over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Collection = opts.collection

			backend, err := openBackend(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return web.NewServer(config, backend).Start()
		},
	}

	cmd.Flags().StringVar(&config.Host, "host", config.Host, "Server host")
	cmd.Flags().IntVar(&config.Port, "port", config.Port, "Server port")

	return cmd
}

// createPingCmd checks store connectivity
func createPingCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test document store connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openBackend(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer backend.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s store connection successful!\n", opts.storeKind)

			count, err := backend.Count(cmd.Context(), opts.collection)
			if err != nil {
				return fmt.Errorf("failed to count documents: %w", err)
			}
			fmt.Fprintf(out, "Documents in %s: %d\n", opts.collection, count)

			runs, err := backend.ListRuns(cmd.Context(), 1)
			if err != nil {
				return fmt.Errorf("failed to list import runs: %w", err)
			}
			if len(runs) > 0 {
				fmt.Fprintf(out, "Last import run: %s (%s)\n", runs[0].RunID, runs[0].Label)
			}
			return nil
		},
	}
}

// createRunsCmd lists recent import runs
func createRunsCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent import runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openBackend(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer backend.Close()

			runs, err := backend.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list import runs: %w", err)
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to show")

	return cmd
}

func printRuns(out io.Writer, runs []store.ImportRun) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No import runs recorded.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tLABEL\tCOLLECTION\tRANGE\tCOMMITTED\tSTARTED\tSTATUS")
	for _, run := range runs {
		status := "incomplete"
		if run.CompletedAt != nil {
			status = "completed"
			if run.Committed < run.EndIndex-run.StartIndex {
				status = "partial"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t[%d:%d]\t%d\t%s\t%s\n",
			run.RunID, run.Label, run.Collection, run.StartIndex, run.EndIndex,
			run.Committed, run.StartedAt.Format("2006-01-02 15:04:05"), status)
	}
	w.Flush()
}
