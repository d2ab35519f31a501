package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mr30303/taxiDriver/internal/config"
)

// usageError marks an invalid flag combination; it exits with status 2
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	rootCmd := newRootCmd(config.Load())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var usage *usageError
		if errors.As(err, &usage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// globalOptions are shared by every subcommand
type globalOptions struct {
	settings   config.Settings
	storeKind  string
	sqlitePath string
	collection string
	debug      bool
}

func newRootCmd(settings config.Settings) *cobra.Command {
	opts := &globalOptions{settings: settings}

	rootCmd := &cobra.Command{
		Use:           "restroom-import",
		Short:         "Public restroom master data importer",
		Long:          `Builds a deduplicated restroom dataset from regional CSV files and loads it into a document store`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.storeKind {
			case storePostgres, storeSQLite:
				return nil
			}
			return usagef("unknown --store %q (want %s or %s)", opts.storeKind, storePostgres, storeSQLite)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.storeKind, "store", settings.StoreKind, "Document store backend (postgres or sqlite)")
	flags.StringVar(&opts.sqlitePath, "sqlite-path", settings.SQLitePath, "SQLite database file for --store sqlite")
	flags.StringVar(&opts.collection, "collection", settings.Collection, "Target collection name")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug output")

	rootCmd.AddCommand(createBuildCmd(opts))
	rootCmd.AddCommand(createUploadCmd(opts))
	rootCmd.AddCommand(createServeCmd(opts))
	rootCmd.AddCommand(createPingCmd(opts))
	rootCmd.AddCommand(createRunsCmd(opts))

	return rootCmd
}
