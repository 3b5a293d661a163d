package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"resumesync/internal/client"
	"resumesync/internal/config"
	"resumesync/internal/snapshot"
)

// app carries the configuration and flags shared by every command.
type app struct {
	cfg     *config.ClientConfig
	logger  *slog.Logger
	apiURL  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "resumectl",
		Short:         "Edit resume documents against a resumesync API",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if a.apiURL != "" {
				cfg.APIBaseURL = a.apiURL
			}
			a.cfg = cfg

			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "API base URL (overrides RESUMESYNC_API_URL)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests and save status changes")

	root.AddCommand(
		a.createCmd(),
		a.showCmd(),
		a.deleteCmd(),
		a.snapshotCmd(),
		a.restoreCmd(),
		a.headerCmd(),
		a.sectionCmd(),
	)
	return root
}

func (a *app) client() *client.Client {
	return client.New(a.cfg.APIBaseURL, a.cfg.RequestTimeout, a.logger)
}

// openSnapshots opens the configured snapshot store. The returned close
// function releases the store.
func (a *app) openSnapshots() (*snapshot.Writer, func(), error) {
	store, err := snapshot.Open(a.cfg.Snapshot, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot store: %w", err)
	}
	writer := snapshot.NewWriter(store, a.cfg.Snapshot.Key, a.cfg.Snapshot.Debounce, nil, a.logger)
	closeFn := func() {
		writer.Stop()
		if err := store.Close(); err != nil {
			a.logger.Warn("close snapshot store failed", slog.Any("error", err))
		}
	}
	return writer, closeFn, nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid document id %q", arg)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
