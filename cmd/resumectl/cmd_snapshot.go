package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"resumesync/internal/snapshot"
)

func (a *app) snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect the local recovery snapshot",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the local snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writer, closeFn, err := a.openSnapshots()
			if err != nil {
				return err
			}
			defer closeFn()

			snap, err := writer.Read(cmd.Context())
			if errors.Is(err, snapshot.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "no local snapshot")
				return nil
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), snap)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the local snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writer, closeFn, err := a.openSnapshots()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := writer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear snapshot: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "local snapshot cleared")
			return nil
		},
	}

	cmd.AddCommand(showCmd, clearCmd)
	return cmd
}

func (a *app) restoreCmd() *cobra.Command {
	var target int
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Push the local snapshot back to the server",
		Long: `Restore writes the header and every section stored in the local snapshot
to the server, then replaces the snapshot with the server's copy. By default the
snapshot's own document id is used; --id sends it to another document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writer, closeFn, err := a.openSnapshots()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			snap, err := writer.Read(ctx)
			if errors.Is(err, snapshot.ErrNotFound) {
				return errors.New("no local snapshot to restore")
			}
			if err != nil {
				return err
			}

			doc := snap.Document
			if target > 0 {
				doc.ID = target
			}
			pushed, err := a.client().PushDocument(ctx, doc)
			if err != nil {
				return fmt.Errorf("restore document %d: %w", doc.ID, err)
			}

			server, err := a.client().GetDocument(ctx, pushed.ID)
			if err != nil {
				return fmt.Errorf("reload document %d: %w", pushed.ID, err)
			}
			if err := writer.Write(ctx, server); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), server)
		},
	}
	cmd.Flags().IntVar(&target, "id", 0, "document id to restore into")
	return cmd
}
