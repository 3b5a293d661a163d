package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resumesync/internal/resume"
)

func (a *app) createCmd() *cobra.Command {
	var req resume.CreateDocumentRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.client().CreateDocument(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("create document: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "document name")
	cmd.Flags().StringVar(&req.JobTitle, "job-title", "", "job title shown in the header")
	cmd.Flags().StringVar(&req.CompanyName, "company", "", "target company (optional)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("job-title")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [document-id]",
		Short: "Print a document with every saved section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			doc, err := a.client().GetDocument(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get document: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), doc)
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [document-id]",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client().DeleteDocument(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete document: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted document %d\n", id)
			return nil
		},
	}
}
