package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"resumesync/internal/autosave"
	"resumesync/internal/editor"
	"resumesync/internal/metrics"
	"resumesync/internal/resume"
)

// openSession loads the document into an editing session that saves through
// the API and mirrors every change into the local snapshot.
func (a *app) openSession(cmd *cobra.Command, id int) (*editor.Session, func(), error) {
	writer, closeSnapshots, err := a.openSnapshots()
	if err != nil {
		return nil, nil, err
	}

	opts := []editor.Option{
		editor.WithLogger(a.logger),
		editor.WithRecorder(metrics.Autosave{}),
		editor.WithSnapshots(writer),
		editor.WithDebounce(a.cfg.Sync.HeaderDebounce, a.cfg.Sync.SectionDebounce),
		editor.WithQuiet(a.cfg.Sync.Quiet),
		editor.OnError(func(key resume.SectionKey, err error) {
			a.logger.Error("save failed", slog.String("section", string(key)), slog.Any("error", err))
		}),
	}
	if a.verbose {
		out := cmd.ErrOrStderr()
		opts = append(opts, editor.OnStatus(func(key resume.SectionKey, status autosave.Status) {
			fmt.Fprintf(out, "%s: %s\n", key, status)
		}))
	}

	ctx := cmd.Context()
	session := editor.Open(ctx, a.client(), id, opts...)
	if err := session.Load(ctx); err != nil {
		_ = session.Close(ctx)
		closeSnapshots()
		return nil, nil, err
	}

	closeFn := func() {
		if err := session.Close(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("flush snapshot failed", slog.Any("error", err))
		}
		closeSnapshots()
	}
	return session, closeFn, nil
}

func (a *app) headerCmd() *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "header [document-id]",
		Short: "Change header fields of a document",
		Example: `  resumectl header 12 --set job_title="Staff Engineer" --set meta_title=`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch, err := parseHeaderSets(sets)
			if err != nil {
				return err
			}

			session, closeFn, err := a.openSession(cmd, id)
			if err != nil {
				return err
			}
			defer closeFn()

			header, err := await(cmd.Context(), session.UpdateHeader, patch)
			if err != nil {
				return fmt.Errorf("save header: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), header)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value to change (repeatable)")
	_ = cmd.MarkFlagRequired("set")
	return cmd
}

func parseHeaderSets(sets []string) (resume.HeaderPatch, error) {
	var patch resume.HeaderPatch
	for _, set := range sets {
		field, value, ok := strings.Cut(set, "=")
		if !ok {
			return patch, fmt.Errorf("invalid --set %q: want field=value", set)
		}
		v := resume.String(value)
		switch strings.TrimSpace(field) {
		case "name":
			patch.Name = v
		case "header_name":
			patch.HeaderName = v
		case "job_title":
			patch.JobTitle = v
		case "company_name":
			patch.CompanyName = v
		case "meta_title":
			patch.MetaTitle = v
		case "header_role":
			patch.HeaderRole = v
		default:
			return patch, fmt.Errorf("unknown header field %q", field)
		}
	}
	return patch, nil
}

func (a *app) sectionCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "section [document-id] [kind]",
		Short: "Replace one section of a document from a JSON patch",
		Long: `Section reads a JSON patch for the given section kind (contact, profile,
skills, experience, projects, education or languages) from --file or stdin,
saves it and prints the server's canonical section.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			kind := resume.SectionKey(args[1])
			if kind == resume.SectionHeader || !kind.Valid() {
				return fmt.Errorf("unknown section %q", args[1])
			}
			data, err := readInput(file, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read patch: %w", err)
			}

			session, closeFn, err := a.openSession(cmd, id)
			if err != nil {
				return err
			}
			defer closeFn()

			saved, err := saveSection(cmd.Context(), session, kind, data)
			if err != nil {
				return fmt.Errorf("save %s: %w", kind, err)
			}
			return printJSON(cmd.OutOrStdout(), saved)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "patch file (default stdin)")
	return cmd
}

func saveSection(ctx context.Context, s *editor.Session, kind resume.SectionKey, data []byte) (any, error) {
	switch kind {
	case resume.SectionContact:
		return decodeAndAwait(ctx, data, s.UpdateContact)
	case resume.SectionProfile:
		return decodeAndAwait(ctx, data, s.UpdateProfile)
	case resume.SectionSkills:
		return decodeAndAwait(ctx, data, s.UpdateSkills)
	case resume.SectionExperience:
		return decodeAndAwait(ctx, data, s.UpdateExperience)
	case resume.SectionProjects:
		return decodeAndAwait(ctx, data, s.UpdateProjects)
	case resume.SectionEducation:
		return decodeAndAwait(ctx, data, s.UpdateEducation)
	case resume.SectionLanguages:
		return decodeAndAwait(ctx, data, s.UpdateLanguages)
	}
	return nil, editor.ErrUnknownSection
}

func decodeAndAwait[S, P any](ctx context.Context, data []byte, update func(P) (S, <-chan autosave.Result[S])) (S, error) {
	var patch P
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		var zero S
		return zero, fmt.Errorf("decode patch: %w", err)
	}
	return await(ctx, update, patch)
}

// await applies the patch and blocks until its save completes.
func await[S, P any](ctx context.Context, update func(P) (S, <-chan autosave.Result[S]), patch P) (S, error) {
	local, done := update(patch)
	select {
	case res := <-done:
		switch {
		case res.Err != nil:
			return local, res.Err
		case res.Applied:
			return res.Value, nil
		}
		return local, nil
	case <-ctx.Done():
		return local, ctx.Err()
	}
}
