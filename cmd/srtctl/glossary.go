package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/srtwork/srtwork-server/internal/domain"
	"github.com/srtwork/srtwork-server/internal/search"
)

func newGlossaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glossary",
		Short: "Work with dictionary.json glossary files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check GLOSSARY FILE",
		Short: "Validate a glossary and report where each term occurs in a subtitle file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkGlossary(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
		},
	})
	return cmd
}

func checkGlossary(ctx context.Context, out io.Writer, glossaryPath, subtitlePath string) error {
	raw, err := os.ReadFile(glossaryPath) //#nosec G304 -- user-supplied input file
	if err != nil {
		return err
	}
	g, err := domain.ParseGlossary(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", glossaryPath, err)
	}

	report, err := readSubtitles(subtitlePath)
	if err != nil {
		return err
	}

	index, err := search.NewLineIndex(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return err
	}
	defer index.Close()
	if err := index.Replace(report.Entries); err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	unused := 0
	fmt.Fprintf(out, "%d terms, %d lines\n", g.Len(), len(report.Entries))
	for _, e := range g.Entries() {
		positions, err := index.Occurrences(ctx, e.Source)
		if err != nil {
			return err
		}
		if len(positions) == 0 {
			unused++
			fmt.Fprintf(out, "%s -> %s: not found\n", e.Source, e.Target)
			continue
		}
		ids := make([]int, len(positions))
		for i, p := range positions {
			ids[i] = report.Entries[p].ID
		}
		fmt.Fprintf(out, "%s -> %s: lines %v\n", e.Source, e.Target, ids)
	}
	if unused > 0 {
		fmt.Fprintf(out, "%d terms do not occur in %s\n", unused, subtitlePath)
	}
	return nil
}
