package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Parse a subtitle file and report what was read and what was skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := readSubtitles(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "entries: %d\n", len(report.Entries))
			if n := len(report.Entries); n > 0 {
				fmt.Fprintf(out, "span:    %s --> %s\n", report.Entries[0].StartTime, report.Entries[n-1].EndTime)
			}
			fmt.Fprintf(out, "skipped: %d\n", len(report.Skipped))
			for _, s := range report.Skipped {
				fmt.Fprintf(out, "  block %d: %s (%q)\n", s.Block, s.Reason, s.FirstLine)
			}
			return nil
		},
	}
}
