// Package main provides srtctl, a command-line companion to the SRTWork
// server for checking and converting subtitle files offline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/srtwork/srtwork-server/internal/srt"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "srtctl",
		Short:         "Inspect, convert and check subtitle files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newInspectCmd(), newConvertCmd(), newGlossaryCmd())
	return root
}

// readSubtitles decodes a subtitle file, picking the format from its
// extension.
func readSubtitles(path string) (srt.Report, error) {
	format, err := srt.FormatFromPath(path)
	if err != nil {
		return srt.Report{}, err
	}
	data, err := os.ReadFile(path) //#nosec G304 -- user-supplied input file
	if err != nil {
		return srt.Report{}, err
	}
	return srt.Decode(data, format)
}
