package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/srtwork/srtwork-server/internal/domain"
	"github.com/srtwork/srtwork-server/internal/srt"
)

func newConvertCmd() *cobra.Command {
	var to, output string

	cmd := &cobra.Command{
		Use:   "convert FILE --to FORMAT [-o OUT]",
		Short: "Convert between SRT, WebVTT, SSA and TTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := srt.ParseFormat(to)
			if err != nil {
				return err
			}
			report, err := readSubtitles(args[0])
			if err != nil {
				return err
			}
			data, err := srt.Encode(report.Entries, domain.VariantOriginal, format)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o644) //#nosec G306 -- subtitle files are not secret
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "target format: srt, vtt, ssa or ttml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
