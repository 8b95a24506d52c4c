package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ytfetch/internal/config"
	"ytfetch/internal/model"
	"ytfetch/internal/pipeline"
	"ytfetch/internal/util"
	"ytfetch/internal/util/format"
	"ytfetch/internal/util/media"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "info <url>",
		Short:         "Show video metadata and planned outputs without downloading",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			id, err := util.ValidateURL(args[0])
			if err != nil {
				return &ExitError{Code: ExitInvalidURL, Err: err}
			}
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			info, err := engine.FetchInfo(cmd.Context(), id, model.AuthCredential{
				Browser:     cfg.Browser,
				CookiesFile: cfg.CookiesFile,
			})
			if err != nil {
				return &ExitError{Code: exitCode(err), Err: err}
			}
			printInfo(cmd.OutOrStdout(), info, cfg.OutputDir)
			return nil
		},
	}
}

func printInfo(w io.Writer, info model.VideoInfo, outDir string) {
	fmt.Fprintf(w, "- ID:        %s\n", info.ID)
	fmt.Fprintf(w, "- Title:     %s\n", info.Title)
	if info.Uploader != "" {
		fmt.Fprintf(w, "- Channel:   %s\n", info.Uploader)
	}
	fmt.Fprintf(w, "- Duration:  %s\n", format.Duration(info.DurationSeconds))
	fmt.Fprintf(w, "- Streams:   %d\n", len(info.Streams))
	for _, s := range info.Streams {
		kind := "video"
		if s.AudioOnly {
			kind = "audio"
		}
		size := "?"
		if s.Size > 0 {
			size = format.HumanizeBytes(s.Size)
		}
		fmt.Fprintf(w, "    %-6s %-5s %-5s %-14s %5d kbps  %s\n", s.ID, kind, s.Container, s.Codec, s.BitrateKbps, size)
	}

	fmt.Fprintln(w, "Planned outputs:")
	for _, mode := range model.Modes {
		opts := pipeline.ResolveOptions(mode, info)
		ext := opts.Extension
		if ext == "" {
			ext = ".<source>"
		}
		fmt.Fprintf(w, "  %-7s %-22s ~%-9s %s\n", mode, "conversion: "+opts.Conversion.String(),
			format.HumanizeBytes(opts.EstimatedBytes), media.OutputPath(outDir, mode, info.Title, ext))
	}
}
