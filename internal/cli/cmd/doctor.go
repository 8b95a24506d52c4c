package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ytfetch/internal/config"
	"ytfetch/internal/downloader"
	"ytfetch/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (yt-dlp, ffmpeg)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			install, _ := cmd.Flags().GetBool("install")
			out := cmd.OutOrStdout()

			dl, derr := deps.FindDownloader(cfg.DownloaderPath)
			if derr != nil && install {
				fmt.Fprintln(out, "Installing yt-dlp...")
				dl, derr = downloader.Install(cmd.Context())
			}
			if derr != nil {
				return &ExitError{Code: ExitMissingDep, Err: derr}
			}
			fmt.Fprintf(out, "Downloader: %s\n", dl)

			if ff, ferr := deps.FFmpeg().Locate(); ferr != nil {
				fmt.Fprintln(out, "FFmpeg:     not found (mp3/aac and mp4 remux will deliver the source format)")
			} else {
				fmt.Fprintf(out, "FFmpeg:     %s\n", ff)
			}

			if f := viper.ConfigFileUsed(); f != "" {
				fmt.Fprintf(out, "Config:     %s\n", f)
			}
			if cfg.HistoryPath != "" {
				fmt.Fprintf(out, "History:    %s\n", cfg.HistoryPath)
			}
			return nil
		},
	}
	cmd.Flags().Bool("install", false, "Download yt-dlp if it is missing")
	return cmd
}
