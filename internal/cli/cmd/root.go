package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ytfetch/internal/cli"
	"ytfetch/internal/config"
	"ytfetch/internal/dirs"
	"ytfetch/internal/downloader"
	"ytfetch/internal/encoder"
	"ytfetch/internal/errs"
	"ytfetch/internal/history"
	"ytfetch/internal/logger"
	"ytfetch/internal/model"
	"ytfetch/internal/pipeline"
	"ytfetch/internal/progress"
	"ytfetch/internal/ui"
	"ytfetch/internal/util/deps"
)

const (
	ExitOK             = 0
	ExitCLIError       = 1
	ExitMissingDep     = 2
	ExitDownloadError  = 3
	ExitTranscodeError = 4
	ExitInvalidURL     = 5
	ExitFetchError     = 6
	ExitDiskFull       = 7
	ExitCancelled      = 130
)

// Browsers accepted by --browser.
var Browsers = []string{"chrome", "firefox", "safari", "edge", "opera", "brave", "chromium", "vivaldi"}

// ExitError wraps an error with a process exit code. A nil Err means the
// failure was already shown to the user.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ytfetch",
		Short: "Download YouTube videos as MP4, MP3 or AAC",
		Long: "ytfetch downloads a YouTube video and saves it as MP4, in its source format, or as MP3/AAC audio.\n" +
			"Run without --url to be prompted for the link, the format and a confirmation.",
		Example: "  ytfetch\n" +
			"  ytfetch -u https://youtu.be/dQw4w9WgXcQ -f mp3\n" +
			"  ytfetch -u https://www.youtube.com/watch?v=dQw4w9WgXcQ -f mp4 -o ~/Videos -b firefox",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.NoArgs,
		PersistentPreRunE: setup,
		RunE:              runDownload,
	}

	pf := root.PersistentFlags()
	pf.StringP("output", "o", dirs.DefaultOutputDir(), "Output directory")
	pf.StringP("browser", "b", "", "Read cookies from this browser ("+strings.Join(Browsers, ", ")+")")
	pf.StringP("cookies", "c", "", "Path to a Netscape cookies.txt file")
	pf.String("engine", downloader.EngineYTDLP, "Extraction engine: ytdlp or native")
	pf.String("dl-binary", "", "Path to yt-dlp")
	pf.String("history-db", "", "Path to the download history database")
	pf.Bool("throttle", false, "Sleep between yt-dlp requests to avoid rate limits")
	pf.BoolP("verbose", "v", false, "Show debug logs")

	f := root.Flags()
	f.StringP("url", "u", "", "YouTube video URL (prompts when omitted)")
	f.StringP("format", "f", "", "Output format: mp4, source, mp3 or aac (prompts when omitted)")
	f.BoolP("yes", "y", false, "Skip the confirmation prompt")
	f.Bool("no-ui", false, "Disable the TUI; print plain progress lines")
	f.Duration("retry-delay", 2*time.Second, "Base delay between network retries")

	root.AddCommand(newInfoCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := config.Init(cmd.Root()); err != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("config: %w", err)}
	}
	cfg := config.Load()
	logger.Init(cfg.Verbose, cmd.ErrOrStderr())
	if cfg.Browser != "" && !slices.Contains(Browsers, cfg.Browser) {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("invalid --browser %q (valid: %s)", cfg.Browser, strings.Join(Browsers, "|"))}
	}
	return nil
}

func runDownload(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	rawURL, _ := cmd.Flags().GetString("url")
	assumeYes, _ := cmd.Flags().GetBool("yes")

	var mode model.FormatMode
	if cfg.Format != "" {
		m, err := model.ParseFormatMode(cfg.Format)
		if err != nil {
			return &ExitError{Code: ExitCLIError, Err: err}
		}
		mode = m
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	stdinTTY := term.IsTerminal(int(os.Stdin.Fd()))
	stdoutTTY := term.IsTerminal(int(os.Stdout.Fd()))
	useTUI := !cfg.NoUI && stdinTTY && stdoutTTY
	if useTUI && !cfg.Verbose {
		// Log lines would tear the TUI; failures are rendered there instead.
		logger.Init(false, io.Discard)
	}

	feed := progress.NewFeed()
	opts := []pipeline.Option{
		pipeline.WithExtractor(engine),
		pipeline.WithConverter(encoder.New()),
		pipeline.WithReporter(feed),
		pipeline.WithRetryDelay(cfg.RetryDelay),
	}
	if store := openHistory(cfg.HistoryPath); store != nil {
		defer store.Close()
		opts = append(opts, pipeline.WithRecorder(store))
	}

	out := cmd.OutOrStdout()
	flow := &cli.Flow{
		Service:   pipeline.NewService(opts...),
		AssumeYes: assumeYes,
		Render: func(ctx context.Context, title string, work func(context.Context) error) error {
			// Events from before the download were already printed by the flow.
			feed.Discard()
			if useTUI {
				return ui.Run(ctx, title, feed, work)
			}
			return ui.RunPlain(ctx, out, feed, work)
		},
	}
	if stdinTTY || rawURL == "" {
		flow.Prompter = cli.NewPrompter(cmd.InOrStdin(), out)
	}

	_, err = flow.Run(cmd.Context(), cli.Input{
		URL:       rawURL,
		Mode:      mode,
		OutputDir: cfg.OutputDir,
		Auth: model.AuthCredential{
			Browser:     cfg.Browser,
			CookiesFile: cfg.CookiesFile,
		},
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, cli.ErrDeclined):
		fmt.Fprintln(out, "Download cancelled.")
		return nil
	}

	var reported *cli.ReportedError
	if errors.As(err, &reported) {
		return &ExitError{Code: exitCode(err)}
	}
	return &ExitError{Code: exitCode(err), Err: errors.New(errs.Describe(err))}
}

func newEngine(cfg config.Config) (downloader.Engine, error) {
	var path string
	if cfg.Engine == "" || cfg.Engine == downloader.EngineYTDLP {
		p, err := deps.FindDownloader(cfg.DownloaderPath)
		if err != nil {
			return nil, &ExitError{Code: ExitMissingDep, Err: err}
		}
		path = p
	}
	opts := downloader.Options{Engine: cfg.Engine, DownloaderPath: path}
	if cfg.Throttle {
		opts.Throttle = downloader.DefaultThrottle
	}
	engine, err := downloader.New(opts)
	if err != nil {
		return nil, &ExitError{Code: ExitCLIError, Err: err}
	}
	return engine, nil
}

// openHistory returns nil when history is disabled or unavailable.
func openHistory(path string) *history.Store {
	if path == "" {
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		l := logger.Get("history")
		l.Warn().Err(err).Str("path", path).Msg("history disabled")
		return nil
	}
	return store
}

// exitCode maps a session failure to the process exit code.
func exitCode(err error) int {
	var e *errs.Error
	if !errors.As(err, &e) {
		if errs.KindOf(err) == errs.KindCancelled {
			return ExitCancelled
		}
		return ExitCLIError
	}
	switch e.Kind {
	case errs.KindInvalidURL:
		return ExitInvalidURL
	case errs.KindCancelled:
		return ExitCancelled
	case errs.KindDiskFull:
		return ExitDiskFull
	case errs.KindToolMissing:
		return ExitMissingDep
	case errs.KindTranscode:
		return ExitTranscodeError
	}
	switch e.Stage {
	case errs.StageFetch:
		return ExitFetchError
	case errs.StageConvert:
		return ExitTranscodeError
	case errs.StageValidate:
		return ExitInvalidURL
	}
	return ExitDownloadError
}
