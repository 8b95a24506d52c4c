package config

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ytfetch/internal/dirs"
)

// Viper keys and the flags bound to them.
var flagKeys = map[string]string{
	"output":      "output",
	"format":      "format",
	"browser":     "browser",
	"cookies":     "cookies",
	"engine":      "engine",
	"verbose":     "verbose",
	"no_ui":       "no-ui",
	"retry_delay": "retry-delay",
	"dl_binary":   "dl-binary",
	"history_db":  "history-db",
	"throttle":    "throttle",
}

// Config is the merged view of flags, YTFETCH_* env vars and the config file.
type Config struct {
	OutputDir      string
	Format         string
	Browser        string
	CookiesFile    string
	Engine         string
	Verbose        bool
	NoUI           bool
	RetryDelay     time.Duration
	DownloaderPath string
	HistoryPath    string // empty disables history
	Throttle       bool
}

// Init wires Viper with config paths, env, defaults, and flag bindings.
// It is non-fatal: any errors are returned for optional handling by caller.
func Init(root *cobra.Command) error {
	viper.SetDefault("output", dirs.DefaultOutputDir())
	viper.SetDefault("engine", "ytdlp")
	viper.SetDefault("retry_delay", 2*time.Second)
	if p, err := dirs.HistoryPath(); err == nil {
		viper.SetDefault("history_db", p)
	}

	if cfgDir, err := dirs.ConfigDir(); err == nil {
		viper.AddConfigPath(cfgDir)
	}
	viper.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	// Environment variables: YTFETCH_*
	viper.SetEnvPrefix("YTFETCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	for key, name := range flagKeys {
		if f := lookup(root, name); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}

	// Read config file if present (ignore not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

func lookup(root *cobra.Command, name string) *pflag.Flag {
	if f := root.PersistentFlags().Lookup(name); f != nil {
		return f
	}
	return root.Flags().Lookup(name)
}

// Load returns the current configuration.
func Load() Config {
	return Config{
		OutputDir:      viper.GetString("output"),
		Format:         viper.GetString("format"),
		Browser:        strings.ToLower(strings.TrimSpace(viper.GetString("browser"))),
		CookiesFile:    viper.GetString("cookies"),
		Engine:         viper.GetString("engine"),
		Verbose:        viper.GetBool("verbose"),
		NoUI:           viper.GetBool("no_ui"),
		RetryDelay:     viper.GetDuration("retry_delay"),
		DownloaderPath: viper.GetString("dl_binary"),
		HistoryPath:    viper.GetString("history_db"),
		Throttle:       viper.GetBool("throttle"),
	}
}
