/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var (
	cfgFile  string
	logLevel string

	cfg    = viper.New()
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "figtrans",
	Short: "Extract, translate and write back design text",
	Long: `A CLI application that pulls the text runs out of a design frame,
sends them to a translation service and writes the translations back
without losing formatting or hyperlinks.

Typical round trip:
  figtrans extract   --doc landing.json -o units.json
  figtrans translate -i units.json -o requests.json -t FR
  figtrans apply     --doc landing.json -i requests.json

Settings are read from flags, FIGTRANS_* environment variables, a .env file
and figtrans.yaml, in that order of precedence.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		logger = newLogger(setting(cmd, "log-level", "log_level"))
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./figtrans.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

// initConfig layers the optional config file and .env under the
// environment. The relay keeps the DEEPL_API_KEY and PORT names.
func initConfig() error {
	cfg.SetEnvPrefix("FIGTRANS")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	cfg.AutomaticEnv()
	if err := cfg.BindEnv("deepl_api_key", "FIGTRANS_DEEPL_API_KEY", "DEEPL_API_KEY"); err != nil {
		return err
	}
	if err := cfg.BindEnv("port", "FIGTRANS_PORT", "PORT"); err != nil {
		return err
	}

	path := cfgFile
	if path == "" && fileExists("figtrans.yaml") {
		path = "figtrans.yaml"
	}
	if path != "" {
		cfg.SetConfigFile(path)
		cfg.SetConfigType(strings.TrimPrefix(filepath.Ext(path), "."))
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if fileExists(".env") {
		cfg.SetConfigFile(".env")
		cfg.SetConfigType("env")
		if err := cfg.MergeInConfig(); err != nil {
			return fmt.Errorf("failed to read .env: %w", err)
		}
	}
	return nil
}

// setting resolves a value from an explicitly set flag, then the config
// key, then the flag default.
func setting(cmd *cobra.Command, flag, key string) string {
	f := cmd.Flags().Lookup(flag)
	if f != nil && f.Changed {
		return f.Value.String()
	}
	if v := cfg.GetString(key); v != "" {
		return v
	}
	if f != nil {
		return f.Value.String()
	}
	return ""
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		fmt.Fprintf(os.Stderr, "Unknown log level %q, using info\n", level)
		lvl = slog.LevelInfo
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
