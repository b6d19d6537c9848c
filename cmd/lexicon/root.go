package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/lexicon/internal/backup"
	"github.com/hyperengineering/lexicon/internal/config"
	"github.com/hyperengineering/lexicon/internal/engine"
	"github.com/hyperengineering/lexicon/internal/vault"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var (
	configPath    string
	vaultOverride string
	jsonOutput    bool
)

var rootCmd = &cobra.Command{
	Use:          "lexicon",
	Short:        "Lexicon - Kindle vocabulary sync",
	Long:         "Sync Kindle vocabulary lookups into a Markdown document in a notes vault and track which words are learned.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file path (overrides LEXICON_CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&vaultOverride, "vault", "",
		"Vault root (overrides config and LEXICON_VAULT_ROOT)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output in JSON format")

	rootCmd.Version = Version

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(unlearnCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(importCmd)
}

// app holds the wired components a command needs.
type app struct {
	cfg      *config.Config
	vault    *vault.Dir
	uploader backup.Uploader
	runner   *engine.Runner
}

// loadConfig loads configuration from --config or the default locations
// and applies the --vault override.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if vaultOverride != "" {
		cfg.Vault.Root = vaultOverride
	}
	return cfg, nil
}

// newApp loads configuration and wires the engine. Logs go to logOut.
func newApp(logOut io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := newLogger(logOut, cfg.Log)
	slog.SetDefault(logger)

	dir, err := vault.Open(cfg.Vault.Root)
	if err != nil {
		return nil, err
	}

	uploader, err := backup.NewUploader(cfg.Backup)
	if err != nil {
		return nil, fmt.Errorf("init backup: %w", err)
	}

	eng := engine.New(dir,
		engine.WithLogger(logger),
		engine.WithBackup(uploader),
	)

	return &app{
		cfg:      cfg,
		vault:    dir,
		uploader: uploader,
		runner:   engine.NewRunner(eng, cfg.Settings()),
	}, nil
}

// newLogger builds the process logger from the log config.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// failWithNotice prints the user-facing notice for err and returns err.
func failWithNotice(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), engine.Notice(err))
	return err
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// readInput reads a named file, or stdin for "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}
