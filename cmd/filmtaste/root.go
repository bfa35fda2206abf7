package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rushteam/filmtaste/config"
	"github.com/rushteam/filmtaste/pkg/logging"
	"github.com/rushteam/filmtaste/recommend"
)

var version = "dev"

var (
	configPath string
	logLevel   string
	logFormat  string

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "filmtaste",
	Short: "Film taste fingerprints and recommendations",
	Long: `filmtaste builds a 62-dimension taste fingerprint from the films you love,
aggregates a category profile, and recommends films by vector similarity.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "filmtaste version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $FILMTASTE_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override logging.format (json, console)")
	rootCmd.AddCommand(versionCmd)
}

// Execute 运行根命令。
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	cfg.Logging.Output = cmd.ErrOrStderr()
	logging.Init(cfg.Logging)
	appConfig = cfg
	return nil
}

func openEngine() (*recommend.Engine, error) {
	eng, err := recommend.Open(appConfig)
	if err != nil {
		return nil, fmt.Errorf("open engine: %w", err)
	}
	return eng, nil
}

func readJSON(cmd *cobra.Command, path string, out any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
