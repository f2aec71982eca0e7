package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"anchor/internal/config"
)

func newConfigCommand(cctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(cctx))
	configCmd.AddCommand(newConfigShowCommand(cctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveInitTarget(targetPath)
			if err != nil {
				return err
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set [translation] api_key if you sync against foreign-language audio.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func resolveInitTarget(path string) (string, error) {
	if path = strings.TrimSpace(path); path == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(path)
}

func newConfigValidateCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Check the configuration file and create its directories",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var flagPath string
			if cctx.configFlag != nil {
				flagPath = strings.TrimSpace(*cctx.configFlag)
			}

			cfg, path, exists, err := config.Load(flagPath)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "No file found there; built-in defaults are in effect")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(table.Row{"Setting", "Value"}, configRows(cfg), 2))
			return nil
		},
	}
}

// configRows flattens the effective config into setting/value pairs. The API
// key is deliberately absent.
func configRows(cfg *config.Config) []table.Row {
	return []table.Row{
		{"paths.work_dir", cfg.Paths.WorkDir},
		{"paths.cache_dir", cfg.Paths.CacheDir},
		{"paths.log_dir", cfg.Paths.LogDir},
		{"engine.confidence_floor", strconv.FormatFloat(cfg.Engine.ConfidenceFloor, 'f', -1, 64)},
		{"engine.outlier_tolerance", strconv.FormatFloat(cfg.Engine.OutlierTolerance, 'f', -1, 64)},
		{"engine.drift_window", strconv.Itoa(cfg.Engine.DriftWindow)},
		{"engine.min_anchors", strconv.Itoa(cfg.Engine.MinAnchors)},
		{"engine.min_gap_ms", strconv.FormatInt(cfg.Engine.MinGapMS, 10)},
		{"engine.min_duration_ms", strconv.FormatInt(cfg.Engine.MinDurationMS, 10)},
		{"engine.workers", strconv.Itoa(cfg.Engine.Workers)},
		{"whisperx.model", cfg.WhisperX.Model},
		{"whisperx.device", cfg.WhisperX.Device},
		{"whisperx.compute_type", cfg.WhisperX.ComputeType},
		{"whisperx.batch_size", strconv.Itoa(cfg.WhisperX.BatchSize)},
		{"whisperx.language", cfg.WhisperX.Language},
		{"translation.enabled", yesNo(cfg.Translation.Enabled)},
		{"translation.model", cfg.Translation.Model},
		{"translation.overlap_threshold", strconv.FormatFloat(cfg.Translation.OverlapThreshold, 'f', -1, 64)},
		{"logging.format", cfg.Logging.Format},
		{"logging.level", cfg.Logging.Level},
	}
}
