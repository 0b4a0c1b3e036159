// cmd/tools/reference-linter/main.go
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"betfunnels-copy/internal/common/config"
	"betfunnels-copy/internal/common/database"
	"betfunnels-copy/internal/common/logger"
	"betfunnels-copy/internal/copywriter/lint"
	"betfunnels-copy/internal/copywriter/segment"
	"betfunnels-copy/internal/copywriter/templatestore"

	"github.com/spf13/cobra"
)

var errFindings = stderrors.New("reference templates have findings")

var (
	configPath string
	format     string
	strict     bool
	casinoName string
	refKey     string
)

var rootCmd = &cobra.Command{
	Use:           "reference-linter",
	Short:         "Check the casino prompt store before funnels hit it",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check every casino's tone and reference templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if format != "text" && format != "json" {
			return fmt.Errorf("format must be text or json, got %q", format)
		}
		return runLint(configPath, format, strict)
	},
}

var segmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "Print how a casino's template splits into day chunks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printSegments(configPath, casinoName, refKey)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: configs/config.yaml lookup)")

	lintCmd.Flags().StringVar(&format, "format", "text", "Output format (text, json)")
	lintCmd.Flags().BoolVar(&strict, "strict", false, "Fail on warnings too")

	segmentsCmd.Flags().StringVar(&casinoName, "casino", "", "Casino name")
	segmentsCmd.Flags().StringVar(&refKey, "key", "", "Reference key (e.g., ref_ativacao_ftd)")
	_ = segmentsCmd.MarkFlagRequired("casino")
	_ = segmentsCmd.MarkFlagRequired("key")

	rootCmd.AddCommand(lintCmd, segmentsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if stderrors.Is(err, errFindings) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func openStore(path string) (*config.Config, *templatestore.Store, func(), error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	log := logger.NewStructured(cfg.Logging.Level, "console")
	store := templatestore.NewStore(pg, cfg.Reference.Keys, log)
	return cfg, store, func() { pg.Close() }, nil
}

func runLint(path, format string, strict bool) error {
	cfg, store, closeFn, err := openStore(path)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	casinos, err := store.ListCasinos(ctx)
	if err != nil {
		return fmt.Errorf("failed to list casinos: %w", err)
	}

	report := lint.New(cfg.Reference.Keys, cfg.Generation.DayCount).Run(casinos)

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(report)
	}

	if report.Errors() > 0 || (strict && len(report.Findings) > 0) {
		return errFindings
	}
	return nil
}

func printReport(report *lint.Report) {
	for _, f := range report.Findings {
		target := f.Casino
		if f.Key != "" {
			target += "/" + f.Key
		}
		line := fmt.Sprintf("%-7s %-20s %s: %s", strings.ToUpper(string(f.Severity)), f.Code, target, f.Message)
		if len(f.MissingDays) > 0 {
			line += fmt.Sprintf(" (missing days %v)", f.MissingDays)
		}
		fmt.Println(line)
	}
	fmt.Printf("\n%d casinos checked, %d findings, %d errors\n", report.Casinos, len(report.Findings), report.Errors())
}

func printSegments(path, casino, key string) error {
	_, store, closeFn, err := openStore(path)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rec, err := store.Casino(ctx, casino)
	if err != nil {
		return err
	}
	text := rec.Reference(key)
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%s has no %s template", rec.Name, key)
	}

	for i, chunk := range segment.Split(text) {
		label := "preamble"
		if !chunk.IsPreamble() {
			label = fmt.Sprintf("day %d", chunk.Day)
		}
		fmt.Printf("--- chunk %d (%s, %d chars)\n%s\n", i+1, label, len(chunk.Text), strings.TrimRight(chunk.Text, "\n"))
	}
	return nil
}
