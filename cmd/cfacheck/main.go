package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cfacheck"
	"cfacheck/internal/gofront"
	"cfacheck/policy"
	"cfacheck/prog"
)

var rootCmd = &cobra.Command{
	Use:   "cfacheck",
	Short: "Checker for the _cN contract-from-attributes naming convention",
	Long: `cfacheck verifies that trailing _cN function name suffixes match the
behavior the bodies and their callees actually exhibit`,
}

func main() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(goCmd)

	rootCmd.PersistentFlags().String("policy", "", "policy file merged over the built-in primitive tables")
	rootCmd.PersistentFlags().Int("jobs", 0, "max parallel workers (0=auto)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "analysis deadline, unconverged facts degrade to unverifiable (0=none)")
	rootCmd.PersistentFlags().String("format", "pretty", "output format (pretty|json)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <snapshot.mp>",
	Short: "Analyze a lowered snapshot produced by a front end",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var goCmd = &cobra.Command{
	Use:   "go <directory>",
	Short: "Lower a directory of Go sources with the reference front end and analyze it",
	Args:  cobra.ExactArgs(1),
	RunE:  runGo,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	pol, err := loadPolicy(cmd)
	if err != nil {
		return err
	}

	snap, err := prog.LoadSnapshot(args[0])
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	return analyze(cmd, snap, pol)
}

func runGo(cmd *cobra.Command, args []string) error {
	pol, err := loadPolicy(cmd)
	if err != nil {
		return err
	}

	snap, err := gofront.Load(args[0], pol)
	if err != nil {
		return fmt.Errorf("lower sources: %w", err)
	}

	return analyze(cmd, snap, pol)
}

func loadPolicy(cmd *cobra.Command) (*policy.Policy, error) {
	path, err := cmd.Root().PersistentFlags().GetString("policy")
	if err != nil {
		return nil, fmt.Errorf("failed to get policy flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}

	pol, err := policy.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	return pol, nil
}

func analyze(cmd *cobra.Command, snap *prog.Snapshot, pol *policy.Policy) error {
	flags := cmd.Root().PersistentFlags()

	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	timeout, err := flags.GetDuration("timeout")
	if err != nil {
		return fmt.Errorf("failed to get timeout flag: %w", err)
	}

	format, err := flags.GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	colorMode, err := flags.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}

	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	diags, err := cfacheck.Run(ctx, snap, pol, cfacheck.Options{Jobs: jobs})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	switch format {
	case "pretty":
		renderPretty(os.Stdout, diags, colorMode)
	case "json":
		if err := renderJSON(os.Stdout, diags); err != nil {
			return fmt.Errorf("failed to encode findings: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	for _, d := range diags {
		if d.Severity == cfacheck.SevError {
			// Findings are already printed, suppress cobra's usage dump.
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return fmt.Errorf("")
		}
	}

	return nil
}
