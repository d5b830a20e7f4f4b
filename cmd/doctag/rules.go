package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the resolved rule set",
	Long:  "Load doctag.toml, compile every rule, and print the effective configuration of each",
	RunE:  runRules,
}

func runRules(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, ok, err := resolveDoctagConfig(configPath, ".")
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(noDoctagTomlMessage)
	}
	rules, err := buildRules(cfg.Rules)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Path, err)
	}

	fmt.Fprintf(os.Stdout, "%s\n", cfg.Path)
	for i, r := range rules {
		kinds := make([]string, 0, 7)
		for _, k := range r.Kinds().Kinds() {
			kinds = append(kinds, k.String())
		}
		fmt.Fprintf(os.Stdout, "rule %d: %s\n", i+1, r.Tag())
		if r.FormatText() != "" {
			fmt.Fprintf(os.Stdout, "  format:       %s\n", r.FormatText())
		}
		fmt.Fprintf(os.Stdout, "  severity:     %s\n", r.Severity().Name())
		fmt.Fprintf(os.Stdout, "  tag severity: %s\n", r.TagSeverity().Name())
		fmt.Fprintf(os.Stdout, "  decls:        %s\n", strings.Join(kinds, ", "))
	}
	return nil
}
