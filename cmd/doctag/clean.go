package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"doctag/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the doctag result cache",
	Long:  "Remove the on-disk cache of per-file check results. The next check run re-parses everything.",
	RunE:  runCleanCache,
}

func runCleanCache(_ *cobra.Command, _ []string) error {
	cache, err := driver.OpenDiskCache("doctag")
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to remove cache: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "cache removed\n")
	return nil
}
