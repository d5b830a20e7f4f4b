package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"doctag/internal/diagfmt"
	"doctag/internal/driver"
	"doctag/internal/observ"
	"doctag/internal/source"
	"doctag/internal/writetag"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [path...]",
	Short: "Check doc comments for required tags",
	Long:  `Check Go declarations under the given files or directories for required documentation tags. Rules come from doctag.toml or from the --tag flags`,
	RunE:  runCheck,
}

// init registers CLI flags for the check command used by runCheck.
// Rule flags (--tag and friends) define a single ad-hoc rule that
// replaces the doctag.toml rule set for this run.
func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Bool("ui", false, "show interactive progress (pretty format on a terminal only)")
	checkCmd.Flags().Bool("no-cache", false, "disable the persistent result cache")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("skip-tests", false, "skip _test.go files")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("show-ignored", false, "show diagnostics with ignore severity")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")

	checkCmd.Flags().String("tag", "", "tag to require, e.g. @author")
	checkCmd.Flags().Bool("escape-tag", false, "treat --tag as a literal string, not a pattern")
	checkCmd.Flags().String("tag-format", "", "pattern the tag content must match")
	checkCmd.Flags().String("tag-severity", "", "severity of the tag-found report (ignore|info|warning|error)")
	checkCmd.Flags().String("severity", "", "severity of missing-tag and bad-format reports")
	checkCmd.Flags().StringSlice("decls", nil, "declaration kinds to check (struct|interface|typedef|func|method|const|var)")
}

// runCheck executes the "check" command: it resolves the rule set, scans
// the requested paths, formats the merged diagnostics in the chosen
// output format, and exits with a non-zero status when any diagnostics
// carry error severity.
func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	useUI, err := cmd.Flags().GetBool("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	skipTests, err := cmd.Flags().GetBool("skip-tests")
	if err != nil {
		return fmt.Errorf("failed to get skip-tests flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	showIgnored, err := cmd.Flags().GetBool("show-ignored")
	if err != nil {
		return fmt.Errorf("failed to get show-ignored flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}

	switch format {
	case "pretty", "json":
		// supported
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	rules, scanCfg, err := resolveRules(cmd, args, configPath)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = scanCfg.defaultPaths()
	}
	if !cmd.Flags().Changed("skip-tests") {
		skipTests = scanCfg.SkipTests
	}
	if jobs == 0 {
		jobs = scanCfg.Jobs
	}

	var cache *driver.DiskCache
	if !noCache {
		cache, err = driver.OpenDiskCache("doctag")
		if err != nil {
			if !quiet {
				fmt.Fprintf(os.Stderr, "warning: disk cache disabled: %v\n", err)
			}
			cache = nil
		}
	}

	timer := observ.NewTimer()
	opts := driver.ScanOptions{
		Paths:          paths,
		SkipTests:      skipTests,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
		Cache:          cache,
		Timer:          timer,
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var (
		fs      *source.FileSet
		results []driver.FileResult
	)
	if useUI && format == "pretty" && isTerminal(os.Stdout) {
		files, listErr := driver.ListGoFiles(paths, skipTests)
		if listErr != nil {
			return fmt.Errorf("check failed: %w", listErr)
		}
		fs, results, err = runScanWithUI(cmd.Context(), "doctag check", files, rules, opts)
	} else {
		fs, results, err = driver.Scan(cmd.Context(), rules, opts)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	merged := driver.MergeBags(results)
	merged.Sort()

	if showTimings {
		fmt.Fprint(os.Stderr, timer.Summary())
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	switch format {
	case "pretty":
		diagfmt.Pretty(os.Stdout, merged, fs, diagfmt.PrettyOpts{
			Color:       useColor,
			Context:     2,
			PathMode:    pathMode,
			ShowIgnored: showIgnored,
			ShowNotes:   withNotes,
			ShowFixes:   suggest,
		})
		if !quiet {
			printCheckSummary(os.Stdout, results, merged.Len())
		}
	case "json":
		jsonErr := diagfmt.JSON(os.Stdout, merged, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			Max:              maxDiagnostics,
			IncludeNotes:     withNotes,
			IncludeFixes:     suggest,
		})
		if jsonErr != nil {
			return fmt.Errorf("failed to format diagnostics: %w", jsonErr)
		}
	}

	if merged.HasErrors() {
		// Suppress cobra usage output on tag findings
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("") // Silent error - diagnostics already printed
	}
	return nil
}

// resolveRules picks the rule set for this run: a single ad-hoc rule when
// --tag was given, otherwise every [[rule]] block from the resolved
// doctag.toml. The returned scanConfig is zero for ad-hoc runs.
func resolveRules(cmd *cobra.Command, args []string, configPath string) ([]*writetag.Rule, scanConfig, error) {
	tag, err := cmd.Flags().GetString("tag")
	if err != nil {
		return nil, scanConfig{}, fmt.Errorf("failed to get tag flag: %w", err)
	}

	if tag != "" {
		escapeTag, err := cmd.Flags().GetBool("escape-tag")
		if err != nil {
			return nil, scanConfig{}, fmt.Errorf("failed to get escape-tag flag: %w", err)
		}
		tagFormat, err := cmd.Flags().GetString("tag-format")
		if err != nil {
			return nil, scanConfig{}, fmt.Errorf("failed to get tag-format flag: %w", err)
		}
		tagSeverity, err := cmd.Flags().GetString("tag-severity")
		if err != nil {
			return nil, scanConfig{}, fmt.Errorf("failed to get tag-severity flag: %w", err)
		}
		severity, err := cmd.Flags().GetString("severity")
		if err != nil {
			return nil, scanConfig{}, fmt.Errorf("failed to get severity flag: %w", err)
		}
		decls, err := cmd.Flags().GetStringSlice("decls")
		if err != nil {
			return nil, scanConfig{}, fmt.Errorf("failed to get decls flag: %w", err)
		}
		rule, err := writetag.New(writetag.Options{
			Tag:         tag,
			EscapeTag:   escapeTag,
			TagFormat:   tagFormat,
			TagSeverity: tagSeverity,
			Severity:    severity,
			Decls:       decls,
		})
		if err != nil {
			return nil, scanConfig{}, err
		}
		return []*writetag.Rule{rule}, scanConfig{}, nil
	}

	startDir := "."
	if len(args) > 0 {
		startDir = args[0]
		if st, statErr := os.Stat(startDir); statErr == nil && !st.IsDir() {
			startDir = filepath.Dir(startDir)
		}
	}
	cfg, ok, err := resolveDoctagConfig(configPath, startDir)
	if err != nil {
		return nil, scanConfig{}, err
	}
	if !ok {
		return nil, scanConfig{}, errors.New(noDoctagTomlMessage)
	}
	rules, err := buildRules(cfg.Rules)
	if err != nil {
		return nil, scanConfig{}, fmt.Errorf("%s: %w", cfg.Path, err)
	}
	return rules, cfg.scanConfigRooted(), nil
}

// defaultPaths returns the scan paths to use when the command line
// names none.
func (c scanConfig) defaultPaths() []string {
	if len(c.Paths) > 0 {
		return c.Paths
	}
	return []string{"."}
}

// scanConfigRooted rebases relative [scan].paths onto the manifest root
// so the config works no matter where doctag runs from.
func (cfg *doctagConfig) scanConfigRooted() scanConfig {
	out := cfg.Scan
	if len(out.Paths) == 0 {
		return out
	}
	rooted := make([]string, 0, len(out.Paths))
	for _, p := range out.Paths {
		if filepath.IsAbs(p) {
			rooted = append(rooted, p)
			continue
		}
		rooted = append(rooted, filepath.Join(cfg.Root, filepath.FromSlash(p)))
	}
	out.Paths = rooted
	return out
}

func printCheckSummary(w *os.File, results []driver.FileResult, findings int) {
	cached := 0
	for _, r := range results {
		if r.Cached {
			cached++
		}
	}
	if cached > 0 {
		fmt.Fprintf(w, "checked %d files (%d cached): %d findings\n", len(results), cached, findings)
		return
	}
	fmt.Fprintf(w, "checked %d files: %d findings\n", len(results), findings)
}
