package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"doctag/internal/writetag"
)

const noDoctagTomlMessage = "no doctag.toml found\nplease add one or configure a rule explicitly, e.g.:\n  doctag check --tag @author ."

type doctagConfig struct {
	Path  string
	Root  string
	Scan  scanConfig   `toml:"scan"`
	Rules []ruleConfig `toml:"rule"`
}

type scanConfig struct {
	Paths     []string `toml:"paths"`
	SkipTests bool     `toml:"skip_tests"`
	Jobs      int      `toml:"jobs"`
}

type ruleConfig struct {
	Tag         string   `toml:"tag"`
	EscapeTag   bool     `toml:"escape_tag"`
	TagFormat   string   `toml:"tag_format"`
	TagSeverity string   `toml:"tag_severity"`
	Severity    string   `toml:"severity"`
	Decls       []string `toml:"decls"`
}

// findDoctagToml walks upward from startDir looking for a doctag.toml.
func findDoctagToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "doctag.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadDoctagConfig(path string) (*doctagConfig, error) {
	var cfg doctagConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("rule") {
		return nil, fmt.Errorf("%s: missing [[rule]]", path)
	}
	for i, rc := range cfg.Rules {
		if strings.TrimSpace(rc.Tag) == "" {
			return nil, fmt.Errorf("%s: rule %d: missing tag", path, i+1)
		}
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	return &cfg, nil
}

// resolveDoctagConfig loads the configuration named by the --config
// persistent flag, or searches for doctag.toml upward from startDir.
// ok is false when no flag was given and no file was found.
func resolveDoctagConfig(explicit, startDir string) (*doctagConfig, bool, error) {
	if explicit != "" {
		cfg, err := loadDoctagConfig(explicit)
		if err != nil {
			return nil, true, err
		}
		return cfg, true, nil
	}
	path, ok, err := findDoctagToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadDoctagConfig(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// buildRules compiles every [[rule]] block. Rule compilation errors carry
// the rule's position in the file so users can find the bad block.
func buildRules(cfgs []ruleConfig) ([]*writetag.Rule, error) {
	rules := make([]*writetag.Rule, 0, len(cfgs))
	for i, rc := range cfgs {
		r, err := writetag.New(writetag.Options{
			Tag:         rc.Tag,
			EscapeTag:   rc.EscapeTag,
			TagFormat:   rc.TagFormat,
			TagSeverity: rc.TagSeverity,
			Severity:    rc.Severity,
			Decls:       rc.Decls,
		})
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, rc.Tag, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}
