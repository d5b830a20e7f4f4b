// Package writetag verifies that the documentation comment preceding a
// declaration carries a required tag, optionally matching the tag's
// trailing content against a format pattern.
//
// A Rule is immutable after New and safe to share across goroutines:
// every Check call works purely on its arguments and reports with an
// explicit severity, so no state is toggled between emissions.
package writetag

import (
	"fmt"
	"regexp"

	"doctag/internal/decl"
	"doctag/internal/diag"
)

// Options configures a single rule. Severities use their configuration
// spelling ("ignore", "info", "warning", "error"); empty strings pick
// the defaults.
type Options struct {
	// Tag is the literal tag marker, e.g. "@author". It is inserted
	// verbatim into the tag pattern, so it may itself use regexp syntax
	// (e.g. "@(author|owner)") unless EscapeTag is set. An empty Tag
	// disables the rule: Check performs no work at all.
	Tag string
	// EscapeTag quotes regexp metacharacters in Tag so it always
	// matches literally.
	EscapeTag bool
	// TagFormat is an optional pattern the captured tag content must
	// contain a match of.
	TagFormat string
	// TagSeverity applies only to the tag-found diagnostic. Default "info".
	TagSeverity string
	// Severity applies to every other diagnostic the rule produces.
	// Default "error".
	Severity string
	// Decls are the declaration kinds the rule is checked against.
	// Empty means structs, interfaces and typedefs.
	Decls []string
}

// Rule is a compiled, read-only tag check.
type Rule struct {
	tag         string
	tagRe       *regexp.Regexp // nil when no tag configured
	format      *regexp.Regexp // nil when no format configured
	formatText  string
	tagSeverity diag.Severity
	severity    diag.Severity
	kinds       decl.KindSet
}

// New compiles opts into a Rule. A tag or format that does not compile,
// or an unknown severity or declaration kind, is a fatal configuration
// error: the rule is not built and no scanning should proceed.
func New(opts Options) (*Rule, error) {
	r := &Rule{
		tag:         opts.Tag,
		tagSeverity: diag.SevInfo,
		severity:    diag.SevError,
	}

	var err error
	if opts.TagSeverity != "" {
		if r.tagSeverity, err = diag.ParseSeverity(opts.TagSeverity); err != nil {
			return nil, fmt.Errorf("%s: %w", diag.ConfBadSeverity.ID(), err)
		}
	}
	if opts.Severity != "" {
		if r.severity, err = diag.ParseSeverity(opts.Severity); err != nil {
			return nil, fmt.Errorf("%s: %w", diag.ConfBadSeverity.ID(), err)
		}
	}

	if r.kinds, err = decl.ParseKindSet(opts.Decls); err != nil {
		return nil, fmt.Errorf("%s: %w", diag.ConfUnknownDeclKind.ID(), err)
	}

	if opts.Tag != "" {
		frag := opts.Tag
		if opts.EscapeTag {
			frag = regexp.QuoteMeta(frag)
		}
		if r.tagRe, err = regexp.Compile(frag + `\s*(.*$)`); err != nil {
			return nil, fmt.Errorf("%s: tag %q: %w", diag.ConfBadTagPattern.ID(), opts.Tag, err)
		}
	}

	if opts.TagFormat != "" {
		if r.format, err = regexp.Compile(opts.TagFormat); err != nil {
			return nil, fmt.Errorf("%s: tag format %q: %w", diag.ConfBadFormatPattern.ID(), opts.TagFormat, err)
		}
		r.formatText = opts.TagFormat
	}

	return r, nil
}

// Tag returns the configured tag marker, empty when the rule is disabled.
func (r *Rule) Tag() string { return r.tag }

// Pattern returns the compiled tag pattern text, empty when the rule is
// disabled. It reflects EscapeTag: an escaped and an unescaped tag
// compile to different patterns.
func (r *Rule) Pattern() string {
	if r.tagRe == nil {
		return ""
	}
	return r.tagRe.String()
}

// FormatText returns the configured content format pattern text.
func (r *Rule) FormatText() string { return r.formatText }

// Severity returns the rule's normal reporting severity.
func (r *Rule) Severity() diag.Severity { return r.severity }

// TagSeverity returns the severity used for tag-found diagnostics.
func (r *Rule) TagSeverity() diag.Severity { return r.tagSeverity }

// Kinds returns the declaration kinds this rule applies to.
func (r *Rule) Kinds() decl.KindSet { return r.kinds }

// Enabled reports whether the rule has a tag to look for.
func (r *Rule) Enabled() bool { return r.tagRe != nil }
