package diag

import "fmt"

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevIgnore marks diagnostics that are computed and recorded but not
	// normally shown. The consumer decides visibility, not the producer.
	SevIgnore Severity = iota
	// SevInfo is for informational diagnostics.
	SevInfo
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevIgnore:
		return "IGNORE"
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Name returns the lowercase configuration-file spelling.
func (s Severity) Name() string {
	switch s {
	case SevIgnore:
		return "ignore"
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// ParseSeverity maps a configuration string to a Severity.
func ParseSeverity(name string) (Severity, error) {
	switch name {
	case "ignore":
		return SevIgnore, nil
	case "info":
		return SevInfo, nil
	case "warning":
		return SevWarning, nil
	case "error":
		return SevError, nil
	}
	return SevIgnore, fmt.Errorf("unknown severity %q (want ignore|info|warning|error)", name)
}
