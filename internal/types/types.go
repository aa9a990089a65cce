package types

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity is the level a rule group reports its diagnostics at.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityOff:
		return "OFF"
	}
	return "UNKNOWN"
}

// ParseSeverity accepts the lower or upper case spelling of a severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	case "off":
		return SeverityOff, nil
	}
	return SeverityError, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalYAML() (any, error) {
	return strings.ToLower(s.String()), nil
}

func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseSeverity(value.Value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ConfigRule represents a configuration rule.
type ConfigRule struct {
	Severity Severity `yaml:"severity"`
}

// Diagnostic is a message produced while rewriting a tree.
// It never changes whether the pass succeeded.
type Diagnostic struct {
	Rule     string
	Severity Severity
	Unit     string
	Node     string
	Message  string
	Note     string
}
