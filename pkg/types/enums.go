// Package types holds the scan data model: request parameters, findings and
// the result envelope, together with the validation that guards them.
package types

import (
	"fmt"
	"slices"
	"strings"
)

// Action is what a scan request asks the producer to do.
type Action string

const (
	ActionCheck  Action = "check"
	ActionPatch  Action = "patch"
	ActionReport Action = "report"
)

// AllActions returns every valid action.
func AllActions() []Action {
	return []Action{ActionCheck, ActionPatch, ActionReport}
}

// IsValid reports whether a is one of the known actions.
func (a Action) IsValid() bool { return slices.Contains(AllActions(), a) }

func (a Action) String() string { return string(a) }

// Scope is the breadth of a scan request.
type Scope string

const (
	ScopeSystem  Scope = "system"
	ScopeNetwork Scope = "network"
	ScopeDevice  Scope = "device"
)

// AllScopes returns every valid scope.
func AllScopes() []Scope {
	return []Scope{ScopeSystem, ScopeNetwork, ScopeDevice}
}

// IsValid reports whether s is one of the known scopes.
func (s Scope) IsValid() bool { return slices.Contains(AllScopes(), s) }

func (s Scope) String() string { return string(s) }

// Depth controls how thorough a scan is.
type Depth string

const (
	DepthQuick  Depth = "quick"
	DepthNormal Depth = "normal"
	DepthDeep   Depth = "deep"
)

// AllDepths returns every valid depth.
func AllDepths() []Depth {
	return []Depth{DepthQuick, DepthNormal, DepthDeep}
}

// IsValid reports whether d is one of the known depths.
func (d Depth) IsValid() bool { return slices.Contains(AllDepths(), d) }

func (d Depth) String() string { return string(d) }

// Severity classifies the risk of a finding. Severities are totally ordered:
// low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AllSeverities returns every valid severity, most severe first.
func AllSeverities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

// IsValid reports whether s is one of the four known severities.
func (s Severity) IsValid() bool { return s.Rank() > 0 }

func (s Severity) String() string { return string(s) }

// Rank returns the position of s in the severity order (low=1, critical=4),
// or 0 for values outside the enumeration.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ParseSeverity maps a producer's severity spelling onto the closed set.
// Matching is case-insensitive. Scanners that report "negligible", "info" or
// "unknown" get folded into low since the model has no level below it.
func ParseSeverity(raw string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical":
		return SeverityCritical, nil
	case "high":
		return SeverityHigh, nil
	case "medium", "moderate":
		return SeverityMedium, nil
	case "low", "negligible", "info", "informational", "unknown":
		return SeverityLow, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, raw)
	}
}
