package types

import (
	"cmp"
	"slices"
	"strings"
)

// Vulnerability is a single finding within a scan result.
type Vulnerability struct {
	ID             string   `json:"id" yaml:"id"`
	Type           string   `json:"type" yaml:"type"`
	Severity       Severity `json:"severity" yaml:"severity"`
	Description    string   `json:"description" yaml:"description"`
	Recommendation *string  `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	Impact         *string  `json:"impact,omitempty" yaml:"impact,omitempty"`
	CVE            *string  `json:"cve,omitempty" yaml:"cve,omitempty"`
}

// ValidateVulnerability checks v and returns a deep copy of it.
func ValidateVulnerability(v Vulnerability) (Vulnerability, error) {
	if !v.Severity.IsValid() {
		return Vulnerability{}, newValidationError(KindInvalidSeverity, "severity", "%q is not one of %v", v.Severity, AllSeverities())
	}
	switch {
	case strings.TrimSpace(v.ID) == "":
		return Vulnerability{}, newValidationError(KindMissingField, "id", "")
	case strings.TrimSpace(v.Type) == "":
		return Vulnerability{}, newValidationError(KindMissingField, "type", "")
	case strings.TrimSpace(v.Description) == "":
		return Vulnerability{}, newValidationError(KindMissingField, "description", "")
	}
	return v.clone(), nil
}

func (v Vulnerability) clone() Vulnerability {
	v.Recommendation = clonePtr(v.Recommendation)
	v.Impact = clonePtr(v.Impact)
	v.CVE = clonePtr(v.CVE)
	return v
}

func cloneFindings(in []Vulnerability) []Vulnerability {
	if in == nil {
		return nil
	}
	out := make([]Vulnerability, len(in))
	for i, v := range in {
		out[i] = v.clone()
	}
	return out
}

// SortBySeverity returns the findings ordered critical first, low last.
// The sort is stable, so findings of equal severity keep their discovery
// order. The input slice is not modified.
func SortBySeverity(findings []Vulnerability) []Vulnerability {
	sorted := cloneFindings(findings)
	if sorted == nil {
		sorted = []Vulnerability{}
	}
	slices.SortStableFunc(sorted, func(a, b Vulnerability) int {
		return cmp.Compare(b.Severity.Rank(), a.Severity.Rank())
	})
	return sorted
}

// FilterBySeverity returns the findings at or above threshold, in their
// original order.
func FilterBySeverity(findings []Vulnerability, threshold Severity) []Vulnerability {
	filtered := make([]Vulnerability, 0, len(findings))
	for _, v := range findings {
		if v.Severity.Rank() >= threshold.Rank() {
			filtered = append(filtered, v.clone())
		}
	}
	return filtered
}

// SeveritySummary counts findings per severity.
type SeveritySummary struct {
	Total      int              `json:"total"`
	BySeverity map[Severity]int `json:"bySeverity"`
}

// Summarize counts findings per severity. Every severity is present in the
// map, so the counts always add up to Total.
func Summarize(findings []Vulnerability) SeveritySummary {
	s := SeveritySummary{
		Total:      len(findings),
		BySeverity: make(map[Severity]int, 4),
	}
	for _, sev := range AllSeverities() {
		s.BySeverity[sev] = 0
	}
	for _, v := range findings {
		s.BySeverity[v.Severity]++
	}
	return s
}

// Merge adds the counts of other into s.
func (s *SeveritySummary) Merge(other SeveritySummary) {
	if s.BySeverity == nil {
		s.BySeverity = make(map[Severity]int, len(other.BySeverity))
	}
	s.Total += other.Total
	for sev, n := range other.BySeverity {
		s.BySeverity[sev] += n
	}
}
