package types

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Summary holds aggregate counts for a scan. Total must equal
// Successful + Failed.
type Summary struct {
	Total      int `json:"total" yaml:"total"`
	Successful int `json:"successful" yaml:"successful"`
	Failed     int `json:"failed" yaml:"failed"`
}

// ResultKind tells renderers which layout a result needs.
type ResultKind string

const (
	ResultKindFindings ResultKind = "findings"
	ResultKindPatch    ResultKind = "patch"
	ResultKindEmpty    ResultKind = "empty"
)

// ScanResult is the envelope a producer returns for one scan. It can only be
// created through BuildScanResult and is never modified afterwards: every
// accessor hands out copies.
type ScanResult struct {
	success        bool
	timestamp      time.Time
	errMsg         *string
	findings       []Vulnerability
	patchesApplied []string
	summary        *Summary
}

// ResultOption sets an optional part of a ScanResult.
type ResultOption func(*resultOptions)

type resultOptions struct {
	errMsg         *string
	findings       []Vulnerability
	patchesApplied []string
	summary        *Summary
}

// WithError records why a scan failed.
func WithError(msg string) ResultOption {
	return func(o *resultOptions) { o.errMsg = &msg }
}

// WithFindings attaches the findings of a check or report scan. A non-nil
// empty slice means "scanned, nothing found"; nil leaves findings absent.
func WithFindings(findings []Vulnerability) ResultOption {
	return func(o *resultOptions) {
		if findings == nil {
			o.findings = nil
			return
		}
		o.findings = slices.Clone(findings)
	}
}

// WithPatchesApplied attaches the ids of remediated vulnerabilities.
func WithPatchesApplied(ids []string) ResultOption {
	return func(o *resultOptions) {
		if ids == nil {
			o.patchesApplied = nil
			return
		}
		o.patchesApplied = slices.Clone(ids)
	}
}

// WithSummary attaches aggregate counts.
func WithSummary(s Summary) ResultOption {
	return func(o *resultOptions) { o.summary = &s }
}

// BuildScanResult assembles and validates a result envelope.
//
// A failed result must carry a non-blank error. A successful result never
// carries one: an error passed alongside success=true is dropped. When a
// summary is given its counts must add up, and when findings are present as
// well the summary total must match the number of findings.
func BuildScanResult(success bool, timestamp time.Time, opts ...ResultOption) (*ScanResult, error) {
	var o resultOptions
	for _, opt := range opts {
		opt(&o)
	}

	if timestamp.IsZero() {
		return nil, newValidationError(KindMissingField, "timestamp", "")
	}

	r := &ScanResult{
		success:   success,
		timestamp: timestamp.UTC(),
	}

	if success {
		o.errMsg = nil
	} else {
		if o.errMsg == nil || strings.TrimSpace(*o.errMsg) == "" {
			return nil, newValidationError(KindMissingError, "error", "failed result needs an error message")
		}
		r.errMsg = clonePtr(o.errMsg)
	}

	if o.findings != nil {
		findings := make([]Vulnerability, len(o.findings))
		seen := make(map[string]int, len(o.findings))
		for i, f := range o.findings {
			v, err := ValidateVulnerability(f)
			if err != nil {
				return nil, fmt.Errorf("findings[%d]: %w", i, err)
			}
			if first, dup := seen[v.ID]; dup {
				return nil, newValidationError(KindDuplicateID, "id", "%q appears at findings[%d] and findings[%d]", v.ID, first, i)
			}
			seen[v.ID] = i
			findings[i] = v
		}
		r.findings = findings
	}

	if o.patchesApplied != nil {
		r.patchesApplied = slices.Clone(o.patchesApplied)
	}

	if o.summary != nil {
		s := *o.summary
		if s.Total < 0 || s.Successful < 0 || s.Failed < 0 {
			return nil, newValidationError(KindInconsistentSummary, "summary", "counts must not be negative")
		}
		if s.Total != s.Successful+s.Failed {
			return nil, newValidationError(KindInconsistentSummary, "summary", "total %d != successful %d + failed %d", s.Total, s.Successful, s.Failed)
		}
		if r.findings != nil && s.Total != len(r.findings) {
			return nil, newValidationError(KindInconsistentSummary, "summary", "total %d != %d findings", s.Total, len(r.findings))
		}
		r.summary = &s
	}

	return r, nil
}

// Success reports the outcome of the scan.
func (r *ScanResult) Success() bool { return r.success }

// Timestamp is when the result was produced, in UTC.
func (r *ScanResult) Timestamp() time.Time { return r.timestamp }

// ErrorMessage returns the failure reason; ok is false on successful results.
func (r *ScanResult) ErrorMessage() (msg string, ok bool) {
	if r.errMsg == nil {
		return "", false
	}
	return *r.errMsg, true
}

// HasFindings reports whether the result carries a findings sequence (which
// may be empty).
func (r *ScanResult) HasFindings() bool { return r.findings != nil }

// Findings returns a copy of the findings in discovery order, or nil when the
// result has none.
func (r *ScanResult) Findings() []Vulnerability { return cloneFindings(r.findings) }

// HasPatches reports whether the result carries a patchesApplied sequence.
func (r *ScanResult) HasPatches() bool { return r.patchesApplied != nil }

// PatchesApplied returns a copy of the remediated ids, or nil.
func (r *ScanResult) PatchesApplied() []string { return slices.Clone(r.patchesApplied) }

// Summary returns the aggregate counts when present.
func (r *ScanResult) Summary() (Summary, bool) {
	if r.summary == nil {
		return Summary{}, false
	}
	return *r.summary, true
}

// Kind reports whether the result describes findings, applied patches or
// neither.
func (r *ScanResult) Kind() ResultKind {
	switch {
	case r.findings != nil:
		return ResultKindFindings
	case r.patchesApplied != nil:
		return ResultKindPatch
	default:
		return ResultKindEmpty
	}
}

// ScanResultWire is the serialized shape of a ScanResult. Absent sequences
// are nil pointers so that "absent" and "empty" survive a round trip.
type ScanResultWire struct {
	Success        bool             `json:"success" yaml:"success"`
	Timestamp      string           `json:"timestamp" yaml:"timestamp"`
	Error          *string          `json:"error,omitempty" yaml:"error,omitempty"`
	Findings       *[]Vulnerability `json:"findings,omitempty" yaml:"findings,omitempty"`
	PatchesApplied *[]string        `json:"patchesApplied,omitempty" yaml:"patchesApplied,omitempty"`
	Summary        *Summary         `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// timestampLayouts are the ISO-8601 forms accepted on input.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z0700",
}

// ParseTimestamp parses an ISO-8601 instant. Values without a zone are
// taken as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, newValidationError(KindMissingField, "timestamp", "")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, newValidationError(KindMissingField, "timestamp", "%q is not an ISO-8601 instant", raw)
}

// Build validates the wire form and turns it into a ScanResult.
func (w ScanResultWire) Build() (*ScanResult, error) {
	ts, err := ParseTimestamp(w.Timestamp)
	if err != nil {
		return nil, err
	}

	var opts []ResultOption
	if w.Error != nil {
		opts = append(opts, WithError(*w.Error))
	}
	if w.Findings != nil {
		findings := *w.Findings
		if findings == nil {
			findings = []Vulnerability{}
		}
		opts = append(opts, WithFindings(findings))
	}
	if w.PatchesApplied != nil {
		patches := *w.PatchesApplied
		if patches == nil {
			patches = []string{}
		}
		opts = append(opts, WithPatchesApplied(patches))
	}
	if w.Summary != nil {
		opts = append(opts, WithSummary(*w.Summary))
	}
	return BuildScanResult(w.Success, ts, opts...)
}

// Wire returns the serialized shape of r.
func (r *ScanResult) Wire() ScanResultWire {
	w := ScanResultWire{
		Success:   r.success,
		Timestamp: r.timestamp.Format(time.RFC3339Nano),
		Error:     clonePtr(r.errMsg),
		Summary:   clonePtr(r.summary),
	}
	if r.findings != nil {
		findings := cloneFindings(r.findings)
		w.Findings = &findings
	}
	if r.patchesApplied != nil {
		patches := slices.Clone(r.patchesApplied)
		w.PatchesApplied = &patches
	}
	return w
}

// MarshalJSON encodes r in its wire form.
func (r *ScanResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Wire())
}

// UnmarshalJSON decodes and validates a wire payload into r. Only a zero
// ScanResult can be decoded into; a built result is never replaced.
func (r *ScanResult) UnmarshalJSON(data []byte) error {
	if !r.timestamp.IsZero() {
		return fmt.Errorf("cannot decode into a built scan result")
	}
	var w ScanResultWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	built, err := w.Build()
	if err != nil {
		return err
	}
	*r = *built
	return nil
}
