package types

import "strings"

// ScanParams describes a scan request. Optional fields are nil when the
// caller left them unspecified; an absent Action is not the same as check.
type ScanParams struct {
	Target string  `json:"target" yaml:"target"`
	Action *Action `json:"action,omitempty" yaml:"action,omitempty"`
	Scope  *Scope  `json:"scope,omitempty" yaml:"scope,omitempty"`
	Depth  *Depth  `json:"depth,omitempty" yaml:"depth,omitempty"`
}

// ValidateScanParams checks p and returns a copy that shares no pointers
// with it. Validating an already validated value returns an equal value.
func ValidateScanParams(p ScanParams) (ScanParams, error) {
	if strings.TrimSpace(p.Target) == "" {
		return ScanParams{}, newValidationError(KindEmptyTarget, "target", "")
	}
	if p.Action != nil && !p.Action.IsValid() {
		return ScanParams{}, newValidationError(KindInvalidEnum, "action", "%q is not one of %v", *p.Action, AllActions())
	}
	if p.Scope != nil && !p.Scope.IsValid() {
		return ScanParams{}, newValidationError(KindInvalidEnum, "scope", "%q is not one of %v", *p.Scope, AllScopes())
	}
	if p.Depth != nil && !p.Depth.IsValid() {
		return ScanParams{}, newValidationError(KindInvalidEnum, "depth", "%q is not one of %v", *p.Depth, AllDepths())
	}

	return ScanParams{
		Target: p.Target,
		Action: clonePtr(p.Action),
		Scope:  clonePtr(p.Scope),
		Depth:  clonePtr(p.Depth),
	}, nil
}

// Ptr returns a pointer to v. Handy for filling optional fields.
func Ptr[T any](v T) *T { return &v }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
