package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateScanParams(t *testing.T) {
	tests := []struct {
		name      string
		params    ScanParams
		wantKind  ErrorKind
		wantField string
	}{
		{"target only", ScanParams{Target: "10.0.0.1"}, "", ""},
		{"all fields", ScanParams{Target: "cam-01", Action: Ptr(ActionPatch), Scope: Ptr(ScopeDevice), Depth: Ptr(DepthDeep)}, "", ""},
		{"empty target", ScanParams{}, KindEmptyTarget, "target"},
		{"blank target", ScanParams{Target: "   "}, KindEmptyTarget, "target"},
		{"bad action", ScanParams{Target: "h", Action: Ptr(Action("scan"))}, KindInvalidEnum, "action"},
		{"bad scope", ScanParams{Target: "h", Scope: Ptr(Scope("planet"))}, KindInvalidEnum, "scope"},
		{"bad depth", ScanParams{Target: "h", Depth: Ptr(Depth("shallow"))}, KindInvalidEnum, "depth"},
		{"empty string action is not absent", ScanParams{Target: "h", Action: Ptr(Action(""))}, KindInvalidEnum, "action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateScanParams(tt.params)
			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.params, got)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantKind, verr.Kind)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestValidateScanParams_AbsentActionStaysAbsent(t *testing.T) {
	got, err := ValidateScanParams(ScanParams{Target: "nvr.local"})
	require.NoError(t, err)
	assert.Nil(t, got.Action)
	assert.Nil(t, got.Scope)
	assert.Nil(t, got.Depth)
}

func TestValidateScanParams_Idempotent(t *testing.T) {
	in := ScanParams{Target: "192.168.1.20", Action: Ptr(ActionReport), Depth: Ptr(DepthQuick)}
	once, err := ValidateScanParams(in)
	require.NoError(t, err)
	twice, err := ValidateScanParams(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestValidateScanParams_CopiesPointers(t *testing.T) {
	action := ActionCheck
	in := ScanParams{Target: "h", Action: &action}
	out, err := ValidateScanParams(in)
	require.NoError(t, err)

	action = ActionPatch
	assert.Equal(t, ActionCheck, *out.Action)
}

func TestValidateVulnerability(t *testing.T) {
	valid := Vulnerability{ID: "V-1", Type: "weak-password", Severity: SeverityHigh, Description: "default credentials"}

	tests := []struct {
		name      string
		mutate    func(v *Vulnerability)
		wantKind  ErrorKind
		wantField string
	}{
		{"valid", func(v *Vulnerability) {}, "", ""},
		{"optional text", func(v *Vulnerability) {
			v.Recommendation = Ptr("rotate it")
			v.CVE = Ptr("CVE-2021-36260")
		}, "", ""},
		{"unknown severity", func(v *Vulnerability) { v.Severity = "severe" }, KindInvalidSeverity, "severity"},
		{"upper case severity", func(v *Vulnerability) { v.Severity = "HIGH" }, KindInvalidSeverity, "severity"},
		{"missing id", func(v *Vulnerability) { v.ID = "" }, KindMissingField, "id"},
		{"missing type", func(v *Vulnerability) { v.Type = "" }, KindMissingField, "type"},
		{"missing description", func(v *Vulnerability) { v.Description = "" }, KindMissingField, "description"},
		{"blank id", func(v *Vulnerability) { v.ID = "  " }, KindMissingField, "id"},
		{"blank type", func(v *Vulnerability) { v.Type = "\t" }, KindMissingField, "type"},
		{"blank description", func(v *Vulnerability) { v.Description = " \n " }, KindMissingField, "description"},
		{"severity checked first", func(v *Vulnerability) {
			v.ID = ""
			v.Severity = ""
		}, KindInvalidSeverity, "severity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := valid
			tt.mutate(&v)
			got, err := ValidateVulnerability(v)
			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Equal(t, v, got)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantKind, verr.Kind)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"Critical", SeverityCritical},
		{"HIGH", SeverityHigh},
		{" medium ", SeverityMedium},
		{"Moderate", SeverityMedium},
		{"low", SeverityLow},
		{"Negligible", SeverityLow},
		{"Unknown", SeverityLow},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeverity(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseSeverity("catastrophic")
	assert.ErrorIs(t, err, ErrInvalidSeverity)
}

func TestSeverityRankOrder(t *testing.T) {
	assert.Greater(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Greater(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Greater(t, SeverityMedium.Rank(), SeverityLow.Rank())
	assert.Equal(t, 0, Severity("bogus").Rank())
	assert.False(t, Severity("bogus").IsValid())
}

func TestValidationErrorIs(t *testing.T) {
	_, err := ValidateScanParams(ScanParams{Target: "h", Scope: Ptr(Scope("x"))})
	assert.ErrorIs(t, err, ErrInvalidEnum)
	assert.False(t, errors.Is(err, ErrEmptyTarget))
	assert.Contains(t, err.Error(), "InvalidEnum(scope)")
}
