package types

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts = time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

func finding(id string, sev Severity) Vulnerability {
	return Vulnerability{ID: id, Type: "exposure", Severity: sev, Description: id + " description"}
}

func TestBuildScanResult_FailureNeedsError(t *testing.T) {
	_, err := BuildScanResult(false, ts)
	assert.ErrorIs(t, err, ErrMissingError)

	_, err = BuildScanResult(false, ts, WithError("  "))
	assert.ErrorIs(t, err, ErrMissingError)

	r, err := BuildScanResult(false, ts, WithError("device unreachable"))
	require.NoError(t, err)
	msg, ok := r.ErrorMessage()
	assert.True(t, ok)
	assert.Equal(t, "device unreachable", msg)
	assert.False(t, r.Success())
}

func TestBuildScanResult_SuccessStripsError(t *testing.T) {
	r, err := BuildScanResult(true, ts, WithError("x"))
	require.NoError(t, err)
	_, ok := r.ErrorMessage()
	assert.False(t, ok)

	// same input, same outcome
	again, err := BuildScanResult(true, ts, WithError("x"))
	require.NoError(t, err)
	assert.Equal(t, r, again)
}

func TestBuildScanResult_Summary(t *testing.T) {
	tests := []struct {
		name     string
		opts     []ResultOption
		wantErr  error
		wantKind ResultKind
	}{
		{
			name:    "total does not add up",
			opts:    []ResultOption{WithSummary(Summary{Total: 3, Successful: 2, Failed: 2})},
			wantErr: ErrInconsistentSummary,
		},
		{
			name:    "negative counts",
			opts:    []ResultOption{WithSummary(Summary{Total: 0, Successful: 1, Failed: -1})},
			wantErr: ErrInconsistentSummary,
		},
		{
			name: "total disagrees with findings",
			opts: []ResultOption{
				WithFindings([]Vulnerability{finding("a", SeverityLow)}),
				WithSummary(Summary{Total: 2, Successful: 2}),
			},
			wantErr: ErrInconsistentSummary,
		},
		{
			name: "total matches findings",
			opts: []ResultOption{
				WithFindings([]Vulnerability{finding("a", SeverityLow), finding("b", SeverityHigh)}),
				WithSummary(Summary{Total: 2, Successful: 1, Failed: 1}),
			},
			wantKind: ResultKindFindings,
		},
		{
			name: "patch summary is independent of findings",
			opts: []ResultOption{
				WithPatchesApplied([]string{"a", "b"}),
				WithSummary(Summary{Total: 3, Successful: 2, Failed: 1}),
			},
			wantKind: ResultKindPatch,
		},
		{
			name:     "nothing attached",
			wantKind: ResultKindEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := BuildScanResult(true, ts, tt.opts...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, r.Kind())
		})
	}
}

func TestBuildScanResult_ValidatesFindings(t *testing.T) {
	bad := finding("b", "urgent")
	_, err := BuildScanResult(true, ts, WithFindings([]Vulnerability{finding("a", SeverityLow), bad}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSeverity)
	assert.Contains(t, err.Error(), "findings[1]")

	_, err = BuildScanResult(true, ts, WithFindings([]Vulnerability{finding("a", SeverityLow), finding("a", SeverityHigh)}))
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestBuildScanResult_MissingTimestamp(t *testing.T) {
	_, err := BuildScanResult(true, time.Time{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindMissingField, verr.Kind)
	assert.Equal(t, "timestamp", verr.Field)
}

func TestBuildScanResult_Immutable(t *testing.T) {
	findings := []Vulnerability{finding("a", SeverityLow)}
	patches := []string{"p1"}
	r, err := BuildScanResult(true, ts, WithFindings(findings), WithPatchesApplied(patches))
	require.NoError(t, err)

	findings[0].Severity = SeverityCritical
	patches[0] = "changed"
	got := r.Findings()
	got[0].ID = "mutated"

	assert.Equal(t, SeverityLow, r.Findings()[0].Severity)
	assert.Equal(t, "a", r.Findings()[0].ID)
	assert.Equal(t, []string{"p1"}, r.PatchesApplied())
}

func TestBuildScanResult_EmptyVersusAbsentFindings(t *testing.T) {
	empty, err := BuildScanResult(true, ts, WithFindings([]Vulnerability{}))
	require.NoError(t, err)
	assert.True(t, empty.HasFindings())
	assert.Equal(t, ResultKindFindings, empty.Kind())

	absent, err := BuildScanResult(true, ts)
	require.NoError(t, err)
	assert.False(t, absent.HasFindings())
	assert.Nil(t, absent.Findings())
}

func TestScanResultJSON(t *testing.T) {
	r, err := BuildScanResult(true, ts,
		WithFindings([]Vulnerability{finding("a", SeverityMedium)}),
		WithSummary(Summary{Total: 1, Successful: 1}),
	)
	require.NoError(t, err)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": true,
		"timestamp": "2024-03-14T09:30:00Z",
		"findings": [{"id":"a","type":"exposure","severity":"medium","description":"a description"}],
		"summary": {"total":1,"successful":1,"failed":0}
	}`, string(data))

	var decoded ScanResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r, &decoded)

	empty, err := BuildScanResult(true, ts, WithPatchesApplied([]string{}))
	require.NoError(t, err)
	data, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"timestamp":"2024-03-14T09:30:00Z","patchesApplied":[]}`, string(data))
}

func TestScanResultJSON_RejectsInvalid(t *testing.T) {
	var r ScanResult
	err := json.Unmarshal([]byte(`{"success": false, "timestamp": "2024-03-14T09:30:00Z"}`), &r)
	assert.ErrorIs(t, err, ErrMissingError)
}

func TestScanResultJSON_BuiltResultIsNotReplaced(t *testing.T) {
	r, err := BuildScanResult(true, ts, WithFindings([]Vulnerability{}))
	require.NoError(t, err)

	err = json.Unmarshal([]byte(`{"success":false,"timestamp":"2030-01-01T00:00:00Z","error":"boom"}`), r)
	require.Error(t, err)
	assert.True(t, r.Success())
	assert.Equal(t, ts, r.Timestamp())
	assert.True(t, r.HasFindings())
	_, ok := r.ErrorMessage()
	assert.False(t, ok)
}

func TestScanResult_ConcurrentReaders(t *testing.T) {
	r, err := BuildScanResult(true, ts,
		WithFindings([]Vulnerability{finding("a", SeverityLow), finding("b", SeverityCritical)}),
		WithSummary(Summary{Total: 2, Successful: 2}),
	)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			findings := r.Findings()
			findings[0].ID = "changed"
			_ = SortBySeverity(findings)
			_ = Summarize(r.Findings())
			_, _ = json.Marshal(r)
		}()
	}
	wg.Wait()

	assert.Equal(t, "a", r.Findings()[0].ID)
	assert.Equal(t, 2, Summarize(r.Findings()).Total)
}

func TestParseTimestamp(t *testing.T) {
	for _, raw := range []string{
		"2024-03-14T09:30:00Z",
		"2024-03-14T10:30:00+01:00",
		"2024-03-14T09:30:00.000Z",
		"2024-03-14T09:30:00",
	} {
		got, err := ParseTimestamp(raw)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(ts), raw)
	}

	_, err := ParseTimestamp("yesterday")
	assert.ErrorIs(t, err, ErrMissingField)
}
