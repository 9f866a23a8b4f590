package parser

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/northcutted/scanmodel/pkg/types"
)

// ReadFields decodes a JSON or YAML document into a generic map for the
// loose constructors below. An empty document gives an empty map.
func ReadFields(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	fields := map[string]any{}
	// JSON is valid YAML, so one decoder covers both
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return fields, nil
}

// LooseResultFile reads a result whose values may be loosely typed.
func LooseResultFile(path string) (*types.ScanResult, error) {
	fields, err := ReadFields(path)
	if err != nil {
		return nil, err
	}
	return ResultFromMap(fields)
}

// Known keys per object; anything else is rejected like the strict decoder
// does.
var (
	paramsKeys        = keySet("target", "action", "scope", "depth")
	resultKeys        = keySet("success", "timestamp", "error", "findings", "patchesApplied", "summary")
	vulnerabilityKeys = keySet("id", "type", "severity", "description", "recommendation", "impact", "cve")
	summaryKeys       = keySet("total", "successful", "failed")
)

func keySet(keys ...string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

func checkKeys(m map[string]any, known map[string]bool) error {
	for key := range m {
		if !known[key] {
			return fmt.Errorf("unknown field %q", key)
		}
	}
	return nil
}

// looseInt reads a count. Strings are parsed as base-10 only, so "010" is
// ten; other values go through cast.
func looseInt(v any) (int, error) {
	if s, ok := v.(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("%q is not a decimal integer", s)
		}
		return n, nil
	}
	return cast.ToIntE(v)
}

// ParamsFromMap builds scan params from loosely typed input such as form
// values or a generic map produced by another decoder. Unknown keys are
// rejected.
func ParamsFromMap(m map[string]any) (types.ScanParams, error) {
	var p types.ScanParams

	if err := checkKeys(m, paramsKeys); err != nil {
		return types.ScanParams{}, err
	}

	if v, ok := m["target"]; ok && v != nil {
		s, err := cast.ToStringE(v)
		if err != nil {
			return types.ScanParams{}, fmt.Errorf("target: %w", err)
		}
		p.Target = s
	}
	if s, ok, err := optionalString(m, "action"); err != nil {
		return types.ScanParams{}, err
	} else if ok {
		p.Action = types.Ptr(types.Action(s))
	}
	if s, ok, err := optionalString(m, "scope"); err != nil {
		return types.ScanParams{}, err
	} else if ok {
		p.Scope = types.Ptr(types.Scope(s))
	}
	if s, ok, err := optionalString(m, "depth"); err != nil {
		return types.ScanParams{}, err
	} else if ok {
		p.Depth = types.Ptr(types.Depth(s))
	}

	return types.ValidateScanParams(p)
}

// ResultFromMap builds a scan result from loosely typed input. Booleans and
// counts given as strings ("true", "3") are accepted.
func ResultFromMap(m map[string]any) (*types.ScanResult, error) {
	var w types.ScanResultWire

	if err := checkKeys(m, resultKeys); err != nil {
		return nil, err
	}

	if v, ok := m["success"]; ok {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return nil, fmt.Errorf("success: %w", err)
		}
		w.Success = b
	}

	switch v := m["timestamp"].(type) {
	case nil:
	case time.Time:
		w.Timestamp = v.Format(time.RFC3339Nano)
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("timestamp: %w", err)
		}
		w.Timestamp = s
	}

	if s, ok, err := optionalString(m, "error"); err != nil {
		return nil, err
	} else if ok {
		w.Error = &s
	}

	if raw, ok := m["findings"]; ok && raw != nil {
		items, err := cast.ToSliceE(raw)
		if err != nil {
			return nil, fmt.Errorf("findings: %w", err)
		}
		findings := make([]types.Vulnerability, 0, len(items))
		for i, item := range items {
			fm, err := cast.ToStringMapE(item)
			if err != nil {
				return nil, fmt.Errorf("findings[%d]: %w", i, err)
			}
			v, err := vulnerabilityFromMap(fm)
			if err != nil {
				return nil, fmt.Errorf("findings[%d]: %w", i, err)
			}
			findings = append(findings, v)
		}
		w.Findings = &findings
	}

	if raw, ok := m["patchesApplied"]; ok && raw != nil {
		patches, err := cast.ToStringSliceE(raw)
		if err != nil {
			return nil, fmt.Errorf("patchesApplied: %w", err)
		}
		if patches == nil {
			patches = []string{}
		}
		w.PatchesApplied = &patches
	}

	if raw, ok := m["summary"]; ok && raw != nil {
		sm, err := cast.ToStringMapE(raw)
		if err != nil {
			return nil, fmt.Errorf("summary: %w", err)
		}
		if err := checkKeys(sm, summaryKeys); err != nil {
			return nil, fmt.Errorf("summary: %w", err)
		}
		var s types.Summary
		for key, dst := range map[string]*int{"total": &s.Total, "successful": &s.Successful, "failed": &s.Failed} {
			n, err := looseInt(sm[key])
			if err != nil {
				return nil, fmt.Errorf("summary.%s: %w", key, err)
			}
			*dst = n
		}
		w.Summary = &s
	}

	return w.Build()
}

func vulnerabilityFromMap(m map[string]any) (types.Vulnerability, error) {
	var v types.Vulnerability
	if err := checkKeys(m, vulnerabilityKeys); err != nil {
		return types.Vulnerability{}, err
	}
	for key, dst := range map[string]*string{"id": &v.ID, "type": &v.Type, "description": &v.Description} {
		s, _, err := optionalString(m, key)
		if err != nil {
			return types.Vulnerability{}, err
		}
		*dst = s
	}

	sev, _, err := optionalString(m, "severity")
	if err != nil {
		return types.Vulnerability{}, err
	}
	v.Severity = types.Severity(sev)

	for key, dst := range map[string]**string{"recommendation": &v.Recommendation, "impact": &v.Impact, "cve": &v.CVE} {
		s, ok, err := optionalString(m, key)
		if err != nil {
			return types.Vulnerability{}, err
		}
		if ok {
			*dst = &s
		}
	}
	return v, nil
}

// optionalString returns the string value of key and whether it was present.
func optionalString(m map[string]any, key string) (string, bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", key, err)
	}
	return s, true, nil
}
