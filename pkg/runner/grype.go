package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/northcutted/scanmodel/pkg/types"
)

// GrypeRunner runs 'grype <target> -o json'
type GrypeRunner struct {
	// Timeout bounds one grype invocation. Zero means TimeoutScan.
	Timeout time.Duration

	binary string
	now    func() time.Time
}

// Name returns the display name for this runner.
func (r *GrypeRunner) Name() string { return "grype" }

// IsAvailable checks whether the grype binary is installed.
func (r *GrypeRunner) IsAvailable() bool {
	if path, err := lookupTool("grype"); err == nil {
		r.binary = path
		return true
	}
	return false
}

// Run executes grype against the params target and converts its report.
// Grype only reports, so a patch request is refused.
func (r *GrypeRunner) Run(ctx context.Context, params types.ScanParams) (*types.ScanResult, error) {
	params, err := types.ValidateScanParams(params)
	if err != nil {
		return nil, err
	}
	if params.Action != nil && *params.Action == types.ActionPatch {
		return nil, fmt.Errorf("grype cannot apply patches")
	}
	if r.binary == "" {
		if !r.IsAvailable() {
			return nil, fmt.Errorf("grype not found")
		}
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = TimeoutScan
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	cmd := exec.CommandContext(runCtx, r.binary, params.Target, "-o", "json")
	output, err := runCommand(cmd)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if r.now != nil {
		now = r.now
	}
	return parseGrypeOutput(output, now)
}

// parseGrypeOutput converts grype's JSON into a report-style ScanResult.
// Matches are kept in the order grype lists them; a vulnerability matched
// in several packages becomes one finding listing every affected package.
func parseGrypeOutput(output []byte, now func() time.Time) (*types.ScanResult, error) {
	var grypeOutput struct {
		Descriptor struct {
			Timestamp string `json:"timestamp"`
		} `json:"descriptor"`
		Matches []struct {
			Vulnerability struct {
				ID          string `json:"id"`
				Severity    string `json:"severity"`
				Description string `json:"description"`
				Fix         struct {
					Versions []string `json:"versions"`
					State    string   `json:"state"`
				} `json:"fix"`
			} `json:"vulnerability"`
			RelatedVulnerabilities []grypeRelated `json:"relatedVulnerabilities"`
			Artifact struct {
				Name    string `json:"name"`
				Version string `json:"version"`
				Type    string `json:"type"`
			} `json:"artifact"`
		} `json:"matches"`
	}

	if err := json.Unmarshal(output, &grypeOutput); err != nil {
		return nil, fmt.Errorf("failed to unmarshal grype output: %w", err)
	}

	scanTime := now()
	if grypeOutput.Descriptor.Timestamp != "" {
		if parsed, err := types.ParseTimestamp(grypeOutput.Descriptor.Timestamp); err == nil {
			scanTime = parsed
		} else {
			log.Debug().Err(err).Msg("failed to parse grype timestamp")
		}
	}

	findings := make([]types.Vulnerability, 0, len(grypeOutput.Matches))
	index := make(map[string]int)

	for _, match := range grypeOutput.Matches {
		vuln := match.Vulnerability
		pkg := match.Artifact.Name
		if match.Artifact.Version != "" {
			pkg += "@" + match.Artifact.Version
		}
		if strings.TrimSpace(vuln.ID) == "" {
			log.Warn().Str("package", pkg).Msg("skipping grype match without vulnerability id")
			continue
		}

		if i, seen := index[vuln.ID]; seen {
			impact := *findings[i].Impact + ", " + pkg
			findings[i].Impact = &impact
			continue
		}

		sev, err := types.ParseSeverity(vuln.Severity)
		if err != nil {
			log.Warn().Str("id", vuln.ID).Str("severity", vuln.Severity).Msg("unrecognized severity, treating as low")
			sev = types.SeverityLow
		}

		description := vuln.Description
		if description == "" {
			for _, rel := range match.RelatedVulnerabilities {
				if rel.Description != "" {
					description = rel.Description
					break
				}
			}
		}
		if description == "" {
			description = fmt.Sprintf("%s in %s", vuln.ID, pkg)
		}

		kind := match.Artifact.Type
		if kind == "" {
			kind = "package"
		}

		v := types.Vulnerability{
			ID:          vuln.ID,
			Type:        kind,
			Severity:    sev,
			Description: description,
			Impact:      types.Ptr("affects " + pkg),
		}
		if len(vuln.Fix.Versions) > 0 {
			v.Recommendation = types.Ptr(fmt.Sprintf("upgrade %s to %s", match.Artifact.Name, strings.Join(vuln.Fix.Versions, " or ")))
		}
		if cve := cveOf(vuln.ID, match.RelatedVulnerabilities); cve != "" {
			v.CVE = &cve
		}

		index[vuln.ID] = len(findings)
		findings = append(findings, v)
	}

	return types.BuildScanResult(true, scanTime, types.WithFindings(findings))
}

type grypeRelated struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// cveOf prefers the match id and falls back to a related CVE alias.
func cveOf(id string, related []grypeRelated) string {
	if strings.HasPrefix(id, "CVE-") {
		return id
	}
	for _, rel := range related {
		if strings.HasPrefix(rel.ID, "CVE-") {
			return rel.ID
		}
	}
	return ""
}
