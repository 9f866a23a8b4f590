// Package parser decodes scan request and scan result payloads handed over
// by external collaborators and runs them through model validation.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/northcutted/scanmodel/pkg/types"
)

// Format is the encoding of a payload.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the payload format from a file extension.
// Anything that is not .yaml/.yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// decode unmarshals data into out, rejecting unknown fields so that typos in
// hand-written payloads do not silently drop data.
func decode(data []byte, format Format, out any) error {
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(out); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("empty yaml payload")
			}
			return fmt.Errorf("failed to decode yaml payload: %w", err)
		}
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(out); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("empty json payload")
			}
			return fmt.Errorf("failed to decode json payload: %w", err)
		}
	default:
		return fmt.Errorf("unsupported payload format %q", format)
	}
	return nil
}

// DecodeParams decodes and validates a scan request.
func DecodeParams(data []byte, format Format) (types.ScanParams, error) {
	var p types.ScanParams
	if err := decode(data, format, &p); err != nil {
		return types.ScanParams{}, err
	}
	return types.ValidateScanParams(p)
}

// DecodeResult decodes and validates a scan result envelope.
func DecodeResult(data []byte, format Format) (*types.ScanResult, error) {
	var w types.ScanResultWire
	if err := decode(data, format, &w); err != nil {
		return nil, err
	}
	return w.Build()
}

// ParseParamsFile reads a scan request from disk.
func ParseParamsFile(path string) (types.ScanParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ScanParams{}, fmt.Errorf("failed to read params file: %w", err)
	}
	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("decoding scan params")
	return DecodeParams(data, FormatFromPath(path))
}

// ParseResultFile reads a scan result from disk.
func ParseResultFile(path string) (*types.ScanResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}
	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("decoding scan result")
	return DecodeResult(data, FormatFromPath(path))
}
