// Package analysis validates batches of scan result payloads and aggregates
// what they report.
package analysis

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/northcutted/scanmodel/pkg/parser"
	"github.com/northcutted/scanmodel/pkg/types"
)

// VerifyFunc checks a payload before it is decoded, e.g. its signature.
type VerifyFunc func(ctx context.Context, path string) error

// Options tune ValidateFiles.
type Options struct {
	// Concurrency caps the number of payloads processed at once.
	// Zero means GOMAXPROCS.
	Concurrency int
	// Verify runs before decoding when set.
	Verify VerifyFunc
	// Lenient accepts loosely typed values such as "true" or "3".
	Lenient bool
}

// FileReport is the outcome for one payload. Exactly one of Result and Err
// is set.
type FileReport struct {
	Path   string
	Result *types.ScanResult
	Err    error
}

// ValidateFiles decodes and validates every payload. Invalid payloads do not
// stop the batch; their error lands in the matching FileReport. Reports come
// back in the order of paths. The returned error is only set when ctx ends
// before the batch is done.
func ValidateFiles(ctx context.Context, paths []string, opts Options) ([]FileReport, error) {
	reports := make([]FileReport, len(paths))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = validateFile(gctx, path, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return reports, fmt.Errorf("validation interrupted: %w", err)
	}
	return reports, nil
}

func validateFile(ctx context.Context, path string, opts Options) FileReport {
	report := FileReport{Path: path}

	if opts.Verify != nil {
		if err := opts.Verify(ctx, path); err != nil {
			report.Err = fmt.Errorf("verification failed: %w", err)
			log.Warn().Str("path", path).Err(err).Msg("payload rejected")
			return report
		}
	}

	decode := parser.ParseResultFile
	if opts.Lenient {
		decode = parser.LooseResultFile
	}
	result, err := decode(path)
	if err != nil {
		report.Err = err
		log.Debug().Str("path", path).Err(err).Msg("payload invalid")
		return report
	}

	report.Result = result
	log.Debug().Str("path", path).Str("kind", string(result.Kind())).Msg("payload valid")
	return report
}
