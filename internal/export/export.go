// Package export turns one xcresult bundle into a directory of Allure results.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/farcloser/xcresults"
	"github.com/farcloser/xcresults/internal/integration/sips"
	"github.com/farcloser/xcresults/internal/output"
	"github.com/farcloser/xcresults/internal/xcjson"
)

const dirPermissions = 0o755

var (
	errNotDirectory = errors.New("output path exists and is not a directory")
	errUnsafeName   = errors.New("attachment name escapes the output directory")
)

// Bundle is the subset of an xcresult bundle the exporter needs.
type Bundle interface {
	xcresults.Resolver
	Path() string
	Root(ctx context.Context) (xcjson.Node, error)
	Export(ctx context.Context, id, outputPath string) error
}

// PostProcessor rewrites results once every result and attachment of a bundle is on disk.
type PostProcessor interface {
	Process(outputDir string, results map[string]*xcresults.TestResult)
}

// ConvertFunc turns an exported HEIC file into the JPEG the results reference and returns its path.
type ConvertFunc func(ctx context.Context, heicPath string) (string, error)

// Options configures a run.
type Options struct {
	// Clean removes the output directory before exporting.
	Clean bool
	// Timeout bounds each HEIC conversion.
	Timeout time.Duration
	// ConvertHEIC overrides the sips conversion.
	ConvertHEIC    ConvertFunc
	PostProcessors []PostProcessor
}

// Report summarizes one exported bundle.
type Report struct {
	Input  string
	Output string
	Tests  int
	// Attachments counts the payloads written, FailedAttachments the ones that could not be.
	Attachments       int
	FailedAttachments int
	Statuses          map[xcresults.Status]int
	Duration          time.Duration
}

// Run exports every test of bundle into outputDir.
// Attachment failures are logged and counted. Anything else aborts the bundle.
func Run(ctx context.Context, bundle Bundle, outputDir string, opts Options) (*Report, error) {
	began := time.Now()

	report := &Report{
		Input:    bundle.Path(),
		Output:   outputDir,
		Statuses: map[xcresults.Status]int{},
	}

	if err := prepare(outputDir, opts.Clean); err != nil {
		return nil, err
	}

	root, err := bundle.Root(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", bundle.Path(), err)
	}

	summaries, err := xcresults.CollectSummaries(ctx, root, bundle)
	if err != nil {
		return nil, err
	}

	slog.Info("exporting", "input", bundle.Path(), "tests", len(summaries), "output", outputDir)

	convert := opts.ConvertHEIC
	if convert == nil {
		convert = func(ctx context.Context, heicPath string) (string, error) {
			return sips.ToJPEG(ctx, opts.Timeout, heicPath)
		}
	}

	results := make(map[string]*xcresults.TestResult, len(summaries))

	for _, summary := range summaries {
		result := xcresults.Convert(summary.Node, summary.Meta)

		path, err := output.WriteResult(outputDir, result)
		if err != nil {
			return nil, err
		}

		results[path] = result
		report.Tests++
		report.Statuses[result.Status]++

		written, failed := exportAttachments(ctx, bundle, outputDir, xcresults.Correlate(result, summary.Node), convert)
		report.Attachments += written
		report.FailedAttachments += failed
	}

	for _, processor := range opts.PostProcessors {
		processor.Process(outputDir, results)
	}

	report.Duration = time.Since(began)

	return report, nil
}

func prepare(outputDir string, clean bool) error {
	if clean {
		if err := os.RemoveAll(outputDir); err != nil {
			return fmt.Errorf("cleaning %s: %w", outputDir, err)
		}
	}

	if info, err := os.Stat(outputDir); err == nil && !info.IsDir() {
		return fmt.Errorf("%w: %s", errNotDirectory, outputDir)
	}

	if err := os.MkdirAll(outputDir, dirPermissions); err != nil {
		return fmt.Errorf("creating %s: %w", outputDir, err)
	}

	return nil
}

// exportAttachments writes every payload of tasks, keyed by output file name.
func exportAttachments(
	ctx context.Context,
	bundle Bundle,
	outputDir string,
	tasks map[string]xcresults.Payload,
	convert ConvertFunc,
) (written, failed int) {
	sources := make([]string, 0, len(tasks))
	for source := range tasks {
		sources = append(sources, source)
	}

	slices.Sort(sources)

	for _, source := range sources {
		if err := exportAttachment(ctx, bundle, outputDir, source, tasks[source], convert); err != nil {
			slog.Warn("cannot export attachment", "source", source, "id", tasks[source].ID, "error", err)

			failed++

			continue
		}

		written++
	}

	return written, failed
}

func exportAttachment(
	ctx context.Context,
	bundle Bundle,
	outputDir, source string,
	payload xcresults.Payload,
	convert ConvertFunc,
) error {
	if !filepath.IsLocal(source) || !filepath.IsLocal(payload.Filename) {
		return fmt.Errorf("%w: %q", errUnsafeName, payload.Filename)
	}

	target := filepath.Join(outputDir, source)

	if !xcresults.IsHEIC(payload.Filename) {
		return bundle.Export(ctx, payload.ID, target)
	}

	// HEIC payloads land under their own extension first, then get converted to the referenced JPEG.
	heicPath := strings.TrimSuffix(target, filepath.Ext(target)) + filepath.Ext(payload.Filename)
	if err := bundle.Export(ctx, payload.ID, heicPath); err != nil {
		return err
	}

	converted, err := convert(ctx, heicPath)
	if err != nil {
		return err
	}

	if converted != target {
		if err = os.Rename(converted, target); err != nil {
			return fmt.Errorf("moving %s: %w", converted, err)
		}
	}

	return nil
}
