//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/xcresults"
	"github.com/farcloser/xcresults/internal/carousel"
	"github.com/farcloser/xcresults/internal/export"
	"github.com/farcloser/xcresults/internal/integration/xcodebuild"
	"github.com/farcloser/xcresults/internal/integration/xcresulttool"
)

const (
	legacyAuto = "auto"
	legacyOn   = "on"
	legacyOff  = "off"
)

var (
	errExportArgs = errors.New("expected pairs of arguments: <input> <output> [<input> <output> ...]")
	errLegacy     = errors.New("invalid --legacy value, expected auto, on or off")
	errNoBundle   = errors.New("no xcresult bundle matches")
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export xcresult bundles into Allure result directories",
		ArgsUsage: "<input> <output> [<input> <output> ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "legacy",
				Usage:   "Pass --legacy to xcresulttool: auto (Xcode 16 and later), on, off",
				Value:   legacyAuto,
				Sources: cli.EnvVars("XCRESULTS_LEGACY"),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "Bound every external tool call (0 waits forever)",
				Sources: cli.EnvVars("XCRESULTS_TIMEOUT"),
			},
			&cli.BoolFlag{
				Name:    "clean",
				Usage:   "Remove the output directory before exporting into it",
				Sources: cli.EnvVars("XCRESULTS_CLEAN"),
			},
			&cli.BoolFlag{
				Name:    "carousel",
				Usage:   "Attach an HTML carousel of the JPEG screenshots to every test",
				Sources: cli.EnvVars("XCRESULTS_CAROUSEL"),
			},
			&cli.StringFlag{
				Name:    "carousel-template",
				Usage:   "Use this html/template file for the carousel instead of the built-in one",
				Sources: cli.EnvVars("XCRESULTS_CAROUSEL_TEMPLATE"),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
				Sources: cli.EnvVars("XCRESULTS_FORMAT"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 || cmd.NArg()%2 != 0 {
				return fmt.Errorf("%w: got %d", errExportArgs, cmd.NArg())
			}

			formatter, err := format.GetFormatter(cmd.String("format"))
			if err != nil {
				return err
			}

			pairs, err := expandPairs(cmd.Args().Slice())
			if err != nil {
				return err
			}

			legacy, err := resolveLegacy(ctx, cmd.String("legacy"), xcodebuild.DetectLegacy)
			if err != nil {
				return err
			}

			opts := export.Options{
				Clean:   cmd.Bool("clean"),
				Timeout: cmd.Duration("timeout"),
			}

			if cmd.Bool("carousel") {
				processor, err := carousel.New(cmd.String("carousel-template"))
				if err != nil {
					return err
				}

				opts.PostProcessors = append(opts.PostProcessors, processor)
			}

			tool := xcresulttool.Tool{Legacy: legacy, Timeout: cmd.Duration("timeout")}

			reports, runErr := runExports(ctx, toolOpener{tool: tool}, pairs, opts)

			data := make([]*format.Data, 0, len(reports))
			for _, report := range reports {
				data = append(data, &format.Data{Object: report.Input, Meta: reportToMap(report)})
			}

			if len(data) > 0 {
				if err := formatter.PrintAll(data, os.Stdout); err != nil {
					return err
				}
			}

			return runErr
		},
	}
}

// exportPair is one bundle and the directory it exports into.
type exportPair struct {
	input  string
	output string
	// first is set on the first bundle of each output, the only one --clean applies to.
	first bool
}

// expandPairs resolves every input pattern. A pattern matching nothing is an error.
func expandPairs(args []string) ([]exportPair, error) {
	var pairs []exportPair

	seen := map[string]bool{}

	for index := 0; index+1 < len(args); index += 2 {
		pattern, outputDir := args[index], args[index+1]

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", errNoBundle, pattern)
		}

		slices.Sort(matches)

		key := filepath.Clean(outputDir)

		for _, match := range matches {
			pairs = append(pairs, exportPair{input: match, output: outputDir, first: !seen[key]})
			seen[key] = true
		}
	}

	return pairs, nil
}

// resolveLegacy decides the xcresulttool mode once for the whole run.
func resolveLegacy(ctx context.Context, value string, detect func(context.Context) bool) (bool, error) {
	switch value {
	case legacyAuto:
		return detect(ctx), nil
	case legacyOn:
		return true, nil
	case legacyOff:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", errLegacy, value)
	}
}

// bundleOpener binds a bundle path to the tool reading it.
type bundleOpener interface {
	Open(path string) (export.Bundle, error)
}

type toolOpener struct {
	tool xcresulttool.Tool
}

func (o toolOpener) Open(path string) (export.Bundle, error) {
	bundle, err := o.tool.Open(path)
	if err != nil {
		return nil, err
	}

	return bundle, nil
}

// runExports processes the pairs in order. A failing bundle is logged and does not stop the others.
func runExports(
	ctx context.Context,
	opener bundleOpener,
	pairs []exportPair,
	opts export.Options,
) ([]*export.Report, error) {
	var (
		reports []*export.Report
		errs    []error
	)

	for _, pair := range pairs {
		bundle, err := opener.Open(pair.input)
		if err != nil {
			slog.Error("cannot open bundle", "input", pair.input, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", pair.input, err))

			continue
		}

		pairOpts := opts
		pairOpts.Clean = opts.Clean && pair.first

		report, err := export.Run(ctx, bundle, pair.output, pairOpts)
		if err != nil {
			slog.Error("export failed", "input", pair.input, "output", pair.output, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", pair.input, err))

			continue
		}

		slog.Info("exported", "input", pair.input, "tests", report.Tests, "attachments", report.Attachments)

		reports = append(reports, report)
	}

	return reports, errors.Join(errs...)
}

func reportToMap(report *export.Report) map[string]any {
	meta := map[string]any{
		"output":      report.Output,
		"tests":       report.Tests,
		"attachments": report.Attachments,
		"duration":    report.Duration.Round(time.Millisecond).String(),
	}

	if report.FailedAttachments > 0 {
		meta["failed_attachments"] = report.FailedAttachments
	}

	statuses := map[string]any{}

	for _, status := range []xcresults.Status{
		xcresults.StatusPassed,
		xcresults.StatusFailed,
		xcresults.StatusSkipped,
		xcresults.StatusUnset,
	} {
		if count := report.Statuses[status]; count > 0 {
			statuses[statusLabel(status)] = count
		}
	}

	meta["statuses"] = statuses

	return meta
}

func statusLabel(status xcresults.Status) string {
	if status == xcresults.StatusUnset {
		return "unknown"
	}

	return string(status)
}
