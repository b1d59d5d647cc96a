package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/xcresults"
	"github.com/farcloser/xcresults/internal/output"
)

const topMessages = 5

var errDigestArgs = errors.New("expected exactly one argument: path to an Allure results directory")

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Summarize a directory of exported Allure results",
		ArgsUsage: "<results-dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "status",
				Usage: "List the tests in one status: passed, failed, skipped, unknown",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format of the --status listing: console, json, markdown",
				Value:   "console",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errDigestArgs
			}

			return runDigest(cmd.Args().First(), cmd.String("status"), cmd.String("format"))
		},
	}
}

func runDigest(dir, statusFilter, formatName string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("opening results: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", errDigestArgs, dir)
	}

	results, err := output.ReadResults(dir)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(results))
	for path := range results {
		paths = append(paths, path)
	}

	slices.Sort(paths)

	ordered := make([]*xcresults.TestResult, 0, len(paths))
	for _, path := range paths {
		ordered = append(ordered, results[path])
	}

	printDigest(ordered)

	if statusFilter != "" {
		return printStatusDetail(ordered, statusFilter, formatName)
	}

	return nil
}

type messageCount struct {
	message string
	count   int
}

func printDigest(results []*xcresults.TestResult) {
	statusDist := map[string]int{}
	messages := map[string]int{}
	durations := make([]float64, 0, len(results))

	for _, result := range results {
		statusDist[statusLabel(result.Status)]++

		if duration := output.Duration(result); duration >= 0 {
			durations = append(durations, float64(duration))
		}

		if result.Status == xcresults.StatusFailed && result.StatusDetails != nil {
			messages[result.StatusDetails.Message]++
		}
	}

	fmt.Println("=== Allure Results Digest ===")
	fmt.Println()
	fmt.Printf("Total tests:   %d\n", len(results))
	fmt.Println()

	fmt.Println("--- Status ---")
	fmt.Printf("  Passed:    %d\n", statusDist["passed"])
	fmt.Printf("  Failed:    %d\n", statusDist["failed"])
	fmt.Printf("  Skipped:   %d\n", statusDist["skipped"])
	fmt.Printf("  Unknown:   %d\n", statusDist["unknown"])
	fmt.Println()

	fmt.Println("--- Duration ---")

	if len(durations) == 0 {
		fmt.Println("  no timed tests")
	} else {
		slices.Sort(durations)

		fmt.Printf("  Timed:     %d\n", len(durations))
		fmt.Printf("  Mean:      %.0f ms\n", stat.Mean(durations, nil))

		if len(durations) > 1 {
			fmt.Printf("  Stddev:    %.0f ms\n", stat.StdDev(durations, nil))
		}

		fmt.Printf("  Median:    %.0f ms\n", stat.Quantile(0.5, stat.Empirical, durations, nil))
		fmt.Printf("  P90:       %.0f ms\n", stat.Quantile(0.9, stat.Empirical, durations, nil))
		fmt.Printf("  Max:       %.0f ms\n", durations[len(durations)-1])
	}

	fmt.Println()

	fmt.Println("--- Top Failure Messages ---")

	counts := make([]messageCount, 0, len(messages))
	for message, count := range messages {
		counts = append(counts, messageCount{message: message, count: count})
	}

	slices.SortFunc(counts, func(a, b messageCount) int {
		return cmp.Or(b.count-a.count, cmp.Compare(a.message, b.message))
	})

	if len(counts) == 0 {
		fmt.Println("  none")
	}

	for _, entry := range counts[:min(len(counts), topMessages)] {
		fmt.Printf("  %4d  %s\n", entry.count, entry.message)
	}
}

func printStatusDetail(results []*xcresults.TestResult, status, formatName string) error {
	fmt.Println()

	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var data []*format.Data

	for _, result := range results {
		if statusLabel(result.Status) != status {
			continue
		}

		data = append(data, &format.Data{Object: result.FullName, Meta: output.ResultToMap(result)})
	}

	if len(data) == 0 {
		fmt.Printf("No tests in status %s\n", status)

		return nil
	}

	fmt.Printf("=== %s: %d tests ===\n\n", status, len(data))

	return formatter.PrintAll(data, os.Stdout) //nolint:wrapcheck
}
