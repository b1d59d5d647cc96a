package xcresults

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/farcloser/xcresults/internal/xcjson"
)

// Resolver fetches the document an xcresult reference id points at.
type Resolver interface {
	Resolve(ctx context.Context, id string) (xcjson.Node, error)
}

// TestRun is one action of the bundle that ran tests.
type TestRun struct {
	TestsRef string
	Meta     RunMeta
}

// Summary pairs a test summary with the meta of the run it belongs to.
type Summary struct {
	Node xcjson.Node
	Meta RunMeta
}

// TestRuns extracts one entry per action carrying a tests reference, in document order.
func TestRuns(root xcjson.Node) []TestRun {
	var runs []TestRun

	for _, action := range root.Values(keyActions) {
		ref, ok := action.Get(keyActionResult).Ref(keyTestsRef)
		if !ok {
			continue
		}

		meta := RunMeta{}

		if destination, ok := action.Get(keyRunDestination).String(keyDisplayName); ok {
			meta = meta.WithLabel(LabelRunDestination, destination)
		}

		if started, ok := action.String(keyStartedTime); ok {
			meta.Start = ParseDate(started)
		}

		runs = append(runs, TestRun{TestsRef: ref, Meta: meta})
	}

	return runs
}

// Discover flattens a test hierarchy into its leaf summaries, depth-first and in source order.
// Repeated identifiers are kept: each is a distinct physical run of the test.
func Discover(ctx context.Context, test xcjson.Node, resolver Resolver) ([]xcjson.Node, error) {
	var summaries []xcjson.Node

	if ref, ok := test.Ref(keySummaryRef); ok {
		summary, err := resolver.Resolve(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("resolving summary %s: %w", ref, err)
		}

		summaries = append(summaries, summary)
	} else if test.TypeName() == typeTestMetadata {
		summaries = append(summaries, test)
	}

	for _, sub := range test.Values(keySubtests) {
		found, err := Discover(ctx, sub, resolver)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, found...)
	}

	return summaries, nil
}

// CollectSummaries resolves every test run of a bundle root and returns each discovered test with
// its run meta.
func CollectSummaries(ctx context.Context, root xcjson.Node, resolver Resolver) ([]Summary, error) {
	var collected []Summary

	for _, run := range TestRuns(root) {
		tests, err := resolver.Resolve(ctx, run.TestsRef)
		if err != nil {
			return nil, fmt.Errorf("resolving tests %s: %w", run.TestsRef, err)
		}

		for _, plan := range tests.Values(keySummaries) {
			for _, testable := range plan.Values(keyTestableSummaries) {
				meta := run.Meta
				if target, ok := testable.String(keyTargetName); ok {
					meta = meta.WithLabel(LabelSuite, target)
				}

				nodes := testable.Values(keyTests)
				if len(nodes) == 0 {
					name, _ := testable.String(keyName)
					slog.Info("no tests found", "testable", name)

					continue
				}

				for _, node := range nodes {
					summaries, err := Discover(ctx, node, resolver)
					if err != nil {
						return nil, err
					}

					for _, summary := range summaries {
						collected = append(collected, Summary{Node: summary, Meta: meta})
					}
				}
			}
		}
	}

	return collected, nil
}
