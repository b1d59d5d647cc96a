// Package xcresults converts the test summaries of an Xcode result bundle into Allure 2 results.
package xcresults

import (
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/farcloser/xcresults/internal/xcjson"
)

const (
	assertionFailurePrefix = "Assertion Failure"
	testSkippedMarker      = "Test skipped"
	assertionFailureType   = "testAssertionFailure"

	// unrecognizedStatusMessage replaces the failure detail when the summary's own status was not understood.
	unrecognizedStatusMessage = "Unrecognized test status in the xcresult report: a step failed but the test status " +
		"could not be mapped"
)

// failureRecord is one entry of a summary's failureSummaries, referenced by uuid from activities.
type failureRecord struct {
	message     string
	timestamp   *int64
	attachments []Attachment
}

func indexFailures(summary xcjson.Node) map[string]failureRecord {
	index := make(map[string]failureRecord)

	for _, node := range summary.Values(keyFailureSummaries) {
		uuid, ok := node.String(keyUUID)
		if !ok {
			continue
		}

		record := failureRecord{attachments: attachmentsOf(node)}
		record.message, _ = node.String(keyMessage)

		if raw, ok := node.String(keyTimestamp); ok {
			record.timestamp = ParseDate(raw)
		}

		index[uuid] = record
	}

	return index
}

func (r failureRecord) step() *StepResult {
	step := &StepResult{Executable: newExecutable(r.message, StatusPassed)}
	step.fail(r.message)
	step.setTiming(r.timestamp, r.timestamp)
	step.Attachments = append(step.Attachments, r.attachments...)

	return step
}

// walk is the immutable state threaded through the activity descent.
type walk struct {
	result *TestResult
	// reported is the status the summary claimed, before any propagation.
	reported Status
	current  *Executable
	// path holds every ancestor of the activity being visited, current included.
	path     []*Executable
	failures map[string]failureRecord
}

func (w walk) child(step *Executable) walk {
	next := w
	next.current = step
	next.path = append(slices.Clone(w.path), step)

	return next
}

func (w walk) propagate(message string) {
	for _, node := range w.path {
		node.fail(message)
	}
}

// Convert builds the report tree of one test summary. It never fails: absent or invalid optional data
// is simply left out.
func Convert(summary xcjson.Node, meta RunMeta) *TestResult {
	result := NewTestResult()

	if name, ok := summary.String(keyName); ok {
		result.Name = name
	}

	if identifier, ok := summary.String(keyIdentifier); ok {
		result.FullName = HistoryID(meta.Suite(), identifier)
		result.HistoryID = result.FullName
	}

	if status, ok := summary.String(keyTestStatus); ok {
		result.Status = ParseTestStatus(status)
	}

	root := walk{
		result:   result,
		reported: result.Status,
		current:  &result.Executable,
		path:     []*Executable{&result.Executable},
		failures: indexFailures(summary),
	}

	for _, activity := range summary.Values(keyActivitySummaries) {
		root.visit(activity)
	}

	if result.Start == nil && meta.Start != nil {
		start := *meta.Start
		result.Start = &start
	}

	if result.Start != nil {
		if duration, ok := summary.Float(keyDuration); ok {
			stop := *result.Start + int64(math.Round(duration*1000))
			result.Stop = &stop
		} else if count := len(result.Steps); count > 0 && result.Steps[count-1].Stop != nil {
			stop := *result.Steps[count-1].Stop
			result.Stop = &stop
		}
	}

	// Run labels go last so directive labels keep their relative order; duplicates are kept.
	result.Labels = append(result.Labels, meta.Labels...)

	return result
}

func (w walk) visit(activity xcjson.Node) {
	title, ok := activityTitle(activity)
	if !ok {
		return
	}

	if applyDirective(w.result, activity, title) {
		return
	}

	step := &StepResult{Executable: newExecutable(title, StatusPassed)}

	startRaw, hasStart := activity.String(keyStart)
	finishRaw, hasFinish := activity.String(keyFinish)

	if hasStart && hasFinish {
		step.setTiming(ParseDate(startRaw), ParseDate(finishRaw))
	}

	if isFailure(activity, title) {
		message := title
		if w.reported == StatusUnset {
			message = unrecognizedStatusMessage
		}

		step.fail(message)
		w.propagate(message)
	}

	next := w.child(&step.Executable)

	for _, sub := range activity.Values(keySubactivities) {
		next.visit(sub)
	}

	step.Attachments = append(step.Attachments, attachmentsOf(activity)...)

	for _, ref := range activity.Values(keyFailureIDs) {
		id, _ := ref.Value()

		record, found := w.failures[id]
		if !found {
			slog.Debug("xcresults.Convert", "unknown failure summary", id, "step", title)

			continue
		}

		step.Steps = append(step.Steps, record.step())
		next.propagate(record.message)
	}

	w.current.Steps = append(w.current.Steps, step)
}

func activityTitle(activity xcjson.Node) (string, bool) {
	if title, ok := activity.String(keyTitle); ok {
		return title, true
	}

	return activity.String(keyActivityType)
}

func isFailure(activity xcjson.Node, title string) bool {
	if strings.HasPrefix(title, assertionFailurePrefix) || strings.Contains(title, testSkippedMarker) {
		return true
	}

	activityType, _ := activity.String(keyActivityType)

	return strings.Contains(activityType, assertionFailureType)
}
