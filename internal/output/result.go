// Package output reads and writes Allure result files.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/farcloser/primordium/fault"
	"github.com/google/uuid"

	"github.com/farcloser/xcresults"
)

const (
	resultSuffix     = "-result.json"
	attachmentSuffix = "-attachment"
	filePermissions  = 0o644
)

// ResultFileName is the file name Allure expects for a result with that uuid.
func ResultFileName(id string) string {
	return id + resultSuffix
}

// AttachmentFileName returns a fresh, unique attachment file name with the given extension.
func AttachmentFileName(extension string) string {
	return uuid.NewString() + attachmentSuffix + "." + strings.TrimPrefix(extension, ".")
}

// WriteResult stores result in dir, assigning it a uuid first when it has none.
func WriteResult(dir string, result *xcresults.TestResult) (string, error) {
	if result.UUID == "" {
		result.UUID = uuid.NewString()
	}

	path := filepath.Join(dir, ResultFileName(result.UUID))

	return path, WriteResultFile(path, result)
}

// WriteResultFile (re)writes result at path.
func WriteResultFile(path string, result *xcresults.TestResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result %s: %w", result.UUID, err)
	}

	if err = os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// ReadResult loads one result file.
func ReadResult(path string) (*xcresults.TestResult, error) {
	data, err := os.ReadFile(path) //nolint:gosec // result files live in a user chosen directory
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	result := xcresults.NewTestResult()
	if err = json.Unmarshal(data, result); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fault.ErrInvalidJSON, path, err)
	}

	return result, nil
}

// ResultPaths lists the result files of dir, sorted.
func ResultPaths(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+resultSuffix))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	slices.Sort(paths)

	return paths, nil
}

// ReadResults loads every result file of dir, keyed by path.
func ReadResults(dir string) (map[string]*xcresults.TestResult, error) {
	paths, err := ResultPaths(dir)
	if err != nil {
		return nil, err
	}

	results := make(map[string]*xcresults.TestResult, len(paths))

	for _, path := range paths {
		result, err := ReadResult(path)
		if err != nil {
			return nil, err
		}

		results[path] = result
	}

	return results, nil
}

// Duration is stop - start in milliseconds, or -1 when the result is not fully timed.
func Duration(result *xcresults.TestResult) int64 {
	if result.Start == nil || result.Stop == nil {
		return -1
	}

	return *result.Stop - *result.Start
}

// ResultToMap converts a result into the map structure used for console and JSON output.
func ResultToMap(result *xcresults.TestResult) map[string]any {
	status := string(result.Status)
	if status == "" {
		status = "unknown"
	}

	meta := map[string]any{
		"name":       result.Name,
		"full_name":  result.FullName,
		"history_id": result.HistoryID,
		"status":     status,
	}

	if result.StatusDetails != nil && result.StatusDetails.Message != "" {
		meta["message"] = result.StatusDetails.Message
	}

	if duration := Duration(result); duration >= 0 {
		meta["duration_ms"] = duration
	}

	steps := 0
	attachments := 0

	result.Walk(func(node *xcresults.Executable) {
		steps++
		attachments += len(node.Attachments)
	})

	// The walk counts the result itself.
	meta["steps"] = steps - 1
	meta["attachments"] = attachments

	if len(result.Labels) > 0 {
		labels := make([]any, 0, len(result.Labels))
		for _, label := range result.Labels {
			labels = append(labels, label.Name+"="+label.Value)
		}

		meta["labels"] = labels
	}

	return meta
}
