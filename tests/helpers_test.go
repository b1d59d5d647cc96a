package tests_test

import (
	"fmt"
	"os"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"

	"github.com/farcloser/xcresults"
	"github.com/farcloser/xcresults/internal/output"
)

// resultsDir writes a small results directory: one passed and two failed tests sharing a message.
func resultsDir() (string, error) {
	dir, err := os.MkdirTemp("", "xcresults-digest-")
	if err != nil {
		return "", err
	}

	for index, status := range []xcresults.Status{xcresults.StatusPassed, xcresults.StatusFailed, xcresults.StatusFailed} {
		start := int64(1_700_000_000_000)
		stop := start + int64(100*(index+1))

		result := xcresults.NewTestResult()
		result.Name = fmt.Sprintf("test%d()", index)
		result.FullName = "AppTests/Suite/" + result.Name
		result.Status = status
		result.Start = &start
		result.Stop = &stop

		if status == xcresults.StatusFailed {
			result.StatusDetails = &xcresults.StatusDetails{Message: "XCTAssertTrue failed"}
		}

		if _, err = output.WriteResult(dir, result); err != nil {
			return "", err
		}
	}

	return dir, nil
}

// setupResults leaves the label empty on failure, which makes the digest command fail.
func setupResults(data test.Data, _ test.Helpers) {
	if dir, err := resultsDir(); err == nil {
		data.Labels().Set("dir", dir)
	}
}

func cleanupResults(data test.Data, _ test.Helpers) {
	if dir := data.Labels().Get("dir"); dir != "" {
		_ = os.RemoveAll(dir)
	}
}

// expectContains returns a comparator verifying the output contains every substring.
func expectContains(substrs ...string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		for _, substr := range substrs {
			if !strings.Contains(stdout, substr) {
				testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
				testing.Fail()
			}
		}
	}
}
