package xcresults

import (
	"regexp"
	"strings"

	"github.com/farcloser/xcresults/internal/xcjson"
)

// directive turns a specially titled activity into result metadata instead of a step.
type directive struct {
	pattern *regexp.Regexp
	// apply reports whether the activity was consumed.
	apply func(result *TestResult, activity xcjson.Node, groups []string) bool
}

// directives are tried in order; the first match wins. Values may span several lines.
//
//nolint:gochecknoglobals // effectively const
var directives = []directive{
	{
		pattern: regexp.MustCompile(`(?s)^allure\.id:(.+)$`),
		apply: func(result *TestResult, _ xcjson.Node, groups []string) bool {
			result.Labels = append(result.Labels, Label{Name: LabelAllureID, Value: groups[1]})

			return true
		},
	},
	{
		pattern: regexp.MustCompile(`(?s)^allure\.name:(.+)$`),
		apply: func(result *TestResult, _ xcjson.Node, groups []string) bool {
			result.Name = groups[1]

			return true
		},
	},
	{
		pattern: regexp.MustCompile(`(?s)^allure\.description:(.+)$`),
		apply: func(result *TestResult, _ xcjson.Node, groups []string) bool {
			result.Description = groups[1]

			return true
		},
	},
	{
		pattern: regexp.MustCompile(`(?s)^allure\.label\.([^:]+):(.+)$`),
		apply: func(result *TestResult, _ xcjson.Node, groups []string) bool {
			result.Labels = append(result.Labels, Label{Name: groups[1], Value: strings.TrimSpace(groups[2])})

			return true
		},
	},
	{
		pattern: regexp.MustCompile(`(?s)^allure\.link\.([^\[:]+)(?:\[([^\]]*)\])?:(.+)$`),
		apply: func(result *TestResult, _ xcjson.Node, groups []string) bool {
			result.Links = append(result.Links, Link{
				Name: groups[1],
				Type: groups[2],
				URL:  strings.TrimSpace(groups[3]),
			})

			return true
		},
	},
	{
		pattern: regexp.MustCompile(`^Start Test at`),
		apply: func(result *TestResult, activity xcjson.Node, _ []string) bool {
			raw, ok := activity.String(keyStart)
			if !ok {
				return false
			}

			if start := ParseDate(raw); start != nil {
				result.Start = start
			}

			return true
		},
	},
}

// applyDirective reports whether title was a directive, applying it to the result if so.
func applyDirective(result *TestResult, activity xcjson.Node, title string) bool {
	for _, candidate := range directives {
		groups := candidate.pattern.FindStringSubmatch(title)
		if groups == nil {
			continue
		}

		// First match wins, even when it declines the activity.
		return candidate.apply(result, activity, groups)
	}

	return false
}
