package xcresults

import "slices"

const (
	LabelSuite          = "suite"
	LabelRunDestination = "runDestination"
	LabelAllureID       = "AS_ID"

	// DefaultSuite stands in for a missing suite label in history ids.
	DefaultSuite = "Default"
)

// RunMeta is what a test run contributes to each of its tests.
type RunMeta struct {
	// Start is used when the activity tree does not provide one.
	Start  *int64
	Labels []Label
}

// WithLabel returns a copy of the meta with one more label.
func (m RunMeta) WithLabel(name, value string) RunMeta {
	labels := slices.Clone(m.Labels)

	return RunMeta{
		Start:  m.Start,
		Labels: append(labels, Label{Name: name, Value: value}),
	}
}

// Suite is the last suite label, or DefaultSuite.
func (m RunMeta) Suite() string {
	for _, label := range slices.Backward(m.Labels) {
		if label.Name == LabelSuite {
			return label.Value
		}
	}

	return DefaultSuite
}

// HistoryID builds the cross-run identity of a test.
func HistoryID(suite, identifier string) string {
	if suite == "" {
		suite = DefaultSuite
	}

	return suite + "/" + identifier
}
