//nolint:tagliatelle // field names follow the Allure 2 result schema
package xcresults

// Status is the outcome of a test or a step.
type Status string

const (
	StatusUnset   Status = ""
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ParseTestStatus maps an xcresult testStatus onto a Status.
func ParseTestStatus(raw string) Status {
	switch raw {
	case "Success":
		return StatusPassed
	case "Failure":
		return StatusFailed
	case "Skipped":
		return StatusSkipped
	default:
		// Unrecognized: downstream treats Unset as an inconsistency worth reporting.
		return StatusUnset
	}
}

// StageFinished is the only stage an exported result can be in.
const StageFinished = "finished"

// StatusDetails carries the failure message of a node.
type StatusDetails struct {
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`
}

type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Link struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	URL  string `json:"url"`
}

// Attachment points at a file living next to the result file.
type Attachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type,omitempty"`
}

type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Executable is the part shared by results and steps.
type Executable struct {
	Name          string         `json:"name,omitempty"`
	Status        Status         `json:"status,omitempty"`
	StatusDetails *StatusDetails `json:"statusDetails,omitempty"`
	Stage         string         `json:"stage,omitempty"`
	Start         *int64         `json:"start,omitempty"`
	Stop          *int64         `json:"stop,omitempty"`
	Steps         []*StepResult  `json:"steps"`
	Attachments   []Attachment   `json:"attachments"`
	Parameters    []Parameter    `json:"parameters"`
}

// StepResult is one node below a TestResult.
type StepResult struct {
	Executable
}

// TestResult is the root of one exported test.
type TestResult struct {
	UUID        string  `json:"uuid"`
	HistoryID   string  `json:"historyId,omitempty"`
	FullName    string  `json:"fullName,omitempty"`
	Description string  `json:"description,omitempty"`
	Labels      []Label `json:"labels"`
	Links       []Link  `json:"links"`

	Executable
}

func newExecutable(name string, status Status) Executable {
	return Executable{
		Name:        name,
		Status:      status,
		Stage:       StageFinished,
		Steps:       []*StepResult{},
		Attachments: []Attachment{},
		Parameters:  []Parameter{},
	}
}

// NewTestResult returns an empty result with every sequence initialised.
func NewTestResult() *TestResult {
	return &TestResult{
		Labels:     []Label{},
		Links:      []Link{},
		Executable: newExecutable("", StatusUnset),
	}
}

func (e *Executable) fail(message string) {
	e.Status = StatusFailed
	e.StatusDetails = &StatusDetails{Message: message}
}

// setTiming never records a stop without a start.
func (e *Executable) setTiming(start, stop *int64) {
	if start == nil {
		return
	}

	e.Start = start
	e.Stop = stop
}

// Walk calls visit for the node and every step below it, depth-first.
func (e *Executable) Walk(visit func(*Executable)) {
	visit(e)

	for _, step := range e.Steps {
		step.Walk(visit)
	}
}
