package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Output labels shared by every renderer of a Report.
const (
	LabelMarked           = "marked"
	LabelUnmarked         = "unmarked"
	LabelTemplateProvided = "template provided"
)

// MarkingStatus says whether a component's markup carries the monitoring
// directives. The zero value is Unmarked.
type MarkingStatus int

const (
	Unmarked MarkingStatus = iota
	Marked
)

func (s MarkingStatus) String() string {
	if s == Marked {
		return LabelMarked
	}
	return LabelUnmarked
}

func (s MarkingStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *MarkingStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw {
	case LabelMarked:
		*s = Marked
	case LabelUnmarked, "":
		*s = Unmarked
	default:
		return fmt.Errorf("unknown marking status %q", raw)
	}
	return nil
}

// ModuleRecord describes one file that declares a UI module.
type ModuleRecord struct {
	ModuleName               string `json:"moduleName"`
	FilePath                 string `json:"filePath"`
	ImportsMonitoringPackage bool   `json:"importStmt"`
	HasRootRegistration      bool   `json:"forRoot"`
	HasRouterStart           bool   `json:"routerStart"`
}

// ComponentRecord describes the first component declared in a file.
type ComponentRecord struct {
	ComponentName         string        `json:"componentName"`
	FilePath              string        `json:"filePath"`
	Status                MarkingStatus `json:"status"`
	InlineTemplatePresent bool          `json:"-"`
	TemplateURL           string        `json:"templateUrl"`
	ResolvedHTMLFileName  string        `json:"htmlFileName"`
}

type componentRecordJSON struct {
	ComponentName        string        `json:"componentName"`
	FilePath             string        `json:"filePath"`
	Status               MarkingStatus `json:"status"`
	Template             string        `json:"template"`
	TemplateURL          string        `json:"templateUrl"`
	ResolvedHTMLFileName string        `json:"htmlFileName"`
}

// MarshalJSON renders InlineTemplatePresent as the "template provided" label
// used by the report consumers.
func (c ComponentRecord) MarshalJSON() ([]byte, error) {
	out := componentRecordJSON{
		ComponentName:        c.ComponentName,
		FilePath:             c.FilePath,
		Status:               c.Status,
		TemplateURL:          c.TemplateURL,
		ResolvedHTMLFileName: c.ResolvedHTMLFileName,
	}
	if c.InlineTemplatePresent {
		out.Template = LabelTemplateProvided
	}
	return json.Marshal(out)
}

func (c *ComponentRecord) UnmarshalJSON(b []byte) error {
	var in componentRecordJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*c = ComponentRecord{
		ComponentName:         in.ComponentName,
		FilePath:              in.FilePath,
		Status:                in.Status,
		InlineTemplatePresent: in.Template != "",
		TemplateURL:           in.TemplateURL,
		ResolvedHTMLFileName:  in.ResolvedHTMLFileName,
	}
	return nil
}

// FailureKind classifies a non-fatal per-file failure.
type FailureKind string

const (
	FailureIO      FailureKind = "io"
	FailureParse   FailureKind = "parse"
	FailureTimeout FailureKind = "timeout"
)

// FileFailure records a file that could not be classified.
type FileFailure struct {
	Path    string      `json:"path"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// Report is the result of one scan. Modules and Components are in file
// discovery order.
type Report struct {
	ID         string            `json:"id,omitempty"`
	Root       string            `json:"root,omitempty"`
	Target     string            `json:"target,omitempty"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	Modules    []ModuleRecord    `json:"listOfModules"`
	Components []ComponentRecord `json:"listOfComponents"`
	Failures   []FileFailure     `json:"failures,omitempty"`
}

// MarkedCount returns how many components are marked.
func (r Report) MarkedCount() int {
	n := 0
	for _, c := range r.Components {
		if c.Status == Marked {
			n++
		}
	}
	return n
}
