package pipeline

import "markscan/internal/types"

// Event kinds.
const (
	EventModule    = "module"
	EventComponent = "component"
	EventFailure   = "failure"
)

// Event is one completed file outcome, delivered to Scanner.Observer in
// completion order (which may differ from report order). Exactly one of
// Module, Component or Failure is set.
type Event struct {
	Kind      string                 `json:"kind"`
	Module    *types.ModuleRecord    `json:"module,omitempty"`
	Component *types.ComponentRecord `json:"component,omitempty"`
	Failure   *types.FileFailure     `json:"failure,omitempty"`
}
