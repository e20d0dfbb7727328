package core

// PlaybookState is the lifecycle state reported by the backend for a playbook.
type PlaybookState string

// Playbook states known to the console. Any other value is shown verbatim.
const (
	PlaybookRunning PlaybookState = "RUNNING"
	PlaybookEnded   PlaybookState = "END"
)

// System groups playbooks under an operator-facing name.
// Systems are static reference data and are never mutated by the UI.
type System struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Playbooks   []Playbook `json:"playbooks" yaml:"-"`

	// PlaybookIDs restricts the system to the listed playbooks.
	// Empty means the system shows the whole playbook collection.
	PlaybookIDs []string `json:"-" yaml:"playbooks"`
}

// Playbook is a named automated response procedure.
type Playbook struct {
	ID          string        `json:"_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Type        string        `json:"playbook_type"`
	CreatedBy   string        `json:"created_by"`
	Created     string        `json:"created"`
	Started     string        `json:"started"`
	Modified    string        `json:"modify,omitempty"`
	State       PlaybookState `json:"state"`
}

// Step is one node of a playbook's execution flow.
type Step struct {
	ID           string `json:"id"`
	PlaybookID   string `json:"pb_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	Active       bool   `json:"active"`
	Check        bool   `json:"check"`
	LastModified string `json:"last_modified"`
}

// StepStatus is the rendering-level status derived from a step's flags.
type StepStatus string

// Step statuses.
const (
	StepNotStarted StepStatus = "not_started"
	StepRunning    StepStatus = "running"
	StepCompleted  StepStatus = "completed"
)

// Status derives the step status from the active and check flags.
// The active+check combination is not produced by the backend and reads as not started.
func (s Step) Status() StepStatus {
	switch {
	case s.Active && !s.Check:
		return StepRunning
	case !s.Active && s.Check:
		return StepCompleted
	default:
		return StepNotStarted
	}
}

// LogEntry is the canonical log line shown in the console view.
type LogEntry struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}
