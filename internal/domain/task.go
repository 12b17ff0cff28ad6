package domain

// Task is one unit of schedulable work derived from an input item.
type Task struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Phase        Phase    `json:"phase"`
	Trade        string   `json:"trade,omitempty"`
	Quantity     float64  `json:"quantity,omitempty"`
	DurationDays float64  `json:"duration_days"`
	Dependencies []string `json:"dependencies"`

	StartDay     float64 `json:"start_day"`
	EndDay       float64 `json:"end_day"`
	CriticalPath bool    `json:"critical_path"`
	// SlackDays is only populated by the CPM analysis mode.
	SlackDays *float64 `json:"slack_days,omitempty"`

	InspectionRequired bool `json:"inspection_required"`
	PermitRequired     bool `json:"permit_required"`

	// Classified is false when no rule matched and the task fell back to
	// the default phase.
	Classified bool `json:"classified"`
}

// Inspection is a regulatory inspection that gates progress after a task.
type Inspection struct {
	Type         string  `json:"type"`
	AfterTaskID  string  `json:"after_task_id"`
	EstimatedDay float64 `json:"estimated_day"`
}

// Permit is advisory: it names a permit that should be pulled before work
// in a phase starts. It does not constrain the schedule.
type Permit struct {
	Type           string `json:"type"`
	Phase          Phase  `json:"phase"`
	RequiredBefore string `json:"required_before"`
}

// PhaseSummary aggregates the tasks of one phase.
type PhaseSummary struct {
	Phase             Phase   `json:"phase"`
	TotalDurationDays float64 `json:"total_duration_days"`
	TaskCount         int     `json:"task_count"`
}

// SequencingResult is the output of one sequencing run. It is derived
// entirely from the input batch.
type SequencingResult struct {
	Tasks             []Task         `json:"tasks"`
	CriticalPath      []string       `json:"critical_path"`
	TotalDurationDays float64        `json:"total_duration_days"`
	Inspections       []Inspection   `json:"inspections"`
	Permits           []Permit       `json:"permits"`
	PhaseSummary      []PhaseSummary `json:"phase_summary"`
	Warnings          []string       `json:"warnings,omitempty"`
}

// TaskByID returns the task with the given ID, or nil.
func (r *SequencingResult) TaskByID(id string) *Task {
	for i := range r.Tasks {
		if r.Tasks[i].ID == id {
			return &r.Tasks[i]
		}
	}
	return nil
}
