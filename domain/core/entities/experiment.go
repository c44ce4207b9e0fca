package entities

// ExperimentStatus is the lifecycle state of an experiment.
type ExperimentStatus string

const (
	ExperimentActive    ExperimentStatus = "active"
	ExperimentComplete  ExperimentStatus = "complete"
	ExperimentAbandoned ExperimentStatus = "abandoned"
)

// Experiment is a self-change experiment the user is running. Status
// transitions happen in the capture features; this service reads only.
type Experiment struct {
	ID            string
	UserID        string
	Title         string
	Hypothesis    string // optional
	Status        ExperimentStatus
	IdentityShift string // optional "who am I becoming" target
}

// IsActive reports whether the experiment is currently running.
func (e Experiment) IsActive() bool {
	return e.Status == ExperimentActive
}
