package gitops

import "github.com/Vellarasan/AI-Copilot-CLI-Server/internal/runner"

// Step names as they appear in responses
const (
	StepCopilot = "copilot"
	StepAdd     = "add"
	StepCommit  = "commit"
	StepPush    = "push"
)

// HaltNothingToCommit marks the non-fatal halt when a commit found no
// staged changes.
const HaltNothingToCommit = "nothing_to_commit"

// StepResult is a named command result from one pipeline step
type StepResult struct {
	Name string `json:"name"`
	runner.Result
}

// SequenceResult is an ordered list of the steps that actually ran.
// Success is true only when every step succeeded; after the first
// failure no further step is attempted.
type SequenceResult struct {
	Steps        []StepResult `json:"steps"`
	Success      bool         `json:"success"`
	FailedStep   string       `json:"failed_step,omitempty"`
	HaltedReason string       `json:"halted_reason,omitempty"`
}

func (s *SequenceResult) append(name string, res runner.Result) {
	s.Steps = append(s.Steps, StepResult{Name: name, Result: res})
}

func (s *SequenceResult) fail(step string) {
	s.Success = false
	s.FailedStep = step
}

// TimedOut reports whether any recorded step hit its timeout
func (s *SequenceResult) TimedOut() bool {
	for _, st := range s.Steps {
		if st.Result.TimedOut {
			return true
		}
	}
	return false
}
