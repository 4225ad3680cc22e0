package replay

import (
	"fmt"

	"literature-lite/literature"
)

// ReplayError points at the step that could not be applied. StepIndex is -1
// for problems with the spec itself.
type ReplayError struct {
	StepIndex int32          `json:"step_index"`
	Reason    string         `json:"reason"`
	Message   string         `json:"message"`
	Expected  *ExpectedState `json:"expected,omitempty"`
}

type ExpectedState struct {
	Turn   string            `json:"turn,omitempty"`
	Status literature.Status `json:"status"`
	Seq    int               `json:"seq"`
}

func (e *ReplayError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("replay error(step=%d reason=%s): %s", e.StepIndex, e.Reason, e.Message)
}

func specError(reason, format string, args ...any) *ReplayError {
	return &ReplayError{StepIndex: -1, Reason: reason, Message: fmt.Sprintf(format, args...)}
}
