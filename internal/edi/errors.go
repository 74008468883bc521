package edi

import "fmt"

// ReasonAborted is the StructuralError reason used when processing was
// cancelled or timed out.
const ReasonAborted = "aborted"

// FramingError is fatal: the dialect or its delimiters could not be
// determined, so nothing after detection can run.
type FramingError struct {
	Reason string
	Detail string
}

func (e *FramingError) Error() string {
	if e.Detail == "" {
		return "framing error: " + e.Reason
	}
	return fmt.Sprintf("framing error: %s: %s", e.Reason, e.Detail)
}

// StructuralError describes an envelope defect found while folding segments,
// or an aborted run. Folding errors are recorded and passed on, not returned.
type StructuralError struct {
	Reason           string
	Code             string
	SegmentID        string
	Position         int
	ControlNumber    string
	TransactionIndex int

	// Cause is the context error behind an aborted run.
	Cause error
}

func (e *StructuralError) Error() string {
	if e.Position == 0 {
		if e.Cause != nil {
			return fmt.Sprintf("structural error: %s: %v", e.Reason, e.Cause)
		}
		return "structural error: " + e.Reason
	}
	return fmt.Sprintf("structural error: %s (%s at segment %d)", e.Reason, e.SegmentID, e.Position)
}

func (e *StructuralError) Unwrap() error {
	return e.Cause
}

// Issue converts the error into an error-severity validation issue.
func (e *StructuralError) Issue() Issue {
	code := e.Code
	if code == "" {
		code = e.Reason
	}
	return Issue{
		Kind:             KindStructural,
		Severity:         SeverityError,
		Code:             code,
		Message:          e.Reason,
		SegmentID:        e.SegmentID,
		SegmentPosition:  e.Position,
		Value:            e.ControlNumber,
		TransactionIndex: e.TransactionIndex,
	}
}

// Aborted builds the error returned on cancellation or timeout.
func Aborted(cause error) *StructuralError {
	return &StructuralError{Reason: ReasonAborted, Code: CodeAborted, Cause: cause}
}
