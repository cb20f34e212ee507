package agent

import "errors"

// ValidateResult checks that a pipeline response satisfies at least one of
// the response contracts clients depend on: the agent format (message plus
// next_action) or the legacy format (summary plus training_advice). The
// pipeline always emits both, but model output flows through this response,
// so the check guards against degenerate answers reaching clients as
// success.
func ValidateResult(r *CoachResult) error {
	if r == nil {
		return errors.New("agent: nil result")
	}
	if r.Message != "" && r.NextAction != "" {
		return nil
	}
	if r.Summary != "" && r.TrainingAdvice != "" {
		return nil
	}
	if r.Message != "" || r.Summary != "" {
		return nil
	}
	return errors.New("agent: response carries neither message nor summary")
}
