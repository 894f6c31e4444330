package eventbus

import "errors"

// HandlerResult is the per-handler entry of a DispatchOutcome. Err is
// nil when the handler succeeded; otherwise it is the handler's own
// error, or a synthesized error when the handler panicked.
type HandlerResult struct {
	HandlerID HandlerID
	Err       error
}

// DispatchOutcome reports, per matching handler and in execution order,
// whether the handler succeeded. An empty outcome means no handler
// matched the topic; that is a successful dispatch, not an error.
type DispatchOutcome []HandlerResult

// Succeeded reports whether every handler completed without error.
// An empty outcome counts as success.
func (o DispatchOutcome) Succeeded() bool {
	for _, r := range o {
		if r.Err != nil {
			return false
		}
	}
	return true
}

// Failures returns the results of the handlers that failed, in
// execution order.
func (o DispatchOutcome) Failures() []HandlerResult {
	var failed []HandlerResult
	for _, r := range o {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err joins all handler failures into a single error, each wrapped as a
// *HandlerError. Returns nil when every handler succeeded.
func (o DispatchOutcome) Err() error {
	var errs []error
	for _, r := range o {
		if r.Err != nil {
			errs = append(errs, &HandlerError{HandlerID: r.HandlerID, Err: r.Err})
		}
	}
	return errors.Join(errs...)
}
