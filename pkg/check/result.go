package check

// Outcome represents the classification of a single appointment check.
type Outcome string

const (
	// OutcomeOK is reported by diagnostic checks that pass.
	OutcomeOK             Outcome = "OK"
	OutcomeNoAppointments Outcome = "NO_APPOINTMENTS"
	OutcomeAppointments   Outcome = "APPOINTMENTS"
	OutcomeFailed         Outcome = "FAILED"
)

// FailureKind classifies why a check failed.
type FailureKind string

const (
	FailureTimeout         FailureKind = "TIMEOUT"
	FailureElementNotFound FailureKind = "ELEMENT_NOT_FOUND"
	FailureError           FailureKind = "ERROR"
)

// Result holds the outcome of a single check.
type Result struct {
	Name    string      // e.g., "appointments: https://service.berlin.de/dienstleistung/351180/"
	Outcome Outcome     // NO_APPOINTMENTS, APPOINTMENTS or FAILED
	URL     string      // page URL at classification time, set for APPOINTMENTS
	Failure FailureKind // set for FAILED
	Details []string    // human-readable details
	Err     error       // underlying error for failures
}

// OK returns true if the check ran to a classification.
// A check that found no appointments is still OK.
func (r Result) OK() bool {
	return r.Outcome != OutcomeFailed
}

// Found returns true if appointments might be available.
func (r Result) Found() bool {
	return r.Outcome == OutcomeAppointments
}
