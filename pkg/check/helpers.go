package check

import (
	"fmt"
)

// Fail sets the result to failed with the given kind and a detail message.
func (r *Result) Fail(kind FailureKind, detail string, err error) Result {
	r.Outcome = OutcomeFailed
	r.Failure = kind
	r.URL = ""
	r.Details = append(r.Details, detail)
	r.Err = err
	return *r
}

// Failf sets the result to failed with a formatted detail message.
func (r *Result) Failf(kind FailureKind, format string, args ...interface{}) Result {
	return r.Fail(kind, fmt.Sprintf(format, args...), fmt.Errorf(format, args...))
}

// Pass marks a diagnostic check as passed.
func (r *Result) Pass() Result {
	r.Outcome = OutcomeOK
	return *r
}

// NoAppointments marks the result as a confirmed absence of appointments.
func (r *Result) NoAppointments() Result {
	r.Outcome = OutcomeNoAppointments
	return *r
}

// Appointments marks the result as possibly having appointments at url.
func (r *Result) Appointments(url string) Result {
	r.Outcome = OutcomeAppointments
	r.URL = url
	return *r
}

// AddDetail appends a detail line to the result.
func (r *Result) AddDetail(detail string) *Result {
	r.Details = append(r.Details, detail)
	return r
}

// AddDetailf appends a formatted detail line to the result.
func (r *Result) AddDetailf(format string, args ...interface{}) *Result {
	return r.AddDetail(fmt.Sprintf(format, args...))
}
