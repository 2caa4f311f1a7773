// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Result labels for attempt counters.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

// Denial reasons for access control counters.
const (
	DeniedUnauthenticated = "unauthenticated"
	DeniedNotOwner        = "not_owner"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Authentication metrics
	IncLoginAttempt(result string) // result: success, failure, error
	ObserveLoginDuration(duration time.Duration)
	IncSessionResume(result string)
	IncLogout()

	// Account metrics
	IncUserRegistered()

	// Document metrics
	IncDocumentCreated()
	IncDocumentUpdated()
	IncDocumentDeleted()
	IncAccessDenied(reason string) // reason: unauthenticated, not_owner
}
