package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncLoginAttempt is a no-op.
func (n *NoopRecorder) IncLoginAttempt(result string) {}

// ObserveLoginDuration is a no-op.
func (n *NoopRecorder) ObserveLoginDuration(duration time.Duration) {}

// IncSessionResume is a no-op.
func (n *NoopRecorder) IncSessionResume(result string) {}

// IncLogout is a no-op.
func (n *NoopRecorder) IncLogout() {}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncDocumentCreated is a no-op.
func (n *NoopRecorder) IncDocumentCreated() {}

// IncDocumentUpdated is a no-op.
func (n *NoopRecorder) IncDocumentUpdated() {}

// IncDocumentDeleted is a no-op.
func (n *NoopRecorder) IncDocumentDeleted() {}

// IncAccessDenied is a no-op.
func (n *NoopRecorder) IncAccessDenied(reason string) {}
