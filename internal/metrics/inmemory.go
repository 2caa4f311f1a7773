package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginSuccesses        uint64
	LoginFailures         uint64
	LoginErrors           uint64
	LoginDurationCount    uint64
	LoginDurationTotalNs  int64
	SessionResumes        uint64
	SessionResumeFailures uint64
	Logouts               uint64
	UsersRegistered       uint64
	DocumentsCreated      uint64
	DocumentsUpdated      uint64
	DocumentsDeleted      uint64
	DeniedUnauthenticated uint64
	DeniedNotOwner        uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	loginSuccesses        uint64
	loginFailures         uint64
	loginErrors           uint64
	loginDurationCount    uint64
	loginDurationTotalNs  int64
	sessionResumes        uint64
	sessionResumeFailures uint64
	logouts               uint64
	usersRegistered       uint64
	documentsCreated      uint64
	documentsUpdated      uint64
	documentsDeleted      uint64
	deniedUnauthenticated uint64
	deniedNotOwner        uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		LoginSuccesses:        atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:         atomic.LoadUint64(&m.loginFailures),
		LoginErrors:           atomic.LoadUint64(&m.loginErrors),
		LoginDurationCount:    atomic.LoadUint64(&m.loginDurationCount),
		LoginDurationTotalNs:  atomic.LoadInt64(&m.loginDurationTotalNs),
		SessionResumes:        atomic.LoadUint64(&m.sessionResumes),
		SessionResumeFailures: atomic.LoadUint64(&m.sessionResumeFailures),
		Logouts:               atomic.LoadUint64(&m.logouts),
		UsersRegistered:       atomic.LoadUint64(&m.usersRegistered),
		DocumentsCreated:      atomic.LoadUint64(&m.documentsCreated),
		DocumentsUpdated:      atomic.LoadUint64(&m.documentsUpdated),
		DocumentsDeleted:      atomic.LoadUint64(&m.documentsDeleted),
		DeniedUnauthenticated: atomic.LoadUint64(&m.deniedUnauthenticated),
		DeniedNotOwner:        atomic.LoadUint64(&m.deniedNotOwner),
	}
}

// IncLoginAttempt increments the counter for the attempt's result.
func (m *InMemoryRecorder) IncLoginAttempt(result string) {
	switch result {
	case ResultSuccess:
		atomic.AddUint64(&m.loginSuccesses, 1)
	case ResultFailure:
		atomic.AddUint64(&m.loginFailures, 1)
	default:
		atomic.AddUint64(&m.loginErrors, 1)
	}
}

// ObserveLoginDuration records login duration.
func (m *InMemoryRecorder) ObserveLoginDuration(duration time.Duration) {
	atomic.AddUint64(&m.loginDurationCount, 1)
	atomic.AddInt64(&m.loginDurationTotalNs, duration.Nanoseconds())
}

// IncSessionResume increments the resume counters.
func (m *InMemoryRecorder) IncSessionResume(result string) {
	if result == ResultSuccess {
		atomic.AddUint64(&m.sessionResumes, 1)
		return
	}
	atomic.AddUint64(&m.sessionResumeFailures, 1)
}

// IncLogout increments logout counter.
func (m *InMemoryRecorder) IncLogout() {
	atomic.AddUint64(&m.logouts, 1)
}

// IncUserRegistered increments registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncDocumentCreated increments document created counter.
func (m *InMemoryRecorder) IncDocumentCreated() {
	atomic.AddUint64(&m.documentsCreated, 1)
}

// IncDocumentUpdated increments document updated counter.
func (m *InMemoryRecorder) IncDocumentUpdated() {
	atomic.AddUint64(&m.documentsUpdated, 1)
}

// IncDocumentDeleted increments document deleted counter.
func (m *InMemoryRecorder) IncDocumentDeleted() {
	atomic.AddUint64(&m.documentsDeleted, 1)
}

// IncAccessDenied increments the denial counter for reason.
func (m *InMemoryRecorder) IncAccessDenied(reason string) {
	if reason == DeniedNotOwner {
		atomic.AddUint64(&m.deniedNotOwner, 1)
		return
	}
	atomic.AddUint64(&m.deniedUnauthenticated, 1)
}
