package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	loginAttempts   *prometheus.CounterVec
	loginDuration   prometheus.Histogram
	sessionResumes  *prometheus.CounterVec
	logouts         prometheus.Counter
	usersRegistered prometheus.Counter
	documentOps     *prometheus.CounterVec
	accessDenied    *prometheus.CounterVec
}

// NewPrometheus creates a PrometheusRecorder and registers its collectors.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	p := &PrometheusRecorder{
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pubdocs_login_attempts_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		loginDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pubdocs_login_duration_seconds",
			Help:    "Time spent verifying credentials.",
			Buckets: []float64{.01, .025, .05, .1, .2, .4, .8, 1.6},
		}),
		sessionResumes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pubdocs_session_resumes_total",
			Help: "Session token resolutions by result.",
		}, []string{"result"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pubdocs_logouts_total",
			Help: "Completed logouts.",
		}),
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pubdocs_users_registered_total",
			Help: "Registered user accounts.",
		}),
		documentOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pubdocs_document_operations_total",
			Help: "Document mutations by operation.",
		}, []string{"op"}),
		accessDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pubdocs_access_denied_total",
			Help: "Rejected document operations by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		p.loginAttempts,
		p.loginDuration,
		p.sessionResumes,
		p.logouts,
		p.usersRegistered,
		p.documentOps,
		p.accessDenied,
	)
	return p
}

// IncLoginAttempt counts a login attempt.
func (p *PrometheusRecorder) IncLoginAttempt(result string) {
	p.loginAttempts.WithLabelValues(result).Inc()
}

// ObserveLoginDuration records login duration.
func (p *PrometheusRecorder) ObserveLoginDuration(duration time.Duration) {
	p.loginDuration.Observe(duration.Seconds())
}

// IncSessionResume counts a session token resolution.
func (p *PrometheusRecorder) IncSessionResume(result string) {
	p.sessionResumes.WithLabelValues(result).Inc()
}

// IncLogout counts a logout.
func (p *PrometheusRecorder) IncLogout() {
	p.logouts.Inc()
}

// IncUserRegistered counts a registration.
func (p *PrometheusRecorder) IncUserRegistered() {
	p.usersRegistered.Inc()
}

// IncDocumentCreated counts a document creation.
func (p *PrometheusRecorder) IncDocumentCreated() {
	p.documentOps.WithLabelValues("create").Inc()
}

// IncDocumentUpdated counts a document update.
func (p *PrometheusRecorder) IncDocumentUpdated() {
	p.documentOps.WithLabelValues("update").Inc()
}

// IncDocumentDeleted counts a document deletion.
func (p *PrometheusRecorder) IncDocumentDeleted() {
	p.documentOps.WithLabelValues("delete").Inc()
}

// IncAccessDenied counts a rejected operation.
func (p *PrometheusRecorder) IncAccessDenied(reason string) {
	p.accessDenied.WithLabelValues(reason).Inc()
}
