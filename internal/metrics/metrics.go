package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes counters for the attendance fan-out and auth traffic.
type Metrics struct {
	rowsInserted  *prometheus.CounterVec
	rowsDeleted   *prometheus.CounterVec
	loginAttempts *prometheus.CounterVec
}

// New registers the collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		rowsInserted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "classcheck_attendance_rows_inserted_total",
			Help: "Attendance rows created by reconciliation, by trigger.",
		}, []string{"trigger"}),
		rowsDeleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "classcheck_attendance_rows_deleted_total",
			Help: "Attendance rows deleted by reconciliation, by trigger.",
		}, []string{"trigger"}),
		loginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "classcheck_login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// AttendanceRows records a reconciliation's row churn.
func (m *Metrics) AttendanceRows(trigger string, inserted, deleted int) {
	if m == nil {
		return
	}
	if inserted > 0 {
		m.rowsInserted.WithLabelValues(trigger).Add(float64(inserted))
	}
	if deleted > 0 {
		m.rowsDeleted.WithLabelValues(trigger).Add(float64(deleted))
	}
}

// Login records a login attempt outcome ("ok" or "failed").
func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
}
