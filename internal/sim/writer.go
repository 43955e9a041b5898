package sim

import "navwatch/internal/navdata"

// AssessmentWriter is an interface to support different output writers.
type AssessmentWriter interface {
	WriteAssessment(navdata.AssessmentRow) error
}

// AlertWriter handles consolidated alert events.
type AlertWriter interface {
	WriteAlert(navdata.AlertRow) error
}

// Optional: alert writers may support batch mode.
type batchAlertWriter interface {
	WriteAlerts([]navdata.AlertRow) error
}
