package navdata

import (
	"encoding/json"
	"time"
)

// Output is the complete situational-awareness assessment of one processing
// cycle. It is constructed once per batch and owned by the caller.
type Output struct {
	Timestamp         time.Time               `json:"timestamp"`
	FusedData         *FusedData              `json:"fused_data"`
	Anomalies         []Anomaly               `json:"anomalies"`
	Uncertainties     map[string]*Uncertainty `json:"uncertainties"`
	SpoofingAlerts    []SpoofingAlert         `json:"spoofing_alerts"`
	OverallConfidence float64                 `json:"overall_confidence"`
	Alerts            []Alert                 `json:"alerts"`
	SystemStatus      map[string]string       `json:"system_status"`
}

// HasSpoofing reports whether any spoofing alert was raised this cycle.
func (o *Output) HasSpoofing() bool { return len(o.SpoofingAlerts) > 0 }

// CriticalAlerts returns the alerts at critical or emergency level.
func (o *Output) CriticalAlerts() []Alert {
	var out []Alert
	for _, a := range o.Alerts {
		if a.Level == LevelCritical || a.Level == LevelEmergency {
			out = append(out, a)
		}
	}
	return out
}

// MarshalJSON mirrors the wire shape of the assessment, including the
// derived has_spoofing and critical_alert_count fields.
func (o Output) MarshalJSON() ([]byte, error) {
	type plain Output
	return json.Marshal(struct {
		plain
		HasSpoofing        bool `json:"has_spoofing"`
		CriticalAlertCount int  `json:"critical_alert_count"`
	}{plain(o), o.HasSpoofing(), len(o.CriticalAlerts())})
}
