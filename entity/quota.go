package entity

import "time"

// QuotaStatus is a read-only snapshot of the shared provider budget.
type QuotaStatus struct {
	Limit     int       `json:"limit"`
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at,omitempty"`
	Ratio     float64   `json:"ratio"`
	// PendingAlerts lists usage thresholds that have been crossed but
	// not yet announced to the administrators within the current
	// rolling window.
	PendingAlerts []float64 `json:"pending_alerts,omitempty"`
}
