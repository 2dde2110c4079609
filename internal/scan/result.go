// Package scan implements the periodic status scans over jobs and contracts
// and the notifications they trigger.
package scan

// Outcome is what happened to one scanned row
type Outcome string

const (
	OutcomeUpdated   Outcome = "updated"
	OutcomeExpiring  Outcome = "expiring"
	OutcomeExpired   Outcome = "expired"
	OutcomeUnchanged Outcome = "unchanged" // another writer moved the row first
	OutcomeNotDue    Outcome = "not_due"
	OutcomeFailed    Outcome = "failed"
)

// ItemResult records the outcome for a single row. Err is set for failed updates
// and for updates whose notifications could not be resolved.
type ItemResult struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	Outcome        Outcome `json:"outcome"`
	Notified       int     `json:"notified"`
	Err            error   `json:"-"`
}

// Result summarizes one scan run
type Result struct {
	Checked  int          `json:"checked"`
	Updated  int          `json:"updated"`
	Expiring int          `json:"expiring"`
	Expired  int          `json:"expired"`
	Failed   int          `json:"failed"`
	Skipped  bool         `json:"skipped"`
	Items    []ItemResult `json:"items,omitempty"`
}

func (r *Result) record(item ItemResult) {
	switch item.Outcome {
	case OutcomeUpdated:
		r.Updated++
	case OutcomeExpiring:
		r.Expiring++
		r.Updated++
	case OutcomeExpired:
		r.Expired++
		r.Updated++
	case OutcomeFailed:
		r.Failed++
	}
	r.Items = append(r.Items, item)
}
