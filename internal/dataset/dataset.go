// Package dataset builds the enriched device-clearance dataset: it parses
// the upstream XML feed into records, drives openFDA enrichment across them,
// and writes the JSON artifact plus the copy embedded in the dashboard page.
package dataset

// Record is one device clearance entry. Enrichment fills ReceivedDate,
// DecisionDate and DaysToDecision after parsing; every other field is final
// once the feed row has been read.
type Record struct {
	Date           string `json:"date"`
	Year           int    `json:"year"`
	Device         string `json:"device"`
	Company        string `json:"company"`
	Panel          string `json:"panel"`
	Code           string `json:"code"`
	SubmissionID   string `json:"submission_id"`
	SubmissionURL  string `json:"submission_url"`
	SummaryURL     string `json:"summary_url"`
	ReceivedDate   string `json:"received_date"`
	DecisionDate   string `json:"decision_date_openfda"`
	DaysToDecision *int   `json:"days_to_decision"`
}
