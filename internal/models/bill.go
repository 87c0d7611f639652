package models

import "time"

// Status is the legislative stage of a bill.
type Status string

const (
	StatusIntroduced       Status = "Introduced"
	StatusPending          Status = "Pending"
	StatusPassedLowerHouse Status = "Passed in Lok Sabha"
	StatusPassedUpperHouse Status = "Passed in Rajya Sabha"
	StatusAssented         Status = "Assented by President"
	StatusWithdrawn        Status = "Withdrawn"
)

// Statuses lists every status in declaration order.
var Statuses = []Status{
	StatusIntroduced,
	StatusPending,
	StatusPassedLowerHouse,
	StatusPassedUpperHouse,
	StatusAssented,
	StatusWithdrawn,
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Chamber is the house handling a bill.
type Chamber string

const (
	ChamberLowerHouse Chamber = "Lok Sabha"
	ChamberUpperHouse Chamber = "Rajya Sabha"
	ChamberBoth       Chamber = "Both"
)

// Priority is an editorial weight attached to a bill.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// HistoryEntry is one dated step in a bill's passage.
type HistoryEntry struct {
	Date   string `json:"date"`
	Action string `json:"action"`
}

// Bill is a tracked legislative proposal.
type Bill struct {
	ID                   string         `json:"id"`
	Title                string         `json:"title"`
	Status               Status         `json:"status"`
	DateIntroduced       string         `json:"dateIntroduced,omitempty"`
	Ministry             string         `json:"ministry"`
	Chamber              Chamber        `json:"chamber,omitempty"`
	Summary              string         `json:"summary"`
	Priority             Priority       `json:"priority,omitempty"`
	State                string         `json:"state,omitempty"`
	GazetteNumber        string         `json:"gazetteNumber,omitempty"`
	CommitteeStatus      string         `json:"committeeStatus,omitempty"`
	FinancialImplication string         `json:"financialImplication,omitempty"`
	KeyStakeholders      []string       `json:"keyStakeholders,omitempty"`
	LegislativeHistory   []HistoryEntry `json:"legislativeHistory,omitempty"`
}

// BillRow is the flat shape served by the remote bill endpoint and the bills table.
type BillRow struct {
	ID             FlexibleID `json:"id"`
	Title          string     `json:"title"`
	Ministry       string     `json:"ministry"`
	Status         string     `json:"status"`
	DateIntroduced string     `json:"date_introduced"`
}

// BillDocument is a bill as stored in the search index.
type BillDocument struct {
	Bill
	Revision  string    `json:"revision"`
	IndexedAt time.Time `json:"indexedAt"`
}
