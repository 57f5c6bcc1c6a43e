// ABOUTME: Data models for CRM entities
// ABOUTME: Defines Contact, Deal, Task, and Activity records plus their enums
package models

import (
	"time"
)

// ID identifies a record within its collection. Remote backends assign
// integers rendered in decimal; the mock store assigns ULIDs. The empty ID
// means an unset reference.
type ID string

// Kind names one of the four entity collections.
type Kind string

const (
	KindContact  Kind = "contact"
	KindDeal     Kind = "deal"
	KindTask     Kind = "task"
	KindActivity Kind = "activity"
)

// Kinds lists every entity kind.
var Kinds = []Kind{KindContact, KindDeal, KindTask, KindActivity}

type Contact struct {
	ID           ID        `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Company      string    `json:"company,omitempty"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

type Deal struct {
	ID            ID         `json:"id"`
	Title         string     `json:"title"`
	Value         float64    `json:"value"`
	ContactID     ID         `json:"contact_id,omitempty"`
	Stage         Stage      `json:"stage"`
	Probability   int        `json:"probability"`
	ExpectedClose *time.Time `json:"expected_close,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Task struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	ContactID ID        `json:"contact_id,omitempty"`
	DueDate   time.Time `json:"due_date"`
	Priority  Priority  `json:"priority"`
	Completed bool      `json:"completed"`
}

type Activity struct {
	ID          ID           `json:"id"`
	Type        ActivityType `json:"type"`
	ContactID   ID           `json:"contact_id,omitempty"`
	DealID      ID           `json:"deal_id,omitempty"`
	Description string       `json:"description"`
	Date        time.Time    `json:"date"`
	Completed   bool         `json:"completed"`
}

// Stage is the pipeline position of a deal.
type Stage string

const (
	StageLead        Stage = "lead"
	StageQualified   Stage = "qualified"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageClosedWon   Stage = "closed-won"
	StageClosedLost  Stage = "closed-lost"
)

// Stages is the fixed pipeline order.
var Stages = []Stage{
	StageLead,
	StageQualified,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

var stageLabels = map[Stage]string{
	StageLead:        "Lead",
	StageQualified:   "Qualified",
	StageProposal:    "Proposal",
	StageNegotiation: "Negotiation",
	StageClosedWon:   "Won",
	StageClosedLost:  "Lost",
}

func (s Stage) Valid() bool {
	_, ok := stageLabels[s]
	return ok
}

// Label returns the display name used by boards and reports.
func (s Stage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return string(s)
}

// Closed reports whether the deal has left the active pipeline.
func (s Stage) Closed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// Priority constants.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ActivityType constants.
type ActivityType string

const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivityMeeting ActivityType = "meeting"
	ActivityNote    ActivityType = "note"
)

// ActivityTypes is the order used by activity reports.
var ActivityTypes = []ActivityType{ActivityEmail, ActivityCall, ActivityMeeting, ActivityNote}

func (a ActivityType) Valid() bool {
	switch a {
	case ActivityCall, ActivityEmail, ActivityMeeting, ActivityNote:
		return true
	}
	return false
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfDay returns the first instant of t's local day.
func StartOfDay(t time.Time) time.Time {
	return DateOnly(t.In(time.Local))
}
