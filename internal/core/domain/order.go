package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the order store
const DateLayout = "2006-01-02"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusInProgress OrderStatus = "In Progress"
	OrderStatusCompleted  OrderStatus = "Completed"
)

// IsCompleted matches the upstream status case-insensitively
func (s OrderStatus) IsCompleted() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(OrderStatusCompleted))
}

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// ParsePriority normalizes an upstream priority; unrecognized values are LOW
func ParsePriority(raw string) Priority {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(raw))); p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p
	default:
		return PriorityLow
	}
}

// PriorityForDaysRemaining is the urgency class the order store assigns from the due date
func PriorityForDaysRemaining(days int) Priority {
	switch {
	case days <= 7:
		return PriorityHigh
	case days <= 21:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Order is a read-only snapshot of one production order
type Order struct {
	ID             string      `json:"id" yaml:"id"`
	CustomerName   string      `json:"customer_name,omitempty" yaml:"customer_name"`
	CabinetType    string      `json:"cabinet_type,omitempty" yaml:"cabinet_type"`
	Quantity       int         `json:"quantity" yaml:"quantity"`
	StartDate      string      `json:"start_date" yaml:"start_date"`           // YYYY-MM-DD
	CompletionDate string      `json:"completion_date" yaml:"completion_date"` // YYYY-MM-DD
	Status         OrderStatus `json:"status" yaml:"status"`
	RawProgress    *float64    `json:"progress,omitempty" yaml:"progress"`
	Priority       string      `json:"priority,omitempty" yaml:"priority"` // informational only
}

// Start parses StartDate
func (o Order) Start() (time.Time, bool) {
	return ParseDate(o.StartDate)
}

// Deadline parses CompletionDate
func (o Order) Deadline() (time.Time, bool) {
	return ParseDate(o.CompletionDate)
}

// Weight is the quantity used in fleet aggregates; missing quantities count once
func (o Order) Weight() float64 {
	if o.Quantity <= 0 {
		return 1
	}
	return float64(o.Quantity)
}

// Assignment binds a worker and machine to one stage of one order
type Assignment struct {
	OrderID   string `json:"order_id" yaml:"order_id"`
	StageName string `json:"stage" yaml:"stage"`
	Worker    string `json:"worker" yaml:"worker"`
	Machine   string `json:"machine" yaml:"machine"`
}

// Default worker labels when no assignment exists
const (
	WorkerManualTeam = "Manual Team"
	WorkerUnassigned = "Unassigned"
)

// Snapshot is the immutable input of one computation cycle
type Snapshot struct {
	Orders        []Order      `json:"orders" yaml:"orders"`
	Assignments   []Assignment `json:"assignments" yaml:"assignments"`
	ReferenceDate time.Time    `json:"reference_date" yaml:"-"`
}

// Reference is the snapshot's "today", the current UTC date when left unset
func (s *Snapshot) Reference() time.Time {
	return ReferenceOrToday(s.ReferenceDate)
}

// ReferenceOrToday resolves a zero reference date to the current UTC date
func ReferenceOrToday(ref time.Time) time.Time {
	if ref.IsZero() {
		return Today(time.Now())
	}
	return ref
}

// ParseDate parses a YYYY-MM-DD value into a UTC midnight
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Today truncates t to its calendar date in UTC
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole days from a to b, both calendar dates
func DaysBetween(a, b time.Time) int {
	return int(Today(b).Sub(Today(a)).Hours() / 24)
}
