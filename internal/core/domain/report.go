// Package domain provides the scheduling entities, the stage table, the shift calendar & the report shape.
package domain

import (
	"errors"
	"time"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrOrderNotFound  = errors.New("order not found")
)

type StageStatus string

const (
	StageStatusPending   StageStatus = "Pending"
	StageStatusOngoing   StageStatus = "Ongoing"
	StageStatusCompleted StageStatus = "Completed"
	StageStatusUnknown   StageStatus = "Unknown"
)

// StageSlot is one row of an order's timeline
type StageSlot struct {
	Stage           string      `json:"stage"`
	Machine         string      `json:"machine"`
	Worker          string      `json:"worker"`
	Status          StageStatus `json:"status"`
	StartMinute     int         `json:"start_minute"`
	EndMinute       int         `json:"end_minute"`
	DurationMinutes int         `json:"duration_minutes"`
	Start           ClockTime   `json:"start"`
	End             ClockTime   `json:"end"`
	OffsetPercent   float64     `json:"offset_percent"`
	WidthPercent    float64     `json:"width_percent"`
}

// Timeline lays an order's stages out on the shift calendar
type Timeline struct {
	TotalDays    int         `json:"total_days"`
	TotalMinutes int         `json:"total_minutes"`
	Stages       []StageSlot `json:"stages"`
}

// OrderSchedule is the derived view of a single order
type OrderSchedule struct {
	ID             string      `json:"id"`
	CustomerName   string      `json:"customer_name,omitempty"`
	CabinetType    string      `json:"cabinet_type,omitempty"`
	Quantity       int         `json:"quantity"`
	StartDate      string      `json:"start_date"`
	CompletionDate string      `json:"completion_date"`
	Status         OrderStatus `json:"status"`
	Progress       float64     `json:"progress"`
	Priority       Priority    `json:"priority"`
	Completed      bool        `json:"completed"`
	Timeline       Timeline    `json:"timeline"`
}

// StageUtilization is the quantity-weighted completion of one stage
type StageUtilization struct {
	Stage       string `json:"stage"`
	Utilization int    `json:"utilization"`
}

// StageLoad is the remaining work queued in front of one stage
type StageLoad struct {
	Stage string  `json:"stage"`
	Load  float64 `json:"load"`
	Share int     `json:"share"`
}

// PriorityCount is one slice of the active-order priority breakdown
type PriorityCount struct {
	Priority Priority `json:"priority"`
	Count    int      `json:"count"`
	Percent  int      `json:"percent"`
}

// UnspecifiedCabinetType groups orders without a cabinet type
const UnspecifiedCabinetType = "Unspecified"

// TypeCount is one slice of the cabinet-type breakdown over all orders
type TypeCount struct {
	CabinetType string `json:"cabinet_type"`
	Count       int    `json:"count"`
	Percent     int    `json:"percent"`
}

// Summary is the fleet headline numbers
type Summary struct {
	TotalOrders     int             `json:"total_orders"`
	ActiveOrders    int             `json:"active_orders"`
	CompletedOrders int             `json:"completed_orders"`
	DueSoon         int             `json:"due_soon"`
	TotalUnits      int             `json:"total_units"`
	WIPUnits        int             `json:"wip_units"`
	Priorities      []PriorityCount `json:"priorities"`
	CabinetTypes    []TypeCount     `json:"cabinet_types"`
}

// Report is everything derived from one snapshot
type Report struct {
	CycleID       string             `json:"cycle_id"`
	GeneratedAt   time.Time          `json:"generated_at"`
	ReferenceDate string             `json:"reference_date"`
	Orders        []OrderSchedule    `json:"orders"`
	Utilization   []StageUtilization `json:"utilization"`
	Load          []StageLoad        `json:"load"`
	Summary       Summary            `json:"summary"`
	// Upcoming lists active order ids with a usable due date, earliest first
	Upcoming []string `json:"upcoming_deadlines"`
}

// FindOrder returns the schedule of one order in the report
func (r *Report) FindOrder(id string) (*OrderSchedule, error) {
	for i := range r.Orders {
		if r.Orders[i].ID == id {
			return &r.Orders[i], nil
		}
	}
	return nil, ErrOrderNotFound
}
