// Package reservation is the laboratory and room booking request: submission through the
// booking rules, storage, and the reviewer texts used by the approval engine.
package reservation

import (
	"encoding/json"
	"time"

	"campusreserve/internal/validation"
	"campusreserve/internal/workflow"
)

// Request is a booking of one resource. Start and End carry the booking location.
type Request struct {
	ID                  int64
	ResourceID          int64
	ResourceName        string
	RequesterID         string
	RequesterName       string
	ActivityDescription string
	NumberOfAttendees   int
	Start               time.Time
	End                 time.Time
	CreatedAt           time.Time

	workflow.Review
}

func (r Request) ApprovalID() int64     { return r.ID }
func (r Request) ApprovalOwner() string { return r.RequesterID }

// Interval is the half-open span the request holds once approved.
func (r Request) Interval() validation.Interval {
	return validation.Interval{Start: r.Start, End: r.End}
}

type requestJSON struct {
	ID                  int64           `json:"id"`
	ResourceID          int64           `json:"resourceId"`
	ResourceName        string          `json:"resourceName,omitempty"`
	RequesterID         string          `json:"requesterId"`
	RequesterName       string          `json:"requesterName,omitempty"`
	ActivityDescription string          `json:"activityDescription"`
	NumberOfAttendees   int             `json:"numberOfAttendees"`
	StartDate           string          `json:"startDate"`
	EndDate             string          `json:"endDate"`
	StartTime           string          `json:"startTime"`
	EndTime             string          `json:"endTime"`
	Status              workflow.Status `json:"status"`
	ResponseMessage     *string         `json:"responseMessage,omitempty"`
	ReviewedBy          *string         `json:"reviewedBy,omitempty"`
	ReviewedAt          *time.Time      `json:"reviewedAt,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// MarshalJSON renders the persisted shape: separate date and time fields for each end,
// written in the location the instants carry.
func (r Request) MarshalJSON() ([]byte, error) {
	startDate, startTime := validation.SplitSlot(r.Start, nil)
	endDate, endTime := validation.SplitSlot(r.End, nil)
	return json.Marshal(requestJSON{
		ID:                  r.ID,
		ResourceID:          r.ResourceID,
		ResourceName:        r.ResourceName,
		RequesterID:         r.RequesterID,
		RequesterName:       r.RequesterName,
		ActivityDescription: r.ActivityDescription,
		NumberOfAttendees:   r.NumberOfAttendees,
		StartDate:           startDate,
		EndDate:             endDate,
		StartTime:           startTime,
		EndTime:             endTime,
		Status:              r.Status,
		ResponseMessage:     r.ResponseMessage,
		ReviewedBy:          r.ReviewedBy,
		ReviewedAt:          r.ReviewedAt,
		CreatedAt:           r.CreatedAt,
	})
}

// Payload is what a requester submits. The resource is chosen separately.
type Payload struct {
	ActivityDescription string `json:"activityDescription" validate:"required,max=500"`
	// Zero or negative attendee counts are left to the capacity rule.
	NumberOfAttendees int    `json:"numberOfAttendees"`
	StartDate         string `json:"startDate" validate:"required"`
	EndDate           string `json:"endDate" validate:"required"`
	StartTime         string `json:"startTime" validate:"required"`
	EndTime           string `json:"endTime" validate:"required"`
}

type Requester = workflow.Requester
