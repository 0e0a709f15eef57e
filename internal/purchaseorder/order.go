// Package purchaseorder is the purchase order request: line items priced in one currency,
// reviewed through the shared approval engine.
package purchaseorder

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"campusreserve/internal/workflow"
)

type Item struct {
	Description string          `json:"description" validate:"required,max=300"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type Order struct {
	ID            int64           `json:"id"`
	RequesterID   string          `json:"requesterId"`
	RequesterName string          `json:"requesterName,omitempty"`
	UDP           string          `json:"udp"`
	Supplier      string          `json:"supplier"`
	Justification string          `json:"justification"`
	Currency      string          `json:"currency"`
	Items         []Item          `json:"items"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"createdAt"`

	workflow.Review
}

func (o Order) ApprovalID() int64     { return o.ID }
func (o Order) ApprovalOwner() string { return o.RequesterID }

// Input is the requester's order. Line totals and the order total are computed, never taken
// from the caller.
type Input struct {
	// UDP is the budget unit the order is charged to.
	UDP           string `json:"udp" validate:"required,max=64"`
	Supplier      string `json:"supplier" validate:"required,max=200"`
	Justification string `json:"justification" validate:"required,max=2000"`
	Currency      string `json:"currency" validate:"required,len=3,uppercase"`
	Items         []Item `json:"items" validate:"required,min=1,dive"`
}

type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap lets callers treat every order validation failure as invalid input.
func (e ValidationError) Unwrap() error { return workflow.ErrInvalidInput }
