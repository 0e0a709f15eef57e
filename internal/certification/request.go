// Package certification is the request to fund a professional certification exam.
package certification

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"campusreserve/internal/workflow"
)

// DateLayout is the wire layout of ExamDate.
const DateLayout = "2006-01-02"

type Request struct {
	ID                int64           `json:"id"`
	RequesterID       string          `json:"requesterId"`
	RequesterName     string          `json:"requesterName,omitempty"`
	CertificationName string          `json:"certificationName"`
	Provider          string          `json:"provider"`
	ExamDate          Date            `json:"examDate"`
	Cost              decimal.Decimal `json:"cost"`
	Currency          string          `json:"currency"`
	Justification     string          `json:"justification"`
	CreatedAt         time.Time       `json:"createdAt"`

	workflow.Review
}

func (r Request) ApprovalID() int64     { return r.ID }
func (r Request) ApprovalOwner() string { return r.RequesterID }

// Date is a calendar day without a clock, serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(DateLayout) }

// MarshalJSON shadows the embedded time.Time encoding.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Input struct {
	CertificationName string          `json:"certificationName" validate:"required,max=200"`
	Provider          string          `json:"provider" validate:"required,max=200"`
	ExamDate          string          `json:"examDate" validate:"required,datetime=2006-01-02"`
	Cost              decimal.Decimal `json:"cost"`
	Currency          string          `json:"currency" validate:"required,len=3,uppercase"`
	Justification     string          `json:"justification" validate:"required,max=2000"`
}
