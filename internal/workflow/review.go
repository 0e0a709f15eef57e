package workflow

import "time"

// Review holds the status columns every approvable entity shares. Embedding it gives an
// entity ApprovalStatus and the persisted JSON fields for free.
type Review struct {
	Status          Status     `json:"status"`
	ResponseMessage *string    `json:"responseMessage,omitempty"`
	ReviewedBy      *string    `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
}

func (r Review) ApprovalStatus() Status { return r.Status }

// Applied returns r after decision d.
func (r Review) Applied(d Decision) Review {
	out := Review{Status: d.To}
	if d.Message != nil {
		m := *d.Message
		out.ResponseMessage = &m
	}
	if d.ReviewerID != "" {
		by := d.ReviewerID
		out.ReviewedBy = &by
	}
	at := d.At
	out.ReviewedAt = &at
	return out
}

// ScanReview adapts nullable review columns scanned by pgx.
func ScanReview(status int16, message, reviewedBy *string, reviewedAt *time.Time) Review {
	return Review{
		Status:          Status(status),
		ResponseMessage: message,
		ReviewedBy:      reviewedBy,
		ReviewedAt:      reviewedAt,
	}
}

// Requester identifies who submits an approvable entity. It comes from the authentication layer.
type Requester struct {
	ID   string
	Name string
}
