package certification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"campusreserve/internal/workflow"
)

type Service struct {
	Store  Store
	Engine *workflow.Engine[Request]
	// Location decides which calendar day "today" is for the exam date check.
	Location *time.Location
	Clock    func() time.Time
	Timeout  time.Duration
	Log      *zap.SugaredLogger
}

func (s *Service) Create(ctx context.Context, who workflow.Requester, in Input) (Request, error) {
	if strings.TrimSpace(who.ID) == "" {
		return Request{}, fmt.Errorf("%w: requester is required", workflow.ErrInvalidInput)
	}

	exam, err := ParseDate(strings.TrimSpace(in.ExamDate))
	if err != nil {
		return Request{}, fmt.Errorf("%w: examDate must be YYYY-MM-DD", workflow.ErrInvalidInput)
	}
	now := s.now()
	y, m, d := now.In(s.location()).Date()
	if exam.Before(NewDate(y, m, d).Time) {
		return Request{}, fmt.Errorf("%w: the exam date %s is in the past", workflow.ErrInvalidInput, exam)
	}
	if in.Cost.IsNegative() {
		return Request{}, fmt.Errorf("%w: cost must not be negative", workflow.ErrInvalidInput)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	created, err := s.Store.Create(ctx, Request{
		RequesterID:       who.ID,
		RequesterName:     strings.TrimSpace(who.Name),
		CertificationName: strings.TrimSpace(in.CertificationName),
		Provider:          strings.TrimSpace(in.Provider),
		ExamDate:          exam,
		Cost:              in.Cost.Round(2),
		Currency:          strings.ToUpper(strings.TrimSpace(in.Currency)),
		Justification:     strings.TrimSpace(in.Justification),
		CreatedAt:         now,
		Review:            workflow.Review{Status: workflow.StatusPending},
	})
	if err != nil {
		return Request{}, err
	}
	s.log().Infow("certification request submitted", "id", created.ID, "requester_id", who.ID, "exam_date", created.ExamDate.String())

	if s.Engine != nil {
		s.Engine.Submitted(ctx, created)
	}
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]Request, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.Store.List(ctx, "")
}

func (s *Service) ListMine(ctx context.Context, requesterID string) ([]Request, error) {
	if strings.TrimSpace(requesterID) == "" {
		return nil, fmt.Errorf("%w: requester is required", workflow.ErrInvalidInput)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.Store.List(ctx, requesterID)
}

func (s *Service) Get(ctx context.Context, id int64) (Request, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.Store.Get(ctx, id)
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s *Service) log() *zap.SugaredLogger {
	if s.Log == nil {
		return zap.NewNop().Sugar()
	}
	return s.Log
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// Messages are the requester-facing notification texts for certification requests.
func Messages() workflow.Messages[Request] {
	describe := func(r Request) string {
		return fmt.Sprintf("certification request for %s (%s, exam on %s)", r.CertificationName, r.Provider, r.ExamDate)
	}
	return workflow.Messages[Request]{
		Submitted: func(r Request) string {
			return fmt.Sprintf("Your %s was received and is pending review.", describe(r))
		},
		Approved: func(r Request) string {
			text := fmt.Sprintf("Your %s was approved for %s %s.", describe(r), r.Cost.StringFixed(2), r.Currency)
			if r.ResponseMessage != nil {
				text += " " + *r.ResponseMessage
			}
			return text
		},
		Rejected: func(r Request) string {
			reason := ""
			if r.ResponseMessage != nil {
				reason = *r.ResponseMessage
			}
			return fmt.Sprintf("Your %s was rejected: %s", describe(r), reason)
		},
	}
}

