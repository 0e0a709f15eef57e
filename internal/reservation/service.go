package reservation

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"campusreserve/internal/catalog"
	"campusreserve/internal/validation"
	"campusreserve/internal/workflow"
)

// Busy reports the approved intervals of a resource intersecting [from, to).
type Busy interface {
	Intervals(ctx context.Context, resourceID int64, from, to time.Time) ([]validation.Interval, error)
}

type Service struct {
	Catalog catalog.Catalog
	Store   Store
	Engine  *workflow.Engine[Request]
	// Busy enables the double-booking rule at submission. Nil leaves overlaps to reviewers.
	Busy     Busy
	Location *time.Location
	Clock    func() time.Time
	Timeout  time.Duration
	Log      *zap.SugaredLogger
}

// Submit validates a booking and stores it as Pending. Nothing is persisted when a rule fails.
func (s *Service) Submit(ctx context.Context, who Requester, resourceID int64, p Payload) (Request, error) {
	if strings.TrimSpace(who.ID) == "" {
		return Request{}, fmt.Errorf("%w: requester is required", workflow.ErrInvalidInput)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := catalog.Bookable(ctx, s.Catalog, resourceID)
	if err != nil {
		return Request{}, err
	}

	start, end, err := validation.ParseSlot(p.StartDate, p.StartTime, p.EndDate, p.EndTime, s.location())
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", workflow.ErrInvalidInput, err)
	}

	now := s.now()
	proposal := validation.Proposal{Start: start, End: end, Attendees: p.NumberOfAttendees}
	if err := validation.Validate(res.Capacity, proposal, now); err != nil {
		s.log().Infow("reservation refused", "resource_id", resourceID, "requester_id", who.ID, "reason", err)
		return Request{}, err
	}

	if s.Busy != nil {
		busy, err := s.Busy.Intervals(ctx, resourceID, start, end)
		if err != nil {
			return Request{}, fmt.Errorf("load availability: %w", err)
		}
		if err := validation.CheckOverlap(start, end, slices.Values(busy)); err != nil {
			s.log().Infow("reservation refused", "resource_id", resourceID, "requester_id", who.ID, "reason", err)
			return Request{}, err
		}
	}

	created, err := s.Store.Create(ctx, Request{
		ResourceID:          res.ID,
		ResourceName:        res.Name,
		RequesterID:         who.ID,
		RequesterName:       strings.TrimSpace(who.Name),
		ActivityDescription: strings.TrimSpace(p.ActivityDescription),
		NumberOfAttendees:   p.NumberOfAttendees,
		Start:               start,
		End:                 end,
		CreatedAt:           now,
		Review:              workflow.Review{Status: workflow.StatusPending},
	})
	if err != nil {
		return Request{}, err
	}
	s.log().Infow("reservation submitted", "id", created.ID, "resource_id", resourceID, "requester_id", who.ID)

	if s.Engine != nil {
		s.Engine.Submitted(ctx, created)
	}
	return created, nil
}

func (s *Service) ListAll(ctx context.Context) ([]Request, error) {
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
		return s.Clock().In(s.location())
	}
	return time.Now().In(s.location())
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
