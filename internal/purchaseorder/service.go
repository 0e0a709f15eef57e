package purchaseorder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"campusreserve/internal/workflow"
)

type Service struct {
	Store   Store
	Engine  *workflow.Engine[Order]
	Clock   func() time.Time
	Timeout time.Duration
	Log     *zap.SugaredLogger
}

func (s *Service) Create(ctx context.Context, who workflow.Requester, in Input) (Order, error) {
	if strings.TrimSpace(who.ID) == "" {
		return Order{}, fmt.Errorf("%w: requester is required", workflow.ErrInvalidInput)
	}
	items, total, err := CalculateTotal(in.Items, DefaultCurrencyScale)
	if err != nil {
		return Order{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	created, err := s.Store.Create(ctx, Order{
		RequesterID:   who.ID,
		RequesterName: strings.TrimSpace(who.Name),
		UDP:           strings.TrimSpace(in.UDP),
		Supplier:      strings.TrimSpace(in.Supplier),
		Justification: strings.TrimSpace(in.Justification),
		Currency:      strings.ToUpper(strings.TrimSpace(in.Currency)),
		Items:         items,
		Total:         total,
		CreatedAt:     s.now(),
		Review:        workflow.Review{Status: workflow.StatusPending},
	})
	if err != nil {
		return Order{}, err
	}
	s.log().Infow("purchase order submitted", "id", created.ID, "requester_id", who.ID, "total", created.Total.StringFixed(int32(DefaultCurrencyScale)))

	if s.Engine != nil {
		s.Engine.Submitted(ctx, created)
	}
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.Store.List(ctx, "")
}

func (s *Service) ListMine(ctx context.Context, requesterID string) ([]Order, error) {
	if strings.TrimSpace(requesterID) == "" {
		return nil, fmt.Errorf("%w: requester is required", workflow.ErrInvalidInput)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.Store.List(ctx, requesterID)
}

func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
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

// Messages are the requester-facing notification texts for purchase orders.
func Messages() workflow.Messages[Order] {
	describe := func(o Order) string {
		return fmt.Sprintf("purchase order #%d to %s for %s %s", o.ID, o.Supplier, o.Total.StringFixed(int32(DefaultCurrencyScale)), o.Currency)
	}
	return workflow.Messages[Order]{
		Submitted: func(o Order) string {
			return fmt.Sprintf("Your %s was received and is pending review.", describe(o))
		},
		Approved: func(o Order) string {
			text := fmt.Sprintf("Your %s was approved.", describe(o))
			if o.ResponseMessage != nil {
				text += " " + *o.ResponseMessage
			}
			return text
		},
		Rejected: func(o Order) string {
			reason := ""
			if o.ResponseMessage != nil {
				reason = *o.ResponseMessage
			}
			return fmt.Sprintf("Your %s was rejected: %s", describe(o), reason)
		},
	}
}
