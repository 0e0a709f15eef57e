package certification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"campusreserve/internal/workflow"
)

func newService(now time.Time) (*Service, *workflow.Engine[Request]) {
	store := NewMemory()
	clock := func() time.Time { return now }
	engine := workflow.NewEngine(workflow.Options[Request]{
		Kind:     workflow.KindCertification,
		Store:    store,
		Messages: Messages(),
		Clock:    clock,
	})
	return &Service{Store: store, Engine: engine, Clock: clock}, engine
}

func input(examDate string) Input {
	return Input{
		CertificationName: "CCNA",
		Provider:          "Cisco",
		ExamDate:          examDate,
		Cost:              decimal.RequireFromString("300"),
		Currency:          "USD",
		Justification:     "Network lab instructor",
	}
}

func TestCreate_ExamDate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	svc, _ := newService(now)
	who := workflow.Requester{ID: "u-1"}

	_, err := svc.Create(ctx, who, input("2025-03-09"))
	require.ErrorIs(t, err, workflow.ErrInvalidInput)

	today, err := svc.Create(ctx, who, input("2025-03-10"))
	require.NoError(t, err, "today is not in the past")
	require.Equal(t, NewDate(2025, 3, 10), today.ExamDate)

	_, err = svc.Create(ctx, who, input("10/03/2025"))
	require.ErrorIs(t, err, workflow.ErrInvalidInput)

	// At 23:00 UTC it is already the 11th east of UTC.
	svc.Location = time.FixedZone("east", 3*60*60)
	_, err = svc.Create(ctx, who, input("2025-03-10"))
	require.ErrorIs(t, err, workflow.ErrInvalidInput)

	neg := input("2025-04-01")
	neg.Cost = decimal.RequireFromString("-1")
	_, err = svc.Create(ctx, who, neg)
	require.ErrorIs(t, err, workflow.ErrInvalidInput)
}

func TestCreate_JSONAndWorkflow(t *testing.T) {
	ctx := context.Background()
	svc, engine := newService(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	created, err := svc.Create(ctx, workflow.Requester{ID: "u-1", Name: "Eva"}, input("2025-05-20"))
	require.NoError(t, err)

	b, err := json.Marshal(created)
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal(b, &wire))
	require.Equal(t, "2025-05-20", wire["examDate"])
	require.Equal(t, "300", wire["cost"])
	require.Equal(t, float64(0), wire["status"])

	var back Request
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, created.ExamDate, back.ExamDate)

	rejected, err := engine.RejectText(ctx, created.ID, "mgr", "no budget this quarter")
	require.NoError(t, err)
	require.Equal(t, workflow.StatusRejected, rejected.Status)
	require.Equal(t, "mgr", *rejected.ReviewedBy)

	_, err = engine.Approve(ctx, created.ID, "mgr", "")
	require.ErrorIs(t, err, workflow.ErrInvalidTransition)

	timeline, err := engine.Timeline(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 2)
	require.Equal(t, "SUBMITTED", timeline[0].EventType)
	require.Equal(t, "REJECTED", timeline[1].EventType)

	mine, err := svc.ListMine(ctx, "u-2")
	require.NoError(t, err)
	require.Empty(t, mine)
}
