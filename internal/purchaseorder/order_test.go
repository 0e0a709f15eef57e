package purchaseorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"campusreserve/internal/workflow"
)

func item(desc, qty, price string) Item {
	return Item{Description: desc, Quantity: decimal.RequireFromString(qty), UnitPrice: decimal.RequireFromString(price)}
}

func TestCalculateTotal_RoundsEachLine(t *testing.T) {
	items, total, err := CalculateTotal([]Item{
		item("pipettes", "3", "0.335"),  // 1.005 -> 1.01
		item("beakers", "2", "12.50"),   // 25.00
		item("reagent", "0.5", "9.999"), // 4.9995 -> 5.00
	}, DefaultCurrencyScale)
	require.NoError(t, err)
	require.Equal(t, "1.01", items[0].LineTotal.StringFixed(2))
	require.Equal(t, "5.00", items[2].LineTotal.StringFixed(2))
	require.True(t, total.Equal(decimal.RequireFromString("31.01")), total.String())

	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal)
	}
	require.True(t, sum.Equal(total))
}

func TestCalculateTotal_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		items []Item
		code  string
	}{
		{"empty", nil, "ORDER_ITEMS_EMPTY"},
		{"zero quantity", []Item{item("x", "0", "1")}, "ITEM_QUANTITY_INVALID"},
		{"negative price", []Item{item("x", "1", "-1")}, "ITEM_PRICE_INVALID"},
		{"rounds to zero", []Item{item("x", "1", "0.001")}, "ORDER_TOTAL_INVALID"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := CalculateTotal(tc.items, DefaultCurrencyScale)
			var ve ValidationError
			require.True(t, errors.As(err, &ve))
			require.Equal(t, tc.code, ve.Code)
			require.ErrorIs(t, err, workflow.ErrInvalidInput)
		})
	}
}

func TestService_CreateApproveReject(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	now := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	engine := workflow.NewEngine(workflow.Options[Order]{
		Kind:     workflow.KindPurchaseOrder,
		Store:    store,
		Messages: Messages(),
		Clock:    func() time.Time { return now },
	})
	svc := &Service{Store: store, Engine: engine, Clock: func() time.Time { return now }}
	who := workflow.Requester{ID: "u-1", Name: "Dana"}

	in := Input{
		UDP: "FAC-CHEM", Supplier: "LabSupply", Justification: "Semester stock", Currency: "USD",
		Items: []Item{item("gloves", "10", "2.25")},
	}
	created, err := svc.Create(ctx, who, in)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusPending, created.Status)
	require.Equal(t, "22.50", created.Total.StringFixed(2))
	require.Equal(t, now, created.CreatedAt)

	listed, err := svc.ListMine(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, []Order{created}, listed)

	_, err = engine.RejectText(ctx, created.ID, "mgr", "  ")
	require.ErrorIs(t, err, workflow.ErrMissingRejectionMessage)

	approved, err := engine.Approve(ctx, created.ID, "mgr", "ok, order it")
	require.NoError(t, err)
	require.Equal(t, workflow.StatusApproved, approved.Status)
	require.Equal(t, "ok, order it", *approved.ResponseMessage)

	_, err = engine.RejectText(ctx, created.ID, "mgr", "too late")
	require.ErrorIs(t, err, workflow.ErrInvalidTransition)

	_, err = svc.Create(ctx, workflow.Requester{}, in)
	require.ErrorIs(t, err, workflow.ErrInvalidInput)
}

func TestMessages(t *testing.T) {
	msg := "budget exhausted"
	o := Order{ID: 7, Supplier: "LabSupply", Currency: "USD", Total: decimal.RequireFromString("22.5")}
	o.ResponseMessage = &msg
	require.Equal(t, "Your purchase order #7 to LabSupply for 22.50 USD was rejected: budget exhausted", Messages().Rejected(o))
}
