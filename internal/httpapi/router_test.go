package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campusreserve/internal/catalog"
	"campusreserve/internal/notify"
	"campusreserve/pkg/config"
	"campusreserve/pkg/token"
)

const secret = "router-test-secret"

// Saturday 2025-03-01 12:00 UTC.
var bookingNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (r *recorder) Notify(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return nil
}

func (r *recorder) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.got))
	for _, n := range r.got {
		out = append(out, n.Kind+":"+n.Event)
	}
	return out
}

type harness struct {
	t       *testing.T
	handler http.Handler
	notes   *recorder
	lab     catalog.Resource
	closed  catalog.Resource
}

func newHarness(t *testing.T, enforceOverlap bool) *harness {
	t.Helper()
	resources := catalog.NewMemory()
	lab, err := resources.Upsert(context.Background(), catalog.Resource{Kind: catalog.KindLaboratory, Name: "Chemistry", Capacity: 10, IsActive: true})
	require.NoError(t, err)
	closed, err := resources.Upsert(context.Background(), catalog.Resource{Kind: catalog.KindRoom, Name: "Old hall", Capacity: 50, IsActive: false})
	require.NoError(t, err)

	cfg := config.Config{
		StoreBackend:   config.BackendMemory,
		RequestTimeout: 5 * time.Second,
		Auth:           config.AuthConfig{JWTSecret: secret},
		Booking:        config.BookingConfig{Timezone: "UTC", Location: time.UTC, EnforceOverlap: enforceOverlap},
	}
	notes := &recorder{}
	h, err := NewRouter(Dependencies{
		Cfg:      cfg,
		Backend:  MemoryBackend(cfg, resources),
		Notifier: notes,
		Clock:    func() time.Time { return bookingNow },
	})
	require.NoError(t, err)
	return &harness{t: t, handler: h, notes: notes, lab: lab, closed: closed}
}

func (h *harness) tokenFor(sub, name string, roles ...string) string {
	tok, err := token.Issue(secret, "", "", sub, name, roles, time.Now(), time.Hour)
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(method, path, tok string, body any) (*httptest.ResponseRecorder, map[string]any) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(h.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "no error envelope in %v", body)
	return e["code"].(string)
}

func booking(resourceID int64, date, from, to string, attendees int) map[string]any {
	return map[string]any{
		"resourceId":          resourceID,
		"activityDescription": "Titration practice",
		"numberOfAttendees":   attendees,
		"startDate":           date,
		"endDate":             date,
		"startTime":           from,
		"endTime":             to,
	}
}

func TestHealthz(t *testing.T) {
	h := newHarness(t, false)
	rec, _ := h.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestAuthRequired(t *testing.T) {
	h := newHarness(t, false)

	rec, body := h.do(http.MethodGet, "/v1/resources", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "UNAUTHORIZED", errorCode(t, body))

	bad, err := token.Issue("other-secret", "", "", "u-1", "", nil, time.Now(), time.Hour)
	require.NoError(t, err)
	rec, _ = h.do(http.MethodGet, "/v1/resources", bad, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResources(t *testing.T) {
	h := newHarness(t, false)
	alice := h.tokenFor("u-alice", "Alice", "requester")
	manager := h.tokenFor("u-mgr", "Marta", "manager")

	rec, body := h.do(http.MethodGet, "/v1/resources", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["items"], 1)

	rec, _ = h.do(http.MethodGet, "/v1/resources?all=true", alice, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = h.do(http.MethodGet, "/v1/resources?all=true", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["items"], 2)

	rec, body = h.do(http.MethodGet, "/v1/resources?kind=room", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, body["items"])

	rec, body = h.do(http.MethodGet, "/v1/resources?kind=gym", alice, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_FAILED", errorCode(t, body))

	rec, body = h.do(http.MethodGet, "/v1/resources/2", alice, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "INVALID_SELECTION", errorCode(t, body))
}

func TestReservationFlow(t *testing.T) {
	h := newHarness(t, false)
	alice := h.tokenFor("u-alice", "Alice", "requester")
	bob := h.tokenFor("u-bob", "Bob", "requester")
	manager := h.tokenFor("u-mgr", "Marta", "manager")

	// Saturday.
	rec, body := h.do(http.MethodPost, "/v1/reservations", alice, booking(h.lab.ID, "2025-03-08", "09:00", "10:00", 5))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "RULE_VIOLATION", errorCode(t, body))
	require.Equal(t, "WEEKDAY", body["error"].(map[string]any)["rule"])

	rec, body = h.do(http.MethodPost, "/v1/reservations", alice, booking(h.closed.ID, "2025-03-10", "08:00", "09:00", 5))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "INVALID_SELECTION", errorCode(t, body))

	rec, body = h.do(http.MethodPost, "/v1/reservations", alice, `{"resourceId":1,"unknown":true}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_FAILED", errorCode(t, body))

	rec, body = h.do(http.MethodPost, "/v1/reservations", alice, booking(h.lab.ID, "2025-03-10", "08:00", "09:00", 10))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, float64(0), body["status"])
	require.Equal(t, "2025-03-10", body["startDate"])
	require.Equal(t, "09:00", body["endTime"])
	id := int64(body["id"].(float64))
	path := "/v1/reservations/" + jsonID(id)

	rec, _ = h.do(http.MethodPost, path+"/approve", alice, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = h.do(http.MethodPost, path+"/reject", manager, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "REJECTION_MESSAGE_REQUIRED", errorCode(t, body))

	rec, body = h.do(http.MethodPost, path+"/reject", manager, map[string]string{"message": "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "REJECTION_MESSAGE_REQUIRED", errorCode(t, body))

	rec, body = h.do(http.MethodPost, path+"/approve", manager, map[string]string{"message": "enjoy"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(1), body["status"])
	require.Equal(t, "enjoy", body["responseMessage"])

	rec, body = h.do(http.MethodPost, path+"/approve", manager, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "ALREADY_RESOLVED", errorCode(t, body))

	rec, body = h.do(http.MethodPost, "/v1/reservations/999/approve", manager, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "INVALID_SELECTION", errorCode(t, body))

	rec, body = h.do(http.MethodGet, "/v1/resources/"+jsonID(h.lab.ID)+"/availability?from=2025-03-10&to=2025-03-10", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	require.Equal(t, "Alice: Titration practice", items[0].(map[string]any)["label"])

	rec, body = h.do(http.MethodGet, "/v1/resources/"+jsonID(h.lab.ID)+"/availability?from=2025-03-11", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, body["items"])

	// Other requesters neither see nor list it.
	rec, _ = h.do(http.MethodGet, path, bob, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec, body = h.do(http.MethodGet, "/v1/reservations", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, body["items"])
	rec, _ = h.do(http.MethodGet, path+"/events", bob, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = h.do(http.MethodGet, path+"/events", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["items"], 2)

	rec, body = h.do(http.MethodGet, "/v1/reservations", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["items"], 1)
	rec, body = h.do(http.MethodGet, "/v1/reservations?mine=true", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, body["items"])

	require.Equal(t, []string{"reservation:submitted", "reservation:approved"}, h.notes.events())
}

func TestReservation_OverlapEnforced(t *testing.T) {
	h := newHarness(t, true)
	alice := h.tokenFor("u-alice", "Alice", "requester")
	manager := h.tokenFor("u-mgr", "Marta", "manager")

	_, first := h.do(http.MethodPost, "/v1/reservations", alice, booking(h.lab.ID, "2025-03-10", "08:00", "10:00", 2))
	_, second := h.do(http.MethodPost, "/v1/reservations", alice, booking(h.lab.ID, "2025-03-10", "09:00", "11:00", 2))

	rec, _ := h.do(http.MethodPost, "/v1/reservations/"+jsonID(int64(first["id"].(float64)))+"/approve", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := h.do(http.MethodPost, "/v1/reservations/"+jsonID(int64(second["id"].(float64)))+"/approve", manager, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "SLOT_TAKEN", errorCode(t, body))

	rec, body = h.do(http.MethodPost, "/v1/reservations", alice, booking(h.lab.ID, "2025-03-10", "09:30", "10:30", 2))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "SLOT_TAKEN", body["error"].(map[string]any)["rule"])
}

func TestPurchaseOrderAndCertificationFlow(t *testing.T) {
	h := newHarness(t, false)
	dana := h.tokenFor("u-dana", "Dana", "requester")
	manager := h.tokenFor("u-mgr", "Marta", "manager")

	rec, body := h.do(http.MethodPost, "/v1/purchase-orders", dana, map[string]any{
		"udp": "FAC-CHEM", "supplier": "LabSupply", "justification": "Stock", "currency": "USD",
		"items": []map[string]any{{"description": "gloves", "quantity": "10", "unitPrice": "2.25"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, "22.5", body["total"])
	orderPath := "/v1/purchase-orders/" + jsonID(int64(body["id"].(float64)))

	rec, body = h.do(http.MethodPost, "/v1/purchase-orders", dana, map[string]any{
		"udp": "FAC-CHEM", "supplier": "LabSupply", "justification": "Stock", "currency": "usd",
		"items": []map[string]any{},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_FAILED", errorCode(t, body))

	rec, body = h.do(http.MethodPost, orderPath+"/reject", manager, map[string]string{"message": "no disponible"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(2), body["status"])
	require.Equal(t, "no disponible", body["responseMessage"])

	rec, body = h.do(http.MethodPost, "/v1/certifications", dana, map[string]any{
		"certificationName": "CCNA", "provider": "Cisco", "examDate": "2025-04-02",
		"cost": "300", "currency": "USD", "justification": "Network lab",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, "2025-04-02", body["examDate"])
	certPath := "/v1/certifications/" + jsonID(int64(body["id"].(float64)))

	rec, body = h.do(http.MethodPost, certPath+"/approve", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(1), body["status"])

	rec, body = h.do(http.MethodGet, "/v1/certifications", dana, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["items"], 1)

	require.Equal(t, []string{
		"purchase_order:submitted",
		"purchase_order:rejected",
		"certification:submitted",
		"certification:approved",
	}, h.notes.events())
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
