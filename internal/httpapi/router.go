package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"campusreserve/internal/api"
	"campusreserve/internal/approval"
	"campusreserve/internal/availability"
	"campusreserve/internal/certification"
	"campusreserve/internal/notify"
	"campusreserve/internal/purchaseorder"
	"campusreserve/internal/reservation"
	"campusreserve/internal/workflow"
	"campusreserve/pkg/config"
	"campusreserve/pkg/token"
)

type Dependencies struct {
	Cfg      config.Config
	Log      *zap.SugaredLogger
	Backend  Backend
	Notifier notify.Notifier
	// Clock is the booking clock; nil means time.Now.
	Clock func() time.Time
}

func NewRouter(deps Dependencies) (http.Handler, error) {
	if err := deps.Backend.validate(); err != nil {
		return nil, err
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	cfg := deps.Cfg
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(log.Named("http")))
	r.Use(middleware.Recoverer)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAgeSeconds:  600,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	b := deps.Backend
	view := availability.NewView(b.Reservations)

	reservations := workflow.NewEngine(workflow.Options[reservation.Request]{
		Kind:     workflow.KindReservation,
		Store:    b.Reservations,
		Notifier: deps.Notifier,
		Messages: reservation.Messages(),
		Log:      log,
		Timeout:  cfg.RequestTimeout,
		Clock:    clock,
	})
	reservationSvc := &reservation.Service{
		Catalog:  b.Catalog,
		Store:    b.Reservations,
		Engine:   reservations,
		Location: cfg.Booking.Location,
		Clock:    clock,
		Timeout:  cfg.RequestTimeout,
		Log:      log.Named("reservation"),
	}
	if cfg.Booking.EnforceOverlap {
		reservationSvc.Busy = view
	}

	orders := workflow.NewEngine(workflow.Options[purchaseorder.Order]{
		Kind:     workflow.KindPurchaseOrder,
		Store:    b.PurchaseOrders,
		Notifier: deps.Notifier,
		Messages: purchaseorder.Messages(),
		Log:      log,
		Timeout:  cfg.RequestTimeout,
		Clock:    clock,
	})
	orderSvc := &purchaseorder.Service{
		Store:   b.PurchaseOrders,
		Engine:  orders,
		Clock:   clock,
		Timeout: cfg.RequestTimeout,
		Log:     log.Named("purchase_order"),
	}

	certs := workflow.NewEngine(workflow.Options[certification.Request]{
		Kind:     workflow.KindCertification,
		Store:    b.Certifications,
		Notifier: deps.Notifier,
		Messages: certification.Messages(),
		Log:      log,
		Timeout:  cfg.RequestTimeout,
		Clock:    clock,
	})
	certSvc := &certification.Service{
		Store:    b.Certifications,
		Engine:   certs,
		Location: cfg.Booking.Location,
		Clock:    clock,
		Timeout:  cfg.RequestTimeout,
		Log:      log.Named("certification"),
	}

	resources := resourceHandlers{Catalog: b.Catalog, Log: log}
	availabilityHandlers := availability.Handlers{View: view, Catalog: b.Catalog, Location: cfg.Booking.Location, Log: log}
	reservationHandlers := reservation.Handlers{Service: reservationSvc, Log: log}
	orderHandlers := purchaseorder.Handlers{Service: orderSvc, Log: log}
	certHandlers := certification.Handlers{Service: certSvc, Log: log}

	verifier := token.Verifier{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.Issuer, Audience: cfg.Auth.Audience}

	// v1
	r.Route("/v1", func(r chi.Router) {
		r.Use(api.Authenticate(verifier, log.Named("auth")))

		r.Get("/resources", resources.List)
		r.Get("/resources/{id}", resources.Get)
		r.Get("/resources/{id}/availability", availabilityHandlers.Get)

		mountReviewed(r, "/reservations", reservationHandlers.Create, reservationHandlers.List, reservationHandlers.Get,
			approval.Handlers[reservation.Request]{Engine: reservations, Get: reservationSvc.Get, Log: log})
		mountReviewed(r, "/purchase-orders", orderHandlers.Create, orderHandlers.List, orderHandlers.Get,
			approval.Handlers[purchaseorder.Order]{Engine: orders, Get: orderSvc.Get, Log: log})
		mountReviewed(r, "/certifications", certHandlers.Create, certHandlers.List, certHandlers.Get,
			approval.Handlers[certification.Request]{Engine: certs, Get: certSvc.Get, Log: log})
	})

	return r, nil
}

// mountReviewed registers the create/list/get routes of one approvable kind plus the shared
// review routes. Approve and reject are reserved to managers.
func mountReviewed[T workflow.Approvable](r chi.Router, path string, create, list, get http.HandlerFunc, review approval.Handlers[T]) {
	r.Route(path, func(r chi.Router) {
		r.Post("/", create)
		r.Get("/", list)
		r.Get("/{id}", get)
		r.Get("/{id}/events", review.Events)

		r.Group(func(r chi.Router) {
			r.Use(api.RequireRole(api.RoleManager))
			r.Post("/{id}/approve", review.Approve)
			r.Post("/{id}/reject", review.Reject)
		})
	})
}
