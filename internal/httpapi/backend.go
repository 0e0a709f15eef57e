package httpapi

import (
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"campusreserve/internal/catalog"
	"campusreserve/internal/certification"
	"campusreserve/internal/notify"
	"campusreserve/internal/purchaseorder"
	"campusreserve/internal/reservation"
	"campusreserve/pkg/config"
)

// Backend is the storage every route reads and writes.
type Backend struct {
	Catalog        catalog.Catalog
	Reservations   reservation.Store
	PurchaseOrders purchaseorder.Store
	Certifications certification.Store
}

func PostgresBackend(pool *pgxpool.Pool, cfg config.Config, log *zap.SugaredLogger) Backend {
	return Backend{
		Catalog:        catalog.NewRepository(pool),
		Reservations:   reservation.NewRepository(pool, cfg.Booking.Location, cfg.Booking.EnforceOverlap, log.Named("store.reservation")),
		PurchaseOrders: purchaseorder.NewRepository(pool, log.Named("store.purchase_order")),
		Certifications: certification.NewRepository(pool, log.Named("store.certification")),
	}
}

// MemoryBackend keeps everything in process. Data is lost on restart.
func MemoryBackend(cfg config.Config, resources *catalog.Memory) Backend {
	if resources == nil {
		resources = catalog.NewMemory()
	}
	return Backend{
		Catalog:        resources,
		Reservations:   reservation.NewMemory(cfg.Booking.EnforceOverlap),
		PurchaseOrders: purchaseorder.NewMemory(),
		Certifications: certification.NewMemory(),
	}
}

func (b Backend) validate() error {
	if b.Catalog == nil || b.Reservations == nil || b.PurchaseOrders == nil || b.Certifications == nil {
		return fmt.Errorf("incomplete backend")
	}
	return nil
}

// NewNotifier logs every notification and, when configured, also delivers it to the webhook.
func NewNotifier(cfg config.Config, log *zap.SugaredLogger) notify.Notifier {
	out := notify.Multi{notify.Log{L: log.Named("notify")}}
	if cfg.Notify.WebhookURL != "" {
		out = append(out, notify.Webhook{
			HTTPClient: &http.Client{},
			URL:        cfg.Notify.WebhookURL,
			Secret:     cfg.Notify.WebhookSecret,
			Timeout:    cfg.Notify.Timeout,
		})
	}
	return out
}
