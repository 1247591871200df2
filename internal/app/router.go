package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/solvia-erp/solvia-erp/internal/accounting"
	"github.com/solvia-erp/solvia-erp/internal/authz"
	"github.com/solvia-erp/solvia-erp/internal/billing"
	"github.com/solvia-erp/solvia-erp/internal/inventory"
	"github.com/solvia-erp/solvia-erp/internal/masterdata"
	"github.com/solvia-erp/solvia-erp/internal/procurement"
	"github.com/solvia-erp/solvia-erp/internal/sales"
	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Authz              authz.Middleware
	InventoryHandler   *inventory.Handler
	ProcurementHandler *procurement.Handler
	SalesHandler       *sales.Handler
	BillingHandler     *billing.Handler
	AccountingHandler  *accounting.Handler
	MasterDataHandler  *masterdata.Handler
	AuditHandler       *txlog.Handler
}

// NewRouter constructs the chi.Router with Solvia defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
		Authz:  params.Authz,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/inventory", params.InventoryHandler.MountRoutes)
	r.Route("/procurement", params.ProcurementHandler.MountRoutes)
	r.Route("/sales", params.SalesHandler.MountRoutes)
	r.Route("/billing", params.BillingHandler.MountRoutes)
	r.Route("/accounting", params.AccountingHandler.MountRoutes)
	r.Route("/masterdata", params.MasterDataHandler.MountRoutes)
	r.Route("/audit", params.AuditHandler.MountRoutes)

	return r
}
