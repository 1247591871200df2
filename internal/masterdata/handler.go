package masterdata

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/solvia-erp/solvia-erp/internal/authz"
	"github.com/solvia-erp/solvia-erp/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the catalog module.
type Handler struct {
	logger    *slog.Logger
	repo      *Repository
	validator *validator.Validate
	authz     authz.Middleware
}

// NewHandler constructs masterdata handler.
func NewHandler(logger *slog.Logger, repo *Repository, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, repo: repo, validator: validator.New(), authz: mw}
}

// MountRoutes registers catalog routes. Reads and writes are guarded by
// distinct permissions.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermCatalogRead))
		r.Get("/suppliers", h.handleListSuppliers)
		r.Get("/suppliers/{id}", h.handleGetSupplier)
		r.Get("/clients", h.handleListClients)
		r.Get("/clients/{id}", h.handleGetClient)
		r.Get("/products", h.handleListProducts)
		r.Get("/products/{id}", h.handleGetProduct)
		r.Get("/warehouses", h.handleListWarehouses)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermCatalogEdit))
		r.Post("/suppliers", h.handleCreateSupplier)
		r.Put("/suppliers/{id}", h.handleUpdateSupplier)
		r.Post("/clients", h.handleCreateClient)
		r.Post("/products", h.handleCreateProduct)
		r.Post("/warehouses", h.handleCreateWarehouse)
	})
}

func listFilterFromQuery(r *http.Request) ListFilter {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return ListFilter{Search: q.Get("search"), Page: page, PerPage: perPage}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, page, err := h.repo.ListSuppliers(r.Context(), listFilterFromQuery(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": suppliers, "pagination": page})
}

func (h *Handler) handleGetSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid supplier id")
		return
	}
	supplier, err := h.repo.GetSupplier(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, supplier)
}

func (h *Handler) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req SupplierRequest
	if err := h.decode(w, r, &req); err != nil {
		return
	}
	supplier, err := h.repo.CreateSupplier(r.Context(), Supplier{
		Name: req.Name, TaxID: req.TaxID, Address: req.Address, Email: req.Email, Phone: req.Phone,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, supplier)
}

func (h *Handler) handleUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid supplier id")
		return
	}
	var req SupplierRequest
	if err := h.decode(w, r, &req); err != nil {
		return
	}
	err = h.repo.UpdateSupplier(r.Context(), id, Supplier{
		Name: req.Name, TaxID: req.TaxID, Address: req.Address, Email: req.Email, Phone: req.Phone,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, page, err := h.repo.ListClients(r.Context(), listFilterFromQuery(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "pagination": page})
}

func (h *Handler) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid client id")
		return
	}
	client, err := h.repo.GetClient(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := h.decode(w, r, &req); err != nil {
		return
	}
	client, err := h.repo.CreateClient(r.Context(), Client{
		Name: req.Name, TaxID: req.TaxID, Address: req.Address, Email: req.Email, Phone: req.Phone,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, page, err := h.repo.ListProducts(r.Context(), listFilterFromQuery(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "pagination": page})
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	product, err := h.repo.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := h.decode(w, r, &req); err != nil {
		return
	}
	product, err := h.repo.CreateProduct(r.Context(), Product{
		SKU: req.SKU, Name: req.Name, Unit: req.Unit, Active: true,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) handleListWarehouses(w http.ResponseWriter, r *http.Request) {
	warehouses, page, err := h.repo.ListWarehouses(r.Context(), listFilterFromQuery(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": warehouses, "pagination": page})
}

func (h *Handler) handleCreateWarehouse(w http.ResponseWriter, r *http.Request) {
	var req WarehouseRequest
	if err := h.decode(w, r, &req); err != nil {
		return
	}
	warehouse, err := h.repo.CreateWarehouse(r.Context(), Warehouse{
		Code: req.Code, Name: req.Name, Address: req.Address,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, warehouse)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return err
	}
	if err := h.validator.Struct(dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return err
	}
	return nil
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("masterdata request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
