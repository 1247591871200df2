package inventory

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/solvia-erp/solvia-erp/internal/authz"
	"github.com/solvia-erp/solvia-erp/internal/ledger"
	"github.com/solvia-erp/solvia-erp/internal/platform/httpx"
	"github.com/solvia-erp/solvia-erp/internal/shared"
)

// Handler wires HTTP endpoints for the inventory module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	authz     authz.Middleware
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), authz: mw}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermInventoryRead))
		r.Get("/movements", h.handleListMovements)
		r.Get("/stock/{warehouseID}", h.handleStockSummary)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermInventoryTransfer))
		r.Post("/transfers", h.handleTransfer)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermInventoryMove))
		r.Post("/adjustments", h.handleAdjustment)
	})
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := shared.ActorFromContext(r.Context())

	input := TransferInput{
		SourceWarehouse: req.SourceWarehouse,
		DestWarehouse:   req.DestWarehouse,
		Reason:          req.Reason,
		ActorID:         actor.ID,
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, TransferLine{ProductID: line.ProductID, Qty: line.Qty, UnitCost: line.UnitCost})
	}

	result, err := h.service.Transfer(r.Context(), input)
	if err != nil {
		h.respondFlowError(w, "transfer", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) handleAdjustment(w http.ResponseWriter, r *http.Request) {
	var req AdjustmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := shared.ActorFromContext(r.Context())

	movement, err := h.service.Adjust(r.Context(), AdjustmentInput{
		WarehouseID: req.WarehouseID,
		ProductID:   req.ProductID,
		QtyDelta:    req.QtyDelta,
		UnitCost:    req.UnitCost,
		Reason:      req.Reason,
		ActorID:     actor.ID,
	})
	if err != nil {
		h.respondFlowError(w, "adjustment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) handleListMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ledger.MovementFilter{
		ProductID:   parseInt(q.Get("product_id")),
		WarehouseID: parseInt(q.Get("warehouse_id")),
		Page:        int(parseInt(q.Get("page"))),
		PerPage:     int(parseInt(q.Get("per_page"))),
	}
	if raw := q.Get("from"); raw != "" {
		ts, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid from date")
			return
		}
		filter.From = ts
	}
	if raw := q.Get("to"); raw != "" {
		ts, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid to date")
			return
		}
		filter.To = ts.Add(24*time.Hour - time.Nanosecond)
	}

	movements, pagination, err := h.service.ListMovements(r.Context(), filter)
	if err != nil {
		h.logger.Error("list movements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"movements":  movements,
		"pagination": pagination,
	})
}

func (h *Handler) handleStockSummary(w http.ResponseWriter, r *http.Request) {
	warehouseID, err := strconv.ParseInt(chi.URLParam(r, "warehouseID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid warehouse id")
		return
	}
	levels, err := h.service.GetStockSummary(r.Context(), warehouseID)
	if err != nil {
		h.logger.Error("stock summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"levels": levels})
}

func (h *Handler) respondFlowError(w http.ResponseWriter, flow string, err error) {
	switch {
	case errors.Is(err, ErrSameWarehouse), errors.Is(err, ErrNoMovements), errors.Is(err, ErrMissingWarehouse),
		errors.Is(err, ledger.ErrInvalidQuantity), errors.Is(err, ledger.ErrInvalidUnitCost), errors.Is(err, ledger.ErrMissingTarget):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(fmt.Sprintf("%s failed", flow), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parseInt(raw string) int64 {
	v, _ := strconv.ParseInt(raw, 10, 64)
	return v
}
