package billing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/solvia-erp/solvia-erp/internal/authz"
	"github.com/solvia-erp/solvia-erp/internal/platform/httpx"
	"github.com/solvia-erp/solvia-erp/internal/shared"
)

// Handler wires HTTP endpoints for the billing module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	authz     authz.Middleware
}

// NewHandler constructs billing handler.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), authz: mw}
}

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermBillingIssue))
		r.Get("/invoices/{id}", h.handleGetInvoice)
		r.Post("/invoices", h.handleIssueInvoice)
	})
}

func (h *Handler) handleIssueInvoice(w http.ResponseWriter, r *http.Request) {
	var req IssueInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := shared.ActorFromContext(r.Context())

	input := IssueInvoiceInput{
		ClientID:     req.ClientID,
		SalesOrderID: req.SalesOrderID,
		Currency:     req.Currency,
		Note:         req.Note,
		ActorID:      actor.ID,
	}
	if req.Date != nil {
		input.Date = *req.Date
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, InvoiceLine(line))
	}

	invoice, err := h.service.IssueInvoice(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	invoice, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvoiceNotIssued):
		httpx.Problem(w, http.StatusBadGateway, "Collaborator Error", err.Error())
	default:
		h.logger.Error("billing request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
