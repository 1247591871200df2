package txlog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/solvia-erp/solvia-erp/internal/authz"
	"github.com/solvia-erp/solvia-erp/internal/platform/httpx"
	"github.com/solvia-erp/solvia-erp/internal/shared"
)

// Handler exposes the audit trail read endpoint.
type Handler struct {
	logger   *slog.Logger
	recorder *Recorder
	querier  shared.Querier
	authz    authz.Middleware
}

// NewHandler constructs txlog handler.
func NewHandler(logger *slog.Logger, recorder *Recorder, querier shared.Querier, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, recorder: recorder, querier: querier, authz: mw}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermAuditTrail))
		r.Get("/log", h.handleList)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Type: EntryType(q.Get("type"))}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("per_page"))
	if v := q.Get("actor_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid actor id")
			return
		}
		filter.ActorID = id
	}

	entries, page, err := h.recorder.List(r.Context(), h.querier, filter)
	if err != nil {
		h.logger.Error("audit listing failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": entries, "pagination": page})
}
