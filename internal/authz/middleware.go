package authz

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/solvia-erp/solvia-erp/internal/platform/httpx"
	"github.com/solvia-erp/solvia-erp/internal/shared"
)

// Actor headers set by the authentication gateway in front of this service.
const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"
	HeaderActorName = "X-Actor-Name"
)

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// ActorMiddleware resolves the actor from gateway headers and stores it in the
// request context with its precomputed permission set. Requests without actor
// headers pass through with no actor; Require rejects them later with 401.
func (m Middleware) ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawID := strings.TrimSpace(r.Header.Get(HeaderActorID))
		rawRole := strings.TrimSpace(r.Header.Get(HeaderActorRole))
		if rawID == "" || rawRole == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "malformed actor id")
			return
		}
		role, err := ParseRole(rawRole)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("reject unknown role", slog.String("role", rawRole))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "unknown role")
			return
		}
		perms, err := PermissionsFor(role)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "unknown role")
			return
		}
		actor := &shared.Actor{
			ID:          id,
			Name:        r.Header.Get(HeaderActorName),
			Role:        string(role),
			Permissions: perms,
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}

// Require rejects the request with 401 when no actor is present and with 403
// when the actor lacks the permission.
func (m Middleware) Require(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := shared.ActorFromContext(r.Context())
			if actor == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if !actor.HasPermission(perm) {
				if m.Logger != nil {
					m.Logger.Warn("permission denied",
						slog.Int64("actor_id", actor.ID),
						slog.String("role", actor.Role),
						slog.String("permission", perm))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission "+perm)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
