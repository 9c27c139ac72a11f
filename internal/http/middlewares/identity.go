package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pcelinjak/hivelog/internal/access"
	"github.com/pcelinjak/hivelog/internal/auth"
	"github.com/pcelinjak/hivelog/internal/domain/user"
	"github.com/pcelinjak/hivelog/internal/observability"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

type IdentityMiddleware struct {
	verifier   TokenVerifier
	cookieName string
	prefixes   []string
	log        *slog.Logger
	prom       *observability.Prom
}

func NewIdentityMiddleware(verifier TokenVerifier, cookieName string, prefixes []string, log *slog.Logger, prom *observability.Prom) *IdentityMiddleware {
	if log == nil {
		log = slog.Default()
	}
	return &IdentityMiddleware{
		verifier:   verifier,
		cookieName: cookieName,
		prefixes:   prefixes,
		log:        log,
		prom:       prom,
	}
}

func (m *IdentityMiddleware) protected(path string) bool {
	for _, p := range m.prefixes {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}

// Authenticate strips forwarded identity headers on every request and,
// for protected prefixes, requires a valid token before anything else runs.
func (m *IdentityMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Request.Header
		h.Del(HeaderUserID)
		h.Del(HeaderUserEmail)
		h.Del(HeaderUserRole)

		if !m.protected(c.Request.URL.Path) {
			c.Next()
			return
		}

		id, err := m.verify(c, "middleware")
		if err != nil {
			abortUnauthenticated(c, err)
			return
		}

		h.Set(HeaderUserID, strconv.FormatInt(id.UserID, 10))
		h.Set(HeaderUserEmail, id.Email)
		h.Set(HeaderUserRole, string(id.Role))
		c.Set(CtxIdentity, id)

		c.Next()
	}
}

// Resolve returns the identity verified earlier in this request, or verifies
// the raw token itself when the middleware did not cover the path.
func (m *IdentityMiddleware) Resolve(c *gin.Context) (auth.Identity, error) {
	if id, ok := IdentityFromContext(c); ok {
		return id, nil
	}

	id, err := m.verify(c, "handler")
	if err != nil {
		return auth.Identity{}, err
	}

	c.Set(CtxIdentity, id)
	return id, nil
}

// RequireRole resolves the caller and rejects roles outside allowed with 403.
func (m *IdentityMiddleware) RequireRole(allowed ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := m.Resolve(c)
		if err != nil {
			abortUnauthenticated(c, err)
			return
		}

		if err := access.Authorize(id, allowed...); err != nil {
			m.prom.ObserveAuthFailure("rbac", "forbidden")
			abortWithError(c, http.StatusForbidden, "forbidden", "You do not have permission for this action")
			return
		}

		c.Next()
	}
}

func (m *IdentityMiddleware) verify(c *gin.Context, path string) (auth.Identity, error) {
	raw, err := auth.TokenFromRequest(c.Request, m.cookieName)
	if err != nil {
		m.prom.ObserveAuthFailure(path, "missing")
		return auth.Identity{}, err
	}

	claims, err := m.verifier.Verify(raw)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, auth.ErrTokenExpired) {
			reason = "expired"
		}
		m.prom.ObserveAuthFailure(path, reason)
		m.log.InfoContext(c.Request.Context(), "token rejected",
			"path", path, "reason", reason, "err", err, "request_id", c.GetString(CtxRequestID))
		return auth.Identity{}, err
	}

	return claims.Identity(), nil
}

func abortUnauthenticated(c *gin.Context, err error) {
	if errors.Is(err, auth.ErrNoToken) {
		abortWithError(c, http.StatusUnauthorized, "auth_required", "Authentication required")
		return
	}
	abortWithError(c, http.StatusUnauthorized, "auth_failed", "Invalid or expired token")
}

func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
