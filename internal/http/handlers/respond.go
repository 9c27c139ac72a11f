package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pcelinjak/hivelog/internal/access"
	"github.com/pcelinjak/hivelog/internal/auth"
	"github.com/pcelinjak/hivelog/internal/domain"
	"github.com/pcelinjak/hivelog/internal/domain/user"
	"github.com/pcelinjak/hivelog/internal/http/middlewares"
	"github.com/pcelinjak/hivelog/internal/security"
)

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if s := ctx.GetString(middlewares.CtxRequestID); s != "" {
		return s
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details any) {
	ctx.AbortWithStatusJSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details any) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", "Something went wrong", nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// RespondErr maps package sentinel errors to the error envelope.
// Anything unrecognized is logged and returned as a bare 500.
func RespondErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrNoToken):
		RespondError(ctx, http.StatusUnauthorized, "auth_required", "Authentication required", nil)
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenInvalid):
		RespondError(ctx, http.StatusUnauthorized, "auth_failed", "Invalid or expired token", nil)
	case errors.Is(err, access.ErrForbidden):
		RespondError(ctx, http.StatusForbidden, "forbidden", "You do not have permission for this action", nil)
	case errors.Is(err, security.ErrPasswordTooLong):
		RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": []FieldError{{
			Field:   "password",
			Rule:    "maxbytes",
			Param:   strconv.Itoa(security.MaxPasswordBytes),
			Message: validationMessage("maxbytes", strconv.Itoa(security.MaxPasswordBytes)),
		}}})
	case errors.Is(err, user.ErrEmailTaken):
		RespondConflict(ctx, "email_taken", "Email is already in use")
	case errors.Is(err, domain.ErrNotFound):
		var nf *access.NotFoundError
		if errors.As(err, &nf) {
			RespondNotFound(ctx, capitalize(nf.Entity)+" not found")
			return
		}
		RespondNotFound(ctx, "Not found")
	default:
		middlewares.LoggerFrom(ctx).ErrorContext(ctx.Request.Context(), "request failed",
			"err", err,
			"request_id", requestIDFrom(ctx),
			"route", ctx.FullPath(),
		)
		RespondInternal(ctx)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
