package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pcelinjak/hivelog/internal/auth"
)

// IdentityResolver is the handler-side identity check. It must verify the
// token itself whenever no verified identity is attached to the request.
type IdentityResolver interface {
	Resolve(c *gin.Context) (auth.Identity, error)
}

func caller(ctx *gin.Context, ids IdentityResolver) (auth.Identity, bool) {
	id, err := ids.Resolve(ctx)
	if err != nil {
		RespondErr(ctx, err)
		return auth.Identity{}, false
	}
	return id, true
}

// withTimeout bounds store calls while keeping the request's trace context.
func withTimeout(ctx *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), d)
}

const (
	storeTimeout   = 2 * time.Second
	profileTimeout = 5 * time.Second
)
