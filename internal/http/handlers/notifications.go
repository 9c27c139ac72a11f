package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/pcelinjak/hivelog/internal/access"
	"github.com/pcelinjak/hivelog/internal/domain/notification"
	"github.com/pcelinjak/hivelog/internal/domain/user"
	"github.com/pcelinjak/hivelog/internal/observability"
	"github.com/pcelinjak/hivelog/internal/utils"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

type NotificationStore interface {
	ListByUser(ctx context.Context, userID int64, limit int, after *utils.NotificationCursor) ([]notification.Notification, error)
	Broadcast(ctx context.Context, userIDs []int64, message string) (int, error)
	MarkSeen(ctx context.Context, userID, id int64) error
}

type RecipientLister interface {
	ListIDsByRole(ctx context.Context, role user.Role) ([]int64, error)
}

type NotificationHandler struct {
	notifications NotificationStore
	users         RecipientLister
	ids           IdentityResolver
	prom          *observability.Prom
}

func NewNotificationHandler(notifications NotificationStore, users RecipientLister, ids IdentityResolver, prom *observability.Prom) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, users: users, ids: ids, prom: prom}
}

func (h *NotificationHandler) List(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}

	limit := defaultNotificationLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxNotificationLimit {
			RespondBadRequest(ctx, "Invalid limit", gin.H{"field": "limit", "max": maxNotificationLimit})
			return
		}
		limit = n
	}

	var after *utils.NotificationCursor
	if raw := ctx.Query("cursor"); raw != "" {
		c, err := utils.DecodeNotificationCursor(raw)
		if err != nil {
			RespondBadRequest(ctx, "Invalid cursor", gin.H{"field": "cursor"})
			return
		}
		after = &c
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	// one extra row tells us whether another page exists
	items, err := h.notifications.ListByUser(cctx, id.UserID, limit+1, after)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	var next *string
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		enc, err := utils.EncodeNotificationCursor(last.CreatedAt, last.ID)
		if err != nil {
			RespondErr(ctx, err)
			return
		}
		next = &enc
	}

	ctx.JSON(http.StatusOK, gin.H{"data": items, "nextCursor": next})
}

// Broadcast sends one notification to every beekeeper. Managers only.
func (h *NotificationHandler) Broadcast(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}

	if err := access.Authorize(id, user.RoleManager); err != nil {
		h.prom.ObserveAuthFailure("handler", "forbidden")
		RespondErr(ctx, err)
		return
	}

	var req notification.BroadcastRequest
	if !BindJSON(ctx, &req) {
		return
	}

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		RespondBadRequest(ctx, "Message must be between 1 and 500 characters", gin.H{"fields": []FieldError{{
			Field:   "message",
			Rule:    "required",
			Message: validationMessage("required", ""),
		}}})
		return
	}
	if utf8.RuneCountInString(msg) > notification.MaxMessageLen {
		RespondBadRequest(ctx, "Message must be between 1 and 500 characters", gin.H{"fields": []FieldError{{
			Field:   "message",
			Rule:    "max",
			Param:   strconv.Itoa(notification.MaxMessageLen),
			Message: validationMessage("max", strconv.Itoa(notification.MaxMessageLen)),
		}}})
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	recipients, err := h.users.ListIDsByRole(cctx, user.RoleUser)
	if err != nil {
		RespondErr(ctx, err)
		return
	}
	if len(recipients) == 0 {
		RespondNotFound(ctx, "No users to notify")
		return
	}

	n, err := h.notifications.Broadcast(cctx, recipients, msg)
	if err != nil {
		RespondErr(ctx, err)
		return
	}
	h.prom.AddBroadcastRecipients(n)

	ctx.JSON(http.StatusCreated, gin.H{
		"message":    "Notification sent",
		"recipients": n,
	})
}

// MarkSeen ignores ids that belong to other users.
func (h *NotificationHandler) MarkSeen(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}

	var req notification.MarkSeenRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	if err := h.notifications.MarkSeen(cctx, id.UserID, req.ID); err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification marked as seen"})
}
