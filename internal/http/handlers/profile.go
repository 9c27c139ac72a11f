package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pcelinjak/hivelog/internal/domain/notification"
)

type ReminderRunner interface {
	Run(ctx context.Context, userID int64) (int, error)
}

type Counter interface {
	CountByUser(ctx context.Context, userID int64) (int, error)
}

type UnseenLister interface {
	ListUnseen(ctx context.Context, userID int64) ([]notification.Notification, error)
}

type ProfileHandler struct {
	reminders     ReminderRunner
	users         UserSummaryReader
	hives         Counter
	activities    Counter
	notifications UnseenLister
	ids           IdentityResolver
}

func NewProfileHandler(reminders ReminderRunner, users UserSummaryReader, hives, activities Counter, notifications UnseenLister, ids IdentityResolver) *ProfileHandler {
	return &ProfileHandler{
		reminders:     reminders,
		users:         users,
		hives:         hives,
		activities:    activities,
		notifications: notifications,
		ids:           ids,
	}
}

// Get generates today's reminders before reading notifications,
// so a reminder created by this request is already in the response.
func (h *ProfileHandler) Get(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, profileTimeout)
	defer cancel()

	if _, err := h.reminders.Run(cctx, id.UserID); err != nil {
		RespondErr(ctx, err)
		return
	}

	sum, err := h.users.Get(cctx, id.UserID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	hives, err := h.hives.CountByUser(cctx, id.UserID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	activities, err := h.activities.CountByUser(cctx, id.UserID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	unseen, err := h.notifications.ListUnseen(cctx, id.UserID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": sum,
		"stats": gin.H{
			"hives":               hives,
			"activities":          activities,
			"unseenNotifications": len(unseen),
		},
		"notifications": unseen,
	})
}
