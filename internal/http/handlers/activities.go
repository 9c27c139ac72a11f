package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pcelinjak/hivelog/internal/access"
	"github.com/pcelinjak/hivelog/internal/domain/activity"
)

type ActivityStore interface {
	Create(ctx context.Context, a activity.Activity) (activity.Activity, error)
	ListByUser(ctx context.Context, userID int64) ([]activity.Activity, error)
	GetByID(ctx context.Context, id int64) (activity.Activity, error)
	Update(ctx context.Context, a activity.Activity) (activity.Activity, error)
	Delete(ctx context.Context, id int64) error
}

type ActivityHandler struct {
	activities ActivityStore
	hives      HiveGetter
	ids        IdentityResolver
	loc        *time.Location
}

func NewActivityHandler(activities ActivityStore, hives HiveGetter, ids IdentityResolver, loc *time.Location) *ActivityHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ActivityHandler{activities: activities, hives: hives, ids: ids, loc: loc}
}

func (h *ActivityHandler) List(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	items, err := h.activities.ListByUser(cctx, id.UserID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"data": items})
}

func (h *ActivityHandler) Stats(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	items, err := h.activities.ListByUser(cctx, id.UserID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": activity.Summarize(items, h.loc)})
}

func (h *ActivityHandler) Create(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}

	var req activity.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	if _, err := access.RequireOwner(cctx, "hive", req.HiveID, id.UserID, h.hives.GetByID); err != nil {
		RespondErr(ctx, err)
		return
	}

	created, err := h.activities.Create(cctx, activity.Activity{
		UserID:      id.UserID,
		HiveID:      req.HiveID,
		Title:       strings.TrimSpace(req.Title),
		Type:        strings.TrimSpace(req.Type),
		Description: req.Description,
		DueAt:       req.StartDate,
	})
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"data": created})
}

func (h *ActivityHandler) Get(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}
	activityID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	found, err := access.RequireOwner(cctx, "activity", activityID, id.UserID, h.activities.GetByID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": found})
}

func (h *ActivityHandler) Update(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}
	activityID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req activity.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	found, err := access.RequireOwner(cctx, "activity", activityID, id.UserID, h.activities.GetByID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	found.Title = strings.TrimSpace(req.Title)
	found.Type = strings.TrimSpace(req.Type)
	found.Description = req.Description
	found.DueAt = req.StartDate
	if req.Done != nil {
		found.Done = *req.Done
	}

	updated, err := h.activities.Update(cctx, found)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": updated})
}

func (h *ActivityHandler) Delete(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}
	activityID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	if _, err := access.RequireOwner(cctx, "activity", activityID, id.UserID, h.activities.GetByID); err != nil {
		RespondErr(ctx, err)
		return
	}

	if err := h.activities.Delete(cctx, activityID); err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
