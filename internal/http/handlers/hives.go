package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pcelinjak/hivelog/internal/access"
	"github.com/pcelinjak/hivelog/internal/domain/activity"
	"github.com/pcelinjak/hivelog/internal/domain/comment"
	"github.com/pcelinjak/hivelog/internal/domain/hive"
)

type HiveGetter interface {
	GetByID(ctx context.Context, id int64) (hive.Hive, error)
}

type HiveStore interface {
	HiveGetter
	Create(ctx context.Context, h hive.Hive) (hive.Hive, error)
	ListByUser(ctx context.Context, userID int64) ([]hive.Hive, error)
	Update(ctx context.Context, h hive.Hive) (hive.Hive, error)
	Delete(ctx context.Context, id int64) error
}

type HiveActivityLister interface {
	ListByHive(ctx context.Context, hiveID int64) ([]activity.Activity, error)
}

type HiveCommentLister interface {
	ListByHive(ctx context.Context, hiveID int64) ([]comment.Comment, error)
}

type HiveHandler struct {
	hives      HiveStore
	activities HiveActivityLister
	comments   HiveCommentLister
	ids        IdentityResolver
}

func NewHiveHandler(hives HiveStore, activities HiveActivityLister, comments HiveCommentLister, ids IdentityResolver) *HiveHandler {
	return &HiveHandler{hives: hives, activities: activities, comments: comments, ids: ids}
}

func invalidStrength(ctx *gin.Context) {
	RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": []FieldError{{
		Field:   "strength",
		Rule:    "oneof",
		Param:   "SLABA SREDNJA JAKA",
		Message: validationMessage("oneof", "SLABA SREDNJA JAKA"),
	}}})
}

func (h *HiveHandler) List(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	items, err := h.hives.ListByUser(cctx, id.UserID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"data": items})
}

func (h *HiveHandler) Create(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}

	var req hive.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	strength, valid := hive.ParseStrength(req.Strength)
	if !valid {
		invalidStrength(ctx)
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	created, err := h.hives.Create(cctx, hive.Hive{
		UserID:     id.UserID,
		Name:       strings.TrimSpace(req.Name),
		BeeCount:   req.BeeCount,
		Strength:   strength,
		FrameCount: req.FrameCount,
	})
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"data": created})
}

func (h *HiveHandler) Get(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}
	hiveID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	found, err := access.RequireOwner(cctx, "hive", hiveID, id.UserID, h.hives.GetByID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	acts, err := h.activities.ListByHive(cctx, hiveID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}
	found.Activities = acts

	ctx.JSON(http.StatusOK, gin.H{"data": found})
}

func (h *HiveHandler) Update(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}
	hiveID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req hive.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	if req.Strength != nil {
		strength, valid := hive.ParseStrength(*req.Strength)
		if !valid {
			invalidStrength(ctx)
			return
		}
		s := string(strength)
		req.Strength = &s
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	found, err := access.RequireOwner(cctx, "hive", hiveID, id.UserID, h.hives.GetByID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	updated, err := h.hives.Update(cctx, req.Apply(found))
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": updated})
}

func (h *HiveHandler) Delete(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}
	hiveID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	if _, err := access.RequireOwner(cctx, "hive", hiveID, id.UserID, h.hives.GetByID); err != nil {
		RespondErr(ctx, err)
		return
	}

	if err := h.hives.Delete(cctx, hiveID); err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *HiveHandler) Comments(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}
	hiveID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	if _, err := access.RequireOwner(cctx, "hive", hiveID, id.UserID, h.hives.GetByID); err != nil {
		RespondErr(ctx, err)
		return
	}

	items, err := h.comments.ListByHive(cctx, hiveID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": items})
}
