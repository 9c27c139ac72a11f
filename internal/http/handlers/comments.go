package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pcelinjak/hivelog/internal/access"
	"github.com/pcelinjak/hivelog/internal/domain/comment"
)

type CommentStore interface {
	Create(ctx context.Context, c comment.Comment) (comment.Comment, error)
	GetByID(ctx context.Context, id int64) (comment.Comment, error)
	Delete(ctx context.Context, id int64) error
}

type CommentHandler struct {
	comments CommentStore
	hives    HiveGetter
	ids      IdentityResolver
}

func NewCommentHandler(comments CommentStore, hives HiveGetter, ids IdentityResolver) *CommentHandler {
	return &CommentHandler{comments: comments, hives: hives, ids: ids}
}

// Create stores the hive's current strength with the comment.
func (h *CommentHandler) Create(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}

	var req comment.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": []FieldError{{
			Field: "content", Rule: "required", Message: validationMessage("required", ""),
		}}})
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	owned, err := access.RequireOwner(cctx, "hive", req.HiveID, id.UserID, h.hives.GetByID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	created, err := h.comments.Create(cctx, comment.Comment{
		UserID:       id.UserID,
		HiveID:       owned.ID,
		Content:      content,
		HiveStrength: string(owned.Strength),
	})
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"data": created})
}

func (h *CommentHandler) Delete(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}
	commentID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	if _, err := access.RequireOwner(cctx, "comment", commentID, id.UserID, h.comments.GetByID); err != nil {
		RespondErr(ctx, err)
		return
	}

	if err := h.comments.Delete(cctx, commentID); err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
