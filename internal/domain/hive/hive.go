package hive

import (
	"fmt"
	"strings"
	"time"

	"github.com/pcelinjak/hivelog/internal/domain"
	"github.com/pcelinjak/hivelog/internal/domain/activity"
)

type Strength string

const (
	StrengthWeak   Strength = "SLABA"
	StrengthMedium Strength = "SREDNJA"
	StrengthStrong Strength = "JAKA"
)

// ParseStrength accepts any letter case.
func ParseStrength(s string) (Strength, bool) {
	v := Strength(strings.ToUpper(strings.TrimSpace(s)))

	switch v {
	case StrengthWeak, StrengthMedium, StrengthStrong:
		return v, true
	default:
		return "", false
	}
}

var ErrNotFound = fmt.Errorf("hive %w", domain.ErrNotFound)

type Hive struct {
	ID         int64               `json:"id"`
	UserID     int64               `json:"userId"`
	Name       string              `json:"name"`
	BeeCount   int                 `json:"beeCount"`
	Strength   Strength            `json:"strength"`
	FrameCount int                 `json:"frameCount"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	Activities []activity.Activity `json:"activities,omitempty"`
}

func (h Hive) OwnerID() int64 { return h.UserID }

type CreateRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=120"`
	BeeCount   int    `json:"beeCount" binding:"required,min=1"`
	Strength   string `json:"strength" binding:"required"`
	FrameCount int    `json:"frameCount" binding:"required,min=1,max=100"`
}

// UpdateRequest is a partial update; nil fields keep their value.
type UpdateRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=120"`
	BeeCount   *int    `json:"beeCount" binding:"omitempty,min=1"`
	Strength   *string `json:"strength"`
	FrameCount *int    `json:"frameCount" binding:"omitempty,min=1,max=100"`
}

// Apply returns h with the non-nil fields of req. Strength must already be normalized.
func (req UpdateRequest) Apply(h Hive) Hive {
	if req.Name != nil {
		h.Name = *req.Name
	}
	if req.BeeCount != nil {
		h.BeeCount = *req.BeeCount
	}
	if req.Strength != nil {
		h.Strength = Strength(*req.Strength)
	}
	if req.FrameCount != nil {
		h.FrameCount = *req.FrameCount
	}
	return h
}
