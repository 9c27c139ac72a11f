package comment

import (
	"fmt"
	"time"

	"github.com/pcelinjak/hivelog/internal/domain"
)

var ErrNotFound = fmt.Errorf("comment %w", domain.ErrNotFound)

type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Comment struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	HiveID       int64     `json:"hiveId"`
	Content      string    `json:"content"`
	HiveStrength string    `json:"hiveStrength"` // strength of the hive when the comment was written
	CreatedAt    time.Time `json:"createdAt"`
	Author       *Author   `json:"author,omitempty"`
}

func (c Comment) OwnerID() int64 { return c.UserID }

type CreateRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
	HiveID  int64  `json:"hiveId" binding:"required,min=1"`
}
