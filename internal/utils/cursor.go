package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// NotificationCursor points at the last notification of a page.
type NotificationCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        int64     `json:"id"`
}

func EncodeNotificationCursor(createdAt time.Time, id int64) (string, error) {
	b, err := json.Marshal(NotificationCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeNotificationCursor(cursor string) (NotificationCursor, error) {
	if cursor == "" {
		return NotificationCursor{}, errors.New("empty cursor")
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return NotificationCursor{}, err
	}

	var c NotificationCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return NotificationCursor{}, err
	}
	if c.ID <= 0 || c.CreatedAt.IsZero() {
		return NotificationCursor{}, errors.New("invalid cursor payload")
	}
	return c, nil
}
