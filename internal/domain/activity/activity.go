package activity

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pcelinjak/hivelog/internal/domain"
)

var ErrNotFound = fmt.Errorf("activity %w", domain.ErrNotFound)

// Activity is a planned or completed piece of work on a hive.
// DueAt is the start date; Done marks completion.
type Activity struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	HiveID      int64     `json:"hiveId"`
	HiveName    string    `json:"hiveName,omitempty"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	DueAt       time.Time `json:"startDate"`
	Done        bool      `json:"done"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (a Activity) OwnerID() int64 { return a.UserID }

type CreateRequest struct {
	Title       string    `json:"title" binding:"required,max=120"`
	Type        string    `json:"type" binding:"required,max=40"`
	Description string    `json:"description" binding:"required,max=2000"`
	StartDate   time.Time `json:"startDate" binding:"required"`
	HiveID      int64     `json:"hiveId" binding:"required,min=1"`
}

type UpdateRequest struct {
	Title       string    `json:"title" binding:"required,max=120"`
	Type        string    `json:"type" binding:"required,max=40"`
	Description string    `json:"description" binding:"required,max=2000"`
	StartDate   time.Time `json:"startDate" binding:"required"`
	Done        *bool     `json:"done"`
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

type Stats struct {
	Total   int          `json:"total"`
	Done    int          `json:"done"`
	ByType  []TypeCount  `json:"byType"`
	ByMonth []MonthCount `json:"byMonth"`
}

// Summarize groups activities by lowercased type and by calendar month in loc.
func Summarize(items []Activity, loc *time.Location) Stats {
	if loc == nil {
		loc = time.Local
	}

	byType := map[string]int{}
	byMonth := map[string]int{}
	s := Stats{Total: len(items)}

	for _, a := range items {
		if a.Done {
			s.Done++
		}
		byType[strings.ToLower(strings.TrimSpace(a.Type))]++
		byMonth[a.DueAt.In(loc).Format("2006-01")]++
	}

	s.ByType = make([]TypeCount, 0, len(byType))
	for t, n := range byType {
		s.ByType = append(s.ByType, TypeCount{Type: t, Count: n})
	}
	sort.Slice(s.ByType, func(i, j int) bool {
		if s.ByType[i].Count != s.ByType[j].Count {
			return s.ByType[i].Count > s.ByType[j].Count
		}
		return s.ByType[i].Type < s.ByType[j].Type
	})

	s.ByMonth = make([]MonthCount, 0, len(byMonth))
	for m, n := range byMonth {
		s.ByMonth = append(s.ByMonth, MonthCount{Month: m, Count: n})
	}
	sort.Slice(s.ByMonth, func(i, j int) bool { return s.ByMonth[i].Month < s.ByMonth[j].Month })

	return s
}
