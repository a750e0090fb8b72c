package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"SportsCatalog/internal/filter"
	"SportsCatalog/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// 时间格式：不带时区按 UTC 解析
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q, expected YYYY-MM-DDTHH:MM:SS or RFC3339", s)
}

// Timestamp 请求体中的时间字段
type Timestamp time.Time

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("datetime must be a string: %w", err)
	}
	parsed, err := parseTime(s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

func (t Timestamp) Time() time.Time { return time.Time(t) }

// NullableTimestamp 区分字段缺省与显式 null
type NullableTimestamp struct {
	Set   bool
	Value *time.Time
}

func (n *NullableTimestamp) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var ts Timestamp
	if err := ts.UnmarshalJSON(b); err != nil {
		return err
	}
	t := ts.Time()
	n.Value = &t
	return nil
}

// SportCreateRequest POST /sports/
type SportCreateRequest struct {
	Name   *string `json:"name" binding:"required"`
	Slug   *string `json:"slug" binding:"required"`
	Active *bool   `json:"active" binding:"required"`
}

func (r SportCreateRequest) toModel() *model.Sport {
	return &model.Sport{Name: *r.Name, Slug: *r.Slug, Active: *r.Active}
}

// SportUpdateRequest PUT /sports/:id
type SportUpdateRequest struct {
	Name   *string `json:"name"`
	Slug   *string `json:"slug"`
	Active *bool   `json:"active"`
}

func (r SportUpdateRequest) toUpdate() model.SportUpdate {
	return model.SportUpdate{Name: r.Name, Slug: r.Slug, Active: r.Active}
}

// EventCreateRequest POST /events/
type EventCreateRequest struct {
	Name           *string    `json:"name" binding:"required"`
	Slug           *string    `json:"slug" binding:"required"`
	Active         *bool      `json:"active" binding:"required"`
	Type           *string    `json:"type" binding:"required"`
	SportID        *uint64    `json:"sport_id" binding:"required"`
	Status         *string    `json:"status" binding:"required"`
	ScheduledStart *Timestamp `json:"scheduled_start" binding:"required"`
	ActualStart    *Timestamp `json:"actual_start"`
}

func (r EventCreateRequest) toModel() *model.Event {
	e := &model.Event{
		Name:           *r.Name,
		Slug:           *r.Slug,
		Active:         *r.Active,
		Type:           *r.Type,
		SportID:        *r.SportID,
		Status:         *r.Status,
		ScheduledStart: r.ScheduledStart.Time(),
	}
	if r.ActualStart != nil {
		t := r.ActualStart.Time()
		e.ActualStart = &t
	}
	return e
}

// EventUpdateRequest PUT /events/:id，actual_start 显式传 null 时清空
type EventUpdateRequest struct {
	Name           *string           `json:"name"`
	Slug           *string           `json:"slug"`
	Active         *bool             `json:"active"`
	Type           *string           `json:"type"`
	SportID        *uint64           `json:"sport_id"`
	Status         *string           `json:"status"`
	ScheduledStart *Timestamp        `json:"scheduled_start"`
	ActualStart    NullableTimestamp `json:"actual_start"`
}

func (r EventUpdateRequest) toUpdate() model.EventUpdate {
	u := model.EventUpdate{
		Name:    r.Name,
		Slug:    r.Slug,
		Active:  r.Active,
		Type:    r.Type,
		SportID: r.SportID,
		Status:  r.Status,
	}
	if r.ScheduledStart != nil {
		t := r.ScheduledStart.Time()
		u.ScheduledStart = &t
	}
	if r.ActualStart.Set {
		u.ActualStart = r.ActualStart.Value
		u.ClearActualStart = r.ActualStart.Value == nil
	}
	return u
}

// SelectionCreateRequest POST /selections/
type SelectionCreateRequest struct {
	Name    *string          `json:"name" binding:"required"`
	EventID *uint64          `json:"event_id" binding:"required"`
	Price   *decimal.Decimal `json:"price" binding:"required"`
	Active  *bool            `json:"active" binding:"required"`
	Outcome *string          `json:"outcome" binding:"required"`
}

func (r SelectionCreateRequest) toModel() *model.Selection {
	return &model.Selection{
		Name:    *r.Name,
		EventID: *r.EventID,
		Price:   *r.Price,
		Active:  *r.Active,
		Outcome: *r.Outcome,
	}
}

// SelectionUpdateRequest PUT /selections/:id
type SelectionUpdateRequest struct {
	Name    *string          `json:"name"`
	EventID *uint64          `json:"event_id"`
	Price   *decimal.Decimal `json:"price"`
	Active  *bool            `json:"active"`
	Outcome *string          `json:"outcome"`
}

func (r SelectionUpdateRequest) toUpdate() model.SelectionUpdate {
	return model.SelectionUpdate{
		Name:    r.Name,
		EventID: r.EventID,
		Price:   r.Price,
		Active:  r.Active,
		Outcome: r.Outcome,
	}
}

// FilterRequest POST /<entity>/search
// scheduled_start 为 [起, 止] 两个时间
type FilterRequest struct {
	NameRegex           *string     `json:"name_regex"`
	MinActiveEvents     *int64      `json:"min_active_events"`
	MinActiveSelections *int64      `json:"min_active_selections"`
	ScheduledStart      []Timestamp `json:"scheduled_start"`
}

var errScheduledStartShape = errors.New("scheduled_start must contain exactly two datetimes")

func (r FilterRequest) toFilter() (filter.Filter, error) {
	f := filter.Filter{
		NameRegex:           r.NameRegex,
		MinActiveEvents:     r.MinActiveEvents,
		MinActiveSelections: r.MinActiveSelections,
	}
	if r.ScheduledStart != nil {
		if len(r.ScheduledStart) != 2 {
			return filter.Filter{}, errScheduledStartShape
		}
		f.ScheduledStart = &filter.TimeRange{
			Start: r.ScheduledStart[0].Time(),
			End:   r.ScheduledStart[1].Time(),
		}
	}
	return f, nil
}

// bindFilter 请求体为空时视为不带条件的搜索
func bindFilter(c *gin.Context) (filter.Filter, error) {
	var req FilterRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			return filter.Filter{}, err
		}
	}
	return req.toFilter()
}

func parseID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return id, nil
}
