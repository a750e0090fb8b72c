package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SportUpdate 运动部分更新，nil 字段不更新
type SportUpdate struct {
	Name   *string
	Slug   *string
	Active *bool
}

// Fields 转换为 gorm Updates 使用的列映射
func (u SportUpdate) Fields() map[string]interface{} {
	m := make(map[string]interface{})
	if u.Name != nil {
		m["name"] = *u.Name
	}
	if u.Slug != nil {
		m["slug"] = *u.Slug
	}
	if u.Active != nil {
		m["active"] = *u.Active
	}
	return m
}

// EventUpdate 赛事部分更新
// ClearActualStart 为 true 时将 actual_start 置空（JSON 中显式传 null）
type EventUpdate struct {
	Name             *string
	Slug             *string
	Active           *bool
	Type             *string
	SportID          *uint64
	Status           *string
	ScheduledStart   *time.Time
	ActualStart      *time.Time
	ClearActualStart bool
}

func (u EventUpdate) Fields() map[string]interface{} {
	m := make(map[string]interface{})
	if u.Name != nil {
		m["name"] = *u.Name
	}
	if u.Slug != nil {
		m["slug"] = *u.Slug
	}
	if u.Active != nil {
		m["active"] = *u.Active
	}
	if u.Type != nil {
		m["type"] = *u.Type
	}
	if u.SportID != nil {
		m["sport_id"] = *u.SportID
	}
	if u.Status != nil {
		m["status"] = *u.Status
	}
	if u.ScheduledStart != nil {
		m["scheduled_start"] = *u.ScheduledStart
	}
	if u.ActualStart != nil {
		m["actual_start"] = *u.ActualStart
	} else if u.ClearActualStart {
		m["actual_start"] = nil
	}
	return m
}

// SelectionUpdate 选项部分更新
type SelectionUpdate struct {
	Name    *string
	EventID *uint64
	Price   *decimal.Decimal
	Active  *bool
	Outcome *string
}

func (u SelectionUpdate) Fields() map[string]interface{} {
	m := make(map[string]interface{})
	if u.Name != nil {
		m["name"] = *u.Name
	}
	if u.EventID != nil {
		m["event_id"] = *u.EventID
	}
	if u.Price != nil {
		m["price"] = *u.Price
	}
	if u.Active != nil {
		m["active"] = *u.Active
	}
	if u.Outcome != nil {
		m["outcome"] = *u.Outcome
	}
	return m
}
