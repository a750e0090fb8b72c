// Package memstore 提供内存版仓储，供 service 与 api 测试使用。
//
// MemStore 同时实现 Sport/Event/Selection/Status 四个仓储接口，
// 搜索时按 filter.Statement.Clauses 在内存中求值，不解析 SQL。
package memstore

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"SportsCatalog/internal/filter"
	"SportsCatalog/internal/model"
	"SportsCatalog/internal/repository"

	"github.com/jackc/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	_ repository.SportRepository     = (*MemStore)(nil)
	_ repository.EventRepository     = (*MemStore)(nil)
	_ repository.SelectionRepository = (*MemStore)(nil)
	_ repository.StatusRepository    = (*MemStore)(nil)
)

// MemStore 内存存储，并发安全
type MemStore struct {
	mu         sync.Mutex
	sports     map[uint64]*model.Sport
	events     map[uint64]*model.Event
	selections map[uint64]*model.Selection
	changes    []model.StatusChange
	nextID     uint64

	// FailStatus 非 nil 时，StatusRepository 的计数方法返回该错误
	FailStatus error
	// FailRecord 非 nil 时，RecordStatusChange 返回该错误
	FailRecord error
}

// NewMemStore 创建空存储
func NewMemStore() *MemStore {
	return &MemStore{
		sports:     make(map[uint64]*model.Sport),
		events:     make(map[uint64]*model.Event),
		selections: make(map[uint64]*model.Selection),
	}
}

func (m *MemStore) allocID() uint64 {
	m.nextID++
	return m.nextID
}

// ---- SportRepository ----

func (m *MemStore) CreateSport(_ context.Context, sport *model.Sport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sports {
		if s.Slug == sport.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	sport.ID = m.allocID()
	stored := *sport
	stored.Events = nil
	m.sports[stored.ID] = &stored
	return nil
}

func (m *MemStore) UpdateSport(_ context.Context, id uint64, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sports[id]
	if !ok || len(fields) == 0 {
		return nil
	}
	next := *s
	for col, v := range fields {
		switch col {
		case "name":
			next.Name = v.(string)
		case "slug":
			next.Slug = v.(string)
		case "active":
			next.Active = v.(bool)
		default:
			return fmt.Errorf("unknown sport column %q", col)
		}
	}
	for oid, o := range m.sports {
		if oid != id && o.Slug == next.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	*s = next
	return nil
}

func (m *MemStore) GetSportByID(_ context.Context, id uint64) (*model.Sport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *s
	return &out, nil
}

func (m *MemStore) ListSports(_ context.Context) ([]*model.Sport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*model.Sport
	for _, id := range sortedKeys(m.sports) {
		s := *m.sports[id]
		for _, eid := range sortedKeys(m.events) {
			if m.events[eid].SportID == id {
				s.Events = append(s.Events, m.eventWithSelections(eid))
			}
		}
		list = append(list, &s)
	}
	return list, nil
}

func (m *MemStore) SearchSports(_ context.Context, stmt filter.Statement) ([]*model.Sport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pred, err := m.predicate(stmt)
	if err != nil {
		return nil, err
	}
	var list []*model.Sport
	for _, id := range sortedKeys(m.sports) {
		s := m.sports[id]
		if pred(row{name: s.Name, sportID: id}) {
			out := *s
			list = append(list, &out)
		}
	}
	return list, nil
}

// ---- EventRepository ----

func (m *MemStore) CreateEvent(_ context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.Slug == event.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	event.ID = m.allocID()
	stored := *event
	stored.Selections = nil
	m.events[stored.ID] = &stored
	return nil
}

func (m *MemStore) UpdateEvent(_ context.Context, id uint64, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok || len(fields) == 0 {
		return nil
	}
	next := *e
	for col, v := range fields {
		switch col {
		case "name":
			next.Name = v.(string)
		case "slug":
			next.Slug = v.(string)
		case "active":
			next.Active = v.(bool)
		case "type":
			next.Type = v.(string)
		case "sport_id":
			next.SportID = v.(uint64)
		case "status":
			next.Status = v.(string)
		case "scheduled_start":
			next.ScheduledStart = v.(time.Time)
		case "actual_start":
			if v == nil {
				next.ActualStart = nil
			} else {
				t := v.(time.Time)
				next.ActualStart = &t
			}
		default:
			return fmt.Errorf("unknown event column %q", col)
		}
	}
	for oid, o := range m.events {
		if oid != id && o.Slug == next.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	*e = next
	return nil
}

func (m *MemStore) GetEventByID(_ context.Context, id uint64) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *e
	return &out, nil
}

func (m *MemStore) ListEvents(_ context.Context) ([]*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*model.Event
	for _, id := range sortedKeys(m.events) {
		e := m.eventWithSelections(id)
		list = append(list, &e)
	}
	return list, nil
}

func (m *MemStore) SearchEvents(_ context.Context, stmt filter.Statement) ([]*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pred, err := m.predicate(stmt)
	if err != nil {
		return nil, err
	}
	var list []*model.Event
	for _, id := range sortedKeys(m.events) {
		e := m.events[id]
		if pred(row{name: e.Name, sportID: e.SportID, eventID: id, scheduledStart: e.ScheduledStart}) {
			out := *e
			list = append(list, &out)
		}
	}
	return list, nil
}

// ---- SelectionRepository ----

func (m *MemStore) CreateSelection(_ context.Context, selection *model.Selection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	selection.ID = m.allocID()
	stored := *selection
	m.selections[stored.ID] = &stored
	return nil
}

func (m *MemStore) UpdateSelection(_ context.Context, id uint64, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.selections[id]
	if !ok {
		return nil
	}
	for col, v := range fields {
		switch col {
		case "name":
			s.Name = v.(string)
		case "event_id":
			s.EventID = v.(uint64)
		case "price":
			s.Price = v.(decimal.Decimal)
		case "active":
			s.Active = v.(bool)
		case "outcome":
			s.Outcome = v.(string)
		default:
			return fmt.Errorf("unknown selection column %q", col)
		}
	}
	return nil
}

func (m *MemStore) GetSelectionByID(_ context.Context, id uint64) (*model.Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.selections[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *s
	return &out, nil
}

func (m *MemStore) ListSelections(_ context.Context) ([]*model.Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*model.Selection
	for _, id := range sortedKeys(m.selections) {
		out := *m.selections[id]
		list = append(list, &out)
	}
	return list, nil
}

func (m *MemStore) SearchSelections(_ context.Context, stmt filter.Statement) ([]*model.Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pred, err := m.predicate(stmt)
	if err != nil {
		return nil, err
	}
	var list []*model.Selection
	for _, id := range sortedKeys(m.selections) {
		s := m.selections[id]
		r := row{name: s.Name, eventID: s.EventID}
		if parent, ok := m.events[s.EventID]; ok {
			r.sportID = parent.SportID
			r.scheduledStart = parent.ScheduledStart
			r.hasParent = true
		}
		if pred(r) {
			out := *s
			list = append(list, &out)
		}
	}
	return list, nil
}

// ---- StatusRepository ----

func (m *MemStore) CountActiveSelections(_ context.Context, eventID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailStatus != nil {
		return 0, m.FailStatus
	}
	return m.activeSelections(eventID), nil
}

func (m *MemStore) CountActiveEvents(_ context.Context, sportID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailStatus != nil {
		return 0, m.FailStatus
	}
	return m.activeEvents(sportID), nil
}

func (m *MemStore) DeactivateEvent(_ context.Context, eventID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok || !e.Active {
		return false, nil
	}
	e.Active = false
	return true, nil
}

func (m *MemStore) DeactivateSport(_ context.Context, sportID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sports[sportID]
	if !ok || !s.Active {
		return false, nil
	}
	s.Active = false
	return true, nil
}

func (m *MemStore) EventSportID(_ context.Context, eventID uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return e.SportID, nil
}

func (m *MemStore) RecordStatusChange(_ context.Context, change *model.StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRecord != nil {
		return m.FailRecord
	}
	change.ID = m.allocID()
	change.CreatedAt = time.Now()
	m.changes = append(m.changes, *change)
	return nil
}

// StatusChanges 已记录的状态变更
func (m *MemStore) StatusChanges() []model.StatusChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.StatusChange(nil), m.changes...)
}

// ---- 求值 ----

// row 谓词求值所需的列，含父级关联
type row struct {
	name           string
	sportID        uint64
	eventID        uint64
	scheduledStart time.Time
	hasParent      bool
}

// predicate 按 Clauses 构造内存谓词；非法正则返回与 PostgreSQL 一致的 2201B
// 与 filter 包的 SQL 模板一一对应，修改模板时同步此处；真实 SQL 由 repository/integration_test.go 覆盖
func (m *MemStore) predicate(stmt filter.Statement) (func(row) bool, error) {
	var preds []func(row) bool
	for _, c := range stmt.Clauses {
		switch c.Op {
		case filter.OpNameRegex:
			re, err := regexp.Compile(c.Params[filter.ParamNameRegex].(string))
			if err != nil {
				return nil, &pgconn.PgError{Severity: "ERROR", Code: "2201B", Message: "invalid regular expression: " + err.Error()}
			}
			preds = append(preds, func(r row) bool { return re.MatchString(r.name) })

		case filter.OpMinActiveEvents:
			threshold := c.Params[filter.ParamMinActiveEvents].(int64)
			preds = append(preds, func(r row) bool {
				if stmt.Entity == filter.Selections && !r.hasParent {
					return threshold <= 0
				}
				return m.activeEvents(r.sportID) >= threshold
			})

		case filter.OpMinActiveSelections:
			threshold := c.Params[filter.ParamMinActiveSelections].(int64)
			preds = append(preds, func(r row) bool { return m.activeSelections(r.eventID) >= threshold })

		case filter.OpScheduledStart:
			from := c.Params[filter.ParamScheduledStartFrom].(time.Time)
			to := c.Params[filter.ParamScheduledStartTo].(time.Time)
			preds = append(preds, func(r row) bool {
				if stmt.Entity == filter.Selections && !r.hasParent {
					return false
				}
				return !r.scheduledStart.Before(from) && !r.scheduledStart.After(to)
			})
		}
	}
	return func(r row) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}, nil
}

func (m *MemStore) activeSelections(eventID uint64) int64 {
	var n int64
	for _, s := range m.selections {
		if s.EventID == eventID && s.Active {
			n++
		}
	}
	return n
}

func (m *MemStore) activeEvents(sportID uint64) int64 {
	var n int64
	for _, e := range m.events {
		if e.SportID == sportID && e.Active {
			n++
		}
	}
	return n
}

func (m *MemStore) eventWithSelections(id uint64) model.Event {
	e := *m.events[id]
	e.Selections = nil
	for _, sid := range sortedKeys(m.selections) {
		if m.selections[sid].EventID == id {
			e.Selections = append(e.Selections, *m.selections[sid])
		}
	}
	return e
}

func sortedKeys[V any](rows map[uint64]V) []uint64 {
	keys := make([]uint64, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
