package repository

import (
	"context"

	"SportsCatalog/internal/filter"
	"SportsCatalog/internal/model"

	"gorm.io/gorm"
)

// EventRepository 赛事表仓储
type EventRepository interface {
	CreateEvent(ctx context.Context, event *model.Event) error
	UpdateEvent(ctx context.Context, id uint64, fields map[string]interface{}) error
	GetEventByID(ctx context.Context, id uint64) (*model.Event, error)
	// ListEvents 全量赛事，附带选项
	ListEvents(ctx context.Context) ([]*model.Event, error)
	SearchEvents(ctx context.Context, stmt filter.Statement) ([]*model.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository 创建 EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

var eventInsertColumns = []string{"name", "slug", "active", "type", "sport_id", "status", "scheduled_start", "actual_start"}

func (r *eventRepository) CreateEvent(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Select(eventInsertColumns).Create(event).Error
}

func (r *eventRepository) UpdateEvent(ctx context.Context, id uint64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Event{}).Where("id = ?", id).Updates(fields).Error
}

func (r *eventRepository) GetEventByID(ctx context.Context, id uint64) (*model.Event, error) {
	var e model.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepository) ListEvents(ctx context.Context) ([]*model.Event, error) {
	var list []*model.Event
	if err := r.db.WithContext(ctx).
		Preload("Selections", orderByID("selections")).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *eventRepository) SearchEvents(ctx context.Context, stmt filter.Statement) ([]*model.Event, error) {
	var list []*model.Event
	if err := r.db.WithContext(ctx).Raw(stmt.SQL, stmt.Args()...).Scan(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
