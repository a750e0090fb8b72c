package repository

import (
	"context"

	"SportsCatalog/internal/model"

	"gorm.io/gorm"
)

// StatusRepository 级联停用所需的计数与条件更新，每个方法各自一个事务
type StatusRepository interface {
	CountActiveSelections(ctx context.Context, eventID uint64) (int64, error)
	CountActiveEvents(ctx context.Context, sportID uint64) (int64, error)
	// DeactivateEvent 将赛事置为非活跃，返回本次是否实际发生翻转
	DeactivateEvent(ctx context.Context, eventID uint64) (bool, error)
	DeactivateSport(ctx context.Context, sportID uint64) (bool, error)
	// EventSportID 查询赛事所属运动，赛事不存在返回 gorm.ErrRecordNotFound
	EventSportID(ctx context.Context, eventID uint64) (uint64, error)
	RecordStatusChange(ctx context.Context, change *model.StatusChange) error
}

type statusRepository struct {
	db *gorm.DB
}

// NewStatusRepository 创建 StatusRepository
func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &statusRepository{db: db}
}

func (r *statusRepository) CountActiveSelections(ctx context.Context, eventID uint64) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Selection{}).
		Where("event_id = ? AND active = ?", eventID, true).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *statusRepository) CountActiveEvents(ctx context.Context, sportID uint64) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Event{}).
		Where("sport_id = ? AND active = ?", sportID, true).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *statusRepository) DeactivateEvent(ctx context.Context, eventID uint64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Event{}).
		Where("id = ? AND active = ?", eventID, true).
		Update("active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *statusRepository) DeactivateSport(ctx context.Context, sportID uint64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Sport{}).
		Where("id = ? AND active = ?", sportID, true).
		Update("active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *statusRepository) EventSportID(ctx context.Context, eventID uint64) (uint64, error) {
	var e model.Event
	if err := r.db.WithContext(ctx).Select("id", "sport_id").Where("id = ?", eventID).First(&e).Error; err != nil {
		return 0, err
	}
	return e.SportID, nil
}

func (r *statusRepository) RecordStatusChange(ctx context.Context, change *model.StatusChange) error {
	return r.db.WithContext(ctx).Create(change).Error
}
