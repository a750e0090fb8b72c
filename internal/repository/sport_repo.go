package repository

import (
	"context"

	"SportsCatalog/internal/filter"
	"SportsCatalog/internal/model"

	"gorm.io/gorm"
)

// SportRepository 运动表仓储
type SportRepository interface {
	CreateSport(ctx context.Context, sport *model.Sport) error
	// UpdateSport 按列更新，fields 为空时不执行
	UpdateSport(ctx context.Context, id uint64, fields map[string]interface{}) error
	GetSportByID(ctx context.Context, id uint64) (*model.Sport, error)
	// ListSports 全量运动，附带其赛事及赛事下的选项
	ListSports(ctx context.Context) ([]*model.Sport, error)
	// SearchSports 执行 filter.Compile 生成的语句
	SearchSports(ctx context.Context, stmt filter.Statement) ([]*model.Sport, error)
}

type sportRepository struct {
	db *gorm.DB
}

// NewSportRepository 创建 SportRepository
func NewSportRepository(db *gorm.DB) SportRepository {
	return &sportRepository{db: db}
}

func (r *sportRepository) CreateSport(ctx context.Context, sport *model.Sport) error {
	// 显式选择 active，否则 false 会被 gorm 视为零值而使用列默认值 true
	return r.db.WithContext(ctx).Select("name", "slug", "active").Create(sport).Error
}

func (r *sportRepository) UpdateSport(ctx context.Context, id uint64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Sport{}).Where("id = ?", id).Updates(fields).Error
}

func (r *sportRepository) GetSportByID(ctx context.Context, id uint64) (*model.Sport, error) {
	var s model.Sport
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sportRepository) ListSports(ctx context.Context) ([]*model.Sport, error) {
	var list []*model.Sport
	if err := r.db.WithContext(ctx).
		Preload("Events", orderByID("events")).
		Preload("Events.Selections", orderByID("selections")).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *sportRepository) SearchSports(ctx context.Context, stmt filter.Statement) ([]*model.Sport, error) {
	var list []*model.Sport
	if err := r.db.WithContext(ctx).Raw(stmt.SQL, stmt.Args()...).Scan(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// orderByID 预加载子表时保持主键顺序
func orderByID(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".id ASC")
	}
}
