package repository

import (
	"context"

	"SportsCatalog/internal/filter"
	"SportsCatalog/internal/model"

	"gorm.io/gorm"
)

// SelectionRepository 选项表仓储
type SelectionRepository interface {
	CreateSelection(ctx context.Context, selection *model.Selection) error
	UpdateSelection(ctx context.Context, id uint64, fields map[string]interface{}) error
	GetSelectionByID(ctx context.Context, id uint64) (*model.Selection, error)
	ListSelections(ctx context.Context) ([]*model.Selection, error)
	SearchSelections(ctx context.Context, stmt filter.Statement) ([]*model.Selection, error)
}

type selectionRepository struct {
	db *gorm.DB
}

// NewSelectionRepository 创建 SelectionRepository
func NewSelectionRepository(db *gorm.DB) SelectionRepository {
	return &selectionRepository{db: db}
}

func (r *selectionRepository) CreateSelection(ctx context.Context, selection *model.Selection) error {
	return r.db.WithContext(ctx).Select("name", "event_id", "price", "active", "outcome").Create(selection).Error
}

func (r *selectionRepository) UpdateSelection(ctx context.Context, id uint64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Selection{}).Where("id = ?", id).Updates(fields).Error
}

func (r *selectionRepository) GetSelectionByID(ctx context.Context, id uint64) (*model.Selection, error) {
	var s model.Selection
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *selectionRepository) ListSelections(ctx context.Context) ([]*model.Selection, error) {
	var list []*model.Selection
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *selectionRepository) SearchSelections(ctx context.Context, stmt filter.Statement) ([]*model.Selection, error) {
	var list []*model.Selection
	if err := r.db.WithContext(ctx).Raw(stmt.SQL, stmt.Args()...).Scan(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
