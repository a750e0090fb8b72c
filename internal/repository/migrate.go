package repository

import (
	"SportsCatalog/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate 库表不存在则创建，按依赖顺序迁移
// 外键只在业务层校验，gorm.Config 需设置 DisableForeignKeyConstraintWhenMigrating
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Sport{},
		&model.Event{},
		&model.Selection{},
		&model.StatusChange{},
	)
}
