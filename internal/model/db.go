package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Sport 运动项目，active 由其下赛事派生
type Sport struct {
	ID     uint64  `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	Name   string  `gorm:"column:name;type:varchar(128);not null;comment:运动名称" json:"name"`
	Slug   string  `gorm:"column:slug;type:varchar(128);uniqueIndex;not null;comment:唯一标识" json:"slug"`
	Active bool    `gorm:"column:active;type:boolean;default:true;comment:是否存在活跃赛事" json:"active"`
	Events []Event `gorm:"foreignKey:SportID" json:"events,omitempty"`
}

// Event 赛事，active 由其下选项派生
type Event struct {
	ID             uint64      `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	Name           string      `gorm:"column:name;type:varchar(256);not null;comment:赛事名称" json:"name"`
	Slug           string      `gorm:"column:slug;type:varchar(256);uniqueIndex;not null;comment:唯一标识" json:"slug"`
	Active         bool        `gorm:"column:active;type:boolean;default:true;comment:是否存在活跃选项" json:"active"`
	Type           string      `gorm:"column:type;type:varchar(32);not null;comment:赛事类型：preplay/inplay" json:"type"`
	SportID        uint64      `gorm:"column:sport_id;type:bigint;index;not null;comment:关联运动ID" json:"sport_id"`
	Status         string      `gorm:"column:status;type:varchar(32);not null;comment:赛事状态：Pending/Started/..." json:"status"`
	ScheduledStart time.Time   `gorm:"column:scheduled_start;type:timestamp;not null;comment:计划开始时间" json:"scheduled_start"`
	ActualStart    *time.Time  `gorm:"column:actual_start;type:timestamp;comment:实际开始时间" json:"actual_start"`
	Selections     []Selection `gorm:"foreignKey:EventID" json:"selections,omitempty"`
}

// Selection 下注选项
type Selection struct {
	ID      uint64          `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	Name    string          `gorm:"column:name;type:varchar(128);not null;comment:选项名称" json:"name"`
	EventID uint64          `gorm:"column:event_id;type:bigint;index;not null;comment:关联赛事ID" json:"event_id"`
	Price   decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null;comment:价格" json:"price"`
	Active  bool            `gorm:"column:active;type:boolean;default:true;comment:是否可下注" json:"active"`
	Outcome string          `gorm:"column:outcome;type:varchar(32);not null;comment:结算结果：Unsettled/Win/Lose/..." json:"outcome"`
}

// MarshalJSON 价格固定输出两位小数，如 "1.50"
func (s Selection) MarshalJSON() ([]byte, error) {
	type plain Selection
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain: plain(s), Price: s.Price.StringFixed(2)})
}

// StatusChange 派生状态变更记录（仅记录实际发生翻转的级联停用）
type StatusChange struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	Entity    string         `gorm:"column:entity;type:varchar(16);not null;index:idx_status_change_entity"`
	EntityID  uint64         `gorm:"column:entity_id;type:bigint;not null;index:idx_status_change_entity"`
	Active    bool           `gorm:"column:active;type:boolean;not null"`
	Reason    string         `gorm:"column:reason;type:varchar(64);not null"`
	Detail    datatypes.JSON `gorm:"column:detail;type:jsonb"`
	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:now()"`
}

const (
	EntitySport = "sport"
	EntityEvent = "event"
)

func (Sport) TableName() string        { return "sports" }
func (Event) TableName() string        { return "events" }
func (Selection) TableName() string    { return "selections" }
func (StatusChange) TableName() string { return "status_changes" }
