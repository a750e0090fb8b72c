package service

import (
	"context"
	"fmt"

	"SportsCatalog/internal/metrics"
	"SportsCatalog/internal/model"
	"SportsCatalog/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// 停用原因，写入 status_changes.reason
const (
	ReasonNoActiveSelections = "no_active_selections"
	ReasonNoActiveEvents     = "no_active_events"
)

// StatusPropagator 维护派生的 active 标记：选项 -> 赛事 -> 运动，只向上传播停用，不做重新激活。
// 每次调用最多更新一个赛事和一个运动；计数与更新各自独立提交，中途失败由下一次变更重新推导。
type StatusPropagator struct {
	store   repository.StatusRepository
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

// NewStatusPropagator 创建 StatusPropagator，m 可为 nil
func NewStatusPropagator(store repository.StatusRepository, m *metrics.Metrics, logger *logrus.Logger) *StatusPropagator {
	return &StatusPropagator{
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// RecomputeEvent 赛事下没有活跃选项时停用赛事，并继续检查其所属运动
func (p *StatusPropagator) RecomputeEvent(ctx context.Context, eventID uint64) error {
	active, err := p.store.CountActiveSelections(ctx, eventID)
	if err != nil {
		return fmt.Errorf("统计赛事%d活跃选项失败: %w", eventID, err)
	}
	if active > 0 {
		return nil
	}

	flipped, err := p.store.DeactivateEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("停用赛事%d失败: %w", eventID, err)
	}
	if flipped {
		p.recordFlip(ctx, model.EntityEvent, eventID, ReasonNoActiveSelections)
	}

	sportID, err := p.store.EventSportID(ctx, eventID)
	if err != nil {
		if repository.IsNotFound(err) {
			// 赛事在计数与更新之间被移除，没有可传播的上级
			p.logger.WithField("event_id", eventID).Debug("event vanished during propagation")
			return nil
		}
		return fmt.Errorf("查询赛事%d所属运动失败: %w", eventID, err)
	}
	return p.RecomputeSport(ctx, sportID)
}

// RecomputeSport 运动下没有活跃赛事时停用运动
func (p *StatusPropagator) RecomputeSport(ctx context.Context, sportID uint64) error {
	active, err := p.store.CountActiveEvents(ctx, sportID)
	if err != nil {
		return fmt.Errorf("统计运动%d活跃赛事失败: %w", sportID, err)
	}
	if active > 0 {
		return nil
	}

	flipped, err := p.store.DeactivateSport(ctx, sportID)
	if err != nil {
		return fmt.Errorf("停用运动%d失败: %w", sportID, err)
	}
	if flipped {
		p.recordFlip(ctx, model.EntitySport, sportID, ReasonNoActiveEvents)
	}
	return nil
}

// recordFlip 记录一次实际翻转；写审计失败只打日志
func (p *StatusPropagator) recordFlip(ctx context.Context, entity string, id uint64, reason string) {
	p.metrics.Deactivated(entity)
	p.logger.WithFields(logrus.Fields{
		"entity":    entity,
		"entity_id": id,
		"reason":    reason,
	}).Info("cascading deactivation")

	change := &model.StatusChange{
		Entity:   entity,
		EntityID: id,
		Active:   false,
		Reason:   reason,
		Detail:   datatypes.JSON(fmt.Sprintf(`{"entity_id":%d,"active_children":0}`, id)),
	}
	if err := p.store.RecordStatusChange(ctx, change); err != nil {
		p.logger.WithError(err).WithFields(logrus.Fields{
			"entity":    entity,
			"entity_id": id,
		}).Warn("record status change failed")
	}
}
