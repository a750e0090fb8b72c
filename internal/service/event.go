package service

import (
	"context"
	"fmt"

	"SportsCatalog/internal/filter"
	"SportsCatalog/internal/metrics"
	"SportsCatalog/internal/model"
	"SportsCatalog/internal/repository"

	"github.com/sirupsen/logrus"
)

// EventService 赛事的增改查；更新后重新推导所属运动的 active
type EventService struct {
	events     repository.EventRepository
	sports     repository.SportRepository
	propagator *StatusPropagator
	metrics    *metrics.Metrics
	logger     *logrus.Logger
}

// NewEventService 创建 EventService
func NewEventService(
	events repository.EventRepository,
	sports repository.SportRepository,
	propagator *StatusPropagator,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *EventService {
	return &EventService{
		events:     events,
		sports:     sports,
		propagator: propagator,
		metrics:    m,
		logger:     logger,
	}
}

// CreateEvent 所属运动必须存在，否则在写入前返回 ErrReference
func (s *EventService) CreateEvent(ctx context.Context, event *model.Event) error {
	if err := s.requireSport(ctx, event.SportID); err != nil {
		return err
	}
	if err := s.events.CreateEvent(ctx, event); err != nil {
		return fmt.Errorf("创建赛事失败: %w", classifyWriteErr(err))
	}
	s.logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"sport_id": event.SportID,
		"slug":     event.Slug,
	}).Info("event created")
	return nil
}

// UpdateEvent 部分更新后对所属运动执行 RecomputeSport；若换了运动，原运动也重新推导
func (s *EventService) UpdateEvent(ctx context.Context, id uint64, upd model.EventUpdate) (*model.Event, error) {
	current, err := s.events.GetEventByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrNotFound, "event %d", id)
	}
	if upd.SportID != nil && *upd.SportID != current.SportID {
		if err := s.requireSport(ctx, *upd.SportID); err != nil {
			return nil, err
		}
	}

	if err := s.events.UpdateEvent(ctx, id, upd.Fields()); err != nil {
		return nil, fmt.Errorf("更新赛事%d失败: %w", id, classifyWriteErr(err))
	}
	updated, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	s.recomputeSport(ctx, updated.SportID, id)
	if updated.SportID != current.SportID {
		s.recomputeSport(ctx, current.SportID, id)
	}
	return updated, nil
}

// GetEvent 按 ID 查询
func (s *EventService) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	event, err := s.events.GetEventByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrNotFound, "event %d", id)
	}
	return event, nil
}

// ListEvents 全量赛事（含选项）
func (s *EventService) ListEvents(ctx context.Context) ([]*model.Event, error) {
	return s.events.ListEvents(ctx)
}

// SearchEvents 按过滤条件搜索
func (s *EventService) SearchEvents(ctx context.Context, f filter.Filter) ([]*model.Event, error) {
	return runSearch(ctx, s.metrics, s.logger, filter.Events, f, s.events.SearchEvents)
}

func (s *EventService) requireSport(ctx context.Context, sportID uint64) error {
	if _, err := s.sports.GetSportByID(ctx, sportID); err != nil {
		return notFoundOr(err, ErrReference, "sport with id %d does not exist", sportID)
	}
	return nil
}

// recomputeSport 传播失败不回滚已提交的写入，留待下一次变更修正
func (s *EventService) recomputeSport(ctx context.Context, sportID, eventID uint64) {
	if err := s.propagator.RecomputeSport(ctx, sportID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"sport_id": sportID,
			"event_id": eventID,
		}).Warn("recompute sport after event update failed")
	}
}
