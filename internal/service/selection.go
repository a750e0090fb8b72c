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

// pricePlaces 价格保留两位小数，与 numeric(10,2) 一致
const pricePlaces = 2

// SelectionService 选项的增改查；每次写入后重新推导所属赛事的 active
type SelectionService struct {
	selections repository.SelectionRepository
	events     repository.EventRepository
	propagator *StatusPropagator
	metrics    *metrics.Metrics
	logger     *logrus.Logger
}

// NewSelectionService 创建 SelectionService
func NewSelectionService(
	selections repository.SelectionRepository,
	events repository.EventRepository,
	propagator *StatusPropagator,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *SelectionService {
	return &SelectionService{
		selections: selections,
		events:     events,
		propagator: propagator,
		metrics:    m,
		logger:     logger,
	}
}

// CreateSelection 所属赛事必须存在；写入后执行 RecomputeEvent
func (s *SelectionService) CreateSelection(ctx context.Context, selection *model.Selection) error {
	if err := s.requireEvent(ctx, selection.EventID); err != nil {
		return err
	}
	selection.Price = selection.Price.Round(pricePlaces)
	if err := s.selections.CreateSelection(ctx, selection); err != nil {
		return fmt.Errorf("创建选项失败: %w", classifyWriteErr(err))
	}
	s.logger.WithFields(logrus.Fields{
		"selection_id": selection.ID,
		"event_id":     selection.EventID,
	}).Info("selection created")

	s.recomputeEvent(ctx, selection.EventID, selection.ID)
	return nil
}

// UpdateSelection 任意字段变更都会重新推导所属赛事；换了赛事时原赛事也重新推导
func (s *SelectionService) UpdateSelection(ctx context.Context, id uint64, upd model.SelectionUpdate) (*model.Selection, error) {
	current, err := s.selections.GetSelectionByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrNotFound, "selection %d", id)
	}
	if upd.EventID != nil && *upd.EventID != current.EventID {
		if err := s.requireEvent(ctx, *upd.EventID); err != nil {
			return nil, err
		}
	}
	if upd.Price != nil {
		p := upd.Price.Round(pricePlaces)
		upd.Price = &p
	}

	if err := s.selections.UpdateSelection(ctx, id, upd.Fields()); err != nil {
		return nil, fmt.Errorf("更新选项%d失败: %w", id, classifyWriteErr(err))
	}
	updated, err := s.GetSelection(ctx, id)
	if err != nil {
		return nil, err
	}

	s.recomputeEvent(ctx, updated.EventID, id)
	if updated.EventID != current.EventID {
		s.recomputeEvent(ctx, current.EventID, id)
	}
	return updated, nil
}

// GetSelection 按 ID 查询
func (s *SelectionService) GetSelection(ctx context.Context, id uint64) (*model.Selection, error) {
	selection, err := s.selections.GetSelectionByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrNotFound, "selection %d", id)
	}
	return selection, nil
}

// ListSelections 全量选项
func (s *SelectionService) ListSelections(ctx context.Context) ([]*model.Selection, error) {
	return s.selections.ListSelections(ctx)
}

// SearchSelections 按过滤条件搜索
func (s *SelectionService) SearchSelections(ctx context.Context, f filter.Filter) ([]*model.Selection, error) {
	return runSearch(ctx, s.metrics, s.logger, filter.Selections, f, s.selections.SearchSelections)
}

func (s *SelectionService) requireEvent(ctx context.Context, eventID uint64) error {
	if _, err := s.events.GetEventByID(ctx, eventID); err != nil {
		return notFoundOr(err, ErrReference, "event with id %d does not exist", eventID)
	}
	return nil
}

func (s *SelectionService) recomputeEvent(ctx context.Context, eventID, selectionID uint64) {
	if err := s.propagator.RecomputeEvent(ctx, eventID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event_id":     eventID,
			"selection_id": selectionID,
		}).Warn("recompute event after selection write failed")
	}
}
