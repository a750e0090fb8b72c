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

// SportService 运动的增改查
type SportService struct {
	sports  repository.SportRepository
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

// NewSportService 创建 SportService
func NewSportService(sports repository.SportRepository, m *metrics.Metrics, logger *logrus.Logger) *SportService {
	return &SportService{
		sports:  sports,
		metrics: m,
		logger:  logger,
	}
}

// CreateSport 写入运动，成功后 sport.ID 被回填
func (s *SportService) CreateSport(ctx context.Context, sport *model.Sport) error {
	if err := s.sports.CreateSport(ctx, sport); err != nil {
		return fmt.Errorf("创建运动失败: %w", classifyWriteErr(err))
	}
	s.logger.WithFields(logrus.Fields{"sport_id": sport.ID, "slug": sport.Slug}).Info("sport created")
	return nil
}

// UpdateSport 部分更新，返回更新后的记录。运动更新不触发传播。
func (s *SportService) UpdateSport(ctx context.Context, id uint64, upd model.SportUpdate) (*model.Sport, error) {
	if _, err := s.sports.GetSportByID(ctx, id); err != nil {
		return nil, notFoundOr(err, ErrNotFound, "sport %d", id)
	}
	if err := s.sports.UpdateSport(ctx, id, upd.Fields()); err != nil {
		return nil, fmt.Errorf("更新运动%d失败: %w", id, classifyWriteErr(err))
	}
	return s.GetSport(ctx, id)
}

// GetSport 按 ID 查询
func (s *SportService) GetSport(ctx context.Context, id uint64) (*model.Sport, error) {
	sport, err := s.sports.GetSportByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrNotFound, "sport %d", id)
	}
	return sport, nil
}

// ListSports 全量运动（含赛事与选项）
func (s *SportService) ListSports(ctx context.Context) ([]*model.Sport, error) {
	return s.sports.ListSports(ctx)
}

// SearchSports 按过滤条件搜索
func (s *SportService) SearchSports(ctx context.Context, f filter.Filter) ([]*model.Sport, error) {
	return runSearch(ctx, s.metrics, s.logger, filter.Sports, f, s.sports.SearchSports)
}

// runSearch 编译过滤条件并执行，统一错误归类与指标
func runSearch[T any](
	ctx context.Context,
	m *metrics.Metrics,
	logger *logrus.Logger,
	entity filter.Entity,
	f filter.Filter,
	exec func(context.Context, filter.Statement) ([]T, error),
) ([]T, error) {
	if f.IsEmpty() {
		logger.WithField("entity", entity).Debug("search without conditions, returning all rows")
	}
	stmt, err := filter.Compile(entity, f)
	if err != nil {
		m.Searched(string(entity), metrics.SearchRejected)
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}
	rows, err := exec(ctx, stmt)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"entity":  entity,
			"clauses": len(stmt.Clauses),
		}).Warn("search failed")
		if repository.IsInvalidQueryInput(err) {
			m.Searched(string(entity), metrics.SearchRejected)
			return nil, fmt.Errorf("%w: %w", ErrSearch, err)
		}
		m.Searched(string(entity), metrics.SearchFailed)
		return nil, fmt.Errorf("搜索%s失败: %w", entity, err)
	}
	m.Searched(string(entity), metrics.SearchOK)
	return rows, nil
}
