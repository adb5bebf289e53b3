// Package stats serves the dashboard aggregates.
package stats

import (
	"context"
	"log/slog"

	"github.com/dmoura/gestao-escolar/internal/repository"
)

// Service holds the dashboard statistics logic
type Service struct {
	statsRepo repository.StatsRepository
	logger    *slog.Logger
}

// NewService creates a new Service instance
func NewService(statsRepo repository.StatsRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{statsRepo: statsRepo, logger: logger}
}

// Dashboard returns the current counters for the dashboard.
func (s *Service) Dashboard(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := s.statsRepo.DashboardStats(ctx)
	if err != nil {
		s.logger.Error("falha ao calcular estatísticas", "error", err)
		return nil, err
	}
	return stats, nil
}
