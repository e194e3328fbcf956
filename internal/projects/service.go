// Package projects собирает спецификацию проекта из журнала и реестра материалов.
package projects

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Spok95/solar-bom/internal/bom"
	"github.com/Spok95/solar-bom/internal/domain/bookings"
	"github.com/Spok95/solar-bom/internal/domain/materials"
	"github.com/Spok95/solar-bom/internal/infra/metrics"
)

type BookingSource interface {
	ListByProject(ctx context.Context, projectID string) ([]bookings.Booking, error)
}

type MaterialSource interface {
	List(ctx context.Context) ([]materials.Material, error)
}

type Service struct {
	bookings  BookingSource
	materials MaterialSource
	log       *slog.Logger
}

func NewService(b BookingSource, m MaterialSource, log *slog.Logger) *Service {
	return &Service{bookings: b, materials: m, log: log}
}

// Rows: агрегированная спецификация проекта в порядке первого появления материалов.
func (s *Service) Rows(ctx context.Context, projectID string) ([]bom.AggregatedMaterial, error) {
	if projectID == "" {
		return []bom.AggregatedMaterial{}, nil
	}

	bs, err := s.bookings.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	ms, err := s.materials.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}

	rows := bom.Aggregate(projectID, bs, ms)
	metrics.BOMAggregations.Inc()

	// возвратов больше, чем выдач: это ошибка учёта, строку не прячем
	for _, r := range bom.Negative(rows) {
		metrics.BOMNegativeRows.Inc()
		s.log.Warn("negative BOM quantity",
			"project_id", projectID,
			"material_id", r.MaterialID,
			"quantity", r.Quantity,
		)
	}
	return rows, nil
}

// BOM: спецификация проекта, разложенная по категориям.
func (s *Service) BOM(ctx context.Context, projectID string) (bom.Split, error) {
	rows, err := s.Rows(ctx, projectID)
	if err != nil {
		return bom.Split{}, err
	}
	return bom.SplitByCategory(rows), nil
}
