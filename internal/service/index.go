package service

import (
	"context"
	"fmt"

	"floorplan-analyzer-go/internal/model"
	"floorplan-analyzer-go/internal/repository"
	"floorplan-analyzer-go/pkg/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ResultIndex записывает обработанные планы в базу данных
type ResultIndex struct {
	repo   repository.FloorPlanRepository
	logger *logrus.Logger
}

// NewResultIndex создает индекс результатов поверх репозитория
func NewResultIndex(repo repository.FloorPlanRepository, logger *logrus.Logger) *ResultIndex {
	return &ResultIndex{
		repo:   repo,
		logger: logger,
	}
}

// Record сохраняет план и его стены
func (x *ResultIndex) Record(ctx context.Context, runID string, result *models.FloorPlanResult, outcome *ImageOutcome) error {
	plan, err := toFloorPlanModel(runID, result, outcome)
	if err != nil {
		return err
	}

	if err := x.repo.Create(ctx, plan); err != nil {
		return fmt.Errorf("failed to save floor plan %s: %w", result.Meta.Source, err)
	}

	x.logger.Debugf("План %s сохранен в БД с %d стенами", result.Meta.Source, len(plan.Walls))
	return nil
}

// toFloorPlanModel преобразует результат в модель базы данных
func toFloorPlanModel(runID string, result *models.FloorPlanResult, outcome *ImageOutcome) (*model.FloorPlan, error) {
	plan := &model.FloorPlan{
		ID:         uuid.NewString(),
		RunID:      runID,
		Source:     result.Meta.Source,
		ModelID:    result.Meta.ModelID,
		Height:     result.Meta.Shape[0],
		Width:      result.Meta.Shape[1],
		WallCount:  len(result.Walls),
		ResultPath: outcome.ResultPath,
		DebugPath:  outcome.DebugPath,
	}

	for i, wall := range result.Walls {
		points, err := resultJSON.MarshalToString(wall.Points)
		if err != nil {
			return nil, fmt.Errorf("failed to encode points of wall %s: %w", wall.ID, err)
		}
		plan.Walls = append(plan.Walls, model.Wall{
			FloorPlanID: plan.ID,
			WallID:      wall.ID,
			Position:    i,
			Points:      points,
			Confidence:  wall.Confidence,
		})
	}

	return plan, nil
}
