package repository

import (
	"context"
	"fmt"

	"floorplan-analyzer-go/internal/model"

	"gorm.io/gorm"
)

// FloorPlanRepository интерфейс для работы с обработанными планами
type FloorPlanRepository interface {
	Create(ctx context.Context, plan *model.FloorPlan) error
}

// floorPlanRepository реализация FloorPlanRepository
type floorPlanRepository struct {
	db *gorm.DB
}

// NewFloorPlanRepository создает новый instance FloorPlanRepository
func NewFloorPlanRepository(db *gorm.DB) FloorPlanRepository {
	return &floorPlanRepository{
		db: db,
	}
}

// Create сохраняет план вместе со стенами в одной транзакции
func (r *floorPlanRepository) Create(ctx context.Context, plan *model.FloorPlan) error {
	walls := plan.Walls
	plan.Walls = nil
	defer func() { plan.Walls = walls }()

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	// Сначала создаем план
	if err := tx.Create(plan).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create floor plan: %w", err)
	}

	// Затем создаем стены
	for i := range walls {
		walls[i].ID = 0 // Обнуляем ID для auto-increment
		walls[i].FloorPlanID = plan.ID
		if err := tx.Create(&walls[i]).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to create wall %s: %w", walls[i].WallID, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
