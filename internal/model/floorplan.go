package model

import (
	"time"

	"gorm.io/gorm"
)

// FloorPlan представляет обработанный план в базе данных
type FloorPlan struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RunID     string `gorm:"type:varchar(36);not null;index" json:"run_id"`
	Source    string `gorm:"type:varchar(500);not null;index" json:"source"`
	ModelID   string `gorm:"type:varchar(255);not null" json:"model_id"`
	Height    int    `gorm:"not null" json:"height"`
	Width     int    `gorm:"not null" json:"width"`
	WallCount int    `gorm:"not null;default:0" json:"wall_count"`

	// Пути к сохраненным артефактам, пустые если запись не удалась
	ResultPath string `gorm:"type:varchar(1000)" json:"result_path"`
	DebugPath  string `gorm:"type:varchar(1000)" json:"debug_path"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Walls []Wall `gorm:"foreignKey:FloorPlanID;constraint:OnDelete:CASCADE" json:"walls"`
}

// Wall представляет стену плана в базе данных
type Wall struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	FloorPlanID string  `gorm:"type:varchar(36);not null;index" json:"floor_plan_id"`
	WallID      string  `gorm:"type:varchar(16);not null" json:"wall_id"`
	Position    int     `gorm:"not null" json:"position"`
	Points      string  `gorm:"type:text;not null" json:"points"` // JSON [[x,y],...]
	Confidence  float64 `gorm:"not null" json:"confidence"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName указывает имя таблицы для FloorPlan
func (FloorPlan) TableName() string {
	return "floor_plans"
}

// TableName указывает имя таблицы для Wall
func (Wall) TableName() string {
	return "walls"
}
