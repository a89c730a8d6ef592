package service

import (
	"context"
	"time"

	"floorplan-analyzer-go/pkg/models"
)

// Inferencer отправляет изображение в api детекции
type Inferencer interface {
	InferImage(ctx context.Context, imagePath string) (*models.InferenceResponse, error)
	ModelID() string
}

// ResultRecorder сохраняет сведения об обработанном плане во внешнем хранилище
type ResultRecorder interface {
	Record(ctx context.Context, runID string, result *models.FloorPlanResult, outcome *ImageOutcome) error
}

// ImageStatus итог обработки одного изображения
type ImageStatus int

const (
	// StatusNotAttempted изображение не обрабатывалось (запуск прерван)
	StatusNotAttempted ImageStatus = iota
	// StatusProcessed результат JSON сохранен
	StatusProcessed
	// StatusLoadFailed изображение не удалось прочитать
	StatusLoadFailed
	// StatusInferenceFailed ошибка api детекции, JSON не пишется
	StatusInferenceFailed
	// StatusWriteFailed стены извлечены, но JSON записать не удалось
	StatusWriteFailed
)

func (s ImageStatus) String() string {
	switch s {
	case StatusProcessed:
		return "processed"
	case StatusLoadFailed:
		return "load_failed"
	case StatusInferenceFailed:
		return "inference_failed"
	case StatusWriteFailed:
		return "write_failed"
	default:
		return "not_attempted"
	}
}

// ImageOutcome результат каждой стадии обработки одного изображения
type ImageOutcome struct {
	Path      string
	Status    ImageStatus
	Height    int
	Width     int
	WallCount int

	ResultPath string
	DebugPath  string

	// Err ошибка, остановившая обработку (загрузка, инференс или запись JSON)
	Err error
	// DebugErr ошибка визуализации или записи отладочного изображения
	DebugErr error
	// IndexErr ошибка записи в базу данных
	IndexErr error
}

// RunSummary итог пакетной обработки
type RunSummary struct {
	RunID           string
	Found           int
	Processed       int
	LoadFailed      int
	InferenceFailed int
	WriteFailed     int
	DebugFailed     int
	NotAttempted    int
	Walls           int
	Duration        time.Duration
	Outcomes        []ImageOutcome
}
