package models

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// geometryFields поля bounding box, явный null в которых считается ошибкой
var geometryFields = []string{"x", "y", "width", "height"}

// RawPrediction один объект из массива predictions в ответе api.
// Поля нетипизированы: расхождение типов не должно ломать разбор ответа.
type RawPrediction struct {
	Class       any `json:"class"`
	ClassID     any `json:"class_id,omitempty"`
	Confidence  any `json:"confidence"`
	X           any `json:"x"`
	Y           any `json:"y"`
	Width       any `json:"width"`
	Height      any `json:"height"`
	DetectionID any `json:"detection_id,omitempty"`

	// nullFields поля геометрии, пришедшие в ответе как явный null
	nullFields []string
}

// UnmarshalJSON разбирает предсказание и запоминает поля геометрии со значением null
func (p *RawPrediction) UnmarshalJSON(data []byte) error {
	type plain RawPrediction
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*p = RawPrediction(decoded)
	p.nullFields = nil
	for _, name := range geometryFields {
		if raw, ok := fields[name]; ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			p.nullFields = append(p.nullFields, name)
		}
	}
	return nil
}

// Prediction типизированное представление предсказания после приведения типов
type Prediction struct {
	Class      string  // Класс в нижнем регистре
	Confidence float64 // Уверенность 0.0-1.0
	X          float64 // Центр bounding box
	Y          float64
	Width      float64
	Height     float64
}

// Coerce приводит поля предсказания к типам.
//
// Правила по умолчанию:
//   - confidence: отсутствует, не число, NaN или бесконечность -> 0.0;
//   - class: отсутствует или не строка -> "", затем нижний регистр;
//   - x, y, width, height: отсутствует -> 0; null, не число, NaN или
//     бесконечность -> ошибка.
func (p RawPrediction) Coerce() (Prediction, error) {
	confidence, err := cast.ToFloat64E(p.Confidence)
	if err != nil || !isFinite(confidence) {
		confidence = 0
	}
	class, err := cast.ToStringE(p.Class)
	if err != nil {
		class = ""
	}

	out := Prediction{
		Class:      strings.ToLower(class),
		Confidence: confidence,
	}

	fields := []struct {
		name string
		raw  any
		dst  *float64
	}{
		{"x", p.X, &out.X},
		{"y", p.Y, &out.Y},
		{"width", p.Width, &out.Width},
		{"height", p.Height, &out.Height},
	}
	for _, f := range fields {
		if lo.Contains(p.nullFields, f.name) {
			return out, fmt.Errorf("поле %s: значение null", f.name)
		}
		v, err := cast.ToFloat64E(f.raw)
		if err != nil {
			return out, fmt.Errorf("поле %s: %w", f.name, err)
		}
		if !isFinite(v) {
			return out, fmt.Errorf("поле %s: недопустимое значение %v", f.name, v)
		}
		*f.dst = v
	}

	return out, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ImageInfo размеры изображения, как их видит api
type ImageInfo struct {
	Width  any `json:"width"`
	Height any `json:"height"`
}

// InferenceResponse разобранный ответ api детекции
type InferenceResponse struct {
	InferenceID string          `json:"inference_id,omitempty"`
	Time        float64         `json:"time,omitempty"`
	Image       *ImageInfo      `json:"image,omitempty"`
	Predictions []RawPrediction `json:"predictions"`
}

// Point точка стены, сериализуется как [x, y]
type Point [2]int

// WallSegment стена, извлеченная из одного предсказания
type WallSegment struct {
	ID         string  `json:"id"`         // w1, w2, ... в пределах одного изображения
	Points     []Point `json:"points"`     // 2 точки для линии, 4 для прямоугольника
	Confidence float64 `json:"confidence"` // Уверенность исходного предсказания
}

// Meta метаданные результата обработки изображения
type Meta struct {
	Source  string `json:"source"`   // Имя исходного файла
	Shape   [2]int `json:"shape"`    // [высота, ширина]
	ModelID string `json:"model_id"` // Идентификатор модели
}

// FloorPlanResult результат обработки одного плана
type FloorPlanResult struct {
	Meta  Meta          `json:"meta"`
	Walls []WallSegment `json:"walls"`
}

// NewFloorPlanResult создает результат; пустой список стен сериализуется как []
func NewFloorPlanResult(source string, height, width int, modelID string, walls []WallSegment) *FloorPlanResult {
	if walls == nil {
		walls = []WallSegment{}
	}
	return &FloorPlanResult{
		Meta: Meta{
			Source:  source,
			Shape:   [2]int{height, width},
			ModelID: modelID,
		},
		Walls: walls,
	}
}
