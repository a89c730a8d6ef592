package geo

import (
	"fmt"
	"strings"

	"floorplan-analyzer-go/pkg/models"

	"github.com/sirupsen/logrus"
)

// wallClassMarker подстрока класса, по которой предсказание считается стеной
const wallClassMarker = "wall"

// WallExtractor извлекает геометрию стен из предсказаний модели
type WallExtractor struct {
	logger *logrus.Logger
}

// NewWallExtractor создает новый экстрактор стен
func NewWallExtractor(logger *logrus.Logger) *WallExtractor {
	return &WallExtractor{logger: logger}
}

// ExtractWalls преобразует предсказания в стены.
// Порядок предсказаний сохраняется, идентификаторы w1..wK выдаются только
// выведенным стенам. Некорректные предсказания пропускаются с предупреждением.
func (e *WallExtractor) ExtractWalls(predictions []models.RawPrediction, confidenceThreshold float64) []models.WallSegment {
	walls := make([]models.WallSegment, 0, len(predictions))

	for i, raw := range predictions {
		pred, err := raw.Coerce()

		if pred.Confidence < confidenceThreshold {
			continue
		}
		if !strings.Contains(pred.Class, wallClassMarker) {
			continue
		}
		if err != nil {
			e.logger.Warnf("Ошибка обработки предсказания #%d: %v", i, err)
			continue
		}

		walls = append(walls, models.WallSegment{
			ID:         fmt.Sprintf("w%d", len(walls)+1),
			Points:     BoxToWallLine(pred.X, pred.Y, pred.Width, pred.Height),
			Confidence: pred.Confidence,
		})
	}

	e.logger.Infof("Найдено стен: %d", len(walls))
	return walls
}

// BoxToWallLine преобразует bounding box (центр и размеры) в линию стены.
//
// Вытянутый по горизонтали бокс (ширина >= 2*высота) дает горизонтальную
// линию по средней высоте, вытянутый по вертикали дает вертикальную линию,
// остальные дают контур прямоугольника по часовой стрелке от левого верхнего угла.
func BoxToWallLine(x, y, width, height float64) []models.Point {
	// int() отбрасывает дробную часть в сторону нуля
	x1 := int(x - width/2)
	y1 := int(y - height/2)
	x2 := int(x + width/2)
	y2 := int(y + height/2)

	switch {
	case width >= 2*height:
		yMid := floorDiv(y1+y2, 2)
		return []models.Point{{x1, yMid}, {x2, yMid}}
	case height >= 2*width:
		xMid := floorDiv(x1+x2, 2)
		return []models.Point{{xMid, y1}, {xMid, y2}}
	default:
		return []models.Point{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}}
	}
}

// floorDiv целочисленное деление с округлением вниз (в Go "/" округляет к нулю)
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
