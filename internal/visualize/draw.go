package visualize

import (
	"image"
	"image/color"
	"image/draw"

	"floorplan-analyzer-go/internal/apperror"
	"floorplan-analyzer-go/pkg/models"

	"github.com/fogleman/gg"
)

var (
	// WallColor цвет линий стен на отладочном изображении
	WallColor = color.RGBA{R: 255, A: 255}
	// WallLineWidth толщина линий стен в пикселях
	WallLineWidth = 3.0
)

// DrawWalls рисует стены на копии изображения.
//
// Соседние точки соединяются отрезками (0->1, 1->2, ...). Контур из 4 точек
// не замыкается: ребро от последней точки к первой не рисуется.
func DrawWalls(img image.Image, walls []models.WallSegment) (*image.RGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, apperror.New(apperror.KindInvalidImage, "изображение не может быть пустым", "", nil)
	}

	b := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Src)

	dc := gg.NewContextForRGBA(canvas)
	dc.SetColor(WallColor)
	dc.SetLineWidth(WallLineWidth)

	for _, wall := range walls {
		for i := 0; i+1 < len(wall.Points); i++ {
			start, end := wall.Points[i], wall.Points[i+1]
			dc.DrawLine(float64(start[0]), float64(start[1]), float64(end[0]), float64(end[1]))
			dc.Stroke()
		}
	}

	return canvas, nil
}
