package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"os"

	"floorplan-analyzer-go/internal/apperror"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// Load читает изображение с диска.
//
// Сначала изображение декодируется напрямую по пути. Если это не удалось,
// файл читается целиком и декодируется из буфера в памяти. Ошибка вида
// KindDecode означает, что файл нужно пропустить, а пакет продолжить.
func Load(logger *logrus.Logger, path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err == nil {
		return img, nil
	}
	logger.Debugf("Прямое чтение %s не удалось, декодируем из буфера: %v", path, err)

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Errorf("Критическая ошибка при чтении изображения %s: %v", path, err)
		return nil, apperror.New(apperror.KindDecode, "чтение изображения", path, err)
	}

	img, err = imaging.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Errorf("Не удалось декодировать изображение: %s", path)
		return nil, apperror.New(apperror.KindDecode, "декодирование изображения", path, err)
	}
	return img, nil
}

// EnsureColor возвращает новое непрозрачное 3-канальное изображение.
// Серые изображения размножаются по каналам, у изображений с альфа-каналом
// альфа отбрасывается. Исходное изображение никогда не изменяется.
func EnsureColor(img image.Image) (*image.RGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, apperror.New(apperror.KindInvalidImage, "изображение не может быть пустым", "", nil)
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst, nil
	}

	// Альфа отбрасывается: берутся непредумноженные значения каналов
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return dst, nil
}

// Dimensions возвращает (высота, ширина) изображения
func Dimensions(img image.Image) (int, int, error) {
	if img == nil {
		return 0, 0, apperror.New(apperror.KindInvalidImage, "изображение не может быть пустым", "", nil)
	}
	b := img.Bounds()
	return b.Dy(), b.Dx(), nil
}

// Channels возвращает число каналов изображения: 1, 3 или 4
func Channels(img image.Image) int {
	switch m := img.(type) {
	case nil:
		return 0
	case *image.Gray, *image.Gray16:
		return 1
	case *image.YCbCr, *image.CMYK:
		return 3
	case interface{ Opaque() bool }:
		if m.Opaque() {
			return 3
		}
	}
	return 4
}

// SavePNG сохраняет изображение в формате PNG
func SavePNG(path string, img image.Image) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return apperror.New(apperror.KindIO, "создание файла", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = apperror.New(apperror.KindIO, "закрытие файла", path, cerr)
		}
	}()

	if err := imaging.Encode(file, img, imaging.PNG); err != nil {
		return apperror.New(apperror.KindIO, "кодирование PNG", path, err)
	}
	return nil
}
