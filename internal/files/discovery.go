package files

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"floorplan-analyzer-go/internal/apperror"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// DefaultImageExtensions расширения файлов изображений по умолчанию
var DefaultImageExtensions = []string{".jpg", ".jpeg", ".png"}

// FindImages возвращает пути к файлам изображений непосредственно в директории dir.
// Сравнение расширений регистронезависимое. Порядок соответствует os.ReadDir
// (отсортирован по имени). Несуществующая директория дает пустой список.
func FindImages(logger *logrus.Logger, dir string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = DefaultImageExtensions
	}
	extensions = lo.Map(extensions, func(ext string, _ int) string {
		return strings.ToLower(ext)
	})

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warnf("Директория не существует: %s", dir)
		return []string{}, nil
	}
	if err != nil {
		return nil, apperror.New(apperror.KindDirectory, "проверка директории", dir, err)
	}
	if !info.IsDir() {
		logger.Errorf("Указанный путь не является директорией: %s", dir)
		return nil, apperror.New(apperror.KindDirectory, "путь не является директорией", dir, nil)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperror.New(apperror.KindDirectory, "чтение директории", dir, err)
	}

	images := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if lo.ContainsBy(extensions, func(ext string) bool { return strings.HasSuffix(name, ext) }) {
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}

	logger.Infof("Найдено %d изображений в директории %s", len(images), dir)
	return images, nil
}

// EnsureDir создает директорию вместе с родительскими, если ее еще нет
func EnsureDir(logger *logrus.Logger, path string) error {
	if strings.TrimSpace(path) == "" {
		return apperror.New(apperror.KindDirectory, "некорректный путь к директории", path, nil)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		logger.Errorf("Ошибка при создании директории %s: %v", path, err)
		return apperror.New(apperror.KindDirectory, "создание директории", path, err)
	}
	logger.Debugf("Директория создана или уже существует: %s", path)
	return nil
}

// DisplayPath нормализует путь для вывода в журнал
func DisplayPath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(path))
}

// Stem возвращает имя файла без директории и расширения
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
