package service

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"floorplan-analyzer-go/internal/apperror"
	"floorplan-analyzer-go/internal/files"
	"floorplan-analyzer-go/internal/imageio"
	"floorplan-analyzer-go/pkg/models"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// resultJSON кодирует результат без экранирования не-ASCII и HTML символов
var resultJSON = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// ResultWriter сохраняет результаты обработки на диск
type ResultWriter struct {
	outputDir string
	debugDir  string
	logger    *logrus.Logger
}

// NewResultWriter создает новый writer результатов
func NewResultWriter(outputDir, debugDir string, logger *logrus.Logger) *ResultWriter {
	return &ResultWriter{
		outputDir: outputDir,
		debugDir:  debugDir,
		logger:    logger,
	}
}

// EnsureDirs создает директории для результатов и отладочных изображений
func (w *ResultWriter) EnsureDirs() error {
	if err := files.EnsureDir(w.logger, w.outputDir); err != nil {
		return err
	}
	return files.EnsureDir(w.logger, w.debugDir)
}

// ResultPath путь к JSON результату для имени файла без расширения
func (w *ResultWriter) ResultPath(stem string) string {
	return filepath.Join(w.outputDir, stem+".json")
}

// DebugPath путь к отладочному изображению для имени файла без расширения
func (w *ResultWriter) DebugPath(stem string) string {
	return filepath.Join(w.debugDir, stem+"_vis.png")
}

// WriteJSON сохраняет результат в <output_dir>/<stem>.json
func (w *ResultWriter) WriteJSON(result *models.FloorPlanResult, stem string) (string, error) {
	path := w.ResultPath(stem)

	data, err := resultJSON.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", apperror.New(apperror.KindIO, "сериализация результата", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", apperror.New(apperror.KindIO, "запись результата", path, err)
	}

	w.logger.Infof("Результат сохранен: %s", files.DisplayPath(path))
	return path, nil
}

// WriteDebug сохраняет отладочное изображение в <debug_dir>/<stem>_vis.png
func (w *ResultWriter) WriteDebug(img image.Image, stem string) (string, error) {
	path := w.DebugPath(stem)
	if err := imageio.SavePNG(path, img); err != nil {
		return "", err
	}

	w.logger.Infof("Отладочная визуализация сохранена: %s", files.DisplayPath(path))
	return path, nil
}

// ReadResult читает ранее сохраненный результат
func ReadResult(path string) (*models.FloorPlanResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.New(apperror.KindIO, "чтение результата", path, err)
	}

	var result models.FloorPlanResult
	if err := resultJSON.Unmarshal(data, &result); err != nil {
		return nil, apperror.New(apperror.KindIO, "разбор результата", path, fmt.Errorf("invalid result json: %w", err))
	}
	return &result, nil
}
