package service

import (
	"context"
	"image"
	"path/filepath"
	"time"

	"floorplan-analyzer-go/internal/config"
	"floorplan-analyzer-go/internal/files"
	"floorplan-analyzer-go/internal/geo"
	"floorplan-analyzer-go/internal/imageio"
	"floorplan-analyzer-go/internal/visualize"
	"floorplan-analyzer-go/pkg/models"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Option настройка AnalyzerService
type Option func(*AnalyzerService)

// WithRecorder включает запись результатов во внешнее хранилище
func WithRecorder(recorder ResultRecorder) Option {
	return func(s *AnalyzerService) {
		s.recorder = recorder
	}
}

// WithRunID задает идентификатор запуска вместо случайного
func WithRunID(runID string) Option {
	return func(s *AnalyzerService) {
		s.runID = runID
	}
}

// AnalyzerService пакетная обработка планов квартир
type AnalyzerService struct {
	cfg       *config.Config
	client    Inferencer
	extractor *geo.WallExtractor
	writer    *ResultWriter
	recorder  ResultRecorder
	logger    *logrus.Logger
	runID     string
}

// NewAnalyzerService создает новый сервис анализатора
func NewAnalyzerService(cfg *config.Config, client Inferencer, extractor *geo.WallExtractor, writer *ResultWriter, logger *logrus.Logger, opts ...Option) *AnalyzerService {
	s := &AnalyzerService{
		cfg:       cfg,
		client:    client,
		extractor: extractor,
		writer:    writer,
		logger:    logger,
		runID:     uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunID возвращает идентификатор запуска
func (s *AnalyzerService) RunID() string {
	return s.runID
}

// Run обрабатывает все изображения входной директории.
// Ошибка возвращается только если не удалось подготовить директории или
// входной путь не является директорией; сбои отдельных изображений
// попадают в сводку.
func (s *AnalyzerService) Run(ctx context.Context) (*RunSummary, error) {
	startTime := time.Now()
	s.logger.WithField("run_id", s.runID).Info("Запуск анализа планов квартир")

	if err := s.writer.EnsureDirs(); err != nil {
		return nil, err
	}

	images, err := files.FindImages(s.logger, s.cfg.Paths.InputDir)
	if err != nil {
		return nil, err
	}
	s.logger.Infof("Найдено изображений для обработки: %d", len(images))

	if len(images) == 0 {
		s.logger.Warnf("В директории %s не найдено изображений для обработки", s.cfg.Paths.InputDir)
		return s.summarize(nil, startTime), nil
	}

	outcomes := make([]ImageOutcome, len(images))
	for i, path := range images {
		outcomes[i] = ImageOutcome{Path: path}
	}

	workers := s.cfg.Processing.Workers
	if workers <= 1 {
		for i, path := range images {
			if ctx.Err() != nil {
				s.logger.Warn("Обработка прервана, оставшиеся изображения пропущены")
				break
			}
			outcomes[i] = s.ProcessImage(ctx, path)
		}
	} else {
		// Каждое изображение пишет только в свой элемент outcomes
		var g errgroup.Group
		g.SetLimit(workers)
		for i, path := range images {
			if ctx.Err() != nil {
				s.logger.Warn("Обработка прервана, оставшиеся изображения пропущены")
				break
			}
			i, path := i, path
			g.Go(func() error {
				outcomes[i] = s.ProcessImage(ctx, path)
				return nil
			})
		}
		_ = g.Wait()
	}

	summary := s.summarize(outcomes, startTime)
	s.logger.WithFields(logrus.Fields{
		"run_id":           summary.RunID,
		"found":            summary.Found,
		"processed":        summary.Processed,
		"load_failed":      summary.LoadFailed,
		"inference_failed": summary.InferenceFailed,
		"write_failed":     summary.WriteFailed,
		"debug_failed":     summary.DebugFailed,
		"not_attempted":    summary.NotAttempted,
		"walls":            summary.Walls,
	}).Infof("Обработка всех изображений завершена за %v", summary.Duration.Round(time.Millisecond))

	return summary, nil
}

// ProcessImage обрабатывает одно изображение плана квартиры.
//
// Последовательность: чтение -> инференс -> извлечение стен -> визуализация ->
// сохранение JSON -> сохранение отладочного изображения -> запись в БД.
// Любой сбой ограничивается этим изображением и отражается в ImageOutcome.
func (s *AnalyzerService) ProcessImage(ctx context.Context, imagePath string) ImageOutcome {
	outcome := ImageOutcome{Path: imagePath}
	log := s.logger.WithFields(logrus.Fields{
		"run_id": s.runID,
		"file":   files.DisplayPath(imagePath),
	})
	log.Info("Начало обработки изображения")

	img, err := imageio.Load(s.logger, imagePath)
	if err != nil {
		log.Errorf("Пропуск обработки: не удалось прочитать изображение: %v", err)
		outcome.Status = StatusLoadFailed
		outcome.Err = err
		return outcome
	}

	var visImage image.Image
	if colored, err := imageio.EnsureColor(img); err != nil {
		log.Warnf("Визуализация недоступна: %v", err)
		outcome.DebugErr = err
	} else {
		visImage = colored
	}
	outcome.Height, outcome.Width, _ = imageio.Dimensions(img)
	log.Debugf("Размер %dx%d, каналов: %d", outcome.Width, outcome.Height, imageio.Channels(img))

	detection, err := s.client.InferImage(ctx, imagePath)
	if err != nil {
		log.Errorf("Пропуск обработки: ошибка при инференсе изображения: %v", err)
		outcome.Status = StatusInferenceFailed
		outcome.Err = err
		return outcome
	}

	walls := s.extractor.ExtractWalls(detection.Predictions, s.cfg.Processing.ConfidenceThreshold)
	outcome.WallCount = len(walls)

	if visImage != nil {
		overlay, err := visualize.DrawWalls(visImage, walls)
		if err != nil {
			log.Errorf("Ошибка визуализации стен: %v", err)
			outcome.DebugErr = err
			visImage = nil
		} else {
			visImage = overlay
		}
	}

	result := models.NewFloorPlanResult(filepath.Base(imagePath), outcome.Height, outcome.Width, s.client.ModelID(), walls)
	stem := files.Stem(imagePath)

	resultPath, err := s.writer.WriteJSON(result, stem)
	if err != nil {
		log.Errorf("Ошибка сохранения результата: %v", err)
		outcome.Status = StatusWriteFailed
		outcome.Err = err
	} else {
		outcome.Status = StatusProcessed
		outcome.ResultPath = resultPath
	}

	if visImage != nil {
		debugPath, err := s.writer.WriteDebug(visImage, stem)
		if err != nil {
			log.Errorf("Ошибка сохранения визуализации: %v", err)
			outcome.DebugErr = err
		} else {
			outcome.DebugPath = debugPath
		}
	}

	if s.recorder != nil && outcome.Status == StatusProcessed {
		if err := s.recorder.Record(ctx, s.runID, result, &outcome); err != nil {
			log.Errorf("Ошибка записи результата в БД: %v", err)
			outcome.IndexErr = err
		}
	}

	return outcome
}

// summarize подсчитывает итоги запуска
func (s *AnalyzerService) summarize(outcomes []ImageOutcome, startTime time.Time) *RunSummary {
	countStatus := func(status ImageStatus) int {
		return lo.CountBy(outcomes, func(o ImageOutcome) bool { return o.Status == status })
	}

	return &RunSummary{
		RunID:           s.runID,
		Found:           len(outcomes),
		Processed:       countStatus(StatusProcessed),
		LoadFailed:      countStatus(StatusLoadFailed),
		InferenceFailed: countStatus(StatusInferenceFailed),
		WriteFailed:     countStatus(StatusWriteFailed),
		NotAttempted:    countStatus(StatusNotAttempted),
		DebugFailed:     lo.CountBy(outcomes, func(o ImageOutcome) bool { return o.DebugErr != nil }),
		Walls:           lo.SumBy(outcomes, func(o ImageOutcome) int { return o.WallCount }),
		Duration:        time.Since(startTime),
		Outcomes:        outcomes,
	}
}
