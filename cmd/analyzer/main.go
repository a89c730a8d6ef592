package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"floorplan-analyzer-go/internal/client"
	"floorplan-analyzer-go/internal/config"
	"floorplan-analyzer-go/internal/database"
	"floorplan-analyzer-go/internal/geo"
	"floorplan-analyzer-go/internal/logger"
	"floorplan-analyzer-go/internal/repository"
	"floorplan-analyzer-go/internal/service"

	"github.com/sirupsen/logrus"
)

func main() {
	// Получаем конфигурацию из .env и переменных окружения
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем логгер
	log, err := logger.New(logger.Options{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
	})
	if err != nil {
		logrus.Fatalf("Ошибка инициализации логгера: %v", err)
	}

	// Fatal только здесь: отложенные вызовы внутри run уже выполнены
	if err := run(cfg, log); err != nil {
		log.Fatalf("Ошибка обработки: %v", err)
	}
}

// run собирает зависимости и запускает пакетную обработку
func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Запуск Floor Plan Analyzer")
	log.Infof("Модель: %s, порог уверенности: %.2f, воркеров: %d",
		cfg.Roboflow.ModelID, cfg.Processing.ConfidenceThreshold, cfg.Processing.Workers)

	// Инициализируем клиент api детекции
	roboflow, err := client.NewRoboflowClient(client.Options{
		APIKey:   cfg.Roboflow.APIKey,
		ModelID:  cfg.Roboflow.ModelID,
		BaseURL:  cfg.Roboflow.BaseURL,
		Timeout:  cfg.RequestTimeout(),
		ProxyURL: cfg.Roboflow.ProxyURL,
	}, log)
	if err != nil {
		return fmt.Errorf("ошибка создания клиента Roboflow: %w", err)
	}

	var opts []service.Option

	// База данных подключается только по DB_ENABLED
	if cfg.Database.Enabled {
		log.Info("Подключение к базе данных...")
		db, err := database.Connect(cfg.Database, log)
		if err != nil {
			return fmt.Errorf("ошибка подключения к базе данных: %w", err)
		}
		defer func() {
			if err := database.Close(db); err != nil {
				log.Errorf("Ошибка закрытия соединения с базой данных: %v", err)
			}
		}()

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("ошибка выполнения миграций: %w", err)
		}
		if err := database.HealthCheck(db); err != nil {
			return fmt.Errorf("база данных недоступна: %w", err)
		}
		log.Info("База данных успешно подключена и готова к работе")

		index := service.NewResultIndex(repository.NewFloorPlanRepository(db), log)
		opts = append(opts, service.WithRecorder(index))
	}

	writer := service.NewResultWriter(cfg.Paths.OutputDir, cfg.Paths.DebugDir, log)
	analyzer := service.NewAnalyzerService(cfg, roboflow, geo.NewWallExtractor(log), writer, log, opts...)

	summary, err := analyzer.Run(ctx)
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		log.Warnf("Обработка остановлена по сигналу, не обработано изображений: %d", summary.NotAttempted)
	}
	return nil
}
