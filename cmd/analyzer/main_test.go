package main

import (
	"os"
	"path/filepath"
	"testing"

	"floorplan-analyzer-go/internal/apperror"
	"floorplan-analyzer-go/internal/config"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"go.viam.com/test"
)

func newRunConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{}
	cfg.Roboflow.APIKey = "secret"
	cfg.Roboflow.ModelID = config.DefaultModelID
	cfg.Roboflow.BaseURL = "http://127.0.0.1:1"
	cfg.Roboflow.TimeoutSeconds = 1
	cfg.Paths.InputDir = filepath.Join(root, "images")
	cfg.Paths.OutputDir = filepath.Join(root, "out")
	cfg.Paths.DebugDir = filepath.Join(root, "out", "debug")
	cfg.Processing.ConfidenceThreshold = config.DefaultConfidenceThreshold
	cfg.Processing.Workers = 1
	return cfg
}

func TestRunEmptyInputSucceeds(t *testing.T) {
	cfg := newRunConfig(t)
	log, _ := logtest.NewNullLogger()

	test.That(t, run(cfg, log), test.ShouldBeNil)

	_, err := os.Stat(cfg.Paths.DebugDir)
	test.That(t, err, test.ShouldBeNil)
}

func TestRunReturnsErrors(t *testing.T) {
	t.Run("invalid proxy", func(t *testing.T) {
		cfg := newRunConfig(t)
		cfg.Roboflow.ProxyURL = "://proxy"
		log, _ := logtest.NewNullLogger()

		err := run(cfg, log)
		test.That(t, apperror.Is(err, apperror.KindConfig), test.ShouldBeTrue)
	})

	t.Run("input is a file", func(t *testing.T) {
		cfg := newRunConfig(t)
		file := filepath.Join(t.TempDir(), "plan.png")
		test.That(t, os.WriteFile(file, []byte("x"), 0644), test.ShouldBeNil)
		cfg.Paths.InputDir = file
		log, _ := logtest.NewNullLogger()

		err := run(cfg, log)
		test.That(t, apperror.Is(err, apperror.KindDirectory), test.ShouldBeTrue)
	})

	t.Run("database unavailable", func(t *testing.T) {
		cfg := newRunConfig(t)
		cfg.Database = config.DatabaseConfig{
			Enabled:  true,
			Host:     "127.0.0.1",
			Port:     "1",
			Name:     "floorplans",
			Username: "postgres",
			Password: "postgres",
			SSLMode:  "disable",
		}
		log, _ := logtest.NewNullLogger()

		err := run(cfg, log)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "ошибка подключения к базе данных")
	})
}
