package config

import (
	"path/filepath"
	"testing"
	"time"

	"floorplan-analyzer-go/internal/apperror"

	"go.viam.com/test"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("ROBOFLOW_API_KEY", "key")

	cfg, err := FromEnv()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Roboflow.APIKey, test.ShouldEqual, "key")
	test.That(t, cfg.Roboflow.ModelID, test.ShouldEqual, DefaultModelID)
	test.That(t, cfg.Roboflow.BaseURL, test.ShouldEqual, DefaultAPIURL)
	test.That(t, cfg.RequestTimeout(), test.ShouldEqual, 60*time.Second)
	test.That(t, cfg.Roboflow.ProxyURL, test.ShouldBeEmpty)
	test.That(t, cfg.Paths.InputDir, test.ShouldEqual, "./images")
	test.That(t, cfg.Paths.OutputDir, test.ShouldEqual, "./out")
	test.That(t, cfg.Paths.DebugDir, test.ShouldEqual, filepath.Join("./out", "debug"))
	test.That(t, cfg.Processing.ConfidenceThreshold, test.ShouldEqual, 0.20)
	test.That(t, cfg.Processing.Workers, test.ShouldEqual, 1)
	test.That(t, cfg.Logging.Level, test.ShouldEqual, "info")
	test.That(t, cfg.Logging.File, test.ShouldEqual, DefaultLogFile)
	test.That(t, cfg.Database.Enabled, test.ShouldBeFalse)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ROBOFLOW_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")
	t.Setenv("MODEL_ID", "floor/3")
	t.Setenv("ROBOFLOW_API_URL", "http://localhost:9001/")
	t.Setenv("REQUEST_TIMEOUT", "5")
	t.Setenv("PROXY_URL", "http://proxy.local:3128")
	t.Setenv("OUTPUT_DIR", "/tmp/results")
	t.Setenv("CONFIDENCE_THRESHOLD", "0.35")
	t.Setenv("WORKERS", "4")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FILE", "")
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DB_NAME", "plans")

	cfg, err := FromEnv()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Roboflow.APIKey, test.ShouldEqual, "legacy-key")
	test.That(t, cfg.Roboflow.ModelID, test.ShouldEqual, "floor/3")
	test.That(t, cfg.Roboflow.BaseURL, test.ShouldEqual, "http://localhost:9001")
	test.That(t, cfg.RequestTimeout(), test.ShouldEqual, 5*time.Second)
	test.That(t, cfg.Roboflow.ProxyURL, test.ShouldEqual, "http://proxy.local:3128")
	test.That(t, cfg.Paths.DebugDir, test.ShouldEqual, filepath.Join("/tmp/results", "debug"))
	test.That(t, cfg.Processing.ConfidenceThreshold, test.ShouldEqual, 0.35)
	test.That(t, cfg.Processing.Workers, test.ShouldEqual, 4)
	test.That(t, cfg.Logging.Level, test.ShouldEqual, "debug")
	test.That(t, cfg.Logging.File, test.ShouldBeEmpty)
	test.That(t, cfg.Database.Enabled, test.ShouldBeTrue)
	test.That(t, cfg.Database.DSN(), test.ShouldContainSubstring, "dbname=plans")
}

func TestFromEnvValidation(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		t.Setenv("ROBOFLOW_API_KEY", "")
		t.Setenv("API_KEY", "")
		_, err := FromEnv()
		test.That(t, apperror.Is(err, apperror.KindConfig), test.ShouldBeTrue)
	})

	t.Run("threshold out of range", func(t *testing.T) {
		t.Setenv("ROBOFLOW_API_KEY", "key")
		t.Setenv("CONFIDENCE_THRESHOLD", "1.5")
		_, err := FromEnv()
		test.That(t, apperror.Is(err, apperror.KindConfig), test.ShouldBeTrue)
	})

	t.Run("unknown log level", func(t *testing.T) {
		t.Setenv("ROBOFLOW_API_KEY", "key")
		t.Setenv("LOG_LEVEL", "chatty")
		_, err := FromEnv()
		test.That(t, apperror.Is(err, apperror.KindConfig), test.ShouldBeTrue)
	})
}
