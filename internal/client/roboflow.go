package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"floorplan-analyzer-go/internal/apperror"
	"floorplan-analyzer-go/pkg/models"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// bodyPreviewLimit сколько байт тела ответа попадает в журнал при ошибке
const bodyPreviewLimit = 500

// Options параметры клиента roboflow
type Options struct {
	APIKey   string
	ModelID  string
	BaseURL  string
	Timeout  time.Duration
	ProxyURL string
}

// RoboflowClient клиент для api детекции roboflow
type RoboflowClient struct {
	apiKey     string
	modelID    string
	endpoint   string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewRoboflowClient создает новый клиент для api roboflow
func NewRoboflowClient(opts Options, logger *logrus.Logger) (*RoboflowClient, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.ProxyURL != "" {
		proxy, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, apperror.New(apperror.KindConfig, "разбор адреса прокси", opts.ProxyURL, err)
		}
		// Один и тот же прокси для http и https
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &RoboflowClient{
		apiKey:   opts.APIKey,
		modelID:  opts.ModelID,
		endpoint: fmt.Sprintf("%s/%s", strings.TrimRight(opts.BaseURL, "/"), opts.ModelID),
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		logger: logger,
	}, nil
}

// ModelID возвращает идентификатор модели
func (c *RoboflowClient) ModelID() string {
	return c.modelID
}

// InferImage отправляет изображение в api roboflow и возвращает разобранный ответ.
// Повторных попыток не делает.
func (c *RoboflowClient) InferImage(ctx context.Context, imagePath string) (*models.InferenceResponse, error) {
	c.logger.Debugf("Отправка изображения в api roboflow: %s", imagePath)

	body, contentType, err := c.buildMultipart(imagePath)
	if err != nil {
		c.logger.Errorf("Ошибка чтения файла изображения %s: %v", imagePath, err)
		return nil, err
	}

	query := url.Values{}
	query.Set("api_key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?"+query.Encode(), body)
	if err != nil {
		return nil, apperror.New(apperror.KindNetwork, "создание HTTP запроса", imagePath, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("Ошибка сети при запросе к api roboflow: %v", redact(err, c.apiKey))
		return nil, apperror.New(apperror.KindNetwork, "запрос к api roboflow", imagePath, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.New(apperror.KindNetwork, "чтение ответа", imagePath, err)
	}

	c.logger.Debugf("Статус ответа: %d", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warnf("Некорректный статус ответа: %d", resp.StatusCode)
		c.logger.Errorf("Детали ответа: %s...", preview(respBody))
		return nil, &apperror.Error{
			Kind:       apperror.KindNetwork,
			Op:         "api roboflow вернул ошибку",
			Path:       imagePath,
			StatusCode: resp.StatusCode,
		}
	}

	result, err := c.parseResponse(respBody)
	if err != nil {
		c.logger.Errorf("Некорректная структура ответа от api: %v", err)
		return nil, apperror.New(apperror.KindMalformedResponse, "разбор ответа api", imagePath, err)
	}

	c.logger.Debugf("Получено предсказаний: %d", len(result.Predictions))
	return result, nil
}

// buildMultipart формирует тело запроса с полем file
func (c *RoboflowClient) buildMultipart(imagePath string) (io.Reader, string, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, "", apperror.New(apperror.KindIO, "открытие файла изображения", imagePath, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return nil, "", apperror.New(apperror.KindIO, "создание form field", imagePath, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", apperror.New(apperror.KindIO, "чтение файла изображения", imagePath, err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", apperror.New(apperror.KindIO, "закрытие multipart writer", imagePath, err)
	}

	return &body, writer.FormDataContentType(), nil
}

// parseResponse разбирает тело ответа и проверяет наличие массива predictions.
// Элементы массива разбираются по отдельности: некорректный элемент
// пропускается с предупреждением и не влияет на остальные.
func (c *RoboflowClient) parseResponse(body []byte) (*models.InferenceResponse, error) {
	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("ответ не является JSON объектом: %w", err)
	}

	predictions, ok := fields["predictions"]
	if !ok {
		return nil, fmt.Errorf("ответ api не содержит поля 'predictions'")
	}
	if trimmed := bytes.TrimSpace(predictions); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("поле 'predictions' не является массивом")
	}

	var elements []jsoniter.RawMessage
	if err := json.Unmarshal(predictions, &elements); err != nil {
		return nil, fmt.Errorf("ошибка парсинга поля 'predictions': %w", err)
	}

	result := models.InferenceResponse{
		Predictions: make([]models.RawPrediction, 0, len(elements)),
	}
	for i, element := range elements {
		var pred models.RawPrediction
		if err := json.Unmarshal(element, &pred); err != nil {
			c.logger.Warnf("Пропуск некорректного предсказания #%d: %v", i, err)
			continue
		}
		result.Predictions = append(result.Predictions, pred)
	}

	// Остальные поля необязательны, ошибки их разбора игнорируются
	if raw, ok := fields["inference_id"]; ok {
		_ = json.Unmarshal(raw, &result.InferenceID)
	}
	if raw, ok := fields["time"]; ok {
		_ = json.Unmarshal(raw, &result.Time)
	}
	if raw, ok := fields["image"]; ok {
		var info models.ImageInfo
		if json.Unmarshal(raw, &info) == nil {
			result.Image = &info
		}
	}
	return &result, nil
}

func preview(body []byte) string {
	if len(body) > bodyPreviewLimit {
		body = body[:bodyPreviewLimit]
	}
	return string(body)
}

// redact убирает api ключ из url в тексте ошибки
func redact(err error, apiKey string) error {
	var urlErr *url.Error
	if apiKey != "" && errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, url.QueryEscape(apiKey), "***")
	}
	return err
}
