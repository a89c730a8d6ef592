package apperror

import (
	"errors"
	"fmt"
)

// Kind классифицирует ошибку по стадии обработки
type Kind int

const (
	KindUnknown Kind = iota
	// KindDirectory некорректный путь к директории
	KindDirectory
	// KindDecode изображение не удалось прочитать или декодировать
	KindDecode
	// KindNetwork таймаут, отказ соединения, ошибка TLS или не-2xx статус
	KindNetwork
	// KindMalformedResponse ответ API не соответствует ожидаемой схеме
	KindMalformedResponse
	// KindInvalidImage пустое изображение передано внутри программы
	KindInvalidImage
	// KindIO ошибка чтения или записи файла
	KindIO
	// KindConfig некорректная конфигурация
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindDecode:
		return "decode"
	case KindNetwork:
		return "network"
	case KindMalformedResponse:
		return "malformed_response"
	case KindInvalidImage:
		return "invalid_image"
	case KindIO:
		return "io"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error ошибка с видом, операцией и путем к файлу
type Error struct {
	Kind       Kind
	Op         string
	Path       string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Path)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: статус %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s (%s)", msg, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New создает ошибку заданного вида
func New(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf возвращает вид первой *Error в цепочке или KindUnknown
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Is проверяет, относится ли ошибка к указанному виду
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
