package logger

import (
	"os"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrObj — вложенный объект ошибки для ERROR записей
type ErrObj struct {
	Msg   string `json:"msg"`
	Stack string `json:"stack,omitempty"`
}

// Entry — единая схема лог-записи для всех компонентов сервиса.
// Поля timestamp/level/service/hostname заполняются автоматически.
type Entry struct {
	Action     string         `json:"action"`                // имя события, напр. delivery_created
	Message    string         `json:"message"`               // человекочитаемое описание
	RequestID  string         `json:"request_id,omitempty"`  // correlation id
	DeliveryID string         `json:"delivery_id,omitempty"` // когда применимо
	Error      *ErrObj        `json:"error,omitempty"`       // только для ERROR
	Additional map[string]any `json:"additional,omitempty"`  // опциональные детали
}

// Logger — тонкая обертка над zap, сохраняющая схему Entry.
type Logger struct {
	zl       *zap.Logger
	service  string
	hostname string
}

// NewLogger создает JSON-логгер поверх zap (stdout).
// minLevelStr: DEBUG | INFO | WARN | ERROR, по умолчанию INFO.
func NewLogger(service, minLevelStr string) *Logger {
	h, _ := os.Hostname()

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(minLevelStr))
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true

	zl, err := cfg.Build()
	if err != nil {
		zl = zap.NewNop()
	}

	return &Logger{
		zl:       zl.With(zap.String("service", service), zap.String("hostname", h)),
		service:  service,
		hostname: h,
	}
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Close сбрасывает буферы.
func (l *Logger) Close() {
	_ = l.zl.Sync()
}

func (l *Logger) Debug(e Entry) { l.log(zapcore.DebugLevel, e, nil) }
func (l *Logger) Info(e Entry)  { l.log(zapcore.InfoLevel, e, nil) }
func (l *Logger) Warn(e Entry)  { l.log(zapcore.WarnLevel, e, nil) }
func (l *Logger) Error(e Entry) { l.log(zapcore.ErrorLevel, e, nil) }

// Fatal логирует со stack trace и завершает процесс.
func (l *Logger) Fatal(e Entry) {
	if e.Error == nil {
		e.Error = &ErrObj{Msg: e.Message, Stack: string(debug.Stack())}
	} else if e.Error.Stack == "" {
		e.Error.Stack = string(debug.Stack())
	}
	l.log(zapcore.ErrorLevel, e, nil)
	_ = l.zl.Sync()
	os.Exit(1)
}

// WithContext возвращает контекстный логгер с привязанными request_id / delivery_id.
func (l *Logger) WithContext(requestID, deliveryID string) *ContextLogger {
	base := map[string]any{}
	if requestID != "" {
		base["request_id"] = requestID
	}
	if deliveryID != "" {
		base["delivery_id"] = deliveryID
	}
	return &ContextLogger{parent: l, base: base}
}

// ContextLogger автоматически подмешивает базовые поля в каждую запись.
type ContextLogger struct {
	parent *Logger
	base   map[string]any
}

func (c *ContextLogger) Debug(e Entry) { c.parent.log(zapcore.DebugLevel, e, c.base) }
func (c *ContextLogger) Info(e Entry)  { c.parent.log(zapcore.InfoLevel, e, c.base) }
func (c *ContextLogger) Warn(e Entry)  { c.parent.log(zapcore.WarnLevel, e, c.base) }
func (c *ContextLogger) Error(e Entry) { c.parent.log(zapcore.ErrorLevel, e, c.base) }

func (l *Logger) log(level zapcore.Level, e Entry, base map[string]any) {
	if base != nil {
		if e.RequestID == "" {
			e.RequestID, _ = base["request_id"].(string)
		}
		if e.DeliveryID == "" {
			e.DeliveryID, _ = base["delivery_id"].(string)
		}
	}

	fields := make([]zap.Field, 0, 5)
	fields = append(fields, zap.String("action", e.Action))
	if e.RequestID != "" {
		fields = append(fields, zap.String("request_id", e.RequestID))
	}
	if e.DeliveryID != "" {
		fields = append(fields, zap.String("delivery_id", e.DeliveryID))
	}
	if e.Error != nil {
		fields = append(fields, zap.Any("error", e.Error))
	}
	if len(e.Additional) > 0 {
		fields = append(fields, zap.Any("additional", e.Additional))
	}

	switch level {
	case zapcore.DebugLevel:
		l.zl.Debug(e.Message, fields...)
	case zapcore.WarnLevel:
		l.zl.Warn(e.Message, fields...)
	case zapcore.ErrorLevel:
		l.zl.Error(e.Message, fields...)
	default:
		l.zl.Info(e.Message, fields...)
	}
}
