package notifications

import "context"

// Publisher доставляет событие во внешнюю систему
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Recorder считает исходы доставки (Prometheus)
type Recorder interface {
	Record(event EventType, result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
