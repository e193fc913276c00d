package notifications

import "errors"

var (
	// ErrPublish возвращается, когда событие не удалось доставить
	ErrPublish = errors.New("notifications: failed to publish event")

	// ErrUnknownDriver возвращается при неизвестном драйвере уведомлений
	ErrUnknownDriver = errors.New("notifications: unknown driver")
)
