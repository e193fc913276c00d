package create_booking

import "errors"

var (
	// ErrSlotUnavailable возвращается, когда выбранное время не предлагается или уже занято
	ErrSlotUnavailable = errors.New("create_booking: slot is not available")

	// ErrDateInPast возвращается, когда дата или время бронирования уже прошли
	ErrDateInPast = errors.New("create_booking: booking date is in the past")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrStoreUnavailable возвращается, когда хранилище недоступно
	ErrStoreUnavailable = errors.New("create_booking: store unavailable")
)
