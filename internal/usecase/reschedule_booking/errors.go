package reschedule_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrInvalidTransition возвращается при попытке перенести отменённое бронирование
	ErrInvalidTransition = errors.New("reschedule_booking: cancelled booking cannot be rescheduled")

	// ErrSlotUnavailable возвращается, когда новое время не предлагается или уже занято
	ErrSlotUnavailable = errors.New("reschedule_booking: slot is not available")

	// ErrDateInPast возвращается, когда новые дата или время уже прошли
	ErrDateInPast = errors.New("reschedule_booking: new date is in the past")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrStoreUnavailable возвращается, когда хранилище недоступно
	ErrStoreUnavailable = errors.New("reschedule_booking: store unavailable")
)
