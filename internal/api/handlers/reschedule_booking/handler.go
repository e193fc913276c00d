package reschedule_booking

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/PT-BookingService/internal/api/handlers"
	rescheduleBooking "github.com/m04kA/PT-BookingService/internal/usecase/reschedule_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени, ожидается HH:MM"
	msgNotFound           = "бронирование не найдено"
	msgCancelled          = "отменённое бронирование нельзя перенести"
	msgSlotNotAvailable   = "выбранный временной слот недоступен"
	msgDateInPast         = "нельзя перенести бронирование на прошедшее время"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/admin/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(mux.Vars(r)["bookingId"])
	if err != nil {
		h.logger.Warn("PATCH /admin/bookings/{id}/reschedule - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req RescheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /admin/bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(bookingID)
	if err != nil {
		h.logger.Warn("PATCH /admin/bookings/{id}/reschedule - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleBooking.ErrBookingNotFound):
			h.logger.Warn("PATCH /admin/bookings/{id}/reschedule - Booking not found: booking_id=%s", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleBooking.ErrInvalidTransition):
			h.logger.Warn("PATCH /admin/bookings/{id}/reschedule - Booking cancelled: booking_id=%s", bookingID)
			handlers.RespondConflict(w, msgCancelled)

		case errors.Is(err, rescheduleBooking.ErrSlotUnavailable):
			h.logger.Warn("PATCH /admin/bookings/{id}/reschedule - Slot not available: booking_id=%s, slot=%sT%s",
				bookingID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, rescheduleBooking.ErrDateInPast):
			h.logger.Warn("PATCH /admin/bookings/{id}/reschedule - Date in past: booking_id=%s, slot=%sT%s",
				bookingID, req.Date, req.StartTime)
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, rescheduleBooking.ErrInvalidInput):
			h.logger.Warn("PATCH /admin/bookings/{id}/reschedule - Invalid input: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, rescheduleBooking.ErrStoreUnavailable):
			h.logger.Error("PATCH /admin/bookings/{id}/reschedule - Store unavailable: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("PATCH /admin/bookings/{id}/reschedule - Failed to reschedule: booking_id=%s, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("PATCH /admin/bookings/{id}/reschedule - Booking rescheduled: booking_id=%s, %s -> %s",
		bookingID, response.PreviousDateTime, response.DateTime)
	handlers.RespondJSON(w, http.StatusOK, response)
}
