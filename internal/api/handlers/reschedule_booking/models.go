package reschedule_booking

import (
	"errors"
	"time"

	"github.com/google/uuid"

	rescheduleBooking "github.com/m04kA/PT-BookingService/internal/usecase/reschedule_booking"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid time")
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	Date      string `json:"date"`      // Новая дата, "2024-07-02"
	StartTime string `json:"startTime"` // Новое время, "10:00"
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(bookingID uuid.UUID) (*rescheduleBooking.Request, error) {
	date, err := types.NewDateStringFromString(r.Date)
	if err != nil {
		return nil, errInvalidDate
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, errInvalidTime
	}

	return &rescheduleBooking.Request{
		BookingID: bookingID,
		Date:      date,
		StartTime: startTime,
	}, nil
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID               string    `json:"id"`
	UserID           int64     `json:"userId"`
	BookingDate      string    `json:"bookingDate"`
	StartTime        string    `json:"startTime"`
	DateTime         string    `json:"dateTime"`
	PreviousDateTime string    `json:"previousDateTime"`
	Status           string    `json:"status"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Notes            *string   `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:               resp.ID.String(),
		UserID:           resp.UserID,
		BookingDate:      resp.BookingDate.String(),
		StartTime:        resp.StartTime.String(),
		DateTime:         types.NewLocalDateTime(resp.BookingDate, resp.StartTime).String(),
		PreviousDateTime: resp.PreviousDateTime.String(),
		Status:           resp.Status,
		Name:             resp.Name,
		Email:            resp.Email,
		Notes:            resp.Notes,
		CreatedAt:        resp.CreatedAt,
		UpdatedAt:        resp.UpdatedAt,
	}
}
