package create_booking

import (
	"errors"
	"time"

	createBooking "github.com/m04kA/PT-BookingService/internal/usecase/create_booking"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid time")
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	Date      string  `json:"date"`      // "2024-07-01"
	StartTime string  `json:"startTime"` // "09:00"
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Notes     *string `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Владелец бронирования берётся из аутентификации, а не из тела.
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	date, err := types.NewDateStringFromString(r.Date)
	if err != nil {
		return nil, errInvalidDate
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, errInvalidTime
	}

	return &createBooking.Request{
		UserID:    userID,
		Date:      date,
		StartTime: startTime,
		Name:      r.Name,
		Email:     r.Email,
		Notes:     r.Notes,
	}, nil
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"userId"`
	BookingDate string    `json:"bookingDate"`
	StartTime   string    `json:"startTime"`
	DateTime    string    `json:"dateTime"` // "2024-07-01T09:00", без часового пояса
	Status      string    `json:"status"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:          resp.ID.String(),
		UserID:      resp.UserID,
		BookingDate: resp.BookingDate.String(),
		StartTime:   resp.StartTime.String(),
		DateTime:    types.NewLocalDateTime(resp.BookingDate, resp.StartTime).String(),
		Status:      resp.Status,
		Name:        resp.Name,
		Email:       resp.Email,
		Notes:       resp.Notes,
		CreatedAt:   resp.CreatedAt,
		UpdatedAt:   resp.UpdatedAt,
	}
}
