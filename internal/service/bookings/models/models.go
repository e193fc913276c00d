package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/PT-BookingService/internal/domain"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidPeriod возвращается при некорректном периоде выборки
	ErrInvalidPeriod = errors.New("invalid period")
)

// Request модели

// UpdateStatusRequest запрос администратора на смену статуса
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// ListBookingsRequest запрос администратора на получение бронирований
type ListBookingsRequest struct {
	StartDate        *string `json:"startDate,omitempty"` // "2024-07-01", включительно
	EndDate          *string `json:"endDate,omitempty"`   // включительно
	Status           *string `json:"status,omitempty"`
	IncludeCancelled bool    `json:"includeCancelled,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{IncludeCancelled: r.IncludeCancelled}

	if r.StartDate != nil {
		d, err := types.NewDateStringFromString(*r.StartDate)
		if err != nil {
			return filter, fmt.Errorf("%w: startDate: %v", ErrInvalidPeriod, err)
		}
		filter.StartDate = &d
	}
	if r.EndDate != nil {
		d, err := types.NewDateStringFromString(*r.EndDate)
		if err != nil {
			return filter, fmt.Errorf("%w: endDate: %v", ErrInvalidPeriod, err)
		}
		filter.EndDate = &d
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.IsBefore(*filter.StartDate) {
		return filter, fmt.Errorf("%w: endDate is before startDate", ErrInvalidPeriod)
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID          string  `json:"id"`
	UserID      int64   `json:"userId"`
	BookingDate string  `json:"bookingDate"` // "2024-07-01"
	StartTime   string  `json:"startTime"`   // "09:00"
	DateTime    string  `json:"dateTime"`    // "2024-07-01T09:00", без часового пояса
	Status      string  `json:"status"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Notes       *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:          b.ID.String(),
		UserID:      b.UserID,
		BookingDate: b.BookingDate.String(),
		StartTime:   b.StartTime.String(),
		DateTime:    b.DateTime().String(),
		Status:      string(b.Status),
		Name:        b.Name,
		Email:       b.Email,
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !domain.IsValidBookingStatus(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s, nil
}
