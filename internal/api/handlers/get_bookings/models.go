package get_bookings

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/m04kA/PT-BookingService/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров.
// date задаёт один день и несовместим с startDate/endDate.
func ToServiceRequest(query url.Values) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{}

	if date := query.Get("date"); date != "" {
		if query.Get("startDate") != "" || query.Get("endDate") != "" {
			return nil, fmt.Errorf("date cannot be combined with startDate/endDate")
		}
		req.StartDate = &date
		req.EndDate = &date
	}
	if startDate := query.Get("startDate"); startDate != "" {
		req.StartDate = &startDate
	}
	if endDate := query.Get("endDate"); endDate != "" {
		req.EndDate = &endDate
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	if includeCancelledStr := query.Get("includeCancelled"); includeCancelledStr != "" {
		includeCancelled, err := strconv.ParseBool(includeCancelledStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeCancelled value: %w", err)
		}
		req.IncludeCancelled = includeCancelled
	}

	return req, nil
}
