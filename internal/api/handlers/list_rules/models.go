package list_rules

import (
	"net/url"
	"strconv"

	"github.com/m04kA/PT-BookingService/internal/service/rules/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(query url.Values) (*models.ListRulesRequest, error) {
	req := &models.ListRulesRequest{
		Scope: query.Get("scope"),
	}

	if dayOfWeekStr := query.Get("dayOfWeek"); dayOfWeekStr != "" {
		dayOfWeek, err := strconv.Atoi(dayOfWeekStr)
		if err != nil {
			return nil, err
		}
		req.DayOfWeek = &dayOfWeek
	}

	if date := query.Get("date"); date != "" {
		req.Date = &date
	}

	return req, nil
}
