package rules

import (
	"fmt"

	"github.com/m04kA/PT-BookingService/internal/domain"
)

// validateRule проверяет правило перед сохранением
func validateRule(rule *domain.AvailabilityRule) error {
	// Ровно одна область действия
	if (rule.DayOfWeek == nil) == (rule.SpecificDate == nil) {
		return fmt.Errorf("%w: exactly one of dayOfWeek or specificDate must be set", ErrInvalidRule)
	}

	if rule.DayOfWeek != nil {
		if *rule.DayOfWeek < domain.MinDayOfWeek || *rule.DayOfWeek > domain.MaxDayOfWeek {
			return fmt.Errorf("%w: dayOfWeek must be between %d and %d",
				ErrInvalidRule, domain.MinDayOfWeek, domain.MaxDayOfWeek)
		}
	}

	if rule.SpecificDate != nil {
		if err := rule.SpecificDate.Validate(); err != nil {
			return fmt.Errorf("%w: specificDate: %v", ErrInvalidRule, err)
		}
	}

	if err := rule.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: startTime: %v", ErrInvalidRule, err)
	}
	if err := rule.EndTime.Validate(); err != nil {
		return fmt.Errorf("%w: endTime: %v", ErrInvalidRule, err)
	}
	if !rule.StartTime.IsBefore(rule.EndTime) {
		return fmt.Errorf("%w: startTime %s must be before endTime %s", ErrInvalidRule, rule.StartTime, rule.EndTime)
	}

	return nil
}
