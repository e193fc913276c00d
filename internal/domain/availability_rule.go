package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/PT-BookingService/pkg/types"
)

// AvailabilityRule opens or blocks one start time.
// Scope is exactly one of:
// 1. Recurring - every week on DayOfWeek (0 = Sunday ... 6 = Saturday)
// 2. Date-specific - only on SpecificDate, overrides recurring rules for that date
type AvailabilityRule struct {
	ID           uuid.UUID
	DayOfWeek    *int
	SpecificDate *types.DateString
	StartTime    types.TimeString
	EndTime      types.TimeString
	IsAvailable  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsRecurring returns true if the rule repeats weekly
func (r *AvailabilityRule) IsRecurring() bool {
	return r.DayOfWeek != nil && r.SpecificDate == nil
}

// IsDateSpecific returns true if the rule applies to a single date
func (r *AvailabilityRule) IsDateSpecific() bool {
	return r.SpecificDate != nil && r.DayOfWeek == nil
}

// AppliesToWeekday returns true for a recurring rule on the given weekday
func (r *AvailabilityRule) AppliesToWeekday(wd time.Weekday) bool {
	return r.IsRecurring() && *r.DayOfWeek == int(wd)
}

// AppliesToDate returns true for a date-specific rule on the given date
func (r *AvailabilityRule) AppliesToDate(date types.DateString) bool {
	return r.IsDateSpecific() && *r.SpecificDate == date
}

// RulesFilter фильтр для выборки правил доступности
type RulesFilter struct {
	DayOfWeek    *int              // Только еженедельные правила на этот день
	SpecificDate *types.DateString // Только правила на эту дату
	FromDate     *types.DateString // Правила на даты начиная с FromDate
	ToDate       *types.DateString // Правила на даты до ToDate включительно
	Scope        RuleScope         // all | recurring | specific
}

// RuleScope ограничивает выборку по типу правила
type RuleScope string

const (
	RuleScopeAll       RuleScope = ""
	RuleScopeRecurring RuleScope = "recurring"
	RuleScopeSpecific  RuleScope = "specific"
)

// Matches applies the filter to a rule in memory
func (f RulesFilter) Matches(r *AvailabilityRule) bool {
	switch f.Scope {
	case RuleScopeRecurring:
		if !r.IsRecurring() {
			return false
		}
	case RuleScopeSpecific:
		if !r.IsDateSpecific() {
			return false
		}
	}
	if f.DayOfWeek != nil && (r.DayOfWeek == nil || *r.DayOfWeek != *f.DayOfWeek) {
		return false
	}
	if f.SpecificDate != nil && (r.SpecificDate == nil || *r.SpecificDate != *f.SpecificDate) {
		return false
	}
	if f.FromDate != nil && r.SpecificDate != nil && r.SpecificDate.IsBefore(*f.FromDate) {
		return false
	}
	if f.ToDate != nil && r.SpecificDate != nil && r.SpecificDate.IsAfter(*f.ToDate) {
		return false
	}
	return true
}
