package availability

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/PT-BookingService/internal/domain"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

type options struct {
	ignoreBooking *uuid.UUID
}

// Option настраивает Resolve
type Option func(*options)

// IgnoreBooking не учитывает указанное бронирование при исключении занятых слотов.
// Используется при переносе, чтобы бронирование не блокировало само себя.
func IgnoreBooking(id uuid.UUID) Option {
	return func(o *options) {
		o.ignoreBooking = &id
	}
}

// Resolve возвращает отсортированный список времён начала, доступных для записи на дату.
//
// Порядок применения:
//  1. Еженедельные правила на день недели даты формируют базовый набор
//     (из конфликтующих правил на одно время побеждает последнее обновлённое)
//  2. Если на дату есть хотя бы одно разрешающее правило, базовый набор заменяется
//     объединением разрешённых на дату времён
//  3. Блокирующие правила на дату удаляют свои времена (блок сильнее разрешения)
//  4. Времена, занятые неотменёнными бронированиями на дату, исключаются
//
// Пустой список - нормальный результат.
func Resolve(
	date types.DateString,
	rules []*domain.AvailabilityRule,
	bookings []*domain.Booking,
	opts ...Option,
) ([]types.TimeString, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	offered, err := BaseTimes(date, rules)
	if err != nil {
		return nil, err
	}

	result := make([]types.TimeString, 0, len(offered))
	for _, t := range offered {
		if isTaken(date, t, bookings, o.ignoreBooking) {
			continue
		}
		result = append(result, t)
	}

	return result, nil
}

// BaseTimes применяет правила (шаги 1-3) без учёта бронирований
func BaseTimes(date types.DateString, rules []*domain.AvailabilityRule) ([]types.TimeString, error) {
	weekday, err := date.Weekday()
	if err != nil {
		return nil, fmt.Errorf("availability: resolve %q: %w", date, err)
	}

	// 1. Еженедельные правила
	set := recurringTimes(weekday, rules)

	// 2. Разрешения на конкретную дату заменяют базовый набор
	var (
		grants  = make(map[types.TimeString]struct{})
		blocks  = make(map[types.TimeString]struct{})
		granted bool
	)
	for _, rule := range rules {
		if rule == nil || !rule.AppliesToDate(date) {
			continue
		}
		if rule.IsAvailable {
			grants[rule.StartTime] = struct{}{}
			granted = true
		} else {
			blocks[rule.StartTime] = struct{}{}
		}
	}
	if granted {
		set = grants
	}

	// 3. Блокировки на дату применяются последними
	for t := range blocks {
		delete(set, t)
	}

	return sortedTimes(set), nil
}

// recurringTimes собирает доступные времена еженедельных правил на день недели.
// Для каждого времени начала авторитетно только одно правило (см. isNewer).
func recurringTimes(weekday time.Weekday, rules []*domain.AvailabilityRule) map[types.TimeString]struct{} {
	winners := make(map[types.TimeString]*domain.AvailabilityRule)

	for _, rule := range rules {
		if rule == nil || !rule.AppliesToWeekday(weekday) {
			continue
		}
		current, ok := winners[rule.StartTime]
		if !ok || isNewer(rule, current) {
			winners[rule.StartTime] = rule
		}
	}

	set := make(map[types.TimeString]struct{}, len(winners))
	for t, rule := range winners {
		if rule.IsAvailable {
			set[t] = struct{}{}
		}
	}
	return set
}

// isNewer: позже UpdatedAt, затем позже CreatedAt, затем больший ID
func isNewer(a, b *domain.AvailabilityRule) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() > b.ID.String()
}

func isTaken(date types.DateString, t types.TimeString, bookings []*domain.Booking, ignore *uuid.UUID) bool {
	for _, b := range bookings {
		if b == nil {
			continue
		}
		if ignore != nil && b.ID == *ignore {
			continue
		}
		if b.Occupies(date, t) {
			return true
		}
	}
	return false
}

// Contains проверяет, входит ли время в список доступных
func Contains(times []types.TimeString, t types.TimeString) bool {
	for _, candidate := range times {
		if candidate == t {
			return true
		}
	}
	return false
}

func sortedTimes(set map[types.TimeString]struct{}) []types.TimeString {
	times := make([]types.TimeString, 0, len(set))
	for t := range set {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times
}
