package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/m04kA/PT-BookingService/internal/domain"
	ruleRepo "github.com/m04kA/PT-BookingService/internal/infra/storage/rule"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

// RuleStore хранилище правил доступности в памяти процесса
type RuleStore struct {
	mu    sync.RWMutex
	rules map[uuid.UUID]*domain.AvailabilityRule
	clock Clock
}

func NewRuleStore() *RuleStore {
	return &RuleStore{
		rules: make(map[uuid.UUID]*domain.AvailabilityRule),
		clock: systemClock{},
	}
}

// WithClock подменяет источник времени
func (s *RuleStore) WithClock(c Clock) *RuleStore {
	s.clock = c
	return s
}

func (s *RuleStore) Create(_ context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	s.rules[rule.ID] = copyRule(rule)
	return rule, nil
}

func (s *RuleStore) GetByID(_ context.Context, id uuid.UUID) (*domain.AvailabilityRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rules[id]
	if !ok {
		return nil, ruleRepo.ErrRuleNotFound
	}
	return copyRule(r), nil
}

func (s *RuleStore) List(_ context.Context, filter domain.RulesFilter) ([]*domain.AvailabilityRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AvailabilityRule, 0)
	for _, r := range s.rules {
		if filter.Matches(r) {
			result = append(result, copyRule(r))
		}
	}
	sortRules(result)
	return result, nil
}

func (s *RuleStore) ListByDate(_ context.Context, date types.DateString) ([]*domain.AvailabilityRule, error) {
	weekday, err := date.Weekday()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AvailabilityRule, 0)
	for _, r := range s.rules {
		if r.AppliesToWeekday(weekday) || r.AppliesToDate(date) {
			result = append(result, copyRule(r))
		}
	}
	sortRules(result)
	return result, nil
}

func (s *RuleStore) Update(_ context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rules[rule.ID]
	if !ok {
		return nil, ruleRepo.ErrRuleNotFound
	}

	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = s.clock.Now()
	s.rules[rule.ID] = copyRule(rule)
	return rule, nil
}

func (s *RuleStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[id]; !ok {
		return ruleRepo.ErrRuleNotFound
	}
	delete(s.rules, id)
	return nil
}

// sortRules: сначала еженедельные по дню, затем правила на даты, внутри - по времени
func sortRules(rules []*domain.AvailabilityRule) {
	key := func(r *domain.AvailabilityRule) string {
		if r.IsRecurring() {
			return "0" + string(rune('0'+*r.DayOfWeek)) + r.StartTime.String()
		}
		return "1" + r.SpecificDate.String() + r.StartTime.String()
	}
	sort.SliceStable(rules, func(i, j int) bool {
		ki, kj := key(rules[i]), key(rules[j])
		if ki != kj {
			return ki < kj
		}
		return rules[i].UpdatedAt.After(rules[j].UpdatedAt)
	})
}

func copyRule(r *domain.AvailabilityRule) *domain.AvailabilityRule {
	c := *r
	if r.DayOfWeek != nil {
		day := *r.DayOfWeek
		c.DayOfWeek = &day
	}
	if r.SpecificDate != nil {
		date := *r.SpecificDate
		c.SpecificDate = &date
	}
	return &c
}
