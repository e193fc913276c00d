package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/PT-BookingService/internal/domain"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

var (
	// ErrInvalidScope возвращается при неизвестном типе правил в фильтре
	ErrInvalidScope = errors.New("invalid rule scope")
)

// Request модели

// CreateRuleRequest запрос на создание правила доступности
type CreateRuleRequest struct {
	DayOfWeek    *int    `json:"dayOfWeek,omitempty"`    // 0 = воскресенье ... 6 = суббота
	SpecificDate *string `json:"specificDate,omitempty"` // "2024-07-01"
	StartTime    string  `json:"startTime"`              // "09:00"
	EndTime      string  `json:"endTime"`                // "10:00"
	IsAvailable  *bool   `json:"isAvailable,omitempty"`  // По умолчанию true
}

// ToDomainRule конвертирует request в domain модель без валидации
func (r *CreateRuleRequest) ToDomainRule() *domain.AvailabilityRule {
	rule := &domain.AvailabilityRule{
		DayOfWeek:   r.DayOfWeek,
		StartTime:   types.TimeString(r.StartTime),
		EndTime:     types.TimeString(r.EndTime),
		IsAvailable: true,
	}
	if r.SpecificDate != nil {
		d := types.DateString(*r.SpecificDate)
		rule.SpecificDate = &d
	}
	if r.IsAvailable != nil {
		rule.IsAvailable = *r.IsAvailable
	}
	return rule
}

// UpdateRuleRequest запрос на частичное обновление правила
// Передача dayOfWeek или specificDate заменяет область действия правила
type UpdateRuleRequest struct {
	DayOfWeek    *int    `json:"dayOfWeek,omitempty"`
	SpecificDate *string `json:"specificDate,omitempty"`
	StartTime    *string `json:"startTime,omitempty"`
	EndTime      *string `json:"endTime,omitempty"`
	IsAvailable  *bool   `json:"isAvailable,omitempty"`
}

// IsEmpty возвращает true, если ни одно поле не передано
func (r *UpdateRuleRequest) IsEmpty() bool {
	return r.DayOfWeek == nil && r.SpecificDate == nil && r.StartTime == nil &&
		r.EndTime == nil && r.IsAvailable == nil
}

// ApplyTo применяет переданные поля к правилу
func (r *UpdateRuleRequest) ApplyTo(rule *domain.AvailabilityRule) {
	if r.DayOfWeek != nil {
		day := *r.DayOfWeek
		rule.DayOfWeek = &day
		rule.SpecificDate = nil
	}
	if r.SpecificDate != nil {
		d := types.DateString(*r.SpecificDate)
		rule.SpecificDate = &d
		if r.DayOfWeek == nil {
			rule.DayOfWeek = nil
		}
	}
	if r.StartTime != nil {
		rule.StartTime = types.TimeString(*r.StartTime)
	}
	if r.EndTime != nil {
		rule.EndTime = types.TimeString(*r.EndTime)
	}
	if r.IsAvailable != nil {
		rule.IsAvailable = *r.IsAvailable
	}
}

// ListRulesRequest фильтр списка правил
type ListRulesRequest struct {
	DayOfWeek *int    `json:"dayOfWeek,omitempty"`
	Date      *string `json:"date,omitempty"`  // Только правила на эту дату
	Scope     string  `json:"scope,omitempty"` // "", "recurring", "specific"
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListRulesRequest) ToDomainFilter() (domain.RulesFilter, error) {
	filter := domain.RulesFilter{DayOfWeek: r.DayOfWeek}

	switch scope := domain.RuleScope(r.Scope); scope {
	case domain.RuleScopeAll, domain.RuleScopeRecurring, domain.RuleScopeSpecific:
		filter.Scope = scope
	default:
		return filter, fmt.Errorf("%w: %q", ErrInvalidScope, r.Scope)
	}

	if r.Date != nil {
		d, err := types.NewDateStringFromString(*r.Date)
		if err != nil {
			return filter, err
		}
		filter.SpecificDate = &d
	}

	return filter, nil
}

// Response модели

// RuleResponse ответ с данными правила
type RuleResponse struct {
	ID           string    `json:"id"`
	Scope        string    `json:"scope"` // "recurring" | "specific"
	DayOfWeek    *int      `json:"dayOfWeek,omitempty"`
	SpecificDate *string   `json:"specificDate,omitempty"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	IsAvailable  bool      `json:"isAvailable"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RuleListResponse ответ со списком правил
type RuleListResponse struct {
	Rules []RuleResponse `json:"rules"`
}

// Методы конвертации

// FromDomainRule конвертирует domain модель в DTO
func FromDomainRule(r *domain.AvailabilityRule) *RuleResponse {
	if r == nil {
		return nil
	}

	resp := &RuleResponse{
		ID:          r.ID.String(),
		Scope:       string(domain.RuleScopeRecurring),
		DayOfWeek:   r.DayOfWeek,
		StartTime:   r.StartTime.String(),
		EndTime:     r.EndTime.String(),
		IsAvailable: r.IsAvailable,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.SpecificDate != nil {
		d := r.SpecificDate.String()
		resp.SpecificDate = &d
		resp.Scope = string(domain.RuleScopeSpecific)
	}

	return resp
}

// FromDomainRuleList конвертирует список domain моделей в DTO
func FromDomainRuleList(rules []*domain.AvailabilityRule) *RuleListResponse {
	resp := &RuleListResponse{
		Rules: make([]RuleResponse, 0, len(rules)),
	}
	for _, rule := range rules {
		if r := FromDomainRule(rule); r != nil {
			resp.Rules = append(resp.Rules, *r)
		}
	}
	return resp
}
