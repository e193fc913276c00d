package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	ruleRepo "github.com/m04kA/PT-BookingService/internal/infra/storage/rule"
	"github.com/m04kA/PT-BookingService/internal/service/rules/models"
)

// Service сервис администрирования правил доступности.
// Изменение правил не затрагивает существующие бронирования.
type Service struct {
	ruleRepo RuleRepository
	logger   Logger
}

// NewService создает новый экземпляр сервиса правил
func NewService(ruleRepo RuleRepository, logger Logger) *Service {
	return &Service{
		ruleRepo: ruleRepo,
		logger:   logger,
	}
}

// Create создает правило доступности
func (s *Service) Create(ctx context.Context, req *models.CreateRuleRequest) (*models.RuleResponse, error) {
	s.logger.Info("CreateRule: dayOfWeek=%v, specificDate=%v, %s-%s, available=%v",
		req.DayOfWeek, req.SpecificDate, req.StartTime, req.EndTime, req.IsAvailable)

	// 1. Собираем и валидируем правило
	rule := req.ToDomainRule()
	rule.ID = uuid.New()
	if err := validateRule(rule); err != nil {
		s.logger.Warn("CreateRule: validation failed: %v", err)
		return nil, err
	}

	// 2. Сохраняем
	created, err := s.ruleRepo.Create(ctx, rule)
	if err != nil {
		return nil, s.mapRepoError("CreateRule", rule.ID, err)
	}

	s.logger.Info("CreateRule: successfully created rule id=%s", created.ID)
	return models.FromDomainRule(created), nil
}

// GetByID получает правило по ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.RuleResponse, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("GetRule", id, err)
	}
	return models.FromDomainRule(rule), nil
}

// List получает правила по фильтру, еженедельные правила идут первыми
func (s *Service) List(ctx context.Context, req *models.ListRulesRequest) (*models.RuleListResponse, error) {
	s.logger.Info("ListRules: dayOfWeek=%v, date=%v, scope=%q", req.DayOfWeek, req.Date, req.Scope)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListRules: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	rules, err := s.ruleRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ListRules: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListRules - repository error: %v", ErrStoreUnavailable, err)
	}

	s.logger.Info("ListRules: fetched %d rules", len(rules))
	return models.FromDomainRuleList(rules), nil
}

// Update частично обновляет правило
// Передача dayOfWeek или specificDate заменяет область действия
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *models.UpdateRuleRequest) (*models.RuleResponse, error) {
	s.logger.Info("UpdateRule: updating rule id=%s", id)

	if req.IsEmpty() {
		s.logger.Warn("UpdateRule: empty patch for rule id=%s", id)
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	// 1. Текущее состояние
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("UpdateRule", id, err)
	}

	// 2. Применяем изменения и валидируем результат целиком
	req.ApplyTo(rule)
	if err := validateRule(rule); err != nil {
		s.logger.Warn("UpdateRule: validation failed for rule id=%s: %v", id, err)
		return nil, err
	}

	// 3. Сохраняем
	updated, err := s.ruleRepo.Update(ctx, rule)
	if err != nil {
		return nil, s.mapRepoError("UpdateRule", id, err)
	}

	s.logger.Info("UpdateRule: successfully updated rule id=%s", id)
	return models.FromDomainRule(updated), nil
}

// Delete удаляет правило
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	s.logger.Info("DeleteRule: deleting rule id=%s", id)

	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		return s.mapRepoError("DeleteRule", id, err)
	}

	s.logger.Info("DeleteRule: successfully deleted rule id=%s", id)
	return nil
}

// mapRepoError приводит ошибки репозитория к ошибкам сервиса
func (s *Service) mapRepoError(op string, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, ruleRepo.ErrRuleNotFound):
		s.logger.Warn("%s: rule id=%s not found", op, id)
		return ErrRuleNotFound
	case errors.Is(err, ruleRepo.ErrConstraintViolation):
		s.logger.Warn("%s: rule id=%s rejected by store: %v", op, id, err)
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	default:
		s.logger.Error("%s: repository error for rule id=%s: %v", op, id, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrStoreUnavailable, op, err)
	}
}
