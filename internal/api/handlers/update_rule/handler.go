package update_rule

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/PT-BookingService/internal/api/handlers"
	"github.com/m04kA/PT-BookingService/internal/service/rules"
	"github.com/m04kA/PT-BookingService/internal/service/rules/models"
)

const (
	msgInvalidRuleID      = "некорректный ID правила"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "правило не найдено"
	msgInvalidData        = "некорректные данные правила"
)

type Handler struct {
	service RuleService
	logger  Logger
}

func NewHandler(service RuleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/admin/availability-rules/{ruleId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ruleID, err := uuid.Parse(mux.Vars(r)["ruleId"])
	if err != nil {
		h.logger.Warn("PATCH /admin/availability-rules/{id} - Invalid rule ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRuleID)
		return
	}

	var req models.UpdateRuleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /admin/availability-rules/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Изменение правила не затрагивает существующие бронирования
	result, err := h.service.Update(r.Context(), ruleID, &req)
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrRuleNotFound):
			h.logger.Warn("PATCH /admin/availability-rules/{id} - Rule not found: rule_id=%s", ruleID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rules.ErrInvalidRule), errors.Is(err, rules.ErrInvalidInput):
			h.logger.Warn("PATCH /admin/availability-rules/{id} - Invalid data: rule_id=%s, error=%v", ruleID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		case errors.Is(err, rules.ErrStoreUnavailable):
			h.logger.Error("PATCH /admin/availability-rules/{id} - Store unavailable: rule_id=%s, error=%v", ruleID, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("PATCH /admin/availability-rules/{id} - Failed to update rule: rule_id=%s, error=%v",
				ruleID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /admin/availability-rules/{id} - Rule updated successfully: rule_id=%s", ruleID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
