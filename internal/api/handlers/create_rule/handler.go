package create_rule

import (
	"errors"
	"net/http"

	"github.com/m04kA/PT-BookingService/internal/api/handlers"
	"github.com/m04kA/PT-BookingService/internal/service/rules"
	"github.com/m04kA/PT-BookingService/internal/service/rules/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidRule        = "некорректное правило доступности"
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

// Handle POST /api/v1/admin/availability-rules
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRuleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/availability-rules - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrInvalidRule), errors.Is(err, rules.ErrInvalidInput):
			h.logger.Warn("POST /admin/availability-rules - Invalid rule: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRule)

		case errors.Is(err, rules.ErrStoreUnavailable):
			h.logger.Error("POST /admin/availability-rules - Store unavailable: %v", err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("POST /admin/availability-rules - Failed to create rule: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/availability-rules - Rule created successfully: rule_id=%s, scope=%s",
		result.ID, result.Scope)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
