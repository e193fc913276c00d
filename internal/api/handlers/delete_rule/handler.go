package delete_rule

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/PT-BookingService/internal/api/handlers"
	"github.com/m04kA/PT-BookingService/internal/service/rules"
)

const (
	msgInvalidRuleID = "некорректный ID правила"
	msgNotFound      = "правило не найдено"
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

// Handle DELETE /api/v1/admin/availability-rules/{ruleId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ruleID, err := uuid.Parse(mux.Vars(r)["ruleId"])
	if err != nil {
		h.logger.Warn("DELETE /admin/availability-rules/{id} - Invalid rule ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRuleID)
		return
	}

	if err := h.service.Delete(r.Context(), ruleID); err != nil {
		switch {
		case errors.Is(err, rules.ErrRuleNotFound):
			h.logger.Warn("DELETE /admin/availability-rules/{id} - Rule not found: rule_id=%s", ruleID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rules.ErrStoreUnavailable):
			h.logger.Error("DELETE /admin/availability-rules/{id} - Store unavailable: rule_id=%s, error=%v", ruleID, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("DELETE /admin/availability-rules/{id} - Failed to delete rule: rule_id=%s, error=%v",
				ruleID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /admin/availability-rules/{id} - Rule deleted: rule_id=%s", ruleID)
	handlers.RespondNoContent(w)
}
