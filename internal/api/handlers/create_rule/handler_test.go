package create_rule

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/PT-BookingService/internal/infra/storage/memory"
	"github.com/m04kA/PT-BookingService/internal/service/rules"
	"github.com/m04kA/PT-BookingService/internal/service/rules/models"
	"github.com/m04kA/PT-BookingService/pkg/logger"
)

type failingService struct{ err error }

func (f failingService) Create(context.Context, *models.CreateRuleRequest) (*models.RuleResponse, error) {
	return nil, f.err
}

func serve(svc RuleService, body string) *httptest.ResponseRecorder {
	h := NewHandler(svc, logger.NewWithWriter(io.Discard, "error"))
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/availability-rules", strings.NewReader(body)))
	return rec
}

func TestHandle(t *testing.T) {
	svc := rules.NewService(memory.NewRuleStore(), logger.NewWithWriter(io.Discard, "error"))

	rec := serve(svc, `{"dayOfWeek":1,"startTime":"09:00","endTime":"10:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body models.RuleResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "recurring", body.Scope)
	assert.True(t, body.IsAvailable)
	assert.NotEmpty(t, body.ID)

	rec = serve(svc, `{"specificDate":"2024-07-01","startTime":"14:00","endTime":"15:00","isAvailable":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isAvailable":false`)

	assert.Equal(t, http.StatusBadRequest, serve(svc, `{"dayOfWeek":1,"startTime":"11:00","endTime":"10:00"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(svc, `{"startTime":"09:00","endTime":"10:00"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(svc, `{"dayOfWeek":"monday"}`).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(failingService{err: rules.ErrStoreUnavailable},
		`{"dayOfWeek":1,"startTime":"09:00","endTime":"10:00"}`).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(failingService{err: errors.New("boom")},
		`{"dayOfWeek":1,"startTime":"09:00","endTime":"10:00"}`).Code)
}
