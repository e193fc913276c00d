package get_available_slots

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	getAvailableSlots "github.com/m04kA/PT-BookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/PT-BookingService/pkg/logger"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

type fakeUseCase struct {
	resp *getAvailableSlots.Response
	err  error
	got  *getAvailableSlots.Request
}

func (f *fakeUseCase) Execute(_ context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	f.got = req
	return f.resp, f.err
}

func serve(uc *fakeUseCase, target string) *httptest.ResponseRecorder {
	h := NewHandler(uc, logger.NewWithWriter(io.Discard, "error"))
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandle_OK(t *testing.T) {
	uc := &fakeUseCase{resp: &getAvailableSlots.Response{
		Date:  "2024-07-01",
		Slots: []types.TimeString{"09:00", "10:00"},
	}}

	rec := serve(uc, "/api/v1/availability?date=2024-07-01")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.DateString("2024-07-01"), uc.got.Date)

	var body AvailableSlotsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, AvailableSlotsResponse{Date: "2024-07-01", Slots: []string{"09:00", "10:00"}}, body)
}

func TestHandle_EmptyListIsArray(t *testing.T) {
	uc := &fakeUseCase{resp: &getAvailableSlots.Response{Date: "2024-07-01"}}

	rec := serve(uc, "/api/v1/availability?date=2024-07-01")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"2024-07-01","slots":[]}`, rec.Body.String())
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		want   int
	}{
		{"missing date", "/api/v1/availability", nil, http.StatusBadRequest},
		{"bad date", "/api/v1/availability?date=01.07.2024", nil, http.StatusBadRequest},
		{"store unavailable", "/api/v1/availability?date=2024-07-01",
			fmt.Errorf("%w: boom", getAvailableSlots.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"unexpected", "/api/v1/availability?date=2024-07-01", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeUseCase{err: tt.err}, tt.target)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
