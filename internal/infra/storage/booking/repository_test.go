package booking

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/PT-BookingService/internal/domain"
	"github.com/m04kA/PT-BookingService/internal/testutil"
	"github.com/m04kA/PT-BookingService/pkg/dbmetrics"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(dbmetrics.Wrap(testutil.NewTestDB(t), nil))
}

func newBooking(date types.DateString, start types.TimeString) *domain.Booking {
	return &domain.Booking{
		ID:          uuid.New(),
		UserID:      42,
		BookingDate: date,
		StartTime:   start,
		Status:      domain.StatusPending,
		Name:        "Anna",
		Email:       "anna@example.com",
	}
}

func TestRepository_ActiveSlotIsUnique(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, newBooking("2024-07-01", "09:00"))
	require.NoError(t, err)
	assert.False(t, first.CreatedAt.IsZero())

	_, err = repo.Create(ctx, newBooking("2024-07-01", "09:00"))
	assert.ErrorIs(t, err, ErrSlotConflict)

	// отменённое бронирование освобождает слот
	_, err = repo.UpdateStatus(ctx, first.ID, domain.StatusPending, domain.StatusCancelled)
	require.NoError(t, err)

	second, err := repo.Create(ctx, newBooking("2024-07-01", "09:00"))
	require.NoError(t, err)

	// вернуть отменённое на занятый слот нельзя
	_, err = repo.UpdateStatus(ctx, first.ID, domain.StatusCancelled, domain.StatusPending)
	assert.ErrorIs(t, err, ErrSlotConflict)

	_, err = repo.UpdateSlot(ctx, second.ID, "2024-07-01", "10:00")
	require.NoError(t, err)
}

func TestRepository_UpdateStatusCompareAndSet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	b, err := repo.Create(ctx, newBooking("2024-07-02", "09:00"))
	require.NoError(t, err)

	confirmed, err := repo.UpdateStatus(ctx, b.ID, domain.StatusPending, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
	assert.Equal(t, types.DateString("2024-07-02"), confirmed.BookingDate)
	assert.Equal(t, types.TimeString("09:00"), confirmed.StartTime)

	_, err = repo.UpdateStatus(ctx, b.ID, domain.StatusPending, domain.StatusCancelled)
	assert.ErrorIs(t, err, ErrStatusMismatch)

	_, err = repo.UpdateStatus(ctx, uuid.New(), domain.StatusPending, domain.StatusCancelled)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRepository_UpdateSlotConflict(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, newBooking("2024-07-03", "09:00"))
	require.NoError(t, err)
	other, err := repo.Create(ctx, newBooking("2024-07-03", "10:00"))
	require.NoError(t, err)

	_, err = repo.UpdateSlot(ctx, other.ID, "2024-07-03", "09:00")
	assert.ErrorIs(t, err, ErrSlotConflict)

	stored, err := repo.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("10:00"), stored.StartTime)

	// отменённое бронирование не переносится
	_, err = repo.UpdateStatus(ctx, other.ID, domain.StatusPending, domain.StatusCancelled)
	require.NoError(t, err)
	_, err = repo.UpdateSlot(ctx, other.ID, "2024-07-03", "11:00")
	assert.ErrorIs(t, err, ErrStatusMismatch)

	_, err = repo.UpdateSlot(ctx, uuid.New(), "2024-07-03", "11:00")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRepository_ListFilters(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	cancelled, err := repo.Create(ctx, newBooking("2024-07-04", "09:00"))
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, cancelled.ID, domain.StatusPending, domain.StatusCancelled)
	require.NoError(t, err)
	_, err = repo.Create(ctx, newBooking("2024-07-04", "11:00"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newBooking("2024-07-04", "10:00"))
	require.NoError(t, err)

	date := types.DateString("2024-07-04")
	active, err := repo.List(ctx, domain.BookingsFilter{StartDate: &date, EndDate: &date})
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, types.TimeString("10:00"), active[0].StartTime)
	assert.Equal(t, types.TimeString("11:00"), active[1].StartTime)

	userID := int64(42)
	history, err := repo.List(ctx, domain.BookingsFilter{UserID: &userID, IncludeCancelled: true})
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestRepository_Delete(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	b, err := repo.Create(ctx, newBooking("2024-07-05", "09:00"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, b.ID))
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), ErrBookingNotFound)

	_, err = repo.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
