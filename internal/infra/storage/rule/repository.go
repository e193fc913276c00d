package rule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/PT-BookingService/internal/domain"
	"github.com/m04kA/PT-BookingService/pkg/dbmetrics"
	"github.com/m04kA/PT-BookingService/pkg/psqlbuilder"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

const tableName = "availability_rules"

const codeCheckViolation = "23514"

var columns = []string{
	"id",
	"day_of_week",
	"specific_date",
	"start_time",
	"end_time",
	"is_available",
	"created_at",
	"updated_at",
}

// Repository репозиторий правил доступности
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория правил
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новое правило
func (r *Repository) Create(ctx context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns("id", "day_of_week", "specific_date", "start_time", "end_time", "is_available").
		Values(rule.ID, rule.DayOfWeek, rule.SpecificDate, rule.StartTime, rule.EndTime, rule.IsAvailable).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&rule.CreatedAt, &rule.UpdatedAt); err != nil {
		if isCheckViolation(err) {
			return nil, fmt.Errorf("%w: Create - %v", ErrConstraintViolation, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return rule, nil
}

// GetByID получает правило по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	rule, err := scanRule(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan rule: %v", ErrScanRow, err)
	}

	return rule, nil
}

// List получает правила с фильтрацией
func (r *Repository) List(ctx context.Context, filter domain.RulesFilter) ([]*domain.AvailabilityRule, error) {
	selectBuilder := psqlbuilder.Select(columns...).From(tableName)

	switch filter.Scope {
	case domain.RuleScopeRecurring:
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"day_of_week": nil})
	case domain.RuleScopeSpecific:
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"specific_date": nil})
	}

	if filter.DayOfWeek != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"day_of_week": *filter.DayOfWeek})
	}
	if filter.SpecificDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"specific_date": *filter.SpecificDate})
	}
	// Еженедельные правила не ограничены датами и проходят фильтр периода
	if filter.FromDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.Or{
			squirrel.Eq{"specific_date": nil},
			squirrel.GtOrEq{"specific_date": *filter.FromDate},
		})
	}
	if filter.ToDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.Or{
			squirrel.Eq{"specific_date": nil},
			squirrel.LtOrEq{"specific_date": *filter.ToDate},
		})
	}

	selectBuilder = selectBuilder.OrderBy(
		"specific_date ASC NULLS FIRST",
		"day_of_week ASC NULLS LAST",
		"start_time ASC",
		"updated_at DESC",
	)

	return r.query(ctx, "List", selectBuilder)
}

// ListByDate получает все правила, применимые к дате:
// еженедельные на её день недели и правила на саму дату
func (r *Repository) ListByDate(ctx context.Context, date types.DateString) ([]*domain.AvailabilityRule, error) {
	weekday, err := date.Weekday()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDate - %v", ErrBuildQuery, err)
	}

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Or{
			squirrel.Eq{"day_of_week": int(weekday)},
			squirrel.Eq{"specific_date": date},
		}).
		OrderBy("start_time ASC")

	return r.query(ctx, "ListByDate", selectBuilder)
}

// Update перезаписывает изменяемые поля правила и обновляет updated_at
func (r *Repository) Update(ctx context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("day_of_week", rule.DayOfWeek).
		Set("specific_date", rule.SpecificDate).
		Set("start_time", rule.StartTime).
		Set("end_time", rule.EndTime).
		Set("is_available", rule.IsAvailable).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": rule.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&rule.CreatedAt, &rule.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		if isCheckViolation(err) {
			return nil, fmt.Errorf("%w: Update - %v", ErrConstraintViolation, err)
		}
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	return rule, nil
}

// Delete удаляет правило. Существующие бронирования не затрагиваются.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrRuleNotFound
	}

	return nil
}

func (r *Repository) query(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.AvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	rules := make([]*domain.AvailabilityRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return rules, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (*domain.AvailabilityRule, error) {
	var (
		rule         domain.AvailabilityRule
		dayOfWeek    sql.NullInt16
		specificDate types.DateString
	)

	err := row.Scan(
		&rule.ID,
		&dayOfWeek,
		&specificDate,
		&rule.StartTime,
		&rule.EndTime,
		&rule.IsAvailable,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dayOfWeek.Valid {
		day := int(dayOfWeek.Int16)
		rule.DayOfWeek = &day
	}
	if !specificDate.IsZero() {
		rule.SpecificDate = &specificDate
	}

	return &rule, nil
}

func isCheckViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeCheckViolation
}
