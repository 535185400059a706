package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/crabzie/production-scheduler/internal/core/domain"
	"github.com/crabzie/production-scheduler/internal/core/port"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const foreignKeyViolation = "23503"

// errorCode returns the SQLSTATE of a postgres error, empty otherwise
func errorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

var (
	_ port.OrderRepository = (*orderRepository)(nil)
	_ port.OrderWriter     = (*orderRepository)(nil)
)

type orderRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

// NewOrderRepository creates a new postgres repository over the order store
func NewOrderRepository(db *pgxpool.Pool, log *zap.Logger) *orderRepository {
	return &orderRepository{
		db:  db,
		log: log,
	}
}

func listOrdersQuery() squirrel.SelectBuilder {
	return psql.
		Select("id", "customer_name", "cabinet_type", "quantity", "start_date",
			"completion_date", "status", "progress", "priority").
		From("orders").
		OrderBy("completion_date ASC", "id ASC")
}

func listAssignmentsQuery() squirrel.SelectBuilder {
	return psql.
		Select("order_id", "stage_name", "worker", "machine").
		From("stage_assignments").
		OrderBy("order_id ASC", "stage_name ASC")
}

func saveOrderQuery(o *domain.Order, now time.Time) squirrel.InsertBuilder {
	return psql.
		Insert("orders").
		Columns("id", "customer_name", "cabinet_type", "quantity", "start_date",
			"completion_date", "status", "progress", "priority", "created_at", "updated_at").
		Values(o.ID, o.CustomerName, o.CabinetType, o.Quantity, o.StartDate,
			o.CompletionDate, string(o.Status), o.RawProgress, o.Priority, now, now).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			customer_name = EXCLUDED.customer_name,
			cabinet_type = EXCLUDED.cabinet_type,
			quantity = EXCLUDED.quantity,
			start_date = EXCLUDED.start_date,
			completion_date = EXCLUDED.completion_date,
			status = EXCLUDED.status,
			progress = EXCLUDED.progress,
			priority = EXCLUDED.priority,
			updated_at = EXCLUDED.updated_at`)
}

func saveAssignmentQuery(a *domain.Assignment, now time.Time) squirrel.InsertBuilder {
	return psql.
		Insert("stage_assignments").
		Columns("order_id", "stage_name", "worker", "machine", "updated_at").
		Values(a.OrderID, a.StageName, a.Worker, a.Machine, now).
		Suffix(`ON CONFLICT (order_id, stage_name) DO UPDATE SET
			worker = EXCLUDED.worker,
			machine = EXCLUDED.machine,
			updated_at = EXCLUDED.updated_at`)
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	query, args, err := listOrdersQuery().ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var (
			o        domain.Order
			status   string
			progress sql.NullFloat64
		)
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.CabinetType, &o.Quantity, &o.StartDate,
			&o.CompletionDate, &status, &progress, &o.Priority); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = domain.OrderStatus(status)
		if progress.Valid {
			p := progress.Float64
			o.RawProgress = &p
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ListAssignments(ctx context.Context) ([]domain.Assignment, error) {
	query, args, err := listAssignmentsQuery().ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.OrderID, &a.StageName, &a.Worker, &a.Machine); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *orderRepository) SaveOrder(ctx context.Context, order *domain.Order) error {
	query, args, err := saveOrderQuery(order, time.Now()).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.log.Error("Failed to save order", zap.String("order_id", order.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *orderRepository) SaveAssignment(ctx context.Context, assignment *domain.Assignment) error {
	query, args, err := saveAssignmentQuery(assignment, time.Now()).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if errorCode(err) == foreignKeyViolation {
			return fmt.Errorf("assignment for %s: %w", assignment.OrderID, domain.ErrOrderNotFound)
		}
		r.log.Error("Failed to save assignment",
			zap.String("order_id", assignment.OrderID),
			zap.String("stage", assignment.StageName),
			zap.Error(err))
		return err
	}
	return nil
}
