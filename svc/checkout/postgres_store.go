package checkout

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/storekit/pkg/pg"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the store schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
	return pg.Migrate(ctx, pool, migrations, "migrations", cfg, log)
}

// PostgresStore implements Store with row locks (SELECT ... FOR UPDATE).
type PostgresStore struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewPostgresStore creates a store on pool. A non-positive cfg.LockTimeout
// means DefaultLockTimeout.
func NewPostgresStore(pool *pgxpool.Pool, cfg Config) *PostgresStore {
	return &PostgresStore{pool: pool, lockTimeout: lockTimeoutOrDefault(cfg.LockTimeout)}
}

const orderColumns = `id, number, user_id, status, transaction_id, total::text,
	requires_shipping, should_use_restricted_provider`

const itemsQuery = `
	SELECT i.id, i.order_id, i.product_id, i.quantity, i.extra::text,
	       p.id, p.name, p.available, p.stock, p.max_quantity, p.restricted, p.variant
	FROM order_items i
	LEFT JOIN products p ON p.id = i.product_id
	WHERE i.order_id = $1
	ORDER BY i.id`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o     Order
		total string
	)
	if err := row.Scan(&o.ID, &o.Number, &o.UserID, &o.Status, &o.TransactionID, &total,
		&o.RequiresShipping, &o.ShouldUseRestrictedProvider); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse order total %q: %w", total, err)
	}
	o.Total = d
	return &o, nil
}

func (s *PostgresStore) FindByNumber(ctx context.Context, number string) (*Order, error) {
	order, err := scanOrder(s.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE number = $1`, number))
	if err != nil {
		return nil, fmt.Errorf("order %q: %w", number, err)
	}

	order.Items, err = queryItems(ctx, s.pool, order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *PostgresStore) Items(ctx context.Context, orderID int64) ([]OrderItem, error) {
	return queryItems(ctx, s.pool, orderID)
}

func (s *PostgresStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM orders WHERE status = $1`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) WithOrderLock(ctx context.Context, orderID int64, fn func(ctx context.Context, tx Tx, order *Order) error) error {
	err := pg.InTx(ctx, s.pool, s.lockTimeout, func(ctx context.Context, tx pgx.Tx) error {
		order, err := scanOrder(tx.QueryRow(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID))
		if err != nil {
			return fmt.Errorf("lock order %d: %w", orderID, err)
		}
		return fn(ctx, &pgTx{tx: tx}, order)
	})
	if pg.IsLockTimeoutError(err) {
		return errors.Join(ErrLockTimeout, err)
	}
	return err
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryItems(ctx context.Context, q querier, orderID int64) ([]OrderItem, error) {
	rows, err := q.Query(ctx, itemsQuery, orderID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var (
			it        OrderItem
			productID *int64
			extra     string
			pid       *int64
			name      *string
			available *bool
			stock     *int
			maxQty    *int
			restr     *bool
			variant   *string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &productID, &it.Quantity, &extra,
			&pid, &name, &available, &stock, &maxQty, &restr, &variant); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		if productID != nil {
			it.ProductID = *productID
		}
		if err := json.Unmarshal([]byte(extra), &it.Extra); err != nil {
			return nil, fmt.Errorf("decode item %d extra: %w", it.ID, err)
		}
		if pid != nil {
			it.Product = &Product{
				ID:          *pid,
				Name:        *name,
				Available:   *available,
				Stock:       stock,
				MaxQuantity: *maxQty,
				Restricted:  *restr,
				Variant:     Variant(*variant),
			}
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Items(ctx context.Context, orderID int64) ([]OrderItem, error) {
	return queryItems(ctx, t.tx, orderID)
}

func (t *pgTx) AdjustStock(ctx context.Context, productID int64, delta int) error {
	tag, err := t.tx.Exec(ctx, `UPDATE products SET stock = stock + $2 WHERE id = $1`, productID, delta)
	if err != nil {
		if pg.IsCheckViolationError(err) {
			return errors.Join(ErrInsufficientStock, err)
		}
		return fmt.Errorf("adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
	}
	return nil
}

func (t *pgTx) SaveOrder(ctx context.Context, order *Order) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE orders SET status = $2, transaction_id = $3, updated_at = now() WHERE id = $1`,
		order.ID, order.Status, order.TransactionID)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}
