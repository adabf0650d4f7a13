package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domainErrors "github.com/caterlane/caterpay/internal/domain/errors"
	"github.com/caterlane/caterpay/internal/domain/model"
	"github.com/caterlane/caterpay/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool used by the storage, extracted so
// tests can substitute a pgxmock pool.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type menuRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Menu() repository.MenuRepository {
	return &menuRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS menu_items (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS menu_item_sizes (
            item_id BIGINT NOT NULL REFERENCES menu_items(id),
            size_label TEXT NOT NULL,
            price NUMERIC(10,2) NOT NULL,
            PRIMARY KEY (item_id, size_label)
        )`,
		`CREATE TABLE IF NOT EXISTS menu_item_accommodations (
            item_id BIGINT NOT NULL REFERENCES menu_items(id),
            description TEXT NOT NULL,
            price NUMERIC(10,2) NOT NULL,
            PRIMARY KEY (item_id, description)
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            customer_name TEXT NOT NULL,
            customer_email TEXT NOT NULL,
            customer_phone TEXT NOT NULL DEFAULT '',
            pickup_at TIMESTAMPTZ NOT NULL,
            claimed_amount NUMERIC(10,2) NOT NULL,
            transaction_id TEXT UNIQUE NOT NULL,
            payment_status TEXT NOT NULL DEFAULT 'PENDING',
            fulfilment_status TEXT NOT NULL DEFAULT 'PENDING',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_lines (
            id SERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            item_id BIGINT NOT NULL,
            quantity INT NOT NULL,
            size_label TEXT NOT NULL,
            accommodations TEXT[] NOT NULL DEFAULT '{}',
            instructions TEXT NOT NULL DEFAULT '',
            position INT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines(order_id, position)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	created := *order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertOrder = `INSERT INTO orders
            (customer_name, customer_email, customer_phone, pickup_at, claimed_amount, transaction_id, payment_status, fulfilment_status)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            RETURNING id, created_at, updated_at`
		err := tx.QueryRow(ctx, insertOrder,
			order.Customer.Name,
			order.Customer.Email,
			order.Customer.Phone,
			order.PickupAt,
			order.Payment.ClaimedAmount,
			order.Payment.TransactionID,
			model.PaymentStatusPending,
			model.FulfilmentStatusPending,
		).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return domainErrors.ErrAlreadyExists
			}
			return err
		}

		const insertLine = `INSERT INTO order_lines
            (order_id, item_id, quantity, size_label, accommodations, instructions, position)
            VALUES ($1, $2, $3, $4, $5, $6, $7)`
		for i, line := range order.Lines {
			accommodations := line.Accommodations
			if accommodations == nil {
				accommodations = []string{}
			}
			if _, err := tx.Exec(ctx, insertLine, created.ID, line.ItemID, line.Quantity, line.Size, accommodations, line.Instructions, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created.Payment.Status = model.PaymentStatusPending
	created.Fulfilment = model.FulfilmentStatusPending
	return &created, nil
}

const orderColumns = `id, customer_name, customer_email, customer_phone, pickup_at,
            claimed_amount, transaction_id, payment_status, fulfilment_status, created_at, updated_at`

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return r.getOne(ctx, query, id)
}

func (r *orderRepository) GetByTransactionID(ctx context.Context, transactionID string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE transaction_id=$1`
	return r.getOne(ctx, query, transactionID)
}

func (r *orderRepository) getOne(ctx context.Context, query string, arg any) (*model.Order, error) {
	var o model.Order
	err := r.storage.pool.QueryRow(ctx, query, arg).Scan(
		&o.ID,
		&o.Customer.Name,
		&o.Customer.Email,
		&o.Customer.Phone,
		&o.PickupAt,
		&o.Payment.ClaimedAmount,
		&o.Payment.TransactionID,
		&o.Payment.Status,
		&o.Fulfilment,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.linesFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *orderRepository) linesFor(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	const query = `SELECT item_id, quantity, size_label, accommodations, instructions
                   FROM order_lines WHERE order_id=$1 ORDER BY position`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderLine
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.ItemID, &l.Quantity, &l.Size, &l.Accommodations, &l.Instructions); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SetPaymentStatus performs the single-row compare-and-set described by the
// repository contract. Two concurrent redeliveries race on the same row;
// whichever lands second simply matches zero rows.
func (r *orderRepository) SetPaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus, allowedPrior []model.PaymentStatus) (bool, error) {
	const query = `UPDATE orders SET payment_status=$1, updated_at=NOW()
                   WHERE id=$2 AND payment_status = ANY($3)`
	prior := make([]string, 0, len(allowedPrior))
	for _, s := range allowedPrior {
		prior = append(prior, string(s))
	}
	ct, err := r.storage.pool.Exec(ctx, query, status, orderID, prior)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *orderRepository) SetFulfilmentStatus(ctx context.Context, orderID int64, status model.FulfilmentStatus, allowedPrior []model.FulfilmentStatus) (bool, error) {
	const query = `UPDATE orders SET fulfilment_status=$1, updated_at=NOW()
                   WHERE id=$2 AND fulfilment_status = ANY($3)`
	prior := make([]string, 0, len(allowedPrior))
	for _, s := range allowedPrior {
		prior = append(prior, string(s))
	}
	ct, err := r.storage.pool.Exec(ctx, query, status, orderID, prior)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// --- MenuRepository implementation ---

func (r *menuRepository) GetAllItems(ctx context.Context) ([]model.MenuItem, error) {
	const itemsQuery = `SELECT id, name FROM menu_items ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, itemsQuery)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*model.MenuItem)
	var order []int64
	for rows.Next() {
		var item model.MenuItem
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			rows.Close()
			return nil, err
		}
		item.SizePrices = make(map[string]decimal.Decimal)
		byID[item.ID] = &item
		order = append(order, item.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadSizes(ctx, byID); err != nil {
		return nil, err
	}
	if err := r.loadAccommodations(ctx, byID); err != nil {
		return nil, err
	}

	result := make([]model.MenuItem, 0, len(order))
	for _, id := range order {
		result = append(result, *byID[id])
	}
	return result, nil
}

func (r *menuRepository) loadSizes(ctx context.Context, byID map[int64]*model.MenuItem) error {
	const query = `SELECT item_id, size_label, price FROM menu_item_sizes`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			itemID int64
			label  string
			price  decimal.Decimal
		)
		if err := rows.Scan(&itemID, &label, &price); err != nil {
			return err
		}
		if item, ok := byID[itemID]; ok {
			item.SizePrices[label] = price
		}
	}
	return rows.Err()
}

func (r *menuRepository) loadAccommodations(ctx context.Context, byID map[int64]*model.MenuItem) error {
	const query = `SELECT item_id, description, price FROM menu_item_accommodations ORDER BY item_id, description`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			itemID int64
			acc    model.Accommodation
		)
		if err := rows.Scan(&itemID, &acc.Description, &acc.Price); err != nil {
			return err
		}
		if item, ok := byID[itemID]; ok {
			item.Accommodations = append(item.Accommodations, acc)
		}
	}
	return rows.Err()
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
