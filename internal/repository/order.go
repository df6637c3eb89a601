package repository

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/courier-market/internal/domain/order"
)

const (
	getOrderSQL = `SELECT doc FROM orders WHERE id = $1`

	insertOrderSQL = `INSERT INTO orders (id, status, version, zone, doc)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`

	// The status and version predicates are the single-key compare-and-set
	// that serializes per-order mutation: zero rows updated means a
	// concurrent writer committed first. The version predicate catches
	// writers that did not change the status, such as interest changes.
	updateOrderSQL = `UPDATE orders
		SET status = $2, version = $3, zone = $4, doc = $5, updated_at = now()
		WHERE id = $1 AND status = $6 AND version = $7`

	scanOrdersSQL = `SELECT doc FROM orders`

	existsOrderSQL = `SELECT 1 FROM orders WHERE id = $1`
)

var _ order.Store = (*OrderRepository)(nil)

// OrderRepository implements order.Store backed by PostgreSQL, storing each
// order as one JSONB document conditionally written on its status and
// version columns.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Get loads a single order document.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, getOrderSQL, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get order %q", id)
	}

	var o order.Order
	if err := json.Unmarshal(doc, &o); err != nil {
		return nil, errors.Wrapf(err, "decode order %q", id)
	}
	return &o, nil
}

// Put writes the order conditionally on the stored status still matching
// expectedPrior and the stored version being o.Version-1. StatusNone inserts;
// a duplicate insert or a lost update race surfaces as order.ErrConflict.
func (r *OrderRepository) Put(ctx context.Context, o *order.Order, expectedPrior order.Status) error {
	doc, err := json.Marshal(o)
	if err != nil {
		return errors.Wrapf(err, "encode order %q", o.ID)
	}

	if expectedPrior == order.StatusNone {
		tag, err := r.pool.Exec(ctx, insertOrderSQL, o.ID, string(o.Status), o.Version, o.Zone, doc)
		if err != nil {
			return errors.Wrapf(err, "insert order %q", o.ID)
		}
		if tag.RowsAffected() == 0 {
			return order.ErrConflict
		}
		return nil
	}

	tag, err := r.pool.Exec(ctx, updateOrderSQL, o.ID, string(o.Status), o.Version, o.Zone, doc, string(expectedPrior), o.Version-1)
	if err != nil {
		return errors.Wrapf(err, "update order %q", o.ID)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a lost race from an unknown id.
		var one int
		err := r.pool.QueryRow(ctx, existsOrderSQL, o.ID).Scan(&one)
		if errors.Is(err, pgx.ErrNoRows) {
			return order.ErrNotFound
		}
		if err != nil {
			return errors.Wrapf(err, "check order %q", o.ID)
		}
		return order.ErrConflict
	}
	return nil
}

// Scan streams every order document and keeps those matching the predicate.
// Listings in this system are small; pushing predicates into SQL is left to
// the zone/status index when it matters.
func (r *OrderRepository) Scan(ctx context.Context, pred func(*order.Order) bool) ([]*order.Order, error) {
	rows, err := r.pool.Query(ctx, scanOrdersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "scan orders")
	}
	defer rows.Close()

	var out []*order.Order
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, errors.Wrap(err, "scan order row")
		}
		var o order.Order
		if err := json.Unmarshal(doc, &o); err != nil {
			return nil, errors.Wrap(err, "decode order row")
		}
		if pred == nil || pred(&o) {
			out = append(out, &o)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate orders")
	}
	return out, nil
}
