package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// MenuItem is one dish on a restaurant's menu.
type MenuItem struct {
	ItemID string          `json:"item_id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// Menu is a restaurant's browsable dish list.
type Menu struct {
	RestaurantID   string     `json:"restaurant_id"`
	RestaurantName string     `json:"restaurant_name"`
	Zone           string     `json:"zone"`
	Items          []MenuItem `json:"items"`
}

// MenuStore provides the restaurant catalog browsed by clients.
type MenuStore interface {
	List(ctx context.Context) ([]Menu, error)
	Get(ctx context.Context, restaurantID string) (*Menu, error)
	Upsert(ctx context.Context, m Menu) error
}

// ErrMenuNotFound indicates an unknown restaurant id.
var ErrMenuNotFound = errors.New("menu not found")

const (
	listMenusSQL  = `SELECT restaurant_id, restaurant_name, zone, items FROM menus ORDER BY restaurant_name`
	getMenuSQL    = `SELECT restaurant_id, restaurant_name, zone, items FROM menus WHERE restaurant_id = $1`
	upsertMenuSQL = `INSERT INTO menus (restaurant_id, restaurant_name, zone, items)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (restaurant_id) DO UPDATE
		SET restaurant_name = EXCLUDED.restaurant_name, zone = EXCLUDED.zone, items = EXCLUDED.items`
)

var _ MenuStore = (*MenuRepository)(nil)

// MenuRepository implements MenuStore backed by PostgreSQL.
type MenuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository returns a MenuRepository that uses the given pool.
func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

func (r *MenuRepository) List(ctx context.Context) ([]Menu, error) {
	rows, err := r.pool.Query(ctx, listMenusSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list menus")
	}
	defer rows.Close()

	var out []Menu
	for rows.Next() {
		m, err := scanMenu(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MenuRepository) Get(ctx context.Context, restaurantID string) (*Menu, error) {
	m, err := scanMenu(r.pool.QueryRow(ctx, getMenuSQL, restaurantID).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMenuNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get menu %q", restaurantID)
	}
	return &m, nil
}

func (r *MenuRepository) Upsert(ctx context.Context, m Menu) error {
	items, err := json.Marshal(m.Items)
	if err != nil {
		return errors.Wrapf(err, "encode menu %q", m.RestaurantID)
	}
	if _, err := r.pool.Exec(ctx, upsertMenuSQL, m.RestaurantID, m.RestaurantName, m.Zone, items); err != nil {
		return errors.Wrapf(err, "upsert menu %q", m.RestaurantID)
	}
	return nil
}

func scanMenu(scan func(...any) error) (Menu, error) {
	var (
		m     Menu
		items []byte
	)
	if err := scan(&m.RestaurantID, &m.RestaurantName, &m.Zone, &items); err != nil {
		return Menu{}, err
	}
	if err := json.Unmarshal(items, &m.Items); err != nil {
		return Menu{}, errors.Wrap(err, "decode menu items")
	}
	return m, nil
}

var _ MenuStore = (*MemoryMenuStore)(nil)

// MemoryMenuStore is the in-memory MenuStore counterpart.
type MemoryMenuStore struct {
	mu    sync.RWMutex
	menus map[string]Menu
}

// NewMemoryMenuStore creates an empty in-memory menu store.
func NewMemoryMenuStore() *MemoryMenuStore {
	return &MemoryMenuStore{menus: make(map[string]Menu)}
}

func (s *MemoryMenuStore) List(_ context.Context) ([]Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Menu, 0, len(s.menus))
	for _, m := range s.menus {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RestaurantName < out[j].RestaurantName })
	return out, nil
}

func (s *MemoryMenuStore) Get(_ context.Context, restaurantID string) (*Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.menus[restaurantID]
	if !ok {
		return nil, ErrMenuNotFound
	}
	return &m, nil
}

func (s *MemoryMenuStore) Upsert(_ context.Context, m Menu) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menus[m.RestaurantID] = m
	return nil
}
