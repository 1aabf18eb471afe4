package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/platform/id"
	"github.com/louisbranch/storefront/internal/services/shop/criteria"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
)

var orderColumns = map[string]string{
	"order.id":             "id",
	"order.baseid":         "base_id",
	"order.siteid":         "site_id",
	"order.type":           "type",
	"order.statuspayment":  "status_payment",
	"order.statusdelivery": "status_delivery",
	"order.ctime":          "created_at",
	"order.mtime":          "updated_at",
}

const orderSelect = "id, base_id, site_id, type, status_payment, status_delivery, created_at, updated_at"

// OrderManager persists orders.
type OrderManager struct {
	store *Store
}

// Orders returns the order manager.
func (s *Store) Orders() *OrderManager {
	return &OrderManager{store: s}
}

// SubManager returns the manager for name; only "base" is known.
func (m *OrderManager) SubManager(name string) (domain.OrderBaseManager, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "base":
		return m.store.OrderBases(), nil
	default:
		return nil, apperrors.DomainError(apperrors.CodeUnknownManager, "Sub-manager \"%s\" is not available for order", name)
	}
}

// CreateItem returns an empty web order.
func (m *OrderManager) CreateItem() *domain.OrderItem {
	return &domain.OrderItem{Type: "web"}
}

// CreateSearch returns a new search over orders.
func (m *OrderManager) CreateSearch() *criteria.Search {
	return criteria.New()
}

// GetItem returns the order with id in the context site.
func (m *OrderManager) GetItem(ctx context.Context, orderID string) (*domain.OrderItem, error) {
	if err := m.store.ready(ctx); err != nil {
		return nil, err
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return nil, err
	}
	row := m.store.sqlDB.QueryRowContext(ctx, "SELECT "+orderSelect+" FROM orders WHERE site_id = ? AND id = ?", siteID, orderID)
	item, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return item, nil
}

// SaveItem inserts a new order or updates its states.
func (m *OrderManager) SaveItem(ctx context.Context, item *domain.OrderItem) error {
	if err := m.store.ready(ctx); err != nil {
		return err
	}
	if item == nil || strings.TrimSpace(item.BaseID) == "" {
		return apperrors.Validation(apperrors.CodeParamsInvalid, "Order requires an order base")
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	if item.OrderID == "" {
		item.OrderID = id.NewID()
		item.SiteID = siteID
		if item.Type == "" {
			item.Type = "web"
		}
		item.CTime, item.MTime = now, now
		if _, err := m.store.sqlDB.ExecContext(ctx,
			`INSERT INTO orders (id, base_id, site_id, type, status_payment, status_delivery, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.OrderID, item.BaseID, item.SiteID, item.Type, item.PaymentStatus, item.DeliveryStatus,
			toMillis(now), toMillis(now),
		); err != nil {
			item.OrderID = ""
			return storageError("insert order", err)
		}
		return nil
	}

	result, err := m.store.sqlDB.ExecContext(ctx,
		`UPDATE orders SET status_payment = ?, status_delivery = ?, updated_at = ? WHERE site_id = ? AND id = ?`,
		item.PaymentStatus, item.DeliveryStatus, toMillis(now), siteID, item.OrderID,
	)
	if err != nil {
		return storageError("update order", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return notFound(item.OrderID)
	}
	item.MTime = now
	return nil
}

// SearchItems returns orders of the context site matching search.
func (m *OrderManager) SearchItems(ctx context.Context, search *criteria.Search) ([]*domain.OrderItem, int, error) {
	if err := m.store.ready(ctx); err != nil {
		return nil, 0, err
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return nil, 0, err
	}
	q, err := buildPageQuery(siteID, search, orderColumns, "created_at ASC, id ASC")
	if err != nil {
		return nil, 0, err
	}
	query, params := q.selectSQL(orderSelect, "orders")
	rows, err := m.store.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, fmt.Errorf("search orders: %w", err)
	}
	defer rows.Close()

	var items []*domain.OrderItem
	for rows.Next() {
		item, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}
	total, err := m.store.count(ctx, q, "orders")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// DeleteItems removes orders of the context site.
func (m *OrderManager) DeleteItems(ctx context.Context, ids []string) error {
	if err := m.store.ready(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return err
	}
	args := append([]any{siteID}, stringArgs(ids)...)
	if _, err := m.store.sqlDB.ExecContext(ctx,
		"DELETE FROM orders WHERE site_id = ? AND id IN ("+placeholders(len(ids))+")", args...); err != nil {
		return storageError("delete orders", err)
	}
	return nil
}

func scanOrder(row rowScanner) (*domain.OrderItem, error) {
	var item domain.OrderItem
	var created, updated int64
	if err := row.Scan(&item.OrderID, &item.BaseID, &item.SiteID, &item.Type, &item.PaymentStatus,
		&item.DeliveryStatus, &created, &updated); err != nil {
		return nil, err
	}
	item.CTime = fromMillis(created)
	item.MTime = fromMillis(updated)
	return &item, nil
}

var _ domain.OrderManager = (*OrderManager)(nil)
