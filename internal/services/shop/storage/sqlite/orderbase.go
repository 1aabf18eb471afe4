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
	"github.com/louisbranch/storefront/internal/services/shop/locale"
)

var orderBaseColumns = map[string]string{
	"order.base.id":         "id",
	"order.base.siteid":     "site_id",
	"order.base.languageid": "language_id",
	"order.base.currencyid": "currency_id",
	"order.base.customerid": "customer_id",
	"order.base.comment":    "comment",
	"order.base.price":      "price",
	"order.base.status":     "status",
	"order.base.ctime":      "created_at",
	"order.base.mtime":      "updated_at",
}

const orderBaseSelect = "id, site_id, language_id, currency_id, customer_id, comment, price, status, created_at, updated_at"

// OrderBaseManager persists order bases.
type OrderBaseManager struct {
	store *Store
}

// OrderBases returns the order base manager.
func (s *Store) OrderBases() *OrderBaseManager {
	return &OrderBaseManager{store: s}
}

// CreateItem returns an empty order base.
func (m *OrderBaseManager) CreateItem() *domain.OrderBaseItem {
	return &domain.OrderBaseItem{}
}

// CreateSearch returns a new search over order bases.
func (m *OrderBaseManager) CreateSearch() *criteria.Search {
	return criteria.New()
}

// GetItem returns the order base with id in the context site.
func (m *OrderBaseManager) GetItem(ctx context.Context, baseID string) (*domain.OrderBaseItem, error) {
	if err := m.store.ready(ctx); err != nil {
		return nil, err
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return nil, err
	}
	row := m.store.sqlDB.QueryRowContext(ctx,
		"SELECT "+orderBaseSelect+" FROM order_bases WHERE site_id = ? AND id = ?", siteID, baseID)
	item, err := scanOrderBase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(baseID)
	}
	if err != nil {
		return nil, fmt.Errorf("get order base: %w", err)
	}
	return item, nil
}

// SaveItem inserts a new order base or updates the editable fields of an
// existing one. Site, language and currency come from the context locale.
func (m *OrderBaseManager) SaveItem(ctx context.Context, item *domain.OrderBaseItem) error {
	if err := m.store.ready(ctx); err != nil {
		return err
	}
	if item == nil {
		return apperrors.Validation(apperrors.CodeParamsInvalid, "Order base item is required")
	}
	loc, ok := locale.FromContext(ctx)
	if !ok || loc.SiteID == "" {
		return apperrors.DomainError(apperrors.CodeLocaleMissing, "Locale is not available")
	}
	now := time.Now().UTC()

	if strings.TrimSpace(item.BaseID) == "" {
		item.BaseID = id.NewID()
		item.SiteID = loc.SiteID
		item.LanguageID = loc.LanguageID
		item.CurrencyID = loc.CurrencyID
		item.CTime = now
		item.MTime = now
		_, err := m.store.sqlDB.ExecContext(ctx,
			`INSERT INTO order_bases (id, site_id, language_id, currency_id, customer_id, comment, price, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.BaseID, item.SiteID, item.LanguageID, item.CurrencyID, item.CustomerID, item.Comment,
			item.Price, item.Status, toMillis(item.CTime), toMillis(item.MTime),
		)
		if err != nil {
			item.BaseID = ""
			return storageError("insert order base", err)
		}
		return nil
	}

	result, err := m.store.sqlDB.ExecContext(ctx,
		`UPDATE order_bases SET language_id = ?, currency_id = ?, customer_id = ?, comment = ?, updated_at = ?
		 WHERE site_id = ? AND id = ?`,
		loc.LanguageID, loc.CurrencyID, item.CustomerID, item.Comment, toMillis(now), loc.SiteID, item.BaseID,
	)
	if err != nil {
		return storageError("update order base", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storageError("update order base", err)
	}
	if affected == 0 {
		return notFound(item.BaseID)
	}
	item.SiteID, item.LanguageID, item.CurrencyID, item.MTime = loc.SiteID, loc.LanguageID, loc.CurrencyID, now
	return nil
}

// SearchItems returns order bases of the context site matching search.
func (m *OrderBaseManager) SearchItems(ctx context.Context, search *criteria.Search) ([]*domain.OrderBaseItem, int, error) {
	if err := m.store.ready(ctx); err != nil {
		return nil, 0, err
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return nil, 0, err
	}
	q, err := buildPageQuery(siteID, search, orderBaseColumns, "created_at ASC, id ASC")
	if err != nil {
		return nil, 0, err
	}
	query, params := q.selectSQL(orderBaseSelect, "order_bases")
	rows, err := m.store.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, fmt.Errorf("search order bases: %w", err)
	}
	defer rows.Close()

	var items []*domain.OrderBaseItem
	for rows.Next() {
		item, err := scanOrderBase(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order base: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order bases: %w", err)
	}
	total, err := m.store.count(ctx, q, "order_bases")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// DeleteItems removes order bases of the context site with their baskets
// and orders.
func (m *OrderBaseManager) DeleteItems(ctx context.Context, ids []string) error {
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
		"DELETE FROM order_bases WHERE site_id = ? AND id IN ("+placeholders(len(ids))+")", args...); err != nil {
		return storageError("delete order bases", err)
	}
	return nil
}

// Store persists basket as a new order base in the context site.
func (m *OrderBaseManager) Store(ctx context.Context, basket *domain.Basket) (*domain.OrderBaseItem, error) {
	if err := m.store.ready(ctx); err != nil {
		return nil, err
	}
	if basket.Empty() {
		return nil, apperrors.Application(apperrors.CodeBasketEmpty, "Basket is empty")
	}
	loc, ok := locale.FromContext(ctx)
	if !ok || loc.SiteID == "" {
		return nil, apperrors.DomainError(apperrors.CodeLocaleMissing, "Locale is not available")
	}

	now := time.Now().UTC()
	item := &domain.OrderBaseItem{
		BaseID:     id.NewID(),
		SiteID:     loc.SiteID,
		LanguageID: firstNonEmpty(basket.LanguageID, loc.LanguageID),
		CurrencyID: firstNonEmpty(basket.CurrencyID, loc.CurrencyID),
		CustomerID: basket.CustomerID,
		Comment:    basket.Comment,
		Price:      basket.Total(),
		CTime:      now,
		MTime:      now,
	}

	tx, err := m.store.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin store basket: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO order_bases (id, site_id, language_id, currency_id, customer_id, comment, price, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.BaseID, item.SiteID, item.LanguageID, item.CurrencyID, item.CustomerID, item.Comment,
		item.Price, item.Status, toMillis(now), toMillis(now),
	); err != nil {
		return nil, storageError("insert order base", err)
	}
	for pos, product := range basket.Products {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_base_products (base_id, position, product_id, code, name, quantity, price) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.BaseID, pos, product.ProductID, product.Code, product.Name, product.Quantity, product.Price,
		); err != nil {
			return nil, storageError("insert order product", err)
		}
		for _, attr := range product.Attributes {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO order_base_product_attributes (base_id, position, attribute_id, type, code, name) VALUES (?, ?, ?, ?, ?, ?)`,
				item.BaseID, pos, attr.AttributeID, attr.Type, attr.Code, attr.Name,
			); err != nil {
				return nil, storageError("insert order product attribute", err)
			}
		}
	}
	for _, address := range basket.Addresses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_base_addresses (base_id, type, first_name, last_name, street, city, postal, country, email)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.BaseID, address.Type, address.FirstName, address.LastName, address.Street, address.City,
			address.Postal, address.Country, address.Email,
		); err != nil {
			return nil, storageError("insert order address", err)
		}
	}
	for _, service := range basket.Services {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_base_services (base_id, type, code, name, price) VALUES (?, ?, ?, ?, ?)`,
			item.BaseID, service.Type, service.Code, service.Name, service.Price,
		); err != nil {
			return nil, storageError("insert order service", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit store basket: %w", err)
	}
	return item, nil
}

// Load returns the basket stored for the order base.
func (m *OrderBaseManager) Load(ctx context.Context, baseID string) (*domain.Basket, error) {
	base, err := m.GetItem(ctx, baseID)
	if err != nil {
		return nil, err
	}
	basket := domain.NewBasket()
	basket.CustomerID = base.CustomerID
	basket.Comment = base.Comment
	basket.LanguageID = base.LanguageID
	basket.CurrencyID = base.CurrencyID

	db := m.store.sqlDB
	rows, err := db.QueryContext(ctx,
		`SELECT position, product_id, code, name, quantity, price FROM order_base_products WHERE base_id = ? ORDER BY position`, baseID)
	if err != nil {
		return nil, fmt.Errorf("load order products: %w", err)
	}
	positions := map[int]int{}
	for rows.Next() {
		var pos int
		var product domain.OrderProduct
		if err := rows.Scan(&pos, &product.ProductID, &product.Code, &product.Name, &product.Quantity, &product.Price); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order product: %w", err)
		}
		positions[pos] = len(basket.Products)
		basket.Products = append(basket.Products, product)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order products: %w", err)
	}

	attrRows, err := db.QueryContext(ctx,
		`SELECT position, attribute_id, type, code, name FROM order_base_product_attributes WHERE base_id = ? ORDER BY position, type`, baseID)
	if err != nil {
		return nil, fmt.Errorf("load order product attributes: %w", err)
	}
	for attrRows.Next() {
		var pos int
		var attr domain.OrderProductAttribute
		if err := attrRows.Scan(&pos, &attr.AttributeID, &attr.Type, &attr.Code, &attr.Name); err != nil {
			attrRows.Close()
	if err := attrRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order product attributes: %w", err)
	}
			return nil, fmt.Errorf("scan order product attribute: %w", err)
		}
		if idx, ok := positions[pos]; ok {
			basket.Products[idx].Attributes = append(basket.Products[idx].Attributes, attr)
		}
	}
	attrRows.Close()

	addrRows, err := db.QueryContext(ctx,
		`SELECT type, first_name, last_name, street, city, postal, country, email FROM order_base_addresses WHERE base_id = ?`, baseID)
	if err != nil {
		return nil, fmt.Errorf("load order addresses: %w", err)
	}
	for addrRows.Next() {
		var address domain.Address
		if err := addrRows.Scan(&address.Type, &address.FirstName, &address.LastName, &address.Street, &address.City,
			&address.Postal, &address.Country, &address.Email); err != nil {
			addrRows.Close()
			return nil, fmt.Errorf("scan order address: %w", err)
		}
		basket.SetAddress(address)
	}
	addrRows.Close()
	if err := addrRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order addresses: %w", err)
	}

	serviceRows, err := db.QueryContext(ctx,
		`SELECT type, code, name, price FROM order_base_services WHERE base_id = ?`, baseID)
	if err != nil {
		return nil, fmt.Errorf("load order services: %w", err)
	}
	defer serviceRows.Close()
	for serviceRows.Next() {
		var service domain.OrderService
		if err := serviceRows.Scan(&service.Type, &service.Code, &service.Name, &service.Price); err != nil {
			return nil, fmt.Errorf("scan order service: %w", err)
		}
		basket.SetService(service)
	}
	if err := serviceRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order services: %w", err)
	}
	return basket, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrderBase(row rowScanner) (*domain.OrderBaseItem, error) {
	var item domain.OrderBaseItem
	var created, updated int64
	if err := row.Scan(&item.BaseID, &item.SiteID, &item.LanguageID, &item.CurrencyID, &item.CustomerID,
		&item.Comment, &item.Price, &item.Status, &created, &updated); err != nil {
		return nil, err
	}
	item.CTime = fromMillis(created)
	item.MTime = fromMillis(updated)
	return &item, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

var _ domain.OrderBaseManager = (*OrderBaseManager)(nil)
