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

var productColumns = map[string]string{
	"product.id":         "id",
	"product.siteid":     "site_id",
	"product.code":       "code",
	"product.label":      "label",
	"product.price":      "price",
	"product.currencyid": "currency_id",
	"product.stock":      "stock",
	"product.status":     "status",
	"product.ctime":      "created_at",
	"product.mtime":      "updated_at",
}

const productSelect = "id, site_id, code, label, price, currency_id, stock, status, created_at, updated_at"

// ProductManager persists products and their attribute lists.
type ProductManager struct {
	store *Store
}

// Products returns the product manager.
func (s *Store) Products() *ProductManager {
	return &ProductManager{store: s}
}

// CreateItem returns an empty, enabled product.
func (m *ProductManager) CreateItem() *domain.ProductItem {
	return &domain.ProductItem{Status: 1}
}

// CreateSearch returns a new search over products.
func (m *ProductManager) CreateSearch() *criteria.Search {
	return criteria.New()
}

// GetItem returns the product with its attributes.
func (m *ProductManager) GetItem(ctx context.Context, productID string) (*domain.ProductItem, error) {
	if err := m.store.ready(ctx); err != nil {
		return nil, err
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return nil, err
	}
	row := m.store.sqlDB.QueryRowContext(ctx, "SELECT "+productSelect+" FROM products WHERE site_id = ? AND id = ?", siteID, productID)
	item, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(productID)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if err := m.loadAttributes(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// SaveItem inserts or updates a product and replaces its attribute lists.
func (m *ProductManager) SaveItem(ctx context.Context, item *domain.ProductItem) error {
	if err := m.store.ready(ctx); err != nil {
		return err
	}
	if item == nil || strings.TrimSpace(item.Code) == "" {
		return apperrors.Validation(apperrors.CodeParamsInvalid, "Product code is required")
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	tx, err := m.store.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save product: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	isNew := item.ProductID == ""
	if isNew {
		item.ProductID = id.NewID()
		item.CTime = now
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO products (id, site_id, code, label, price, currency_id, stock, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ProductID, siteID, item.Code, item.Label, item.Price, item.CurrencyID, item.Stock, item.Status,
			toMillis(now), toMillis(now),
		); err != nil {
			item.ProductID = ""
			return storageError("insert product", err)
		}
	} else {
		result, err := tx.ExecContext(ctx,
			`UPDATE products SET code = ?, label = ?, price = ?, currency_id = ?, stock = ?, status = ?, updated_at = ?
			 WHERE site_id = ? AND id = ?`,
			item.Code, item.Label, item.Price, item.CurrencyID, item.Stock, item.Status, toMillis(now), siteID, item.ProductID,
		)
		if err != nil {
			return storageError("update product", err)
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			return notFound(item.ProductID)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_attributes WHERE product_id = ?`, item.ProductID); err != nil {
			return storageError("clear product attributes", err)
		}
	}
	for _, ref := range item.Attributes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_attributes (product_id, attribute_id, list_type, position) VALUES (?, ?, ?, ?)`,
			item.ProductID, ref.Attribute.AttributeID, ref.ListType, ref.Position,
		); err != nil {
			return storageError("insert product attribute", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save product: %w", err)
	}
	item.SiteID = siteID
	item.MTime = now
	return nil
}

// SearchItems returns products of the context site with their attributes.
func (m *ProductManager) SearchItems(ctx context.Context, search *criteria.Search) ([]*domain.ProductItem, int, error) {
	if err := m.store.ready(ctx); err != nil {
		return nil, 0, err
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return nil, 0, err
	}
	q, err := buildPageQuery(siteID, search, productColumns, "code ASC")
	if err != nil {
		return nil, 0, err
	}
	query, params := q.selectSQL(productSelect, "products")
	rows, err := m.store.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	var items []*domain.ProductItem
	for rows.Next() {
		item, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}
	for _, item := range items {
		if err := m.loadAttributes(ctx, item); err != nil {
			return nil, 0, err
		}
	}
	total, err := m.store.count(ctx, q, "products")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// DeleteItems removes products of the context site.
func (m *ProductManager) DeleteItems(ctx context.Context, ids []string) error {
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
		"DELETE FROM products WHERE site_id = ? AND id IN ("+placeholders(len(ids))+")", args...); err != nil {
		return storageError("delete products", err)
	}
	return nil
}

func (m *ProductManager) loadAttributes(ctx context.Context, item *domain.ProductItem) error {
	rows, err := m.store.sqlDB.QueryContext(ctx,
		`SELECT pa.list_type, pa.position, a.id, a.type, a.code, a.label, a.position
		 FROM product_attributes pa JOIN attributes a ON a.id = pa.attribute_id
		 WHERE pa.product_id = ?
		 ORDER BY pa.list_type, pa.position, a.position`, item.ProductID)
	if err != nil {
		return fmt.Errorf("load product attributes: %w", err)
	}
	defer rows.Close()
	item.Attributes = nil
	for rows.Next() {
		var ref domain.ProductAttribute
		if err := rows.Scan(&ref.ListType, &ref.Position, &ref.Attribute.AttributeID, &ref.Attribute.Type,
			&ref.Attribute.Code, &ref.Attribute.Label, &ref.Attribute.Position); err != nil {
			return fmt.Errorf("scan product attribute: %w", err)
		}
		item.Attributes = append(item.Attributes, ref)
	}
	return rows.Err()
}

func scanProduct(row rowScanner) (*domain.ProductItem, error) {
	var item domain.ProductItem
	var created, updated int64
	if err := row.Scan(&item.ProductID, &item.SiteID, &item.Code, &item.Label, &item.Price, &item.CurrencyID,
		&item.Stock, &item.Status, &created, &updated); err != nil {
		return nil, err
	}
	item.CTime = fromMillis(created)
	item.MTime = fromMillis(updated)
	return &item, nil
}

var _ domain.ProductManager = (*ProductManager)(nil)
