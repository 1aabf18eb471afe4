package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/platform/id"
	"github.com/louisbranch/storefront/internal/services/shop/criteria"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
)

var attributeColumns = map[string]string{
	"attribute.id":       "id",
	"attribute.type":     "type",
	"attribute.code":     "code",
	"attribute.label":    "label",
	"attribute.position": "position",
}

// AttributeManager persists product attributes.
type AttributeManager struct {
	store *Store
}

// Attributes returns the attribute manager.
func (s *Store) Attributes() *AttributeManager {
	return &AttributeManager{store: s}
}

// CreateItem returns an empty attribute.
func (m *AttributeManager) CreateItem() *domain.AttributeItem {
	return &domain.AttributeItem{}
}

// CreateSearch returns a new search over attributes.
func (m *AttributeManager) CreateSearch() *criteria.Search {
	return criteria.New()
}

// GetItem returns one attribute.
func (m *AttributeManager) GetItem(ctx context.Context, attributeID string) (*domain.AttributeItem, error) {
	if err := m.store.ready(ctx); err != nil {
		return nil, err
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return nil, err
	}
	var item domain.AttributeItem
	err = m.store.sqlDB.QueryRowContext(ctx,
		`SELECT id, type, code, label, position FROM attributes WHERE site_id = ? AND id = ?`, siteID, attributeID,
	).Scan(&item.AttributeID, &item.Type, &item.Code, &item.Label, &item.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(attributeID)
	}
	if err != nil {
		return nil, fmt.Errorf("get attribute: %w", err)
	}
	return &item, nil
}

// SaveItem inserts or updates an attribute.
func (m *AttributeManager) SaveItem(ctx context.Context, item *domain.AttributeItem) error {
	if err := m.store.ready(ctx); err != nil {
		return err
	}
	if item == nil || strings.TrimSpace(item.Type) == "" || strings.TrimSpace(item.Code) == "" {
		return apperrors.Validation(apperrors.CodeParamsInvalid, "Attribute type and code are required")
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return err
	}
	if item.AttributeID == "" {
		item.AttributeID = id.NewID()
		if _, err := m.store.sqlDB.ExecContext(ctx,
			`INSERT INTO attributes (id, site_id, type, code, label, position) VALUES (?, ?, ?, ?, ?, ?)`,
			item.AttributeID, siteID, item.Type, item.Code, item.Label, item.Position,
		); err != nil {
			item.AttributeID = ""
			return storageError("insert attribute", err)
		}
		return nil
	}
	result, err := m.store.sqlDB.ExecContext(ctx,
		`UPDATE attributes SET type = ?, code = ?, label = ?, position = ? WHERE site_id = ? AND id = ?`,
		item.Type, item.Code, item.Label, item.Position, siteID, item.AttributeID,
	)
	if err != nil {
		return storageError("update attribute", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return notFound(item.AttributeID)
	}
	return nil
}

// SearchItems returns attributes of the context site.
func (m *AttributeManager) SearchItems(ctx context.Context, search *criteria.Search) ([]*domain.AttributeItem, int, error) {
	if err := m.store.ready(ctx); err != nil {
		return nil, 0, err
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return nil, 0, err
	}
	q, err := buildPageQuery(siteID, search, attributeColumns, "type ASC, position ASC")
	if err != nil {
		return nil, 0, err
	}
	query, params := q.selectSQL("id, type, code, label, position", "attributes")
	rows, err := m.store.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, fmt.Errorf("search attributes: %w", err)
	}
	defer rows.Close()
	var items []*domain.AttributeItem
	for rows.Next() {
		var item domain.AttributeItem
		if err := rows.Scan(&item.AttributeID, &item.Type, &item.Code, &item.Label, &item.Position); err != nil {
			return nil, 0, fmt.Errorf("scan attribute: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate attributes: %w", err)
	}
	total, err := m.store.count(ctx, q, "attributes")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// DeleteItems removes attributes of the context site.
func (m *AttributeManager) DeleteItems(ctx context.Context, ids []string) error {
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
		"DELETE FROM attributes WHERE site_id = ? AND id IN ("+placeholders(len(ids))+")", args...); err != nil {
		return storageError("delete attributes", err)
	}
	return nil
}

var _ domain.AttributeManager = (*AttributeManager)(nil)
