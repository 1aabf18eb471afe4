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

var serviceColumns = map[string]string{
	"service.id":       "id",
	"service.type":     "type",
	"service.code":     "code",
	"service.label":    "label",
	"service.provider": "provider",
	"service.price":    "price",
	"service.position": "position",
}

const serviceSelect = "id, site_id, type, code, label, provider, price, position"

// ProviderFactory creates the provider implementation for a service.
type ProviderFactory func(item domain.ServiceItem) (domain.ServiceProvider, error)

// ServiceManager persists delivery and payment options.
type ServiceManager struct {
	store   *Store
	factory ProviderFactory
}

// Services returns the service manager creating providers with factory.
func (s *Store) Services(factory ProviderFactory) *ServiceManager {
	return &ServiceManager{store: s, factory: factory}
}

// CreateItem returns an empty service.
func (m *ServiceManager) CreateItem() *domain.ServiceItem {
	return &domain.ServiceItem{Config: map[string]string{}}
}

// CreateSearch returns a new search over services.
func (m *ServiceManager) CreateSearch() *criteria.Search {
	return criteria.New()
}

// GetItem returns one service with its configuration.
func (m *ServiceManager) GetItem(ctx context.Context, serviceID string) (*domain.ServiceItem, error) {
	if err := m.store.ready(ctx); err != nil {
		return nil, err
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return nil, err
	}
	row := m.store.sqlDB.QueryRowContext(ctx, "SELECT "+serviceSelect+" FROM services WHERE site_id = ? AND id = ?", siteID, serviceID)
	return m.scanOne(ctx, row, serviceID)
}

// SaveItem inserts or updates a service and replaces its configuration.
func (m *ServiceManager) SaveItem(ctx context.Context, item *domain.ServiceItem) error {
	if err := m.store.ready(ctx); err != nil {
		return err
	}
	if item == nil || strings.TrimSpace(item.Type) == "" || strings.TrimSpace(item.Code) == "" || strings.TrimSpace(item.Provider) == "" {
		return apperrors.Validation(apperrors.CodeParamsInvalid, "Service type, code and provider are required")
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return err
	}
	tx, err := m.store.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save service: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if item.ServiceID == "" {
		item.ServiceID = id.NewID()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO services (id, site_id, type, code, label, provider, price, position) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ServiceID, siteID, item.Type, item.Code, item.Label, item.Provider, item.Price, item.Position,
		); err != nil {
			item.ServiceID = ""
			return storageError("insert service", err)
		}
	} else {
		result, err := tx.ExecContext(ctx,
			`UPDATE services SET type = ?, code = ?, label = ?, provider = ?, price = ?, position = ? WHERE site_id = ? AND id = ?`,
			item.Type, item.Code, item.Label, item.Provider, item.Price, item.Position, siteID, item.ServiceID,
		)
		if err != nil {
			return storageError("update service", err)
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			return notFound(item.ServiceID)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM service_config WHERE service_id = ?`, item.ServiceID); err != nil {
			return storageError("clear service config", err)
		}
	}
	for key, value := range item.Config {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO service_config (service_id, key, value) VALUES (?, ?, ?)`, item.ServiceID, key, value,
		); err != nil {
			return storageError("insert service config", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save service: %w", err)
	}
	item.SiteID = siteID
	return nil
}

// SearchItems returns services of the context site.
func (m *ServiceManager) SearchItems(ctx context.Context, search *criteria.Search) ([]*domain.ServiceItem, int, error) {
	if err := m.store.ready(ctx); err != nil {
		return nil, 0, err
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return nil, 0, err
	}
	q, err := buildPageQuery(siteID, search, serviceColumns, "type ASC, position ASC, code ASC")
	if err != nil {
		return nil, 0, err
	}
	query, params := q.selectSQL(serviceSelect, "services")
	rows, err := m.store.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, fmt.Errorf("search services: %w", err)
	}
	var items []*domain.ServiceItem
	for rows.Next() {
		item, err := scanService(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan service: %w", err)
		}
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate services: %w", err)
	}
	for _, item := range items {
		if err := m.loadConfig(ctx, item); err != nil {
			return nil, 0, err
		}
	}
	total, err := m.store.count(ctx, q, "services")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// DeleteItems removes services of the context site.
func (m *ServiceManager) DeleteItems(ctx context.Context, ids []string) error {
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
		"DELETE FROM services WHERE site_id = ? AND id IN ("+placeholders(len(ids))+")", args...); err != nil {
		return storageError("delete services", err)
	}
	return nil
}

// Provider returns the provider for the service with typ and code.
func (m *ServiceManager) Provider(ctx context.Context, typ, code string) (domain.ServiceProvider, error) {
	if err := m.store.ready(ctx); err != nil {
		return nil, err
	}
	siteID, err := siteScope(ctx)
	if err != nil {
		return nil, err
	}
	row := m.store.sqlDB.QueryRowContext(ctx,
		"SELECT "+serviceSelect+" FROM services WHERE site_id = ? AND type = ? AND code = ?", siteID, typ, code)
	item, err := m.scanOne(ctx, row, code)
	if err != nil {
		return nil, err
	}
	if m.factory == nil {
		return nil, apperrors.DomainError(apperrors.CodeUnknownService, "Service provider \"%s\" is not available", item.Provider)
	}
	return m.factory(*item)
}

func (m *ServiceManager) scanOne(ctx context.Context, row rowScanner, ref string) (*domain.ServiceItem, error) {
	item, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(ref)
	}
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	if err := m.loadConfig(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (m *ServiceManager) loadConfig(ctx context.Context, item *domain.ServiceItem) error {
	rows, err := m.store.sqlDB.QueryContext(ctx, `SELECT key, value FROM service_config WHERE service_id = ?`, item.ServiceID)
	if err != nil {
		return fmt.Errorf("load service config: %w", err)
	}
	defer rows.Close()
	item.Config = map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan service config: %w", err)
		}
		item.Config[key] = value
	}
	return rows.Err()
}

func scanService(row rowScanner) (*domain.ServiceItem, error) {
	var item domain.ServiceItem
	if err := row.Scan(&item.ServiceID, &item.SiteID, &item.Type, &item.Code, &item.Label, &item.Provider,
		&item.Price, &item.Position); err != nil {
		return nil, err
	}
	return &item, nil
}

var _ domain.ServiceManager = (*ServiceManager)(nil)
