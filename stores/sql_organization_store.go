package stores

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oarkflow/squealx"

	"github.com/chargeangels/authz"
)

// SQLOrganizationStore persists the tenant organization structure in
// SQL (squealx). Component flags are stored as a JSON column.
type SQLOrganizationStore struct {
	db *squealx.DB
}

func NewSQLOrganizationStore(db *squealx.DB) *SQLOrganizationStore {
	return &SQLOrganizationStore{db: db}
}

func (s *SQLOrganizationStore) SaveTenant(ctx context.Context, t *authz.Tenant) error {
	components, _ := json.Marshal(t.Components)
	q := `INSERT OR REPLACE INTO tenants(id, name, subdomain, components_json, created_at) VALUES(:id, :name, :subdomain, :components_json, :created_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id": t.ID, "name": t.Name, "subdomain": t.Subdomain,
		"components_json": string(components), "created_at": time.Now(),
	})
	return err
}

func (s *SQLOrganizationStore) GetTenant(ctx context.Context, tenantID string) (*authz.Tenant, error) {
	q := `SELECT id, name, subdomain, components_json FROM tenants WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": tenantID})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, authz.ErrNotFound
	}
	var id, name, subdomain, componentsJSON string
	if err := r.Scan(&id, &name, &subdomain, &componentsJSON); err != nil {
		return nil, err
	}
	t := &authz.Tenant{ID: id, Name: name, Subdomain: subdomain}
	_ = json.Unmarshal([]byte(componentsJSON), &t.Components)
	return t, nil
}

func (s *SQLOrganizationStore) SaveSite(ctx context.Context, tenantID string, site *authz.Site) error {
	q := `INSERT OR REPLACE INTO sites(id, tenant_id, name, company_id, allow_all_users_to_stop, created_at) VALUES(:id, :tenant_id, :name, :company_id, :allow_all_users_to_stop, :created_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id": site.ID, "tenant_id": tenantID, "name": site.Name, "company_id": site.CompanyID,
		"allow_all_users_to_stop": boolToInt(site.AllowAllUsersToStopTransactions), "created_at": time.Now(),
	})
	return err
}

func (s *SQLOrganizationStore) GetSite(ctx context.Context, tenantID, siteID string) (*authz.Site, error) {
	q := `SELECT id, name, company_id, allow_all_users_to_stop FROM sites WHERE id = :id AND tenant_id = :tenant_id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": siteID, "tenant_id": tenantID})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, authz.ErrNotFound
	}
	var id, name, companyID string
	var allowAll int
	if err := r.Scan(&id, &name, &companyID, &allowAll); err != nil {
		return nil, err
	}
	return &authz.Site{ID: id, Name: name, CompanyID: companyID, AllowAllUsersToStopTransactions: allowAll != 0}, nil
}

func (s *SQLOrganizationStore) SaveSiteArea(ctx context.Context, tenantID string, area *authz.SiteArea) error {
	q := `INSERT OR REPLACE INTO site_areas(id, tenant_id, site_id, name, access_control, created_at) VALUES(:id, :tenant_id, :site_id, :name, :access_control, :created_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id": area.ID, "tenant_id": tenantID, "site_id": area.SiteID, "name": area.Name,
		"access_control": boolToInt(area.AccessControl), "created_at": time.Now(),
	})
	return err
}

func (s *SQLOrganizationStore) GetSiteArea(ctx context.Context, tenantID, siteAreaID string) (*authz.SiteArea, error) {
	q := `SELECT id, site_id, name, access_control FROM site_areas WHERE id = :id AND tenant_id = :tenant_id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": siteAreaID, "tenant_id": tenantID})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, authz.ErrNotFound
	}
	var id, siteID, name string
	var accessControl int
	if err := r.Scan(&id, &siteID, &name, &accessControl); err != nil {
		return nil, err
	}
	return &authz.SiteArea{ID: id, SiteID: siteID, Name: name, AccessControl: accessControl != 0}, nil
}

// AssignUserToSite is idempotent; repeating an assignment updates the
// admin/owner flags.
func (s *SQLOrganizationStore) AssignUserToSite(ctx context.Context, tenantID, siteID, userID string, siteAdmin, siteOwner bool) error {
	q := `INSERT OR REPLACE INTO site_users(tenant_id, site_id, user_id, site_admin, site_owner) VALUES(:tenant_id, :site_id, :user_id, :site_admin, :site_owner)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"tenant_id": tenantID, "site_id": siteID, "user_id": userID,
		"site_admin": boolToInt(siteAdmin), "site_owner": boolToInt(siteOwner),
	})
	return err
}

func (s *SQLOrganizationStore) RemoveUserFromSite(ctx context.Context, tenantID, siteID, userID string) error {
	q := `DELETE FROM site_users WHERE tenant_id = :tenant_id AND site_id = :site_id AND user_id = :user_id`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{"tenant_id": tenantID, "site_id": siteID, "user_id": userID})
	return err
}

func (s *SQLOrganizationStore) GetUserSiteMemberships(ctx context.Context, tenantID, userID string) ([]authz.SiteMembership, error) {
	q := `SELECT su.site_id, COALESCE(s.company_id, ''), su.site_admin, su.site_owner
		FROM site_users su LEFT JOIN sites s ON s.id = su.site_id AND s.tenant_id = su.tenant_id
		WHERE su.tenant_id = :tenant_id AND su.user_id = :user_id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"tenant_id": tenantID, "user_id": userID})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]authz.SiteMembership, 0)
	for r.Next() {
		var siteID, companyID string
		var siteAdmin, siteOwner int
		if err := r.Scan(&siteID, &companyID, &siteAdmin, &siteOwner); err != nil {
			return nil, err
		}
		out = append(out, authz.SiteMembership{
			SiteID: siteID, CompanyID: companyID,
			SiteAdmin: siteAdmin != 0, SiteOwner: siteOwner != 0,
		})
	}
	return out, nil
}
