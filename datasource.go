package authz

import (
	"context"
	"fmt"
)

// DataSourceName identifies a lazily loaded per-request data source.
type DataSourceName string

const (
	DataSourceAssignedSitesCompanies DataSourceName = "AssignedSitesCompanies"
	DataSourceSitesAdmin             DataSourceName = "SitesAdmin"
)

// DataSource loads actor-scoped data once per request. Instances are
// request-scoped and must never be shared across actors or tenants.
type DataSource interface {
	Name() DataSourceName
	Load(ctx context.Context) error
	Loaded() bool
}

// DynamicFilter consumes data sources and injects the resulting values
// into the request fields a condition evaluates against.
type DynamicFilter interface {
	DataSources() []DataSourceName
	SetDataSource(ds DataSource)
	Apply(fields FieldContext)
}

// AssignedSitesCompaniesDataSource resolves the sites a user is
// assigned to and the companies those sites belong to.
type AssignedSitesCompaniesDataSource struct {
	memberships MembershipStore
	tenantID    string
	userID      string
	loaded      bool
	siteIDs     []string
	companyIDs  []string
}

func (d *AssignedSitesCompaniesDataSource) Name() DataSourceName {
	return DataSourceAssignedSitesCompanies
}

func (d *AssignedSitesCompaniesDataSource) Loaded() bool { return d.loaded }

func (d *AssignedSitesCompaniesDataSource) Load(ctx context.Context) error {
	rows, err := d.memberships.GetUserSiteMemberships(ctx, d.tenantID, d.userID)
	if err != nil {
		return fmt.Errorf("load assigned sites for user %s: %w", d.userID, err)
	}
	seen := make(map[string]bool)
	for _, m := range rows {
		d.siteIDs = append(d.siteIDs, m.SiteID)
		if m.CompanyID != "" && !seen[m.CompanyID] {
			seen[m.CompanyID] = true
			d.companyIDs = append(d.companyIDs, m.CompanyID)
		}
	}
	d.loaded = true
	return nil
}

func (d *AssignedSitesCompaniesDataSource) SiteIDs() []string    { return d.siteIDs }
func (d *AssignedSitesCompaniesDataSource) CompanyIDs() []string { return d.companyIDs }

// SitesAdminDataSource resolves the sites a user administers or owns.
type SitesAdminDataSource struct {
	memberships  MembershipStore
	tenantID     string
	userID       string
	loaded       bool
	adminSiteIDs []string
	ownerSiteIDs []string
}

func (d *SitesAdminDataSource) Name() DataSourceName { return DataSourceSitesAdmin }

func (d *SitesAdminDataSource) Loaded() bool { return d.loaded }

func (d *SitesAdminDataSource) Load(ctx context.Context) error {
	rows, err := d.memberships.GetUserSiteMemberships(ctx, d.tenantID, d.userID)
	if err != nil {
		return fmt.Errorf("load admin sites for user %s: %w", d.userID, err)
	}
	for _, m := range rows {
		if m.SiteAdmin {
			d.adminSiteIDs = append(d.adminSiteIDs, m.SiteID)
		}
		if m.SiteOwner {
			d.ownerSiteIDs = append(d.ownerSiteIDs, m.SiteID)
		}
	}
	d.loaded = true
	return nil
}

func (d *SitesAdminDataSource) AdminSiteIDs() []string { return d.adminSiteIDs }
func (d *SitesAdminDataSource) OwnerSiteIDs() []string { return d.ownerSiteIDs }

// AssignedSitesCompaniesFilter binds the sites/companies fields from
// the assigned-sites data source.
type AssignedSitesCompaniesFilter struct {
	ds *AssignedSitesCompaniesDataSource
}

func (f *AssignedSitesCompaniesFilter) DataSources() []DataSourceName {
	return []DataSourceName{DataSourceAssignedSitesCompanies}
}

func (f *AssignedSitesCompaniesFilter) SetDataSource(ds DataSource) {
	if d, ok := ds.(*AssignedSitesCompaniesDataSource); ok {
		f.ds = d
	}
}

func (f *AssignedSitesCompaniesFilter) Apply(fields FieldContext) {
	if f.ds == nil {
		return
	}
	fields["sites"] = f.ds.SiteIDs()
	fields["companies"] = f.ds.CompanyIDs()
}

// SitesAdminFilter binds the sitesAdmin/sitesOwner fields.
type SitesAdminFilter struct {
	ds *SitesAdminDataSource
}

func (f *SitesAdminFilter) DataSources() []DataSourceName {
	return []DataSourceName{DataSourceSitesAdmin}
}

func (f *SitesAdminFilter) SetDataSource(ds DataSource) {
	if d, ok := ds.(*SitesAdminDataSource); ok {
		f.ds = d
	}
}

func (f *SitesAdminFilter) Apply(fields FieldContext) {
	if f.ds == nil {
		return
	}
	fields["sitesAdmin"] = f.ds.AdminSiteIDs()
	fields["sitesOwner"] = f.ds.OwnerSiteIDs()
}

// DataSourceFactory creates and loads the data sources a filter needs.
// The caller owns the sources map and passes the same map for every
// filter resolved within one request, so each source loads once per
// request and never leaks across requests.
type DataSourceFactory struct {
	memberships MembershipStore
}

func NewDataSourceFactory(memberships MembershipStore) *DataSourceFactory {
	return &DataSourceFactory{memberships: memberships}
}

func (f *DataSourceFactory) ResolveFilter(ctx context.Context, tenantID string, token *UserToken, filter DynamicFilter, sources map[DataSourceName]DataSource) error {
	for _, name := range filter.DataSources() {
		ds, ok := sources[name]
		if !ok {
			var err error
			ds, err = f.newDataSource(name, tenantID, token)
			if err != nil {
				return err
			}
			sources[name] = ds
		}
		if !ds.Loaded() {
			if err := ds.Load(ctx); err != nil {
				return err
			}
		}
		filter.SetDataSource(ds)
	}
	return nil
}

func (f *DataSourceFactory) newDataSource(name DataSourceName, tenantID string, token *UserToken) (DataSource, error) {
	switch name {
	case DataSourceAssignedSitesCompanies:
		return &AssignedSitesCompaniesDataSource{memberships: f.memberships, tenantID: tenantID, userID: token.ID}, nil
	case DataSourceSitesAdmin:
		return &SitesAdminDataSource{memberships: f.memberships, tenantID: tenantID, userID: token.ID}, nil
	default:
		return nil, fmt.Errorf("unknown data source %s", name)
	}
}
