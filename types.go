package authz

import (
	"context"
	"time"
)

// Role is the single role carried by every user account.
type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleAdmin      Role = "admin"
	RoleBasic      Role = "basic"
	RoleDemo       Role = "demo"
)

// RoleGroup is a policy group derived from a role plus site memberships.
// Grants attach to groups, never to roles directly.
type RoleGroup string

const (
	GroupSuperAdmin RoleGroup = "superAdmin"
	GroupAdmin      RoleGroup = "admin"
	GroupBasic      RoleGroup = "basic"
	GroupDemo       RoleGroup = "demo"
	GroupSiteAdmin  RoleGroup = "siteAdmin"
	GroupSiteOwner  RoleGroup = "siteOwner"
)

// Entity identifies a protected resource family.
type Entity string

const (
	EntityUsers            Entity = "Users"
	EntityUser             Entity = "User"
	EntityCompanies        Entity = "Companies"
	EntityCompany          Entity = "Company"
	EntitySites            Entity = "Sites"
	EntitySite             Entity = "Site"
	EntitySiteAreas        Entity = "SiteAreas"
	EntitySiteArea         Entity = "SiteArea"
	EntityChargingStations Entity = "ChargingStations"
	EntityChargingStation  Entity = "ChargingStation"
	EntityTransactions     Entity = "Transactions"
	EntityTransaction      Entity = "Transaction"
	EntitySettings         Entity = "Settings"
	EntitySetting          Entity = "Setting"
	EntityOcpiEndpoints    Entity = "OcpiEndpoints"
	EntityOcpiEndpoint     Entity = "OcpiEndpoint"
	EntityConnections      Entity = "Connections"
	EntityConnection       Entity = "Connection"
	EntityTenants          Entity = "Tenants"
	EntityTenant           Entity = "Tenant"
	EntityPricing          Entity = "Pricing"
	EntityBilling          Entity = "Billing"
	EntityLoggings         Entity = "Loggings"
	EntityLogging          Entity = "Logging"
	EntityTokens           Entity = "Tokens"
	EntityToken            Entity = "Token"
	EntityCars             Entity = "Cars"
	EntityAssets           Entity = "Assets"
	EntityInvoices         Entity = "Invoices"
	EntityReport           Entity = "Report"
)

// Action identifies an operation on an entity.
type Action string

const (
	ActionList                Action = "List"
	ActionCreate              Action = "Create"
	ActionRead                Action = "Read"
	ActionUpdate              Action = "Update"
	ActionDelete              Action = "Delete"
	ActionLogout              Action = "Logout"
	ActionRemoteStart         Action = "RemoteStartTransaction"
	ActionRemoteStop          Action = "RemoteStopTransaction"
	ActionAuthorize           Action = "Authorize"
	ActionRefundTransaction   Action = "RefundTransaction"
	ActionReset               Action = "Reset"
	ActionClearCache          Action = "ClearCache"
	ActionGetConfiguration    Action = "GetConfiguration"
	ActionChangeConfiguration Action = "ChangeConfiguration"
	ActionUnlockConnector     Action = "UnlockConnector"
	ActionPing                Action = "Ping"
	ActionRegister            Action = "Register"
	ActionGenerateLocalToken  Action = "GenerateLocalToken"
	ActionTriggerJob          Action = "TriggerJob"
	ActionCheckConnection     Action = "CheckConnection"
)

// UserStatus is the account lifecycle state. Only active users may
// operate charging stations.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBlocked  UserStatus = "blocked"
	UserStatusPending  UserStatus = "pending"
	UserStatusLocked   UserStatus = "locked"
)

// ComponentOrganization gates the site/site-area structure per tenant.
const ComponentOrganization = "organization"

// UserToken is the authenticated actor snapshot decisions are made
// against. Membership lists are resolved at token build time.
type UserToken struct {
	ID           string
	TenantID     string
	Role         Role
	SiteIDs      []string
	SiteAdminIDs []string
	SiteOwnerIDs []string
	CompanyIDs   []string
	TagIDs       []string
}

// Tenant carries the per-tenant feature component flags.
type Tenant struct {
	ID         string
	Name       string
	Subdomain  string
	Components map[string]bool
}

func (t *Tenant) IsComponentActive(name string) bool {
	if t == nil {
		return false
	}
	return t.Components[name]
}

type Site struct {
	ID        string
	Name      string
	CompanyID string
	// AllowAllUsersToStopTransactions lets any site user stop a
	// transaction started by someone else.
	AllowAllUsersToStopTransactions bool
}

type SiteArea struct {
	ID     string
	Name   string
	SiteID string
	// AccessControl toggles badge checks for stations in this area.
	AccessControl bool
}

type ChargingStation struct {
	ID         string
	SiteAreaID string
	Inactive   bool
}

type Connector struct {
	ID int
	// ActiveTransactionID is 0 when no session is running.
	ActiveTransactionID int
}

type Transaction struct {
	ID                int
	UserID            string
	TagID             string
	ChargingStationID string
	ConnectorID       int
}

type User struct {
	ID        string
	Email     string
	Name      string
	FirstName string
	Phone     string
	Mobile    string
	Role      Role
	Status    UserStatus
	Deleted   bool
	TagIDs    []string
	CreatedAt time.Time
}

// SiteMembership is one user-to-site assignment row.
type SiteMembership struct {
	SiteID    string
	CompanyID string
	SiteAdmin bool
	SiteOwner bool
}

// MembershipStore resolves a user's site assignments.
type MembershipStore interface {
	GetUserSiteMemberships(ctx context.Context, tenantID, userID string) ([]SiteMembership, error)
}

// OrganizationStore resolves the tenant organization structure.
type OrganizationStore interface {
	MembershipStore
	GetTenant(ctx context.Context, tenantID string) (*Tenant, error)
	GetSite(ctx context.Context, tenantID, siteID string) (*Site, error)
	GetSiteArea(ctx context.Context, tenantID, siteAreaID string) (*SiteArea, error)
}

// UserStore resolves and persists badge users. GetUserByTagID returns
// ErrNotFound for unknown tags; CreateUser returns ErrTagAlreadyAssigned
// when the tag is taken, which makes badge provisioning idempotent.
type UserStore interface {
	GetUserByTagID(ctx context.Context, tenantID, tagID string) (*User, error)
	CreateUser(ctx context.Context, tenantID string, u *User) error
	UpdateUser(ctx context.Context, tenantID string, u *User) error
}

// TransactionStore resolves charging sessions.
type TransactionStore interface {
	GetTransaction(ctx context.Context, tenantID string, id int) (*Transaction, error)
}

// NotificationService is notified when an unknown badge is presented.
// Failures are the service's problem; the flow never blocks on it.
type NotificationService interface {
	NotifyUnknownUserBadged(ctx context.Context, tenantID, chargingStationID string, u *User)
}

// NewUserToken builds the actor snapshot for a user from the membership
// store. Company IDs are collapsed from the user's assigned sites.
func NewUserToken(ctx context.Context, memberships MembershipStore, tenantID string, u *User) (*UserToken, error) {
	rows, err := memberships.GetUserSiteMemberships(ctx, tenantID, u.ID)
	if err != nil {
		return nil, err
	}
	token := &UserToken{
		ID:       u.ID,
		TenantID: tenantID,
		Role:     u.Role,
		TagIDs:   append([]string(nil), u.TagIDs...),
	}
	seenCompanies := make(map[string]bool)
	for _, m := range rows {
		token.SiteIDs = append(token.SiteIDs, m.SiteID)
		if m.SiteAdmin {
			token.SiteAdminIDs = append(token.SiteAdminIDs, m.SiteID)
		}
		if m.SiteOwner {
			token.SiteOwnerIDs = append(token.SiteOwnerIDs, m.SiteID)
		}
		if m.CompanyID != "" && !seenCompanies[m.CompanyID] {
			seenCompanies[m.CompanyID] = true
			token.CompanyIDs = append(token.CompanyIDs, m.CompanyID)
		}
	}
	return token, nil
}
