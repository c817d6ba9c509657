package authz

import (
	"github.com/chargeangels/authz/logger"
)

// Authorizations is the decision facade the rest of the backend calls.
// Simple checks are pure predicates over the actor token; the
// charging-station flows additionally consult the collaborator stores.
type Authorizations struct {
	table         *AccessControl
	org           OrganizationStore
	users         UserStore
	transactions  TransactionStore
	notifications NotificationService
	log           logger.Logger
}

// Option configures the facade.
type Option func(*Authorizations)

// WithLogger installs the structured logger used for security events.
func WithLogger(l logger.Logger) Option {
	return func(a *Authorizations) {
		if l != nil {
			a.log = l
		}
	}
}

// WithNotifications installs the unknown-badge notification sink.
func WithNotifications(n NotificationService) Option {
	return func(a *Authorizations) {
		a.notifications = n
	}
}

func NewAuthorizations(table *AccessControl, org OrganizationStore, users UserStore, transactions TransactionStore, opts ...Option) *Authorizations {
	a := &Authorizations{
		table:        table,
		org:          org,
		users:        users,
		transactions: transactions,
		log:          logger.NewOarkLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Table exposes the underlying policy table, mainly for Explain.
func (a *Authorizations) Table() *AccessControl { return a.table }

// can binds the actor token into the request fields and evaluates the
// table. Extra fields override token bindings of the same name.
func (a *Authorizations) can(token *UserToken, resource Entity, action Action, extra FieldContext) bool {
	fields := FieldContext{
		"owner":      token.ID,
		"sites":      token.SiteIDs,
		"sitesAdmin": token.SiteAdminIDs,
		"sitesOwner": token.SiteOwnerIDs,
		"companies":  token.CompanyIDs,
	}
	for k, v := range extra {
		fields[k] = v
	}
	allowed := a.table.Can(a.table.GroupsForToken(token), resource, action, fields)
	if !allowed {
		a.log.Debug("action denied",
			"tenant", token.TenantID, "user", token.ID, "role", string(token.Role),
			"resource", string(resource), "action", string(action))
	}
	return allowed
}

// Users

func (a *Authorizations) CanListUsers(token *UserToken) bool {
	return a.can(token, EntityUsers, ActionList, nil)
}

func (a *Authorizations) CanCreateUser(token *UserToken) bool {
	return a.can(token, EntityUser, ActionCreate, nil)
}

func (a *Authorizations) CanReadUser(token *UserToken, userID string) bool {
	return a.can(token, EntityUser, ActionRead, FieldContext{"user": userID})
}

func (a *Authorizations) CanUpdateUser(token *UserToken, userID string) bool {
	return a.can(token, EntityUser, ActionUpdate, FieldContext{"user": userID})
}

// CanDeleteUser denies deleting one's own account even for admins.
func (a *Authorizations) CanDeleteUser(token *UserToken, userID string) bool {
	return a.can(token, EntityUser, ActionDelete, FieldContext{"user": userID})
}

func (a *Authorizations) CanLogoutUser(token *UserToken, userID string) bool {
	return a.can(token, EntityUser, ActionLogout, FieldContext{"user": userID})
}

// Companies

func (a *Authorizations) CanListCompanies(token *UserToken) bool {
	return a.can(token, EntityCompanies, ActionList, nil)
}

func (a *Authorizations) CanCreateCompany(token *UserToken) bool {
	return a.can(token, EntityCompany, ActionCreate, nil)
}

func (a *Authorizations) CanReadCompany(token *UserToken, companyID string) bool {
	return a.can(token, EntityCompany, ActionRead, FieldContext{"company": companyID})
}

func (a *Authorizations) CanUpdateCompany(token *UserToken, companyID string) bool {
	return a.can(token, EntityCompany, ActionUpdate, FieldContext{"company": companyID})
}

func (a *Authorizations) CanDeleteCompany(token *UserToken, companyID string) bool {
	return a.can(token, EntityCompany, ActionDelete, FieldContext{"company": companyID})
}

// Sites

func (a *Authorizations) CanListSites(token *UserToken) bool {
	return a.can(token, EntitySites, ActionList, nil)
}

func (a *Authorizations) CanCreateSite(token *UserToken) bool {
	return a.can(token, EntitySite, ActionCreate, nil)
}

func (a *Authorizations) CanReadSite(token *UserToken, siteID string) bool {
	return a.can(token, EntitySite, ActionRead, FieldContext{"site": siteID})
}

func (a *Authorizations) CanUpdateSite(token *UserToken, siteID string) bool {
	return a.can(token, EntitySite, ActionUpdate, FieldContext{"site": siteID})
}

func (a *Authorizations) CanDeleteSite(token *UserToken, siteID string) bool {
	return a.can(token, EntitySite, ActionDelete, FieldContext{"site": siteID})
}

// Site areas. Every site-area check also requires the matching check on
// the parent site, so a user can never do more on an area than on the
// site containing it.

func (a *Authorizations) CanListSiteAreas(token *UserToken) bool {
	return a.can(token, EntitySiteAreas, ActionList, nil)
}

func (a *Authorizations) CanCreateSiteArea(token *UserToken, siteID string) bool {
	return a.can(token, EntitySiteArea, ActionCreate, FieldContext{"site": siteID}) &&
		a.CanUpdateSite(token, siteID)
}

func (a *Authorizations) CanReadSiteArea(token *UserToken, siteID string) bool {
	return a.can(token, EntitySiteArea, ActionRead, FieldContext{"site": siteID}) &&
		a.CanReadSite(token, siteID)
}

func (a *Authorizations) CanUpdateSiteArea(token *UserToken, siteID string) bool {
	return a.can(token, EntitySiteArea, ActionUpdate, FieldContext{"site": siteID}) &&
		a.CanUpdateSite(token, siteID)
}

func (a *Authorizations) CanDeleteSiteArea(token *UserToken, siteID string) bool {
	return a.can(token, EntitySiteArea, ActionDelete, FieldContext{"site": siteID}) &&
		a.CanUpdateSite(token, siteID)
}

// Charging stations

func (a *Authorizations) CanListChargingStations(token *UserToken) bool {
	return a.can(token, EntityChargingStations, ActionList, nil)
}

func (a *Authorizations) CanCreateChargingStation(token *UserToken) bool {
	return a.can(token, EntityChargingStation, ActionCreate, nil)
}

func (a *Authorizations) CanReadChargingStation(token *UserToken) bool {
	return a.can(token, EntityChargingStation, ActionRead, nil)
}

func (a *Authorizations) CanUpdateChargingStation(token *UserToken, siteID string) bool {
	return a.can(token, EntityChargingStation, ActionUpdate, FieldContext{"site": siteID})
}

func (a *Authorizations) CanDeleteChargingStation(token *UserToken, siteID string) bool {
	return a.can(token, EntityChargingStation, ActionDelete, FieldContext{"site": siteID})
}

// CanPerformActionOnChargingStation covers the OCPP command surface
// (reset, clear cache, configuration, unlock).
func (a *Authorizations) CanPerformActionOnChargingStation(token *UserToken, action Action, siteID string) bool {
	return a.can(token, EntityChargingStation, action, FieldContext{"site": siteID})
}

// Transactions

func (a *Authorizations) CanListTransactions(token *UserToken) bool {
	return a.can(token, EntityTransactions, ActionList, nil)
}

func (a *Authorizations) CanReadTransaction(token *UserToken, tx *Transaction, siteID string) bool {
	return a.can(token, EntityTransaction, ActionRead, FieldContext{"user": tx.UserID, "site": siteID})
}

func (a *Authorizations) CanUpdateTransaction(token *UserToken, tx *Transaction) bool {
	return a.can(token, EntityTransaction, ActionUpdate, FieldContext{"user": tx.UserID})
}

func (a *Authorizations) CanDeleteTransaction(token *UserToken, tx *Transaction) bool {
	return a.can(token, EntityTransaction, ActionDelete, FieldContext{"user": tx.UserID})
}

func (a *Authorizations) CanRefundTransaction(token *UserToken, tx *Transaction, siteID string) bool {
	return a.can(token, EntityTransaction, ActionRefundTransaction, FieldContext{"user": tx.UserID, "site": siteID})
}

// Settings

func (a *Authorizations) CanListSettings(token *UserToken) bool {
	return a.can(token, EntitySettings, ActionList, nil)
}

func (a *Authorizations) CanCreateSetting(token *UserToken) bool {
	return a.can(token, EntitySetting, ActionCreate, nil)
}

func (a *Authorizations) CanReadSetting(token *UserToken) bool {
	return a.can(token, EntitySetting, ActionRead, nil)
}

func (a *Authorizations) CanUpdateSetting(token *UserToken) bool {
	return a.can(token, EntitySetting, ActionUpdate, nil)
}

func (a *Authorizations) CanDeleteSetting(token *UserToken) bool {
	return a.can(token, EntitySetting, ActionDelete, nil)
}

// OCPI endpoints

func (a *Authorizations) CanListOcpiEndpoints(token *UserToken) bool {
	return a.can(token, EntityOcpiEndpoints, ActionList, nil)
}

func (a *Authorizations) CanCreateOcpiEndpoint(token *UserToken) bool {
	return a.can(token, EntityOcpiEndpoint, ActionCreate, nil)
}

func (a *Authorizations) CanReadOcpiEndpoint(token *UserToken) bool {
	return a.can(token, EntityOcpiEndpoint, ActionRead, nil)
}

func (a *Authorizations) CanUpdateOcpiEndpoint(token *UserToken) bool {
	return a.can(token, EntityOcpiEndpoint, ActionUpdate, nil)
}

func (a *Authorizations) CanDeleteOcpiEndpoint(token *UserToken) bool {
	return a.can(token, EntityOcpiEndpoint, ActionDelete, nil)
}

func (a *Authorizations) CanPingOcpiEndpoint(token *UserToken) bool {
	return a.can(token, EntityOcpiEndpoint, ActionPing, nil)
}

func (a *Authorizations) CanRegisterOcpiEndpoint(token *UserToken) bool {
	return a.can(token, EntityOcpiEndpoint, ActionRegister, nil)
}

func (a *Authorizations) CanGenerateLocalTokenOcpiEndpoint(token *UserToken) bool {
	return a.can(token, EntityOcpiEndpoint, ActionGenerateLocalToken, nil)
}

func (a *Authorizations) CanTriggerJobOcpiEndpoint(token *UserToken) bool {
	return a.can(token, EntityOcpiEndpoint, ActionTriggerJob, nil)
}

// Connections

func (a *Authorizations) CanListConnections(token *UserToken) bool {
	return a.can(token, EntityConnections, ActionList, nil)
}

func (a *Authorizations) CanCreateConnection(token *UserToken) bool {
	return a.can(token, EntityConnection, ActionCreate, nil)
}

func (a *Authorizations) CanReadConnection(token *UserToken, ownerID string) bool {
	return a.can(token, EntityConnection, ActionRead, FieldContext{"user": ownerID})
}

func (a *Authorizations) CanDeleteConnection(token *UserToken, ownerID string) bool {
	return a.can(token, EntityConnection, ActionDelete, FieldContext{"user": ownerID})
}

// Tenants

func (a *Authorizations) CanListTenants(token *UserToken) bool {
	return a.can(token, EntityTenants, ActionList, nil)
}

func (a *Authorizations) CanCreateTenant(token *UserToken) bool {
	return a.can(token, EntityTenant, ActionCreate, nil)
}

func (a *Authorizations) CanReadTenant(token *UserToken) bool {
	return a.can(token, EntityTenant, ActionRead, nil)
}

func (a *Authorizations) CanUpdateTenant(token *UserToken) bool {
	return a.can(token, EntityTenant, ActionUpdate, nil)
}

func (a *Authorizations) CanDeleteTenant(token *UserToken) bool {
	return a.can(token, EntityTenant, ActionDelete, nil)
}

// Misc surfaces

func (a *Authorizations) CanReadPricing(token *UserToken) bool {
	return a.can(token, EntityPricing, ActionRead, nil)
}

func (a *Authorizations) CanUpdatePricing(token *UserToken) bool {
	return a.can(token, EntityPricing, ActionUpdate, nil)
}

func (a *Authorizations) CanCheckBillingConnection(token *UserToken) bool {
	return a.can(token, EntityBilling, ActionCheckConnection, nil)
}

func (a *Authorizations) CanListLoggings(token *UserToken) bool {
	return a.can(token, EntityLoggings, ActionList, nil)
}

func (a *Authorizations) CanReadLogging(token *UserToken) bool {
	return a.can(token, EntityLogging, ActionRead, nil)
}

func (a *Authorizations) CanListTokens(token *UserToken) bool {
	return a.can(token, EntityTokens, ActionList, nil)
}

func (a *Authorizations) CanCreateToken(token *UserToken, siteID string) bool {
	return a.can(token, EntityToken, ActionCreate, FieldContext{"site": siteID})
}

func (a *Authorizations) CanReadToken(token *UserToken, siteID string) bool {
	return a.can(token, EntityToken, ActionRead, FieldContext{"site": siteID})
}

func (a *Authorizations) CanUpdateToken(token *UserToken, siteID string) bool {
	return a.can(token, EntityToken, ActionUpdate, FieldContext{"site": siteID})
}

func (a *Authorizations) CanDeleteToken(token *UserToken, siteID string) bool {
	return a.can(token, EntityToken, ActionDelete, FieldContext{"site": siteID})
}

func (a *Authorizations) CanListCars(token *UserToken) bool {
	return a.can(token, EntityCars, ActionList, nil)
}

func (a *Authorizations) CanListAssets(token *UserToken) bool {
	return a.can(token, EntityAssets, ActionList, nil)
}

func (a *Authorizations) CanListInvoices(token *UserToken) bool {
	return a.can(token, EntityInvoices, ActionList, nil)
}

func (a *Authorizations) CanReadReport(token *UserToken) bool {
	return a.can(token, EntityReport, ActionRead, nil)
}
