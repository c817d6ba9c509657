package authz

import (
	"fmt"

	"github.com/chargeangels/authz/logger"
)

// Grant allows a set of actions on one entity, optionally guarded by a
// condition. An empty action list matches every action.
type Grant struct {
	Resource  Entity
	Actions   []Action
	Condition Expr
}

func (g Grant) matchesAction(action Action) bool {
	if len(g.Actions) == 0 {
		return true
	}
	for _, a := range g.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// GroupDefinition is the declared shape of one role group: its own
// grants plus the groups it inherits from.
type GroupDefinition struct {
	Extends []RoleGroup
	Grants  []Grant
}

// AccessControl is the immutable policy table. Inheritance is resolved
// once at construction; evaluation afterwards never mutates state.
type AccessControl struct {
	definitions map[RoleGroup]GroupDefinition
	resolved    map[RoleGroup][]Grant
	log         logger.Logger
}

// AccessControlOption configures construction.
type AccessControlOption func(*AccessControl)

func WithAccessControlLogger(l logger.Logger) AccessControlOption {
	return func(ac *AccessControl) {
		if l != nil {
			ac.log = l
		}
	}
}

// NewAccessControl builds the table from the built-in group
// definitions. A malformed table is a programming error and fails
// construction.
func NewAccessControl(opts ...AccessControlOption) (*AccessControl, error) {
	return NewAccessControlWith(DefaultGroupDefinitions(), opts...)
}

// NewAccessControlWith builds the table from explicit definitions,
// validating group references, cycles, resources and conditions.
func NewAccessControlWith(definitions map[RoleGroup]GroupDefinition, opts ...AccessControlOption) (*AccessControl, error) {
	ac := &AccessControl{
		definitions: definitions,
		resolved:    make(map[RoleGroup][]Grant, len(definitions)),
		log:         logger.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(ac)
	}
	if err := validateDefinitions(definitions); err != nil {
		return nil, fmt.Errorf("access control table: %w", err)
	}
	for group := range definitions {
		grants, err := flattenGroup(definitions, group, make(map[RoleGroup]bool))
		if err != nil {
			return nil, fmt.Errorf("access control table: %w", err)
		}
		ac.resolved[group] = grants
	}
	return ac, nil
}

// ResolvedGrants returns the flattened grant list of a group, own
// grants first, inherited after.
func (ac *AccessControl) ResolvedGrants(group RoleGroup) []Grant {
	return ac.resolved[group]
}

// Groups lists the defined role groups.
func (ac *AccessControl) Groups() []RoleGroup {
	out := make([]RoleGroup, 0, len(ac.definitions))
	for g := range ac.definitions {
		out = append(out, g)
	}
	return out
}

func validateDefinitions(definitions map[RoleGroup]GroupDefinition) error {
	if len(definitions) == 0 {
		return fmt.Errorf("no groups defined")
	}
	for group, def := range definitions {
		if group == "" {
			return fmt.Errorf("group with empty name")
		}
		for _, parent := range def.Extends {
			if _, ok := definitions[parent]; !ok {
				return fmt.Errorf("group %s extends unknown group %s", group, parent)
			}
		}
		for i, grant := range def.Grants {
			if grant.Resource == "" {
				return fmt.Errorf("group %s grant %d has no resource", group, i)
			}
		}
	}
	return nil
}

// flattenGroup resolves a group's transitive grant list. The visited
// map doubles as the recursion stack, so any cycle in extends is
// reported instead of looping.
func flattenGroup(definitions map[RoleGroup]GroupDefinition, group RoleGroup, visited map[RoleGroup]bool) ([]Grant, error) {
	if visited[group] {
		return nil, fmt.Errorf("inheritance cycle through group %s", group)
	}
	visited[group] = true
	defer delete(visited, group)

	def := definitions[group]
	grants := append([]Grant(nil), def.Grants...)
	for _, parent := range def.Extends {
		inherited, err := flattenGroup(definitions, parent, visited)
		if err != nil {
			return nil, err
		}
		grants = append(grants, inherited...)
	}
	return grants, nil
}

// DefaultGroupDefinitions is the shipped policy table. Conditions
// reference request fields; $.owner style operands reference other
// fields bound from the actor token.
func DefaultGroupDefinitions() map[RoleGroup]GroupDefinition {
	sameUser := &EqualsExpr{Field: "user", Value: FieldRef("owner")}
	assignedSite := &ListContainsExpr{Field: "sites", Value: FieldRef("site")}
	assignedCompany := &ListContainsExpr{Field: "companies", Value: FieldRef("company")}
	adminSite := &ListContainsExpr{Field: "sitesAdmin", Value: FieldRef("site")}
	ownedSite := &ListContainsExpr{Field: "sitesOwner", Value: FieldRef("site")}

	return map[RoleGroup]GroupDefinition{
		GroupSuperAdmin: {
			Grants: []Grant{
				{Resource: EntityTenants, Actions: []Action{ActionList}},
				{Resource: EntityTenant, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
				{Resource: EntityUsers, Actions: []Action{ActionList}},
				{Resource: EntityUser, Actions: []Action{ActionCreate, ActionRead, ActionUpdate}},
				{Resource: EntityUser, Actions: []Action{ActionDelete}, Condition: &NotEqualsExpr{Field: "user", Value: FieldRef("owner")}},
				{Resource: EntityLoggings, Actions: []Action{ActionList}},
				{Resource: EntityLogging, Actions: []Action{ActionRead}},
				{Resource: EntitySettings, Actions: []Action{ActionList}},
				{Resource: EntitySetting, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
			},
		},
		GroupAdmin: {
			Grants: []Grant{
				{Resource: EntityUsers, Actions: []Action{ActionList}},
				{Resource: EntityUser, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionLogout}},
				{Resource: EntityUser, Actions: []Action{ActionDelete}, Condition: &NotEqualsExpr{Field: "user", Value: FieldRef("owner")}},
				{Resource: EntityCompanies, Actions: []Action{ActionList}},
				{Resource: EntityCompany, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
				{Resource: EntitySites, Actions: []Action{ActionList}},
				{Resource: EntitySite, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
				{Resource: EntitySiteAreas, Actions: []Action{ActionList}},
				{Resource: EntitySiteArea, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
				{Resource: EntityChargingStations, Actions: []Action{ActionList}},
				{Resource: EntityChargingStation, Actions: []Action{
					ActionCreate, ActionRead, ActionUpdate, ActionDelete,
					ActionReset, ActionClearCache, ActionGetConfiguration, ActionChangeConfiguration,
					ActionRemoteStart, ActionRemoteStop, ActionUnlockConnector, ActionAuthorize,
				}},
				{Resource: EntityTransactions, Actions: []Action{ActionList}},
				{Resource: EntityTransaction, Actions: []Action{ActionRead, ActionUpdate, ActionDelete, ActionRefundTransaction}},
				{Resource: EntityReport, Actions: []Action{ActionRead}},
				{Resource: EntityLoggings, Actions: []Action{ActionList}},
				{Resource: EntityLogging, Actions: []Action{ActionRead}},
				{Resource: EntityPricing, Actions: []Action{ActionRead, ActionUpdate}},
				{Resource: EntityBilling, Actions: []Action{ActionCheckConnection}},
				{Resource: EntitySettings, Actions: []Action{ActionList}},
				{Resource: EntitySetting, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
				{Resource: EntityOcpiEndpoints, Actions: []Action{ActionList}},
				{Resource: EntityOcpiEndpoint, Actions: []Action{
					ActionCreate, ActionRead, ActionUpdate, ActionDelete,
					ActionPing, ActionRegister, ActionGenerateLocalToken, ActionTriggerJob,
				}},
				{Resource: EntityConnections, Actions: []Action{ActionList}},
				{Resource: EntityConnection, Actions: []Action{ActionCreate, ActionRead, ActionDelete}},
				{Resource: EntityTokens, Actions: []Action{ActionList}},
				{Resource: EntityToken, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
				{Resource: EntityCars, Actions: []Action{ActionList}},
				{Resource: EntityAssets, Actions: []Action{ActionList}},
				{Resource: EntityInvoices, Actions: []Action{ActionList}},
			},
		},
		GroupBasic: {
			Grants: []Grant{
				{Resource: EntityUser, Actions: []Action{ActionRead, ActionUpdate, ActionLogout}, Condition: sameUser},
				{Resource: EntityCompanies, Actions: []Action{ActionList}},
				{Resource: EntityCompany, Actions: []Action{ActionRead}, Condition: assignedCompany},
				{Resource: EntitySites, Actions: []Action{ActionList}},
				{Resource: EntitySite, Actions: []Action{ActionRead}, Condition: assignedSite},
				{Resource: EntitySiteAreas, Actions: []Action{ActionList}},
				{Resource: EntitySiteArea, Actions: []Action{ActionRead}, Condition: assignedSite},
				{Resource: EntityChargingStations, Actions: []Action{ActionList}},
				{Resource: EntityChargingStation, Actions: []Action{ActionRead, ActionRemoteStart, ActionRemoteStop, ActionAuthorize}},
				{Resource: EntityTransactions, Actions: []Action{ActionList}},
				{Resource: EntityTransaction, Actions: []Action{ActionRead}, Condition: sameUser},
				{Resource: EntityConnections, Actions: []Action{ActionList}},
				{Resource: EntityConnection, Actions: []Action{ActionCreate}},
				{Resource: EntityConnection, Actions: []Action{ActionRead, ActionDelete}, Condition: sameUser},
				{Resource: EntityCars, Actions: []Action{ActionList}},
				{Resource: EntityInvoices, Actions: []Action{ActionList}},
			},
		},
		GroupDemo: {
			Grants: []Grant{
				{Resource: EntityUser, Actions: []Action{ActionRead}, Condition: sameUser},
				{Resource: EntityCompanies, Actions: []Action{ActionList}},
				{Resource: EntityCompany, Actions: []Action{ActionRead}},
				{Resource: EntitySites, Actions: []Action{ActionList}},
				{Resource: EntitySite, Actions: []Action{ActionRead}},
				{Resource: EntitySiteAreas, Actions: []Action{ActionList}},
				{Resource: EntitySiteArea, Actions: []Action{ActionRead}},
				{Resource: EntityChargingStations, Actions: []Action{ActionList}},
				{Resource: EntityChargingStation, Actions: []Action{ActionRead}},
				{Resource: EntityTransactions, Actions: []Action{ActionList}},
				{Resource: EntityTransaction, Actions: []Action{ActionRead}},
				{Resource: EntityPricing, Actions: []Action{ActionRead}},
				{Resource: EntityCars, Actions: []Action{ActionList}},
			},
		},
		GroupSiteAdmin: {
			Extends: []RoleGroup{GroupBasic},
			Grants: []Grant{
				{Resource: EntityUsers, Actions: []Action{ActionList}},
				{Resource: EntitySite, Actions: []Action{ActionUpdate}, Condition: adminSite},
				{Resource: EntitySiteArea, Actions: []Action{ActionCreate, ActionUpdate, ActionDelete}, Condition: adminSite},
				{Resource: EntityChargingStation, Actions: []Action{
					ActionUpdate, ActionDelete,
					ActionReset, ActionClearCache, ActionGetConfiguration, ActionChangeConfiguration, ActionUnlockConnector,
				}, Condition: adminSite},
				{Resource: EntityTransaction, Actions: []Action{ActionRead}, Condition: adminSite},
				{Resource: EntityReport, Actions: []Action{ActionRead}},
				{Resource: EntityTokens, Actions: []Action{ActionList}},
				{Resource: EntityToken, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}, Condition: adminSite},
			},
		},
		GroupSiteOwner: {
			Extends: []RoleGroup{GroupBasic},
			Grants: []Grant{
				{Resource: EntitySite, Actions: []Action{ActionRead}, Condition: ownedSite},
				{Resource: EntityTransaction, Actions: []Action{ActionRead, ActionRefundTransaction}, Condition: ownedSite},
				{Resource: EntityReport, Actions: []Action{ActionRead}},
			},
		},
	}
}
