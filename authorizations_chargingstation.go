package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const authModule = "Authorizations"

// BadgeEmailDomain is the placeholder mail domain of auto-provisioned
// badge users.
const BadgeEmailDomain = "chargeangels.fr"

// ConnectorActionAuthorizations is the per-connector capability set the
// dashboard renders as buttons.
type ConnectorActionAuthorizations struct {
	IsStartAuthorized              bool
	IsStopAuthorized               bool
	IsTransactionDisplayAuthorized bool
}

// resolveStationOrganization resolves the station's site area and site
// when the organization component is active. Missing linkage is broken
// data and reported as a StructuralError.
func (a *Authorizations) resolveStationOrganization(ctx context.Context, tenantID string, cs *ChargingStation, method string) (orgActive bool, site *Site, accessControl bool, err error) {
	tenant, err := a.org.GetTenant(ctx, tenantID)
	if errors.Is(err, ErrNotFound) {
		return false, nil, false, &StructuralError{
			TenantID: tenantID, ChargingStationID: cs.ID,
			Module: authModule, Method: method,
			Message: fmt.Sprintf("tenant %s does not exist", tenantID),
		}
	}
	if err != nil {
		return false, nil, false, fmt.Errorf("resolve tenant %s: %w", tenantID, err)
	}

	// Without the organization component there is no site structure to
	// consult; badge checks then default to enabled.
	if !tenant.IsComponentActive(ComponentOrganization) {
		return false, nil, true, nil
	}

	if cs.SiteAreaID == "" {
		return true, nil, true, &StructuralError{
			TenantID: tenantID, ChargingStationID: cs.ID,
			Module: authModule, Method: method,
			Message: fmt.Sprintf("charging station %s is not assigned to a site area", cs.ID),
		}
	}
	siteArea, err := a.org.GetSiteArea(ctx, tenantID, cs.SiteAreaID)
	if errors.Is(err, ErrNotFound) {
		return true, nil, true, &StructuralError{
			TenantID: tenantID, ChargingStationID: cs.ID,
			Module: authModule, Method: method,
			Message: fmt.Sprintf("charging station %s is not assigned to a site area", cs.ID),
		}
	}
	if err != nil {
		return true, nil, true, fmt.Errorf("resolve site area %s: %w", cs.SiteAreaID, err)
	}

	if siteArea.SiteID == "" {
		return true, nil, true, &StructuralError{
			TenantID: tenantID, ChargingStationID: cs.ID,
			Module: authModule, Method: method,
			Message: fmt.Sprintf("site area %s is not assigned to a site", siteArea.ID),
		}
	}
	site, err = a.org.GetSite(ctx, tenantID, siteArea.SiteID)
	if errors.Is(err, ErrNotFound) {
		return true, nil, true, &StructuralError{
			TenantID: tenantID, ChargingStationID: cs.ID,
			Module: authModule, Method: method,
			Message: fmt.Sprintf("site area %s is not assigned to a site", siteArea.ID),
		}
	}
	if err != nil {
		return true, nil, true, fmt.Errorf("resolve site %s: %w", siteArea.SiteID, err)
	}
	return true, site, siteArea.AccessControl, nil
}

// GetConnectorActionAuthorizations computes which connector actions the
// actor may trigger, combining the role decision table, site
// assignment, the site stop policy and the running transaction.
func (a *Authorizations) GetConnectorActionAuthorizations(ctx context.Context, tenantID string, token *UserToken, cs *ChargingStation, connector *Connector) (*ConnectorActionAuthorizations, error) {
	const method = "GetConnectorActionAuthorizations"

	orgActive, site, accessControl, err := a.resolveStationOrganization(ctx, tenantID, cs, method)
	if err != nil {
		return nil, err
	}

	assigned := false
	allowAllStop := false
	extra := FieldContext{}
	if orgActive && site != nil {
		assigned = containsString(token.SiteIDs, site.ID)
		allowAllStop = site.AllowAllUsersToStopTransactions
		extra["site"] = site.ID
	}

	// With no running transaction there is no foreign session to
	// protect, so the same-user clause holds vacuously.
	sameUser := true
	if connector != nil && connector.ActiveTransactionID != 0 {
		tx, err := a.transactions.GetTransaction(ctx, tenantID, connector.ActiveTransactionID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("resolve transaction %d: %w", connector.ActiveTransactionID, err)
		}
		if tx != nil {
			sameUser = tx.UserID == token.ID
		}
	}

	baseStart := a.can(token, EntityChargingStation, ActionRemoteStart, extra)
	baseStop := a.can(token, EntityChargingStation, ActionRemoteStop, extra)
	siteGate := !orgActive || assigned

	auths := &ConnectorActionAuthorizations{}
	switch token.Role {
	case RoleSuperAdmin, RoleAdmin:
		auths.IsStartAuthorized = siteGate && baseStart
		auths.IsStopAuthorized = siteGate && baseStop
		auths.IsTransactionDisplayAuthorized = siteGate
	case RoleDemo:
		auths.IsTransactionDisplayAuthorized = siteGate
	case RoleBasic:
		auths.IsStartAuthorized = siteGate && baseStart
		stopAllowed := (orgActive && assigned && (allowAllStop || sameUser || !accessControl)) ||
			(!orgActive && accessControl && sameUser) ||
			(!orgActive && !accessControl)
		auths.IsStopAuthorized = stopAllowed && baseStop
		auths.IsTransactionDisplayAuthorized = (orgActive && assigned && (sameUser || !accessControl)) ||
			(!orgActive && accessControl && sameUser) ||
			(!orgActive && !accessControl)
	}
	return auths, nil
}

// ResolveTagUser maps a badge tag to its user. An unknown tag creates
// an inactive placeholder user first, fires the notification, and only
// then rejects the request with the created user attached. A
// soft-deleted owner is resurrected inactive with personal fields
// scrubbed; the status check downstream rejects it.
func (a *Authorizations) ResolveTagUser(ctx context.Context, tenantID string, cs *ChargingStation, tagID string) (*User, error) {
	const method = "ResolveTagUser"

	u, err := a.users.GetUserByTagID(ctx, tenantID, tagID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("resolve tag %s: %w", tagID, err)
	}

	if errors.Is(err, ErrNotFound) {
		created := &User{
			ID:        uuid.NewString(),
			Email:     fmt.Sprintf("%s@%s", tagID, BadgeEmailDomain),
			Name:      strings.ToUpper(tagID),
			FirstName: "Unknown",
			Role:      RoleBasic,
			Status:    UserStatusInactive,
			TagIDs:    []string{tagID},
			CreatedAt: time.Now(),
		}
		cerr := a.users.CreateUser(ctx, tenantID, created)
		if cerr != nil && !errors.Is(cerr, ErrTagAlreadyAssigned) {
			return nil, fmt.Errorf("provision user for tag %s: %w", tagID, cerr)
		}
		if errors.Is(cerr, ErrTagAlreadyAssigned) {
			// Lost the provisioning race; the tag has an owner now.
			u, err = a.users.GetUserByTagID(ctx, tenantID, tagID)
			if err != nil {
				return nil, fmt.Errorf("resolve tag %s: %w", tagID, err)
			}
		} else {
			a.log.Info("unknown badge, user provisioned",
				"tenant", tenantID, "chargingStation", cs.ID, "tag", tagID, "user", created.ID)
			if a.notifications != nil {
				a.notifications.NotifyUnknownUserBadged(ctx, tenantID, cs.ID, created)
			}
			return created, &AuthorizationError{
				TenantID: tenantID, UserID: created.ID,
				Resource: EntityChargingStation, Action: ActionAuthorize,
				Module: authModule, Method: method,
				Message: fmt.Sprintf("unknown badge %s, user provisioned inactive", tagID),
				User:    created,
			}
		}
	}

	if u.Deleted {
		u.Deleted = false
		u.Status = UserStatusInactive
		u.Name = strings.ToUpper(tagID)
		u.FirstName = "Unknown"
		u.Phone = ""
		u.Mobile = ""
		if uerr := a.users.UpdateUser(ctx, tenantID, u); uerr != nil {
			return nil, fmt.Errorf("resurrect user %s: %w", u.ID, uerr)
		}
		a.log.Error("deleted user badged, account resurrected inactive",
			"tenant", tenantID, "chargingStation", cs.ID, "tag", tagID, "user", u.ID)
	}
	return u, nil
}

// CheckTagUserAuthorized runs the pure capability checks on an already
// resolved badge user: account status, site membership when the
// organization structure applies (site non-nil), and the station
// capability from the policy table.
func (a *Authorizations) CheckTagUserAuthorized(ctx context.Context, tenantID string, cs *ChargingStation, site *Site, u *User, action Action) error {
	const method = "CheckTagUserAuthorized"

	if u.Status != UserStatusActive {
		return &AuthorizationError{
			TenantID: tenantID, UserID: u.ID,
			Resource: EntityChargingStation, Action: action,
			Module: authModule, Method: method,
			Message: fmt.Sprintf("user %s is not active", u.ID),
		}
	}

	token, err := NewUserToken(ctx, a.org, tenantID, u)
	if err != nil {
		return fmt.Errorf("build token for user %s: %w", u.ID, err)
	}

	// Admins operate across sites; membership only gates basic users.
	if site != nil && u.Role != RoleAdmin && u.Role != RoleSuperAdmin && !containsString(token.SiteIDs, site.ID) {
		return &AuthorizationError{
			TenantID: tenantID, UserID: u.ID,
			Resource: EntityChargingStation, Action: action,
			Module: authModule, Method: method,
			Message: fmt.Sprintf("user %s is not assigned to site %s", u.ID, site.ID),
		}
	}

	if !a.can(token, EntityChargingStation, action, FieldContext{}) {
		return &AuthorizationError{
			TenantID: tenantID, UserID: u.ID,
			Resource: EntityChargingStation, Action: action,
			Module: authModule, Method: method,
			Message: fmt.Sprintf("user %s cannot perform %s on charging station %s", u.ID, action, cs.ID),
		}
	}
	return nil
}

// IsTagIDAuthorizedOnChargingStation is the single-badge flow: resolve
// the station's organization linkage, short-circuit open areas, then
// resolve and check the badge user. The returned user is non-nil even
// on rejection whenever a user was resolved or provisioned.
func (a *Authorizations) IsTagIDAuthorizedOnChargingStation(ctx context.Context, tenantID string, cs *ChargingStation, tagID string, action Action) (*User, error) {
	const method = "IsTagIDAuthorizedOnChargingStation"

	_, site, accessControl, err := a.resolveStationOrganization(ctx, tenantID, cs, method)
	if err != nil {
		return nil, err
	}

	// Open area: no badge check, no user resolution.
	if !accessControl {
		return nil, nil
	}

	u, err := a.ResolveTagUser(ctx, tenantID, cs, tagID)
	if err != nil {
		return u, err
	}
	if err := a.CheckTagUserAuthorized(ctx, tenantID, cs, site, u, action); err != nil {
		return u, err
	}
	return u, nil
}

// IsTagIDsAuthorizedOnChargingStation is the dual-badge stop flow: a
// badge different from the one that started the session may stop it
// only for admins or when the site allows everyone to stop.
func (a *Authorizations) IsTagIDsAuthorizedOnChargingStation(ctx context.Context, tenantID string, cs *ChargingStation, tagID, transactionTagID string, action Action) (user, alternateUser *User, err error) {
	const method = "IsTagIDsAuthorizedOnChargingStation"

	if tagID == transactionTagID {
		user, err = a.IsTagIDAuthorizedOnChargingStation(ctx, tenantID, cs, tagID, action)
		return user, nil, err
	}

	alternateUser, err = a.IsTagIDAuthorizedOnChargingStation(ctx, tenantID, cs, tagID, action)
	if err != nil {
		return nil, alternateUser, err
	}
	// Open area: the single-badge flow resolved nobody and allowed.
	if alternateUser == nil {
		return nil, nil, nil
	}

	user, err = a.users.GetUserByTagID(ctx, tenantID, transactionTagID)
	if errors.Is(err, ErrNotFound) {
		return nil, alternateUser, &StructuralError{
			TenantID: tenantID, ChargingStationID: cs.ID,
			Module: authModule, Method: method,
			Message: fmt.Sprintf("transaction tag %s has no owner", transactionTagID),
		}
	}
	if err != nil {
		return nil, alternateUser, fmt.Errorf("resolve transaction tag %s: %w", transactionTagID, err)
	}

	if user.ID != alternateUser.ID && alternateUser.Role != RoleAdmin {
		allowAll := false
		orgActive, site, _, rerr := a.resolveStationOrganization(ctx, tenantID, cs, method)
		if rerr != nil {
			return user, alternateUser, rerr
		}
		if orgActive && site != nil {
			allowAll = site.AllowAllUsersToStopTransactions
		}
		if !allowAll {
			return user, alternateUser, &AuthorizationError{
				TenantID: tenantID, UserID: alternateUser.ID,
				Resource: EntityChargingStation, Action: action,
				Module: authModule, Method: method,
				Message: fmt.Sprintf("user %s is not allowed to stop the session of user %s on charging station %s",
					alternateUser.ID, user.ID, cs.ID),
			}
		}
	}
	return user, alternateUser, nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
