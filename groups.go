package authz

// GroupsForToken maps the actor's role and site memberships to the
// policy groups evaluated against the table. An unknown role yields no
// groups, which denies everything downstream.
func (ac *AccessControl) GroupsForToken(token *UserToken) []RoleGroup {
	switch token.Role {
	case RoleSuperAdmin:
		return []RoleGroup{GroupSuperAdmin}
	case RoleAdmin:
		return []RoleGroup{GroupAdmin}
	case RoleDemo:
		return []RoleGroup{GroupDemo}
	case RoleBasic:
		groups := []RoleGroup{GroupBasic}
		if len(token.SiteAdminIDs) > 0 {
			groups = append(groups, GroupSiteAdmin)
		}
		if len(token.SiteOwnerIDs) > 0 {
			groups = append(groups, GroupSiteOwner)
		}
		return groups
	default:
		ac.log.Error("unknown role, no groups resolved", "role", string(token.Role), "user", token.ID, "tenant", token.TenantID)
		return nil
	}
}
