package authz

import (
	"context"
	"reflect"
	"testing"
)

func TestNewUserToken(t *testing.T) {
	org := newFakeOrgStore()
	org.memberships["u1"] = []SiteMembership{
		{SiteID: "s1", CompanyID: "c1"},
		{SiteID: "s2", CompanyID: "c1", SiteAdmin: true},
		{SiteID: "s3", CompanyID: "c2", SiteOwner: true},
	}
	u := &User{ID: "u1", Role: RoleBasic, TagIDs: []string{"GCX77"}}

	token, err := NewUserToken(context.Background(), org, "t1", u)
	if err != nil {
		t.Fatalf("build token: %v", err)
	}
	if token.ID != "u1" || token.TenantID != "t1" || token.Role != RoleBasic {
		t.Fatalf("identity fields wrong: %+v", token)
	}
	if !reflect.DeepEqual(token.SiteIDs, []string{"s1", "s2", "s3"}) {
		t.Fatalf("site list wrong: %v", token.SiteIDs)
	}
	if !reflect.DeepEqual(token.SiteAdminIDs, []string{"s2"}) {
		t.Fatalf("admin list wrong: %v", token.SiteAdminIDs)
	}
	if !reflect.DeepEqual(token.SiteOwnerIDs, []string{"s3"}) {
		t.Fatalf("owner list wrong: %v", token.SiteOwnerIDs)
	}
	if !reflect.DeepEqual(token.CompanyIDs, []string{"c1", "c2"}) {
		t.Fatalf("company list must be deduplicated in order: %v", token.CompanyIDs)
	}
	if !reflect.DeepEqual(token.TagIDs, []string{"GCX77"}) {
		t.Fatalf("tag list wrong: %v", token.TagIDs)
	}
}

func TestTenantComponentFlags(t *testing.T) {
	var none *Tenant
	if none.IsComponentActive(ComponentOrganization) {
		t.Fatalf("nil tenant must report inactive components")
	}
	tenant := &Tenant{ID: "t1", Components: map[string]bool{ComponentOrganization: true}}
	if !tenant.IsComponentActive(ComponentOrganization) {
		t.Fatalf("flag must be active")
	}
	if tenant.IsComponentActive("billing") {
		t.Fatalf("unknown component must be inactive")
	}
}
