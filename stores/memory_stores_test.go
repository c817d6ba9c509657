package stores

import (
	"context"
	"errors"
	"testing"

	"github.com/chargeangels/authz"
)

func TestMemoryUserStoreTagUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUserStore()

	first := &authz.User{ID: "u1", Role: authz.RoleBasic, Status: authz.UserStatusActive, TagIDs: []string{"TAG1"}}
	if err := store.CreateUser(ctx, "t1", first); err != nil {
		t.Fatalf("create: %v", err)
	}
	second := &authz.User{ID: "u2", Role: authz.RoleBasic, TagIDs: []string{"TAG1"}}
	if err := store.CreateUser(ctx, "t1", second); !errors.Is(err, authz.ErrTagAlreadyAssigned) {
		t.Fatalf("expected ErrTagAlreadyAssigned, got %v", err)
	}

	// Same tag in another tenant is fine.
	if err := store.CreateUser(ctx, "t2", second); err != nil {
		t.Fatalf("cross-tenant create: %v", err)
	}

	got, err := store.GetUserByTagID(ctx, "t1", "TAG1")
	if err != nil {
		t.Fatalf("get by tag: %v", err)
	}
	if got.ID != "u1" {
		t.Fatalf("expected u1, got %s", got.ID)
	}
}

func TestMemoryUserStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUserStore()

	if _, err := store.GetUserByTagID(ctx, "t1", "GHOST"); !errors.Is(err, authz.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetUser(ctx, "t1", "nobody"); !errors.Is(err, authz.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.UpdateUser(ctx, "t1", &authz.User{ID: "nobody"}); !errors.Is(err, authz.ErrNotFound) {
		t.Fatalf("update of missing user must fail, got %v", err)
	}
}

func TestMemoryUserStoreUpdateDoesNotAlias(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUserStore()

	u := &authz.User{ID: "u1", Name: "ORIGINAL", TagIDs: []string{"TAG1"}}
	if err := store.CreateUser(ctx, "t1", u); err != nil {
		t.Fatalf("create: %v", err)
	}
	u.Name = "MUTATED"

	got, err := store.GetUser(ctx, "t1", "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "ORIGINAL" {
		t.Fatalf("store must copy on write, got %s", got.Name)
	}
}

func TestMemoryOrganizationStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOrganizationStore()

	store.SaveTenant(&authz.Tenant{ID: "t1", Components: map[string]bool{authz.ComponentOrganization: true}})
	store.SaveSite("t1", &authz.Site{ID: "s1", CompanyID: "c1"})
	store.SaveSiteArea("t1", &authz.SiteArea{ID: "sa1", SiteID: "s1", AccessControl: true})

	tenant, err := store.GetTenant(ctx, "t1")
	if err != nil {
		t.Fatalf("get tenant: %v", err)
	}
	if !tenant.IsComponentActive(authz.ComponentOrganization) {
		t.Fatalf("component flag lost")
	}
	if _, err := store.GetSite(ctx, "t1", "ghost"); !errors.Is(err, authz.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	area, err := store.GetSiteArea(ctx, "t1", "sa1")
	if err != nil {
		t.Fatalf("get site area: %v", err)
	}
	if area.SiteID != "s1" || !area.AccessControl {
		t.Fatalf("site area round trip wrong: %+v", area)
	}
}

func TestMemoryMembershipUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOrganizationStore()

	store.AssignUserToSite("t1", "u1", authz.SiteMembership{SiteID: "s1"})
	store.AssignUserToSite("t1", "u1", authz.SiteMembership{SiteID: "s1", SiteAdmin: true})
	store.AssignUserToSite("t1", "u1", authz.SiteMembership{SiteID: "s2", SiteOwner: true})

	rows, err := store.GetUserSiteMemberships(ctx, "t1", "u1")
	if err != nil {
		t.Fatalf("memberships: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("reassignment must upsert, got %d rows", len(rows))
	}
	for _, m := range rows {
		if m.SiteID == "s1" && !m.SiteAdmin {
			t.Fatalf("reassignment did not update the admin flag")
		}
	}
}

func TestMemoryTransactionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTransactionStore()

	store.SaveTransaction("t1", &authz.Transaction{ID: 7, UserID: "u1", TagID: "TAG1"})
	tx, err := store.GetTransaction(ctx, "t1", 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if tx.UserID != "u1" {
		t.Fatalf("round trip wrong: %+v", tx)
	}
	if _, err := store.GetTransaction(ctx, "t1", 8); !errors.Is(err, authz.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
