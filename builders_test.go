package authz

import "testing"

func TestGrantBuilder(t *testing.T) {
	grant := NewGrant(EntitySite).
		Allow(ActionRead, ActionUpdate).
		When(ListContains("sitesAdmin", Ref("site"))).
		Build()

	if grant.Resource != EntitySite || len(grant.Actions) != 2 {
		t.Fatalf("unexpected grant %+v", grant)
	}
	if !grant.Condition.Evaluate(FieldContext{"sitesAdmin": []string{"s1"}, "site": "s1"}) {
		t.Fatalf("condition must hold for an administered site")
	}
}

func TestGroupBuilderBuildsTable(t *testing.T) {
	defs := DefaultGroupDefinitions()
	defs["operator"] = NewGroup().
		Extends(GroupBasic).
		Grant(
			NewGrant(EntityChargingStation).Allow(ActionReset).Build(),
			NewGrant(EntityTransaction).When(Or(
				Equals("user", Ref("owner")),
				NotEquals("user", nil),
			)).Build(),
		).
		Build()

	ac, err := NewAccessControlWith(defs)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !ac.Can([]RoleGroup{"operator"}, EntityChargingStation, ActionReset, nil) {
		t.Fatalf("operator must reset stations")
	}
	// The action-less transaction grant matches every action once its
	// condition holds.
	if !ac.Can([]RoleGroup{"operator"}, EntityTransaction, ActionDelete, FieldContext{"user": "u2"}) {
		t.Fatalf("conditioned wildcard grant must allow")
	}
	if !ac.Can([]RoleGroup{"operator"}, EntitySites, ActionList, nil) {
		t.Fatalf("operator must inherit basic site listing")
	}
}
