package authz

import "testing"

func TestEqualsFieldReference(t *testing.T) {
	cond := Equals("user", Ref("owner"))

	if !cond.Evaluate(FieldContext{"user": "u1", "owner": "u1"}) {
		t.Fatalf("expected match when user equals owner")
	}
	if cond.Evaluate(FieldContext{"user": "u1", "owner": "u2"}) {
		t.Fatalf("expected mismatch when user differs from owner")
	}
}

func TestEqualsUnboundFieldIsFalse(t *testing.T) {
	cond := Equals("user", Ref("owner"))

	if cond.Evaluate(FieldContext{"owner": "u1"}) {
		t.Fatalf("unbound field must evaluate false, not match")
	}
	if cond.Evaluate(FieldContext{"user": "u1"}) {
		t.Fatalf("unbound reference must evaluate false, not match")
	}
	if cond.Evaluate(FieldContext{}) {
		t.Fatalf("empty context must evaluate false")
	}
}

func TestEqualsExplicitNull(t *testing.T) {
	cond := Equals("site", nil)

	if !cond.Evaluate(FieldContext{}) {
		t.Fatalf("null test must match an unbound field")
	}
	if !cond.Evaluate(FieldContext{"site": nil}) {
		t.Fatalf("null test must match a nil field")
	}
	if cond.Evaluate(FieldContext{"site": "s1"}) {
		t.Fatalf("null test must not match a bound field")
	}
}

func TestNotEquals(t *testing.T) {
	cond := NotEquals("user", Ref("owner"))

	if !cond.Evaluate(FieldContext{"user": "u1", "owner": "u2"}) {
		t.Fatalf("expected match for different users")
	}
	if cond.Evaluate(FieldContext{"user": "u1", "owner": "u1"}) {
		t.Fatalf("expected mismatch for the same user")
	}
	// An unbound field never satisfies an inequality; otherwise a
	// missing binding would silently allow guarded actions.
	if cond.Evaluate(FieldContext{"owner": "u1"}) {
		t.Fatalf("unbound field must evaluate false")
	}
}

func TestListContains(t *testing.T) {
	cond := ListContains("sites", Ref("site"))

	fields := FieldContext{"sites": []string{"s1", "s2"}, "site": "s2"}
	if !cond.Evaluate(fields) {
		t.Fatalf("expected s2 in sites")
	}
	fields["site"] = "s3"
	if cond.Evaluate(fields) {
		t.Fatalf("s3 is not in sites")
	}
	if cond.Evaluate(FieldContext{"site": "s1"}) {
		t.Fatalf("unbound list must evaluate false")
	}
	if cond.Evaluate(FieldContext{"sites": []string{"s1"}}) {
		t.Fatalf("unbound value must evaluate false")
	}
	if cond.Evaluate(FieldContext{"sites": []string{}, "site": "s1"}) {
		t.Fatalf("empty list must evaluate false")
	}
}

func TestOr(t *testing.T) {
	cond := Or(
		Equals("user", Ref("owner")),
		ListContains("sitesAdmin", Ref("site")),
	)

	if !cond.Evaluate(FieldContext{"user": "u1", "owner": "u1"}) {
		t.Fatalf("first branch should match")
	}
	if !cond.Evaluate(FieldContext{"sitesAdmin": []string{"s1"}, "site": "s1"}) {
		t.Fatalf("second branch should match")
	}
	if cond.Evaluate(FieldContext{"user": "u1", "owner": "u2", "site": "s1"}) {
		t.Fatalf("no branch should match")
	}
}

func TestEvaluateDoesNotMutateFields(t *testing.T) {
	fields := FieldContext{"user": "u1", "owner": "u1", "sites": []string{"s1"}}
	conds := []Expr{
		Equals("user", Ref("owner")),
		NotEquals("user", "u9"),
		ListContains("sites", Ref("site")),
		Equals("missing", nil),
	}
	for _, cond := range conds {
		cond.Evaluate(fields)
	}
	if len(fields) != 3 {
		t.Fatalf("evaluation mutated the field context: %v", fields)
	}
}

func TestConditionStringRoundTrip(t *testing.T) {
	conds := []Expr{
		Equals("user", Ref("owner")),
		NotEquals("user", Ref("owner")),
		ListContains("sitesAdmin", Ref("site")),
		Equals("site", nil),
		Equals("role", "basic"),
		Or(Equals("user", Ref("owner")), ListContains("sites", Ref("site"))),
	}
	for _, cond := range conds {
		parsed, err := ParseCondition(cond.String())
		if err != nil {
			t.Fatalf("parse %q: %v", cond.String(), err)
		}
		if parsed.String() != cond.String() {
			t.Fatalf("round trip changed %q to %q", cond.String(), parsed.String())
		}
	}
}
