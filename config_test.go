package authz

import "testing"

const sampleYAML = `
version: 1
groups:
  auditor:
    extends: [demo]
    grants:
      - resource: Loggings
        actions: [List]
      - resource: Logging
        actions: [Read]
      - resource: Transaction
        actions: [RefundTransaction]
        condition: LIST_CONTAINS(sitesOwner, $.site)
`

func TestLoadYAML(t *testing.T) {
	cfg, err := NewConfigLoader().LoadYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	defs := DefaultGroupDefinitions()
	fileDefs, err := cfg.Definitions()
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	for group, def := range fileDefs {
		defs[group] = def
	}
	ac, err := NewAccessControlWith(defs)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !ac.Can([]RoleGroup{"auditor"}, EntityLoggings, ActionList, nil) {
		t.Fatalf("auditor must list loggings")
	}
	if !ac.Can([]RoleGroup{"auditor"}, EntitySite, ActionRead, nil) {
		t.Fatalf("auditor must inherit demo site read")
	}
	fields := FieldContext{"sitesOwner": []string{"s1"}, "site": "s2"}
	if ac.Can([]RoleGroup{"auditor"}, EntityTransaction, ActionRefundTransaction, fields) {
		t.Fatalf("auditor refund must honor the site condition")
	}
	fields["site"] = "s1"
	if !ac.Can([]RoleGroup{"auditor"}, EntityTransaction, ActionRefundTransaction, fields) {
		t.Fatalf("auditor must refund on an owned site")
	}
}

func TestMalformedConfigFailsAtLoad(t *testing.T) {
	cfg, err := NewConfigLoader().LoadYAML([]byte(`
version: 1
groups:
  broken:
    extends: [doesNotExist]
    grants:
      - resource: Site
        actions: [Read]
`))
	if err != nil {
		t.Fatalf("yaml itself is valid: %v", err)
	}
	if _, err := cfg.AccessControl(); err == nil {
		t.Fatalf("unknown parent must fail table construction")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	exported := ConfigFromDefinitions(DefaultGroupDefinitions())

	data, err := exported.ToYAML()
	if err != nil {
		t.Fatalf("to yaml: %v", err)
	}
	reloaded, err := NewConfigLoader().LoadYAML(data)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	ac, err := reloaded.AccessControl()
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	// The rebuilt table must decide like the compiled-in one.
	orig, err := NewAccessControl()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	checks := []struct {
		groups   []RoleGroup
		resource Entity
		action   Action
		fields   FieldContext
	}{
		{[]RoleGroup{GroupAdmin}, EntityUser, ActionDelete, FieldContext{"user": "u1", "owner": "u1"}},
		{[]RoleGroup{GroupBasic}, EntityUser, ActionRead, FieldContext{"user": "u1", "owner": "u1"}},
		{[]RoleGroup{GroupBasic, GroupSiteAdmin}, EntitySite, ActionUpdate, FieldContext{"sitesAdmin": []string{"s1"}, "site": "s1"}},
		{[]RoleGroup{GroupDemo}, EntityPricing, ActionUpdate, nil},
	}
	for i, c := range checks {
		if orig.Can(c.groups, c.resource, c.action, c.fields) != ac.Can(c.groups, c.resource, c.action, c.fields) {
			t.Fatalf("check %d: exported table decides differently", i)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	exported := ConfigFromDefinitions(DefaultGroupDefinitions())
	data, err := exported.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	reloaded, err := NewConfigLoader().LoadJSON(data)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, err := reloaded.AccessControl(); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
}
