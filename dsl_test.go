package authz

import (
	"strings"
	"testing"
)

const sampleDSL = `# override table
version 2

group fleetManager extends basic
grant fleetManager Site Read,Update if LIST_CONTAINS(sitesAdmin, $.site)
grant fleetManager Report *
grant fleetManager Transaction Read if OR(EQUALS(user, $.owner); LIST_CONTAINS(sitesAdmin, $.site))
`

func TestDSLParse(t *testing.T) {
	cfg, err := NewDSLParser().Parse([]byte(sampleDSL))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Version != 2 {
		t.Fatalf("expected version 2, got %d", cfg.Version)
	}
	gc, ok := cfg.Groups["fleetManager"]
	if !ok {
		t.Fatalf("fleetManager group missing")
	}
	if len(gc.Extends) != 1 || gc.Extends[0] != "basic" {
		t.Fatalf("extends wrong: %v", gc.Extends)
	}
	if len(gc.Grants) != 3 {
		t.Fatalf("expected 3 grants, got %d", len(gc.Grants))
	}
	if len(gc.Grants[1].Actions) != 0 {
		t.Fatalf("* must mean every action, got %v", gc.Grants[1].Actions)
	}
	if gc.Grants[2].Condition == "" {
		t.Fatalf("condition missing on third grant")
	}
}

func TestDSLBuildsTable(t *testing.T) {
	cfg, err := NewDSLParser().Parse([]byte(sampleDSL))
	if err != nil {
		t.Fatalf("parse: %v", err)
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

	fields := FieldContext{"sitesAdmin": []string{"s1"}, "site": "s1"}
	if !ac.Can([]RoleGroup{"fleetManager"}, EntitySite, ActionUpdate, fields) {
		t.Fatalf("fleet manager must update its admin site")
	}
	if !ac.Can([]RoleGroup{"fleetManager"}, EntitySites, ActionList, nil) {
		t.Fatalf("fleet manager must inherit Sites List from basic")
	}
}

func TestDSLRoundTrip(t *testing.T) {
	cfg, err := NewDSLParser().Parse([]byte(sampleDSL))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	again, err := NewDSLParser().Parse(EncodeDSL(cfg))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(again.Groups["fleetManager"].Grants) != 3 {
		t.Fatalf("round trip lost grants")
	}
}

func TestDSLErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"unknown directive", "deny basic Site Read"},
		{"grant too short", "grant basic Site"},
		{"bad condition", "grant basic Site Read if GREATER(user, $.owner)"},
		{"dangling if", "grant basic Site Read if"},
		{"bad version", "version two"},
	}
	for _, tc := range cases {
		if _, err := NewDSLParser().Parse([]byte(tc.input)); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		} else if !strings.Contains(err.Error(), "line 1") {
			t.Fatalf("%s: error must carry the line number, got %v", tc.name, err)
		}
	}
}

func TestDefinitionsRejectUnknownNames(t *testing.T) {
	cfg := &Config{Version: 1, Groups: map[string]GroupConfig{
		"x": {Grants: []GrantConfig{{Resource: "Spaceship", Actions: []string{"Read"}}}},
	}}
	if _, err := cfg.Definitions(); err == nil {
		t.Fatalf("unknown resource must be rejected")
	}

	cfg = &Config{Version: 1, Groups: map[string]GroupConfig{
		"x": {Grants: []GrantConfig{{Resource: "Site", Actions: []string{"Teleport"}}}},
	}}
	if _, err := cfg.Definitions(); err == nil {
		t.Fatalf("unknown action must be rejected")
	}
}
