package authz

import (
	"fmt"
	"sort"
	"strings"
)

// DSLParser reads the compact line format for grant overrides:
//
//	# comment
//	version 1
//	group siteAdmin extends basic
//	grant siteAdmin Site Update if LIST_CONTAINS(sitesAdmin, $.site)
//	grant admin ChargingStation Read,Update,Delete
//	grant admin Report *
//
// Actions are comma separated; * grants every action. Everything after
// "if" is parsed with ParseCondition.
type DSLParser struct {
	line int
}

func NewDSLParser() *DSLParser { return &DSLParser{} }

func (p *DSLParser) Parse(data []byte) (*Config, error) {
	cfg := &Config{Version: 1, Groups: make(map[string]GroupConfig)}
	for _, raw := range strings.Split(string(data), "\n") {
		p.line++
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		var err error
		switch fields[0] {
		case "version":
			err = p.parseVersion(cfg, fields)
		case "group":
			err = p.parseGroup(cfg, fields)
		case "grant":
			err = p.parseGrant(cfg, fields)
		default:
			err = fmt.Errorf("unknown directive %q", fields[0])
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	return cfg, nil
}

func (p *DSLParser) parseVersion(cfg *Config, fields []string) error {
	if len(fields) != 2 {
		return fmt.Errorf("version expects one argument")
	}
	var v int
	if _, err := fmt.Sscanf(fields[1], "%d", &v); err != nil {
		return fmt.Errorf("invalid version %q", fields[1])
	}
	cfg.Version = v
	return nil
}

func (p *DSLParser) parseGroup(cfg *Config, fields []string) error {
	if len(fields) != 2 && len(fields) != 4 {
		return fmt.Errorf("group expects: group <name> [extends <parents>]")
	}
	name := fields[1]
	gc := cfg.Groups[name]
	if len(fields) == 4 {
		if fields[2] != "extends" {
			return fmt.Errorf("expected extends, got %q", fields[2])
		}
		for _, parent := range strings.Split(fields[3], ",") {
			if parent != "" {
				gc.Extends = append(gc.Extends, parent)
			}
		}
	}
	cfg.Groups[name] = gc
	return nil
}

func (p *DSLParser) parseGrant(cfg *Config, fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("grant expects: grant <group> <resource> <actions> [if <condition>]")
	}
	group, resource, actions := fields[1], fields[2], fields[3]

	grant := GrantConfig{Resource: resource}
	if actions != "*" {
		for _, action := range strings.Split(actions, ",") {
			if action != "" {
				grant.Actions = append(grant.Actions, action)
			}
		}
		if len(grant.Actions) == 0 {
			return fmt.Errorf("grant has no actions")
		}
	}

	if len(fields) > 4 {
		if fields[4] != "if" || len(fields) < 6 {
			return fmt.Errorf("expected: if <condition>")
		}
		condText := strings.Join(fields[5:], " ")
		if _, err := ParseCondition(condText); err != nil {
			return err
		}
		grant.Condition = condText
	}

	gc := cfg.Groups[group]
	gc.Grants = append(gc.Grants, grant)
	cfg.Groups[group] = gc
	return nil
}

// EncodeDSL writes the config back out in the compact line format.
// Groups are sorted for stable output.
func EncodeDSL(cfg *Config) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "version %d\n", cfg.Version)

	names := make([]string, 0, len(cfg.Groups))
	for name := range cfg.Groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		gc := cfg.Groups[name]
		if len(gc.Extends) > 0 {
			fmt.Fprintf(&b, "group %s extends %s\n", name, strings.Join(gc.Extends, ","))
		}
	}
	for _, name := range names {
		for _, grant := range cfg.Groups[name].Grants {
			actions := "*"
			if len(grant.Actions) > 0 {
				actions = strings.Join(grant.Actions, ",")
			}
			if grant.Condition != "" {
				fmt.Fprintf(&b, "grant %s %s %s if %s\n", name, grant.Resource, actions, grant.Condition)
			} else {
				fmt.Fprintf(&b, "grant %s %s %s\n", name, grant.Resource, actions)
			}
		}
	}
	return []byte(b.String())
}
