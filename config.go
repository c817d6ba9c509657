package authz

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the declarative grant-table form used by the YAML/JSON and
// DSL override files. It maps one to one onto the group definitions and
// goes through the same validating constructor as the built-in table.
type Config struct {
	Version int                    `json:"version" yaml:"version"`
	Groups  map[string]GroupConfig `json:"groups" yaml:"groups"`
}

type GroupConfig struct {
	Extends []string      `json:"extends,omitempty" yaml:"extends,omitempty"`
	Grants  []GrantConfig `json:"grants" yaml:"grants"`
}

type GrantConfig struct {
	Resource string `json:"resource" yaml:"resource"`
	// Actions empty means every action.
	Actions   []string `json:"actions,omitempty" yaml:"actions,omitempty"`
	Condition string   `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// ConfigLoader decodes override files.
type ConfigLoader struct{}

func NewConfigLoader() *ConfigLoader { return &ConfigLoader{} }

func (l *ConfigLoader) LoadYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}
	return &cfg, nil
}

func (l *ConfigLoader) LoadJSON(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse json config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Definitions converts the config into group definitions, rejecting
// unknown resources, actions and condition operators.
func (c *Config) Definitions() (map[RoleGroup]GroupDefinition, error) {
	defs := make(map[RoleGroup]GroupDefinition, len(c.Groups))
	for name, gc := range c.Groups {
		def := GroupDefinition{}
		for _, parent := range gc.Extends {
			def.Extends = append(def.Extends, RoleGroup(parent))
		}
		for i, grant := range gc.Grants {
			entity := Entity(grant.Resource)
			if !knownEntities[entity] {
				return nil, fmt.Errorf("group %s grant %d: unknown resource %s", name, i, grant.Resource)
			}
			g := Grant{Resource: entity}
			for _, action := range grant.Actions {
				a := Action(action)
				if !knownActions[a] {
					return nil, fmt.Errorf("group %s grant %d: unknown action %s", name, i, action)
				}
				g.Actions = append(g.Actions, a)
			}
			if grant.Condition != "" {
				cond, err := ParseCondition(grant.Condition)
				if err != nil {
					return nil, fmt.Errorf("group %s grant %d: %w", name, i, err)
				}
				g.Condition = cond
			}
			def.Grants = append(def.Grants, g)
		}
		defs[RoleGroup(name)] = def
	}
	return defs, nil
}

// AccessControl builds a validated policy table from the config.
func (c *Config) AccessControl(opts ...AccessControlOption) (*AccessControl, error) {
	defs, err := c.Definitions()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return NewAccessControlWith(defs, opts...)
}

// ConfigFromDefinitions exports group definitions into the declarative
// form, for conversion tooling and round-trips.
func ConfigFromDefinitions(defs map[RoleGroup]GroupDefinition) *Config {
	cfg := &Config{Version: 1, Groups: make(map[string]GroupConfig, len(defs))}
	for group, def := range defs {
		gc := GroupConfig{}
		for _, parent := range def.Extends {
			gc.Extends = append(gc.Extends, string(parent))
		}
		for _, grant := range def.Grants {
			entry := GrantConfig{Resource: string(grant.Resource)}
			for _, action := range grant.Actions {
				entry.Actions = append(entry.Actions, string(action))
			}
			if grant.Condition != nil {
				entry.Condition = grant.Condition.String()
			}
			gc.Grants = append(gc.Grants, entry)
		}
		cfg.Groups[string(group)] = gc
	}
	return cfg
}

var knownEntities = map[Entity]bool{
	EntityUsers: true, EntityUser: true,
	EntityCompanies: true, EntityCompany: true,
	EntitySites: true, EntitySite: true,
	EntitySiteAreas: true, EntitySiteArea: true,
	EntityChargingStations: true, EntityChargingStation: true,
	EntityTransactions: true, EntityTransaction: true,
	EntitySettings: true, EntitySetting: true,
	EntityOcpiEndpoints: true, EntityOcpiEndpoint: true,
	EntityConnections: true, EntityConnection: true,
	EntityTenants: true, EntityTenant: true,
	EntityPricing: true, EntityBilling: true,
	EntityLoggings: true, EntityLogging: true,
	EntityTokens: true, EntityToken: true,
	EntityCars: true, EntityAssets: true, EntityInvoices: true,
	EntityReport: true,
}

var knownActions = map[Action]bool{
	ActionList: true, ActionCreate: true, ActionRead: true, ActionUpdate: true,
	ActionDelete: true, ActionLogout: true,
	ActionRemoteStart: true, ActionRemoteStop: true, ActionAuthorize: true,
	ActionRefundTransaction: true,
	ActionReset:             true, ActionClearCache: true,
	ActionGetConfiguration: true, ActionChangeConfiguration: true,
	ActionUnlockConnector: true,
	ActionPing:            true, ActionRegister: true,
	ActionGenerateLocalToken: true, ActionTriggerJob: true,
	ActionCheckConnection: true,
}
