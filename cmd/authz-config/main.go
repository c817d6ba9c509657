package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chargeangels/authz"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "convert":
		handleConvert()
	case "validate":
		handleValidate()
	case "stats":
		handleStats()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("authz-config - grant table tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  authz-config convert <input> <output>  - Convert between formats")
	fmt.Println("  authz-config validate <file>           - Validate a grant override file")
	fmt.Println("  authz-config stats <file>              - Show grant table statistics")
	fmt.Println()
	fmt.Println("Supported formats: .authz, .dsl, .yaml, .yml, .json")
}

func handleConvert() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: authz-config convert <input> <output>")
		os.Exit(1)
	}

	cfg, err := loadConfig(os.Args[2])
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := saveConfig(cfg, os.Args[3]); err != nil {
		fmt.Printf("Error saving config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Converted %s -> %s\n", os.Args[2], os.Args[3])
}

func handleValidate() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: authz-config validate <file>")
		os.Exit(1)
	}

	cfg, err := loadConfig(os.Args[2])
	if err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Overrides may extend the built-in groups, so validate the merged
	// table the engine would actually run with.
	defs := authz.DefaultGroupDefinitions()
	fileDefs, err := cfg.Definitions()
	if err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	for group, def := range fileDefs {
		defs[group] = def
	}
	if _, err := authz.NewAccessControlWith(defs); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("  Version: %d\n", cfg.Version)
	fmt.Printf("  Groups:  %d\n", len(cfg.Groups))
}

func handleStats() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: authz-config stats <file>")
		os.Exit(1)
	}

	cfg, err := loadConfig(os.Args[2])
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	totalGrants := 0
	conditioned := 0
	perResource := make(map[string]int)
	for _, gc := range cfg.Groups {
		totalGrants += len(gc.Grants)
		for _, grant := range gc.Grants {
			perResource[grant.Resource]++
			if grant.Condition != "" {
				conditioned++
			}
		}
	}

	fmt.Println("Grant Table Statistics")
	fmt.Println("======================")
	fmt.Printf("Version: %d\n", cfg.Version)
	fmt.Printf("Groups:  %d\n", len(cfg.Groups))
	fmt.Printf("Grants:  %d (%d conditioned)\n", totalGrants, conditioned)
	fmt.Println()
	fmt.Println("Grants per resource:")
	resources := make([]string, 0, len(perResource))
	for resource := range perResource {
		resources = append(resources, resource)
	}
	sort.Strings(resources)
	for _, resource := range resources {
		fmt.Printf("  %-18s %d\n", resource, perResource[resource])
	}
}

func loadConfig(filename string) (*authz.Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".authz", ".dsl":
		return authz.NewDSLParser().Parse(data)
	case ".yaml", ".yml":
		return authz.NewConfigLoader().LoadYAML(data)
	case ".json":
		return authz.NewConfigLoader().LoadJSON(data)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(filename))
	}
}

func saveConfig(cfg *authz.Config, filename string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".authz", ".dsl":
		data = authz.EncodeDSL(cfg)
	case ".yaml", ".yml":
		data, err = cfg.ToYAML()
	case ".json":
		data, err = cfg.ToJSON()
	default:
		return fmt.Errorf("unsupported file format: %s", filepath.Ext(filename))
	}
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
