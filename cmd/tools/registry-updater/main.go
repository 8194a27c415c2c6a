// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"hr-backoffice/internal/common/validation"
	"hr-backoffice/pkg/registry"

	"github.com/spf13/afero"
)

const defaultPath = "configs/request-registry.json"

func main() {
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	initPath := initCmd.String("path", defaultPath, "Where to write the registry")
	force := initCmd.Bool("force", false, "Overwrite an existing file")

	updatePath := updateCmd.String("path", defaultPath, "Registry file")
	id := updateCmd.String("id", "", "Request ID (e.g., job-payload)")
	field := updateCmd.String("field", "", "Field to update (displayName, description, category, version, tags)")
	value := updateCmd.String("value", "", "New value; tags are comma separated")

	validatePath := validateCmd.String("path", defaultPath, "Registry file")

	if len(os.Args) < 2 {
		help(os.Stdout)
		os.Exit(1)
	}

	fs := afero.NewOsFs()
	var err error
	switch os.Args[1] {
	case "init":
		initCmd.Parse(os.Args[2:])
		err = initRegistry(fs, *initPath, *force)
		if err == nil {
			fmt.Printf("Wrote default registry to %s\n", *initPath)
		}

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *id == "" || *field == "" {
			fmt.Println("Error: id and field are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		err = updateRequest(fs, *updatePath, *id, *field, *value, time.Now())
		if err == nil {
			fmt.Printf("Updated %s, field %s\n", *id, *field)
		}

	case "validate":
		validateCmd.Parse(os.Args[2:])
		var n int
		n, err = validateRegistry(fs, *validatePath)
		if err == nil {
			fmt.Printf("Registry validation passed. Found %d request schemas.\n", n)
		}

	default:
		help(os.Stdout)
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initRegistry writes the compiled-in registry so it can be customized and
// pointed to with validation.registry_path.
func initRegistry(fs afero.Fs, path string, force bool) error {
	if exists, err := afero.Exists(fs, path); err != nil {
		return err
	} else if exists && !force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}
	reg, err := registry.Default()
	if err != nil {
		return err
	}
	return registry.Save(fs, path, reg)
}

func updateRequest(fs afero.Fs, path, id, field, value string, now time.Time) error {
	reg, err := registry.LoadRegistry(fs, path)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	req, ok := reg.Find(id)
	if !ok {
		return fmt.Errorf("request %s not found", id)
	}

	switch field {
	case "displayName":
		req.DisplayName = value
	case "description":
		req.Description = value
	case "category":
		req.Category = value
	case "version":
		req.Version = value
	case "tags":
		req.Tags = splitList(value)
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = now.UTC().Format(time.RFC3339)
	return registry.Save(fs, path, reg)
}

// validateRegistry parses the file and compiles every schema.
func validateRegistry(fs afero.Fs, path string) (int, error) {
	reg, err := registry.LoadRegistry(fs, path)
	if err != nil {
		return 0, fmt.Errorf("load registry: %w", err)
	}
	if len(reg.Requests) == 0 {
		return 0, fmt.Errorf("registry contains no request schemas")
	}
	for _, r := range reg.Requests {
		if r.DisplayName == "" {
			return 0, fmt.Errorf("request %s missing required field: displayName", r.ID)
		}
		if len(r.InputSchema) == 0 {
			return 0, fmt.Errorf("request %s has no inputSchema", r.ID)
		}
	}
	v, err := validation.NewValidator(reg)
	if err != nil {
		return 0, err
	}
	for _, required := range []string{registry.JobPayload, registry.AdminLogin} {
		if !v.Has(required) {
			return 0, fmt.Errorf("registry is missing %s, which the API requires", required)
		}
	}
	return len(reg.Requests), nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func help(w io.Writer) {
	fmt.Fprintln(w, `Request registry tool

Usage:
  registry-updater init     [-path FILE] [-force]
  registry-updater update   [-path FILE] -id ID -field FIELD -value VALUE
  registry-updater validate [-path FILE]`)
}
