// Package catalog loads the REST endpoint catalog the smoke runner exercises.
// Each module of the marketplace API is described by one YAML file.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/groow/smoke/internal/domain/models"
)

//go:embed suites/*.yaml
var embedded embed.FS

// ErrUnknownModule is returned when a requested module is not in the catalog.
var ErrUnknownModule = errors.New("unknown module")

var (
	placeholder = regexp.MustCompile(`\{[A-Za-z0-9_]+\}`)
	methods     = map[string]struct{}{"GET": {}, "POST": {}, "PUT": {}, "PATCH": {}, "DELETE": {}}
)

// Load returns every module bundled with the binary, sorted by module name.
func Load() ([]models.Suite, error) {
	return LoadFS(embedded, "suites")
}

// LoadFS reads every *.yaml file in dir of fsys.
func LoadFS(fsys fs.FS, dir string) ([]models.Suite, error) {
	matches, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob catalog: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no suites found in %s", dir)
	}

	suites := make([]models.Suite, 0, len(matches))
	seen := make(map[string]string, len(matches))

	for _, name := range matches {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		var suite models.Suite
		if err := yaml.Unmarshal(raw, &suite); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		if err := validate(suite); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if prev, ok := seen[suite.Module]; ok {
			return nil, fmt.Errorf("module %q declared in both %s and %s", suite.Module, prev, name)
		}
		seen[suite.Module] = name
		suites = append(suites, suite)
	}

	sort.Slice(suites, func(i, j int) bool { return suites[i].Module < suites[j].Module })
	return suites, nil
}

func validate(s models.Suite) error {
	if s.Module == "" {
		return errors.New("module name is empty")
	}
	if s.Category == "" {
		return fmt.Errorf("module %q has no category", s.Module)
	}
	if len(s.Endpoints) == 0 {
		return fmt.Errorf("module %q has no endpoints", s.Module)
	}

	dup := make(map[string]struct{}, len(s.Endpoints))
	for i, ep := range s.Endpoints {
		if _, ok := methods[ep.Method]; !ok {
			return fmt.Errorf("endpoint %d: unsupported method %q", i, ep.Method)
		}
		if !strings.HasPrefix(ep.Path, "/") {
			return fmt.Errorf("endpoint %d: path %q must start with /", i, ep.Path)
		}
		key := ep.String()
		if _, ok := dup[key]; ok {
			return fmt.Errorf("duplicate endpoint %s", key)
		}
		dup[key] = struct{}{}
	}
	return nil
}

// Filter keeps the named modules in catalog order. No names keeps everything.
func Filter(suites []models.Suite, modules ...string) ([]models.Suite, error) {
	if len(modules) == 0 {
		return suites, nil
	}

	want := make(map[string]bool, len(modules))
	for _, m := range modules {
		want[strings.ToLower(strings.TrimSpace(m))] = false
	}

	out := make([]models.Suite, 0, len(want))
	for _, s := range suites {
		if _, ok := want[s.Module]; ok {
			want[s.Module] = true
			out = append(out, s)
		}
	}

	var missing []string
	for m, found := range want {
		if !found {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, strings.Join(missing, ", "))
	}

	return out, nil
}

// ExpandPath substitutes every {param} segment of template with fixtureID.
func ExpandPath(template, fixtureID string) string {
	return placeholder.ReplaceAllLiteralString(template, fixtureID)
}

// RequiresParams reports whether the template has any placeholder.
func RequiresParams(template string) bool {
	return placeholder.MatchString(template)
}

// Count returns the total number of endpoints across suites.
func Count(suites []models.Suite) int {
	n := 0
	for _, s := range suites {
		n += len(s.Endpoints)
	}
	return n
}
