package policy

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

//go:embed default_policy.yaml
var defaultPolicy []byte

// Loader reads a policy table from a filesystem.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a loader over fs. Use afero.NewOsFs() in production and
// afero.NewMemMapFs() in tests.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// Load parses the table at path. An empty path selects the built-in table.
func (l *Loader) Load(path string) (*Table, error) {
	if path == "" {
		return Parse(defaultPolicy)
	}
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in table.
func Default() *Table {
	t, err := Parse(defaultPolicy)
	if err != nil {
		// ALLOW-PANIC: the embedded table is validated by tests
		panic(err)
	}
	return t
}

// Parse decodes and validates a YAML policy document.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	prefixes := make(map[string]string, len(t.TaskIDs.SubjectPrefixes))
	for name, prefix := range t.TaskIDs.SubjectPrefixes {
		prefixes[strings.ToLower(strings.TrimSpace(name))] = prefix
	}
	t.TaskIDs.SubjectPrefixes = prefixes
	return &t, nil
}
