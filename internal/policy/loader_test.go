package policy

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalPolicy = `
roles:
  2:
    scope: subject_roles
    scope_role_ids: [1]
    allowed_recipient_role_ids: [1]
statuses:
  not_completed: 1
  cancelled: 4
  completed: [2]
  default_label: open
task_ids:
  default_prefix: job
  subject_prefixes:
    " Chemistry ": chm
`

func TestLoaderLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/umtracker/policy.yaml", []byte(minimalPolicy), 0o644))

	table, err := NewLoader(fs).Load("/etc/umtracker/policy.yaml")
	require.NoError(t, err)

	e := NewEngine(table)
	assert.Equal(t, "chm", e.TaskPrefix("chemistry"))
	assert.Equal(t, "job", e.TaskPrefix(""))
	assert.Equal(t, "open", e.Statuses().Label(7))
	assert.Equal(t, RuleSubjectRoles, table.Roles[2].Scope)
}

func TestLoaderDefault(t *testing.T) {
	table, err := NewLoader(afero.NewMemMapFs()).Load("")
	require.NoError(t, err)
	assert.Len(t, table.Roles, 6)
	assert.NotPanics(t, func() { Default() })
}

func TestLoaderMissingFile(t *testing.T) {
	_, err := NewLoader(afero.NewMemMapFs()).Load("/nope.yaml")
	assert.Error(t, err)
}

func TestParseRejectsInvalidTables(t *testing.T) {
	tests := map[string]string{
		"bad yaml":     "roles: [",
		"unknown rule": "roles:\n  1:\n    scope: everyone\nstatuses: {not_completed: 1, cancelled: 4, completed: [2], default_label: x}\ntask_ids: {default_prefix: t}\n",
		"missing scope role ids": "roles:\n  1:\n    scope: subject_roles\nstatuses: {not_completed: 1, cancelled: 4, completed: [2], default_label: x}\ntask_ids: {default_prefix: t}\n",
		"dash in prefix": "roles:\n  1:\n    scope: all\nstatuses: {not_completed: 1, cancelled: 4, completed: [2], default_label: x}\ntask_ids: {default_prefix: t, subject_prefixes: {math: m-t}}\n",
		"no completed": "roles:\n  1:\n    scope: all\nstatuses: {not_completed: 1, cancelled: 4, default_label: x}\ntask_ids: {default_prefix: t}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}
