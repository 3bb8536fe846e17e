/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	terrors "github.com/suparena/typedmodel/errors"
)

const roleManifest = `
families:
  - name: UserRole
    values:
      - value: owner
        literal: [workspace, page]
      - value: guest
  - name: DummyType
    values:
      - value: dummy
        literal: [dummy]
`

func TestLoadManifest(t *testing.T) {
	m, err := LoadManifest(strings.NewReader(roleManifest))
	require.NoError(t, err)
	require.Len(t, m.Families, 2)
	assert.Equal(t, "UserRole", m.Families[0].Name)
	assert.Equal(t, []string{"workspace", "page"}, m.Families[0].Values[0].Literal)
	assert.Empty(t, m.Families[0].Values[1].Literal)

	empty, err := LoadManifest(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Families)
}

func TestLoadManifestRejectsUnknownKeys(t *testing.T) {
	_, err := LoadManifest(strings.NewReader("families:\n  - name: X\n    members: [a]\n"))
	assert.Error(t, err)
}

func TestManifestApply(t *testing.T) {
	m, err := LoadManifest(strings.NewReader(roleManifest))
	require.NoError(t, err)

	reg := New()
	families, err := m.Apply(reg)
	require.NoError(t, err)
	require.Len(t, families, 2)

	role := families[0]
	assert.Equal(t, []string{"owner", "guest"}, role.Members())

	pt, err := reg.ResolvePayloadType(role.MustValue("owner"))
	require.NoError(t, err)
	got, err := pt.Validate("page")
	require.NoError(t, err)
	assert.Equal(t, "page", got)

	_, err = reg.ResolvePayloadType(role.MustValue("guest"))
	assert.True(t, terrors.IsUnregisteredValue(err), "got %v", err)
}

func TestManifestApplyExtendsExistingFamily(t *testing.T) {
	role := NewFamily("UserRole", "owner", "guest")
	reg := New()
	require.NoError(t, reg.RegisterFamily(role))

	m := &Manifest{Families: []FamilySpec{{
		Name:   "UserRole",
		Values: []ValueSpec{{Value: "guest", Literal: []string{"page"}}},
	}}}
	families, err := m.Apply(reg)
	require.NoError(t, err)
	assert.Same(t, role, families[0])

	m.Families[0].Values = append(m.Families[0].Values, ValueSpec{Value: "admin", Literal: []string{"x"}})
	_, err = m.Apply(reg)
	assert.Error(t, err)
}
