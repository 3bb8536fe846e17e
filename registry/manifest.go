/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest declares families and their literal payload sets in YAML:
//
//	families:
//	  - name: UserRole
//	    values:
//	      - value: owner
//	        literal: [workspace, page]
//	      - value: guest
//
// Values without a literal list are declared as members only; Go code binds their
// structured payload types.
type Manifest struct {
	Families []FamilySpec `yaml:"families"`
}

// FamilySpec declares one family.
type FamilySpec struct {
	Name   string      `yaml:"name"`
	Values []ValueSpec `yaml:"values"`
}

// ValueSpec declares one family member and an optional literal payload set.
type ValueSpec struct {
	Value   string   `yaml:"value"`
	Literal []string `yaml:"literal,omitempty"`
}

// LoadManifest decodes a manifest. Unknown keys are rejected.
func LoadManifest(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			return &m, nil
		}
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

// LoadManifestFile reads and decodes the manifest at path.
func LoadManifestFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()
	return LoadManifest(f)
}

// Apply registers the manifest's families and literal payloads on reg in document order.
// A family whose name is already registered on reg is extended: its declared values must
// be members of the existing family.
func (m *Manifest) Apply(reg *Registry) ([]*Family, error) {
	applied := make([]*Family, 0, len(m.Families))
	for _, spec := range m.Families {
		family, ok := reg.FamilyByName(spec.Name)
		if !ok {
			members := make([]string, len(spec.Values))
			for i, v := range spec.Values {
				members[i] = v.Value
			}
			family = NewFamily(spec.Name, members...)
			if err := reg.RegisterFamily(family); err != nil {
				return applied, err
			}
		}

		for _, v := range spec.Values {
			value, err := family.Parse(v.Value)
			if err != nil {
				return applied, fmt.Errorf("family %s: %w", spec.Name, err)
			}
			if len(v.Literal) == 0 {
				continue
			}
			if err := reg.RegisterValue(value, Literal(v.Literal...)); err != nil {
				return applied, err
			}
		}
		applied = append(applied, family)
	}
	return applied, nil
}
