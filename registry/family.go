/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"strings"
)

// Family is a closed set of string discriminator tags, e.g. the content types of a block.
// Families are compared by identity: two families built with the same name are different
// families, and a registry refuses to hold both.
type Family struct {
	name    string
	members []string
	index   map[string]struct{}
}

// NewFamily declares a family with the given members. Members are kept in declaration order.
// The declaration is checked when the family is passed to Registry.RegisterFamily.
func NewFamily(name string, members ...string) *Family {
	f := &Family{
		name:    name,
		members: append([]string(nil), members...),
		index:   make(map[string]struct{}, len(members)),
	}
	for _, m := range members {
		f.index[m] = struct{}{}
	}
	return f
}

// Name returns the family name.
func (f *Family) Name() string {
	if f == nil {
		return "<nil>"
	}
	return f.name
}

// Members returns a copy of the family's tags in declaration order.
func (f *Family) Members() []string {
	return append([]string(nil), f.members...)
}

// Contains reports whether tag is a member of the family.
func (f *Family) Contains(tag string) bool {
	_, ok := f.index[tag]
	return ok
}

// Parse returns the family value for tag.
func (f *Family) Parse(tag string) (Value, error) {
	if !f.Contains(tag) {
		return Value{}, fmt.Errorf("%q is not a valid %s", tag, f.name)
	}
	return Value{family: f, tag: tag}, nil
}

// MustValue is like Parse but panics when tag is not a member.
// It is intended for package-level value declarations.
func (f *Family) MustValue(tag string) Value {
	v, err := f.Parse(tag)
	if err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
	return v
}

// check validates the declaration itself.
func (f *Family) check() error {
	if f == nil {
		return fmt.Errorf("family is nil")
	}
	if strings.TrimSpace(f.name) == "" {
		return fmt.Errorf("family name is empty")
	}
	if len(f.members) == 0 {
		return fmt.Errorf("family has no members")
	}
	if len(f.index) != len(f.members) {
		return fmt.Errorf("family has duplicate members")
	}
	if _, ok := f.index[""]; ok {
		return fmt.Errorf("family has an empty member")
	}
	return nil
}

// Value is one tag of a family. The zero Value is the absent discriminator.
// Values are comparable and can be used as map keys.
type Value struct {
	family *Family
	tag    string
}

// Family returns the family the value belongs to, or nil for the zero Value.
func (v Value) Family() *Family {
	return v.family
}

// IsZero reports whether v is the absent discriminator.
func (v Value) IsZero() bool {
	return v.family == nil
}

// String returns the tag, which is also the wire key the payload is nested under.
func (v Value) String() string {
	return v.tag
}

// MarshalText encodes the value as its tag.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.tag), nil
}
