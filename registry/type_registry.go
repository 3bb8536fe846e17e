/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	terrors "github.com/suparena/typedmodel/errors"
)

// resolver parses a plain discriminator string against one family.
type resolver func(tag string) (Value, bool)

// Registry maps each registered family to the payload types of its values.
// It is safe for concurrent use, though registration is expected to finish
// before records are constructed.
type Registry struct {
	mu        sync.RWMutex
	families  map[*Family]map[string]PayloadType
	byName    map[string]*Family
	order     []*Family
	resolvers []resolver
	logger    *slog.Logger
	strict    bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithStrictRegistration makes RegisterValue fail with a DuplicateRegistrationError
// instead of overwriting an existing payload type.
func WithStrictRegistration() Option {
	return func(r *Registry) {
		r.strict = true
	}
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		families: make(map[*Family]map[string]PayloadType),
		byName:   make(map[string]*Family),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterFamily makes f available for discriminator resolution. It is idempotent.
func (r *Registry) RegisterFamily(f *Family) error {
	if err := f.check(); err != nil {
		return terrors.NewInvalidRegistrationError("family "+f.Name(), err.Error())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.families[f]; exists {
		return nil
	}
	if other, exists := r.byName[f.name]; exists && other != f {
		return terrors.NewInvalidRegistrationError("family "+f.name,
			"a different family with this name is already registered")
	}

	r.families[f] = make(map[string]PayloadType)
	r.byName[f.name] = f
	r.order = append(r.order, f)
	r.resolvers = append(r.resolvers, func(tag string) (Value, bool) {
		v, err := f.Parse(tag)
		return v, err == nil
	})
	r.logger.Debug("Registered discriminator family.", "family", f.name, "members", len(f.members))
	return nil
}

// RegisterValue binds a payload type to v. The family of v must already be registered.
// An existing binding is overwritten unless the registry is strict.
func (r *Registry) RegisterValue(v Value, pt PayloadType) error {
	if v.IsZero() {
		return terrors.NewInvalidRegistrationError("value", "discriminator value is empty")
	}
	if pt == nil {
		return terrors.NewInvalidRegistrationError("value "+v.tag, "payload type is nil")
	}
	if err := pt.definition(); err != nil {
		return terrors.NewInvalidRegistrationError("value "+v.tag, err.Error())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	payloads, ok := r.families[v.family]
	if !ok {
		return terrors.NewUnregisteredFamilyError(v.family.name)
	}
	if existing, exists := payloads[v.tag]; exists {
		if r.strict {
			return terrors.NewDuplicateRegistrationError(v.family.name, v.tag, existing.Name())
		}
		r.logger.Warn("Overwriting registered payload type.",
			"family", v.family.name, "value", v.tag,
			"previous", existing.Name(), "payload", pt.Name())
	}
	payloads[v.tag] = pt
	r.logger.Debug("Registered payload type.", "family", v.family.name, "value", v.tag, "payload", pt.Name())
	return nil
}

// Bind registers the family of v when needed, then binds pt to v.
func (r *Registry) Bind(v Value, pt PayloadType) error {
	if v.IsZero() {
		return terrors.NewInvalidRegistrationError("value", "discriminator value is empty")
	}
	if err := r.RegisterFamily(v.family); err != nil {
		return err
	}
	return r.RegisterValue(v, pt)
}

// MustBind is like Bind but panics on error. It is intended for init-time schema setup.
func (r *Registry) MustBind(v Value, pt PayloadType) {
	if err := r.Bind(v, pt); err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
}

// ResolvePayloadType returns the payload type bound to v.
func (r *Registry) ResolvePayloadType(v Value) (PayloadType, error) {
	if v.IsZero() {
		return nil, terrors.NewUnregisteredFamilyError(v.family.Name())
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	payloads, ok := r.families[v.family]
	if !ok {
		return nil, terrors.NewUnregisteredFamilyError(v.family.name)
	}
	pt, ok := payloads[v.tag]
	if !ok {
		return nil, terrors.NewUnregisteredValueError(v.family.name, v.tag)
	}
	return pt, nil
}

// IsFamilyRegistered reports whether f has been registered.
func (r *Registry) IsFamilyRegistered(f *Family) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.families[f]
	return ok
}

// ResolveDiscriminator parses a plain tag against the registered families in registration
// order and returns the first match. A tag shared by several families therefore resolves to
// the earliest registered one; Ambiguities lists such tags.
func (r *Registry) ResolveDiscriminator(tag string) (Value, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, resolve := range r.resolvers {
		if v, ok := resolve(tag); ok {
			return v, nil
		}
	}
	return Value{}, terrors.NewNoMatchingFamilyError(tag, "")
}

// Families returns the registered families in registration order.
func (r *Registry) Families() []*Family {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Family(nil), r.order...)
}

// FamilyByName returns the registered family with the given name.
func (r *Registry) FamilyByName(name string) (*Family, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byName[name]
	return f, ok
}

// Ambiguities maps every tag accepted by more than one registered family to the names of
// those families, in registration order.
func (r *Registry) Ambiguities() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owners := make(map[string][]string)
	for _, f := range r.order {
		for _, m := range f.members {
			owners[m] = append(owners[m], f.name)
		}
	}
	for tag, names := range owners {
		if len(names) < 2 {
			delete(owners, tag)
		}
	}
	return owners
}

// Entry is one (family, value, payload type) binding in a Registry snapshot.
type Entry struct {
	Family  string
	Value   string
	Payload string
}

// Entries returns a snapshot of all bindings, ordered by family registration and tag.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []Entry
	for _, f := range r.order {
		payloads := r.families[f]
		tags := make([]string, 0, len(payloads))
		for tag := range payloads {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		for _, tag := range tags {
			entries = append(entries, Entry{Family: f.name, Value: tag, Payload: payloads[tag].Name()})
		}
	}
	return entries
}
