/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package record

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"

	terrors "github.com/suparena/typedmodel/errors"
	"github.com/suparena/typedmodel/registry"
)

// Layout names the keys of the explicit input form.
type Layout struct {
	// DiscriminatorKey holds the discriminator tag on the wire.
	DiscriminatorKey string
	// PayloadKey holds the payload in the explicit form. The nested form uses the tag itself.
	PayloadKey string
}

// DefaultLayout matches the Notion wire format: {"type": "text", "text": {...}}.
var DefaultLayout = Layout{DiscriminatorKey: "type", PayloadKey: "type_data"}

// Option configures construction.
type Option func(*Layout)

// WithLayout replaces the key layout.
func WithLayout(l Layout) Option {
	return func(dst *Layout) {
		*dst = l
	}
}

// WithDiscriminatorKey sets the key that holds the discriminator.
func WithDiscriminatorKey(key string) Option {
	return func(l *Layout) {
		l.DiscriminatorKey = key
	}
}

// WithPayloadKey sets the key that holds the payload in the explicit form.
func WithPayloadKey(key string) Option {
	return func(l *Layout) {
		l.PayloadKey = key
	}
}

func layoutOf(opts []Option) Layout {
	l := DefaultLayout
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// Record is a validated discriminated-union value: a discriminator, the payload bound to it,
// and any ordinary fields carried alongside. Records are never mutated; the With methods
// return new, fully validated records.
type Record struct {
	reg           *registry.Registry
	layout        Layout
	discriminator registry.Value
	payload       any
	fields        map[string]any
}

// New builds a record from a discriminator and a payload. The discriminator may be a
// registry.Value, a plain string resolved against the registry, or nil.
func New(reg *registry.Registry, discriminator any, payload any, opts ...Option) (Record, error) {
	return build(reg, layoutOf(opts), discriminator, payload, nil)
}

// Construct builds a record from a keyed input in either the explicit form
// {<discriminator key>: D, <payload key>: P} or the nested form {<discriminator key>: D, <D>: P}.
// Remaining keys are kept as ordinary fields.
func Construct(reg *registry.Registry, input map[string]any, opts ...Option) (Record, error) {
	if reg == nil {
		return Record{}, fmt.Errorf("record: nil registry")
	}
	layout := layoutOf(opts)

	fields := make(map[string]any, len(input))
	for k, v := range input {
		fields[k] = v
	}
	rawDiscriminator := fields[layout.DiscriminatorKey]
	delete(fields, layout.DiscriminatorKey)
	payload := fields[layout.PayloadKey]
	delete(fields, layout.PayloadKey)

	discriminator, err := resolveDiscriminator(reg, rawDiscriminator)
	if err != nil {
		return Record{}, err
	}

	if !discriminator.IsZero() && discriminator.String() != layout.PayloadKey {
		if nested, ok := fields[discriminator.String()]; ok {
			if !isNull(payload) && !isNull(nested) {
				return Record{}, terrors.NewAmbiguousPayloadError(layout.PayloadKey, discriminator.String())
			}
			if isNull(payload) {
				payload = nested
			}
			delete(fields, discriminator.String())
		}
	}

	return build(reg, layout, discriminator, payload, fields)
}

func build(reg *registry.Registry, layout Layout, rawDiscriminator any, payload any, fields map[string]any) (Record, error) {
	if reg == nil {
		return Record{}, fmt.Errorf("record: nil registry")
	}
	discriminator, err := resolveDiscriminator(reg, rawDiscriminator)
	if err != nil {
		return Record{}, err
	}

	if discriminator.IsZero() {
		if !isNull(payload) {
			return Record{}, terrors.NewInconsistentNullPayloadError("")
		}
		return Record{reg: reg, layout: layout, fields: fields}, nil
	}
	if isNull(payload) {
		return Record{}, terrors.NewInconsistentNullPayloadError(discriminator.String())
	}

	// The payload is serialized under its tag, so the tag must not name another key.
	tag := discriminator.String()
	if tag == layout.DiscriminatorKey {
		return Record{}, terrors.NewValidationError(tag, "discriminator tag collides with the discriminator key")
	}
	if _, exists := fields[tag]; exists {
		return Record{}, terrors.NewValidationError(tag, "discriminator tag collides with an ordinary field")
	}

	pt, err := reg.ResolvePayloadType(discriminator)
	if err != nil {
		return Record{}, err
	}
	normalized, err := pt.Validate(payload)
	if err != nil {
		return Record{}, annotate(err, discriminator)
	}

	return Record{
		reg:           reg,
		layout:        layout,
		discriminator: discriminator,
		payload:       normalized,
		fields:        fields,
	}, nil
}

// resolveDiscriminator accepts nil, a registry.Value of a registered family, or a string.
func resolveDiscriminator(reg *registry.Registry, raw any) (registry.Value, error) {
	switch v := raw.(type) {
	case nil:
		return registry.Value{}, nil
	case registry.Value:
		if v.IsZero() {
			return v, nil
		}
		if !reg.IsFamilyRegistered(v.Family()) {
			return registry.Value{}, terrors.NewUnregisteredFamilyError(v.Family().Name())
		}
		return v, nil
	case string:
		return reg.ResolveDiscriminator(v)
	}

	rv := reflect.ValueOf(raw)
	switch {
	case rv.Kind() == reflect.String:
		return reg.ResolveDiscriminator(rv.String())
	case rv.Kind() == reflect.Pointer && rv.IsNil():
		return registry.Value{}, nil
	}
	return registry.Value{}, terrors.NewNoMatchingFamilyError(raw, fmt.Sprintf("unsupported discriminator type %T", raw))
}

// annotate records the discriminator on payload errors raised by the payload type.
func annotate(err error, discriminator registry.Value) error {
	var literal *terrors.PayloadNotInLiteralSetError
	if stderrors.As(err, &literal) {
		literal.Discriminator = discriminator.String()
	}
	var coercion *terrors.PayloadCoercionFailedError
	if stderrors.As(err, &coercion) {
		coercion.Discriminator = discriminator.String()
	}
	return err
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Discriminator returns the discriminator, or the zero Value for a null record.
func (r Record) Discriminator() registry.Value {
	return r.discriminator
}

// Payload returns the validated payload, or nil for a null record.
func (r Record) Payload() any {
	return r.payload
}

// IsNull reports whether the record carries neither discriminator nor payload.
func (r Record) IsNull() bool {
	return r.discriminator.IsZero()
}

// Layout returns the key layout the record was built with.
func (r Record) Layout() Layout {
	return r.layout
}

// Registry returns the registry the record was validated against.
func (r Record) Registry() *registry.Registry {
	return r.reg
}

// Fields returns a copy of the ordinary fields.
func (r Record) Fields() map[string]any {
	out := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

// Field returns one ordinary field.
func (r Record) Field(key string) (any, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Serialize returns the wire form: ordinary fields, the discriminator, and the payload
// nested under the discriminator's tag. Null records carry a nil discriminator and no payload.
func (r Record) Serialize() map[string]any {
	key := r.layout.DiscriminatorKey
	if key == "" {
		key = DefaultLayout.DiscriminatorKey
	}
	out := make(map[string]any, len(r.fields)+2)
	for k, v := range r.fields {
		out[k] = v
	}
	if r.discriminator.IsZero() {
		out[key] = nil
		return out
	}
	out[key] = r.discriminator.String()
	if r.payload != nil {
		out[r.discriminator.String()] = r.payload
	}
	return out
}

// MarshalJSON encodes the serialized form.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Serialize())
}

// WithPayload returns a new record with the same discriminator and fields and a new payload.
func (r Record) WithPayload(payload any) (Record, error) {
	return build(r.reg, r.layout, r.discriminator, payload, r.Fields())
}

// WithDiscriminator returns a new record with a new discriminator and payload.
func (r Record) WithDiscriminator(discriminator any, payload any) (Record, error) {
	return build(r.reg, r.layout, discriminator, payload, r.Fields())
}

// WithField returns a new record with an ordinary field set.
func (r Record) WithField(key string, value any) (Record, error) {
	if key == r.layout.DiscriminatorKey || key == r.layout.PayloadKey ||
		(!r.discriminator.IsZero() && key == r.discriminator.String()) {
		return Record{}, terrors.NewValidationError(key, "reserved by the record layout")
	}
	fields := r.Fields()
	fields[key] = value
	next := r
	next.fields = fields
	return next, nil
}

// PayloadAs returns the payload as T.
func PayloadAs[T any](r Record) (T, bool) {
	v, ok := r.payload.(T)
	return v, ok
}
