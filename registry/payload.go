/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/mitchellh/mapstructure"
	terrors "github.com/suparena/typedmodel/errors"
	"github.com/suparena/typedmodel/internal/isotime"
)

// PayloadType validates the payload of one discriminator value.
// The set of implementations is closed: LiteralPayload and StructPayload.
type PayloadType interface {
	// Name identifies the type in error messages and logs.
	Name() string
	// Validate returns the normalized payload or an error.
	Validate(raw any) (any, error)

	definition() error
}

// Validator is implemented by structured payloads that check themselves after coercion.
type Validator interface {
	Validate() error
}

// LiteralPayload accepts exactly one of a closed set of strings.
type LiteralPayload struct {
	values []string
}

// Literal returns a payload type that only accepts the given strings.
func Literal(values ...string) *LiteralPayload {
	return &LiteralPayload{values: append([]string(nil), values...)}
}

// Values returns a copy of the allowed literals.
func (l *LiteralPayload) Values() []string {
	return append([]string(nil), l.values...)
}

func (l *LiteralPayload) Name() string {
	quoted := make([]string, len(l.values))
	for i, v := range l.values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "Literal[" + strings.Join(quoted, ", ") + "]"
}

// Validate checks membership. Named string types are compared by their underlying value.
func (l *LiteralPayload) Validate(raw any) (any, error) {
	rv := reflect.ValueOf(raw)
	if rv.IsValid() && rv.Kind() == reflect.String {
		s := rv.String()
		if slices.Contains(l.values, s) {
			return s, nil
		}
	}
	return nil, terrors.NewPayloadNotInLiteralSetError("", raw, l.Values())
}

func (l *LiteralPayload) definition() error {
	if len(l.values) == 0 {
		return fmt.Errorf("literal payload has no values")
	}
	return nil
}

// StructPayload coerces keyed records into T. Keys are matched against json tag names;
// a field whose tag lacks ",omitempty" is required, and keys that match no field are rejected.
type StructPayload[T any] struct {
	typ      reflect.Type
	required []string
	hooks    []mapstructure.DecodeHookFunc
}

// StructOption configures a StructPayload.
type StructOption func(*structOptions)

type structOptions struct {
	hooks []mapstructure.DecodeHookFunc
}

// WithDecodeHook adds a mapstructure decode hook that runs before the built-in ones.
func WithDecodeHook(hook mapstructure.DecodeHookFunc) StructOption {
	return func(o *structOptions) {
		o.hooks = append(o.hooks, hook)
	}
}

// Struct returns a payload type for the struct type T.
func Struct[T any](opts ...StructOption) *StructPayload[T] {
	var o structOptions
	for _, opt := range opts {
		opt(&o)
	}
	typ := reflect.TypeOf((*T)(nil)).Elem()
	return &StructPayload[T]{
		typ:      typ,
		required: requiredFields(typ),
		hooks:    o.hooks,
	}
}

func (s *StructPayload[T]) Name() string {
	return s.typ.Name()
}

// Type returns the reflect.Type of T.
func (s *StructPayload[T]) Type() reflect.Type {
	return s.typ
}

// Validate accepts a T or *T as-is, otherwise treats raw as the keyed arguments of a T.
// Payloads implementing Validator are checked in both cases.
func (s *StructPayload[T]) Validate(raw any) (any, error) {
	var out T
	switch v := raw.(type) {
	case T:
		out = v
	case *T:
		if v == nil {
			return nil, s.fail(fmt.Errorf("nil %s pointer", s.Name()))
		}
		out = *v
	default:
		decoded, err := s.decode(raw)
		if err != nil {
			return nil, s.fail(err)
		}
		out = decoded
	}
	if validator, ok := any(&out).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, s.fail(err)
		}
	}
	return out, nil
}

func (s *StructPayload[T]) decode(raw any) (T, error) {
	var out T
	rv := reflect.ValueOf(raw)
	if !rv.IsValid() || (rv.Kind() != reflect.Map && rv.Kind() != reflect.Struct) {
		return out, fmt.Errorf("expected a keyed record, got %T", raw)
	}

	var md mapstructure.Metadata
	hooks := append(append([]mapstructure.DecodeHookFunc(nil), s.hooks...),
		stringToTimeHook,
		mapstructure.TextUnmarshallerHookFunc(),
	)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &out,
		Metadata:    &md,
		TagName:     "json",
		ErrorUnused: true,
		DecodeHook:  mapstructure.ComposeDecodeHookFunc(hooks...),
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(raw); err != nil {
		return out, err
	}

	var missing []string
	for _, name := range s.required {
		if slices.Contains(md.Unset, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return out, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func (s *StructPayload[T]) fail(cause error) error {
	return terrors.NewPayloadCoercionFailedError(s.Name(), cause)
}

func (s *StructPayload[T]) definition() error {
	if s.typ.Kind() != reflect.Struct {
		return fmt.Errorf("%s is not a struct type", s.typ)
	}
	return nil
}

// requiredFields lists the wire names of exported fields whose json tag lacks omitempty.
func requiredFields(typ reflect.Type) []string {
	if typ.Kind() != reflect.Struct {
		return nil
	}
	var names []string
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() || field.Anonymous {
			continue
		}
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = field.Name
		}
		if strings.Contains(opts, "omitempty") || field.Type.Kind() == reflect.Pointer {
			continue
		}
		names = append(names, name)
	}
	return names
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	dateTimeType = reflect.TypeOf(strfmt.DateTime{})
)

// stringToTimeHook parses ISO 8601 strings into time.Time and strfmt.DateTime fields.
func stringToTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	switch to {
	case timeType:
		return isotime.Parse(s)
	case dateTimeType:
		t, err := isotime.Parse(s)
		if err != nil {
			return nil, err
		}
		return strfmt.DateTime(t), nil
	}
	return data, nil
}
