/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package record

import (
	"encoding/json"
	"fmt"
	"io"

	terrors "github.com/suparena/typedmodel/errors"
	"github.com/suparena/typedmodel/registry"
	"github.com/tidwall/gjson"
)

// Codec converts records to and from JSON against one registry.
type Codec struct {
	reg    *registry.Registry
	opts   []Option
	layout Layout
}

// NewCodec returns a codec that validates decoded records against reg.
func NewCodec(reg *registry.Registry, opts ...Option) *Codec {
	return &Codec{
		reg:    reg,
		opts:   opts,
		layout: layoutOf(opts),
	}
}

// Marshal encodes the serialized form of r.
func (c *Codec) Marshal(r Record) ([]byte, error) {
	return json.Marshal(r.Serialize())
}

// Unmarshal decodes one JSON object and constructs a record from it. The discriminator is
// resolved from the raw document first; only then is the payload located, under the payload
// key or under the resolved tag, and decoded. Unknown tags fail without decoding the payload.
func (c *Codec) Unmarshal(data []byte) (Record, error) {
	if c.reg == nil {
		return Record{}, fmt.Errorf("record: nil registry")
	}
	if !gjson.ValidBytes(data) {
		return Record{}, terrors.NewValidationError("", "invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Record{}, terrors.NewValidationError("", fmt.Sprintf("expected a JSON object, got %s", root.Type))
	}
	doc := root.Map()

	var discriminator registry.Value
	switch d := doc[c.layout.DiscriminatorKey]; d.Type {
	case gjson.Null:
	case gjson.String:
		v, err := c.reg.ResolveDiscriminator(d.Str)
		if err != nil {
			return Record{}, err
		}
		discriminator = v
	default:
		return Record{}, terrors.NewNoMatchingFamilyError(d.Raw, "discriminator must be a JSON string")
	}

	nestedKey := ""
	if !discriminator.IsZero() && discriminator.String() != c.layout.PayloadKey {
		nestedKey = discriminator.String()
	}

	var explicit, nested gjson.Result
	fields := make(map[string]any, len(doc))
	for key, value := range doc {
		switch key {
		case c.layout.DiscriminatorKey:
		case c.layout.PayloadKey:
			explicit = value
		default:
			if nestedKey != "" && key == nestedKey {
				nested = value
				continue
			}
			fields[key] = value.Value()
		}
	}

	payload := explicit
	if nested.Exists() && nested.Type != gjson.Null {
		if explicit.Exists() && explicit.Type != gjson.Null {
			return Record{}, terrors.NewAmbiguousPayloadError(c.layout.PayloadKey, nestedKey)
		}
		payload = nested
	}
	return build(c.reg, c.layout, discriminator, payload.Value(), fields)
}

// Decoder reads a stream of JSON records.
type Decoder struct {
	codec *Codec
	dec   *json.Decoder
}

// NewDecoder returns a decoder reading consecutive JSON values from r.
func (c *Codec) NewDecoder(r io.Reader) *Decoder {
	return &Decoder{codec: c, dec: json.NewDecoder(r)}
}

// More reports whether another value is available.
func (d *Decoder) More() bool {
	return d.dec.More()
}

// Next decodes the next record. A record that fails validation is returned as an error
// without stopping the stream; malformed JSON ends it.
func (d *Decoder) Next() (Record, error) {
	var raw json.RawMessage
	if err := d.dec.Decode(&raw); err != nil {
		return Record{}, err
	}
	return d.codec.Unmarshal(raw)
}
