/*
Package typedmodel provides discriminated-union records validated against an
explicit type registry.

A discriminator family is a closed set of string tags. Each tag is bound in a
registry.Registry to a payload type: a literal set of allowed strings, or a Go
struct that keyed input is coerced into. A record.Record pairs a discriminator
with its validated payload and serializes the payload under the tag:

	reg := registry.New()
	if err := notion.Register(reg); err != nil {
	    return err
	}
	r, err := record.Construct(reg, map[string]any{
	    "type": "text",
	    "text": map[string]any{"content": "Hello"},
	})
	// r.Serialize() == {"type": "text", "text": notion.Text{Content: "Hello"}}

Every failure is a typed error from the errors package, matchable with errors.Is.

Registries can also be declared in YAML with registry.LoadManifest, persisted to
DynamoDB through datastore/ddb, and grouped by name in a Catalog:

	catalog := typedmodel.NewCatalog()
	catalog.RegisterRegistry("notion", reg)
	catalog.RegisterStore("notion", "blocks", store)

The cmd/typedmodel tool validates JSON records against a catalog schema.
*/
package typedmodel
