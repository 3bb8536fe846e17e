/*
Package registry manages discriminator families and the payload types bound to their values.

A family is a closed set of string tags. Each tag of a registered family can be bound to a
payload type, which is either a closed set of literals or a Go struct type:

	var BlockType = registry.NewFamily("BlockType", "text", "date", "divider")

	var (
	    BlockText    = BlockType.MustValue("text")
	    BlockDate    = BlockType.MustValue("date")
	    BlockDivider = BlockType.MustValue("divider")
	)

	reg := registry.New(registry.WithLogger(logger))
	reg.RegisterFamily(BlockType)
	reg.RegisterValue(BlockText, registry.Struct[TextData]())
	reg.RegisterValue(BlockDate, registry.Struct[DateData]())
	reg.RegisterValue(BlockDivider, registry.Literal("divider"))

Structured payloads are coerced from keyed records with mapstructure, matching json tag
names. Unknown keys are rejected, fields without ",omitempty" (and not pointers) are
required, ISO 8601 strings decode into time.Time and strfmt.DateTime fields, and payloads
implementing Validator are checked after decoding.

Plain discriminator strings are resolved against families in registration order. When two
families share a tag the first registered family wins; Ambiguities reports such tags.

Registries are explicit objects so that independent schemas can coexist in one process.
They are safe for concurrent use and should be populated during initialization, either in
Go code or from a YAML Manifest declaring families and literal payload sets.
*/
package registry
