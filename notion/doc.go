/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package notion defines the Notion leaf value types and the discriminator
families built from them.

The enums (ObjectType, Color, BackgroundColor) are string types with Valid and
Parse helpers. The scalar validators check the wire forms Notion uses for
timezones, datetimes, URLs, emails and object IDs.

Link, Equation, Date, Text, External and File are payload structs. Those with
constraints beyond their field types implement Validate, which registry.Struct
runs after coercion:

	reg := registry.New()
	if err := notion.Register(reg); err != nil {
		return err
	}
	r, err := record.Construct(reg, map[string]any{
		"type": "text",
		"text": map[string]any{"content": "Hello", "link": map[string]any{"url": "https://notion.so"}},
	})

Date keeps its start and end strings as given so a record serializes back to
its input. StartTime and EndTime resolve them, localized to TimeZone when set.
*/
package notion
