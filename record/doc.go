/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package record provides Record, a validated discriminated-union value.

A record pairs a discriminator with the payload registered for it in a
registry.Registry. Input is accepted in two keyed forms:

	{"type": "text", "type_data": {"content": "Hello"}}   // explicit
	{"type": "text", "text": {"content": "Hello"}}        // nested

and always serializes to the nested form. A record with no discriminator is the
null record and must not carry a payload.

Construction validates synchronously and never mutates; WithPayload,
WithDiscriminator and WithField return new records.

	r, err := record.Construct(reg, input)
	if err != nil {
		// errors.IsPayloadCoercionFailed(err), errors.IsNoMatchingFamily(err), ...
	}
	data, _ := json.Marshal(r)

The key names are configurable with WithLayout. Codec reads and writes JSON,
checking the discriminator's JSON kind before decoding.
*/
package record
