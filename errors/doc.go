/*
Package errors provides semantic error types for the typedmodel library.

Every failure raised while registering families or constructing typed records
has a sentinel and a struct type that carries the details. Sentinels can be
checked with the standard errors.Is() function or the provided helpers:

	var (
	    ErrUnregisteredFamily      = errors.New("discriminator family not registered")
	    ErrUnregisteredValue       = errors.New("discriminator value not registered")
	    ErrNoMatchingFamily        = errors.New("no matching discriminator family")
	    ErrInconsistentNullPayload = errors.New("inconsistent null payload")
	    ErrPayloadNotInLiteralSet  = errors.New("payload not in literal set")
	    ErrPayloadCoercionFailed   = errors.New("payload coercion failed")
	    ErrInvalidRegistration     = errors.New("invalid registration")
	)

Usage:

	rec, err := record.Construct(reg, input)
	if err != nil {
	    if errors.IsPayloadCoercionFailed(err) {
	        // reject the request, the payload does not fit the registered type
	    }
	    return err
	}

PayloadCoercionFailedError unwraps to the error raised by the payload type,
so errors.As can reach the underlying decode or validation failure.

The storage errors (ErrNotFound, ErrInvalidInput, ErrConditionFailed and
ErrNoKeyTemplate) are used by the datastore packages.
*/
package errors
