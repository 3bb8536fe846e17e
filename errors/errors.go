/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for typed record validation and registration
var (
	// ErrUnregisteredFamily is returned when a discriminator's family was never registered
	ErrUnregisteredFamily = errors.New("discriminator family not registered")

	// ErrUnregisteredValue is returned when a registered family has no payload type for a value
	ErrUnregisteredValue = errors.New("discriminator value not registered")

	// ErrNoMatchingFamily is returned when a plain discriminator cannot be parsed by any family
	ErrNoMatchingFamily = errors.New("no matching discriminator family")

	// ErrInconsistentNullPayload is returned when exactly one of discriminator and payload is null
	ErrInconsistentNullPayload = errors.New("inconsistent null payload")

	// ErrPayloadNotInLiteralSet is returned when a payload is not one of the allowed literals
	ErrPayloadNotInLiteralSet = errors.New("payload not in literal set")

	// ErrPayloadCoercionFailed is returned when a structured payload cannot be built from input
	ErrPayloadCoercionFailed = errors.New("payload coercion failed")

	// ErrInvalidRegistration is returned when a family or value cannot be registered
	ErrInvalidRegistration = errors.New("invalid registration")

	// ErrDuplicateRegistration is returned by strict registries when a value is registered twice
	ErrDuplicateRegistration = errors.New("duplicate registration")

	// ErrAmbiguousPayload is returned when input carries the payload under two different keys
	ErrAmbiguousPayload = errors.New("ambiguous payload")
)

// Sentinel errors for record storage
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a conditional write fails
	ErrConditionFailed = errors.New("condition check failed")

	// ErrNoKeyTemplate is returned when a store has no key template to address records
	ErrNoKeyTemplate = errors.New("no key template configured")
)

// UnregisteredFamilyError reports a family that was never passed to RegisterFamily.
type UnregisteredFamilyError struct {
	Family string
}

func (e *UnregisteredFamilyError) Error() string {
	return fmt.Sprintf("family %q is not registered", e.Family)
}

func (e *UnregisteredFamilyError) Is(target error) bool {
	return target == ErrUnregisteredFamily
}

// UnregisteredValueError reports a discriminator value with no payload type.
type UnregisteredValueError struct {
	Family string
	Value  string
}

func (e *UnregisteredValueError) Error() string {
	return fmt.Sprintf("value %q of family %q has no registered payload type", e.Value, e.Family)
}

func (e *UnregisteredValueError) Is(target error) bool {
	return target == ErrUnregisteredValue
}

// NoMatchingFamilyError reports a discriminator input no registered family accepts.
type NoMatchingFamilyError struct {
	Input  string
	Reason string
}

func (e *NoMatchingFamilyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("no family matches discriminator %s: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("no family matches discriminator %s", e.Input)
}

func (e *NoMatchingFamilyError) Is(target error) bool {
	return target == ErrNoMatchingFamily
}

// InconsistentNullPayloadError reports a record where only one of the two fields is null.
type InconsistentNullPayloadError struct {
	// DiscriminatorNull is true when the payload was supplied without a discriminator.
	DiscriminatorNull bool
	Discriminator     string
}

func (e *InconsistentNullPayloadError) Error() string {
	if e.DiscriminatorNull {
		return "payload must be null when the discriminator is null"
	}
	return fmt.Sprintf("payload must not be null when the discriminator is %q", e.Discriminator)
}

func (e *InconsistentNullPayloadError) Is(target error) bool {
	return target == ErrInconsistentNullPayload
}

// PayloadNotInLiteralSetError reports a payload outside a closed literal set.
type PayloadNotInLiteralSetError struct {
	Discriminator string
	Payload       any
	Allowed       []string
}

func (e *PayloadNotInLiteralSetError) Error() string {
	quoted := make([]string, len(e.Allowed))
	for i, a := range e.Allowed {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	return fmt.Sprintf("payload %#v must be one of [%s] when discriminator is %q",
		e.Payload, strings.Join(quoted, ", "), e.Discriminator)
}

func (e *PayloadNotInLiteralSetError) Is(target error) bool {
	return target == ErrPayloadNotInLiteralSet
}

// PayloadCoercionFailedError wraps the error raised while building a structured payload.
type PayloadCoercionFailedError struct {
	Discriminator string
	ExpectedType  string
	Cause         error
}

func (e *PayloadCoercionFailedError) Error() string {
	msg := fmt.Sprintf("payload must be of type %s", e.ExpectedType)
	if e.Discriminator != "" {
		msg += fmt.Sprintf(" when discriminator is %q", e.Discriminator)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *PayloadCoercionFailedError) Is(target error) bool {
	return target == ErrPayloadCoercionFailed
}

func (e *PayloadCoercionFailedError) Unwrap() error {
	return e.Cause
}

// InvalidRegistrationError reports a rejected RegisterFamily or RegisterValue call.
type InvalidRegistrationError struct {
	Subject string
	Message string
}

func (e *InvalidRegistrationError) Error() string {
	return fmt.Sprintf("invalid registration of %s: %s", e.Subject, e.Message)
}

func (e *InvalidRegistrationError) Is(target error) bool {
	return target == ErrInvalidRegistration
}

// DuplicateRegistrationError reports a second registration of the same family value.
type DuplicateRegistrationError struct {
	Family   string
	Value    string
	Existing string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("value %q of family %q is already registered with payload type %s",
		e.Value, e.Family, e.Existing)
}

func (e *DuplicateRegistrationError) Is(target error) bool {
	return target == ErrDuplicateRegistration
}

// AmbiguousPayloadError reports input that supplies the payload both explicitly and nested.
type AmbiguousPayloadError struct {
	PayloadKey string
	NestedKey  string
}

func (e *AmbiguousPayloadError) Error() string {
	return fmt.Sprintf("payload given under both %q and %q", e.PayloadKey, e.NestedKey)
}

func (e *AmbiguousPayloadError) Is(target error) bool {
	return target == ErrAmbiguousPayload
}

// NotFoundError represents an error when a record is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// Helper functions for creating errors

// NewUnregisteredFamilyError creates a new UnregisteredFamilyError
func NewUnregisteredFamilyError(family string) error {
	return &UnregisteredFamilyError{Family: family}
}

// NewUnregisteredValueError creates a new UnregisteredValueError
func NewUnregisteredValueError(family, value string) error {
	return &UnregisteredValueError{Family: family, Value: value}
}

// NewNoMatchingFamilyError creates a new NoMatchingFamilyError for a raw discriminator input
func NewNoMatchingFamilyError(input any, reason string) error {
	return &NoMatchingFamilyError{Input: fmt.Sprintf("%#v", input), Reason: reason}
}

// NewInconsistentNullPayloadError creates a new InconsistentNullPayloadError.
// An empty discriminator means the discriminator was the null side.
func NewInconsistentNullPayloadError(discriminator string) error {
	return &InconsistentNullPayloadError{
		DiscriminatorNull: discriminator == "",
		Discriminator:     discriminator,
	}
}

// NewPayloadNotInLiteralSetError creates a new PayloadNotInLiteralSetError
func NewPayloadNotInLiteralSetError(discriminator string, payload any, allowed []string) error {
	return &PayloadNotInLiteralSetError{Discriminator: discriminator, Payload: payload, Allowed: allowed}
}

// NewPayloadCoercionFailedError creates a new PayloadCoercionFailedError
func NewPayloadCoercionFailedError(expectedType string, cause error) error {
	return &PayloadCoercionFailedError{ExpectedType: expectedType, Cause: cause}
}

// NewInvalidRegistrationError creates a new InvalidRegistrationError
func NewInvalidRegistrationError(subject, message string) error {
	return &InvalidRegistrationError{Subject: subject, Message: message}
}

// NewDuplicateRegistrationError creates a new DuplicateRegistrationError
func NewDuplicateRegistrationError(family, value, existing string) error {
	return &DuplicateRegistrationError{Family: family, Value: value, Existing: existing}
}

// NewAmbiguousPayloadError creates a new AmbiguousPayloadError
func NewAmbiguousPayloadError(payloadKey, nestedKey string) error {
	return &AmbiguousPayloadError{PayloadKey: payloadKey, NestedKey: nestedKey}
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(recordType, key string) error {
	return &NotFoundError{Type: recordType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// IsUnregisteredFamily checks if an error is an unregistered family error
func IsUnregisteredFamily(err error) bool {
	return errors.Is(err, ErrUnregisteredFamily)
}

// IsUnregisteredValue checks if an error is an unregistered value error
func IsUnregisteredValue(err error) bool {
	return errors.Is(err, ErrUnregisteredValue)
}

// IsNoMatchingFamily checks if an error is a no matching family error
func IsNoMatchingFamily(err error) bool {
	return errors.Is(err, ErrNoMatchingFamily)
}

// IsInconsistentNullPayload checks if an error is an inconsistent null payload error
func IsInconsistentNullPayload(err error) bool {
	return errors.Is(err, ErrInconsistentNullPayload)
}

// IsPayloadNotInLiteralSet checks if an error is a literal set membership error
func IsPayloadNotInLiteralSet(err error) bool {
	return errors.Is(err, ErrPayloadNotInLiteralSet)
}

// IsPayloadCoercionFailed checks if an error is a payload coercion error
func IsPayloadCoercionFailed(err error) bool {
	return errors.Is(err, ErrPayloadCoercionFailed)
}

// IsInvalidRegistration checks if an error is an invalid registration error
func IsInvalidRegistration(err error) bool {
	return errors.Is(err, ErrInvalidRegistration)
}

// IsDuplicateRegistration checks if an error is a duplicate registration error
func IsDuplicateRegistration(err error) bool {
	return errors.Is(err, ErrDuplicateRegistration)
}

// IsAmbiguousPayload checks if an error is an ambiguous payload error
func IsAmbiguousPayload(err error) bool {
	return errors.Is(err, ErrAmbiguousPayload)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}
