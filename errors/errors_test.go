/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestUnregisteredFamilyError(t *testing.T) {
	err := NewUnregisteredFamilyError("BlockType")

	expected := `family "BlockType" is not registered`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrUnregisteredFamily) {
		t.Error("UnregisteredFamilyError should match ErrUnregisteredFamily")
	}

	if !IsUnregisteredFamily(err) {
		t.Error("IsUnregisteredFamily should return true for UnregisteredFamilyError")
	}
}

func TestUnregisteredValueError(t *testing.T) {
	err := NewUnregisteredValueError("BlockType", "date")

	expected := `value "date" of family "BlockType" has no registered payload type`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsUnregisteredValue(err) {
		t.Error("IsUnregisteredValue should return true for UnregisteredValueError")
	}
	if IsUnregisteredFamily(err) {
		t.Error("UnregisteredValueError should not match ErrUnregisteredFamily")
	}
}

func TestNoMatchingFamilyError(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		reason   string
		expected string
	}{
		{
			name:     "string input",
			input:    "invalid",
			expected: `no family matches discriminator "invalid"`,
		},
		{
			name:     "with reason",
			input:    123,
			reason:   "unsupported discriminator type int",
			expected: "no family matches discriminator 123: unsupported discriminator type int",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewNoMatchingFamilyError(tt.input, tt.reason)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}
			if !IsNoMatchingFamily(err) {
				t.Error("IsNoMatchingFamily should return true for NoMatchingFamilyError")
			}
		})
	}
}

func TestInconsistentNullPayloadError(t *testing.T) {
	tests := []struct {
		name          string
		discriminator string
		expected      string
	}{
		{
			name:     "null discriminator",
			expected: "payload must be null when the discriminator is null",
		},
		{
			name:          "null payload",
			discriminator: "text",
			expected:      `payload must not be null when the discriminator is "text"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewInconsistentNullPayloadError(tt.discriminator)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}
			if !IsInconsistentNullPayload(err) {
				t.Error("IsInconsistentNullPayload should return true")
			}
		})
	}
}

func TestPayloadNotInLiteralSetError(t *testing.T) {
	err := NewPayloadNotInLiteralSetError("dummy", "other", []string{"dummy"})

	expected := `payload "other" must be one of ["dummy"] when discriminator is "dummy"`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
	if !IsPayloadNotInLiteralSet(err) {
		t.Error("IsPayloadNotInLiteralSet should return true")
	}
}

func TestPayloadCoercionFailedError(t *testing.T) {
	cause := NewValidationError("date", "is required")
	err := NewPayloadCoercionFailedError("DateData", cause)

	expected := `payload must be of type DateData: validation failed for field "date": is required`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsPayloadCoercionFailed(err) {
		t.Error("IsPayloadCoercionFailed should return true")
	}

	// The cause stays reachable through the chain
	if !IsValidationError(err) {
		t.Error("PayloadCoercionFailedError should unwrap to its cause")
	}

	var coercion *PayloadCoercionFailedError
	if !errors.As(err, &coercion) {
		t.Fatal("errors.As should find PayloadCoercionFailedError")
	}
	coercion.Discriminator = "date"
	expected = `payload must be of type DateData when discriminator is "date": validation failed for field "date": is required`
	if coercion.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, coercion.Error())
	}
}

func TestRegistrationErrors(t *testing.T) {
	invalid := NewInvalidRegistrationError("family InvalidType", "family has no members")
	if invalid.Error() != "invalid registration of family InvalidType: family has no members" {
		t.Errorf("Unexpected message: %q", invalid.Error())
	}
	if !IsInvalidRegistration(invalid) {
		t.Error("IsInvalidRegistration should return true")
	}

	dup := NewDuplicateRegistrationError("BlockType", "text", "TextData")
	if !errors.Is(dup, ErrDuplicateRegistration) {
		t.Error("DuplicateRegistrationError should match ErrDuplicateRegistration")
	}
	if !IsDuplicateRegistration(fmt.Errorf("bind: %w", dup)) {
		t.Error("IsDuplicateRegistration should return true for a wrapped error")
	}
	if IsDuplicateRegistration(invalid) {
		t.Error("IsDuplicateRegistration should return false for InvalidRegistrationError")
	}

	ambiguous := NewAmbiguousPayloadError("type_data", "text")
	if ambiguous.Error() != `payload given under both "type_data" and "text"` {
		t.Errorf("Unexpected message: %q", ambiguous.Error())
	}
	if !errors.Is(ambiguous, ErrAmbiguousPayload) {
		t.Error("AmbiguousPayloadError should match ErrAmbiguousPayload")
	}
	if !IsAmbiguousPayload(ambiguous) {
		t.Error("IsAmbiguousPayload should return true")
	}
	if IsAmbiguousPayload(dup) {
		t.Error("IsAmbiguousPayload should return false for DuplicateRegistrationError")
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("Record", "PK=BLOCK#1")

	expected := `Record with key "PK=BLOCK#1" not found`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "url",
			message:  "invalid scheme",
			expected: `validation failed for field "url": invalid scheme`,
		},
		{
			name:     "without field",
			field:    "",
			message:  "missing required fields",
			expected: "validation failed: missing required fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}

			if !IsValidationError(err) {
				t.Error("IsValidationError should return true for ValidationError")
			}
		})
	}
}

func TestConditionFailedError(t *testing.T) {
	err := NewConditionFailedError("put", "attribute_not_exists(PK)")

	expected := "condition check failed for put operation: attribute_not_exists(PK)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsConditionFailed(err) {
		t.Error("IsConditionFailed should return true for ConditionFailedError")
	}
}

func TestErrorWrapping(t *testing.T) {
	original := NewUnregisteredFamilyError("BlockType")
	wrapped := fmt.Errorf("construct record: %w", original)

	if !errors.Is(wrapped, ErrUnregisteredFamily) {
		t.Error("Wrapped UnregisteredFamilyError should still match ErrUnregisteredFamily")
	}

	if !IsUnregisteredFamily(wrapped) {
		t.Error("IsUnregisteredFamily should work with wrapped errors")
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrUnregisteredFamily,
		ErrUnregisteredValue,
		ErrNoMatchingFamily,
		ErrInconsistentNullPayload,
		ErrPayloadNotInLiteralSet,
		ErrPayloadCoercionFailed,
		ErrInvalidRegistration,
		ErrDuplicateRegistration,
		ErrAmbiguousPayload,
		ErrNotFound,
		ErrInvalidInput,
		ErrConditionFailed,
		ErrNoKeyTemplate,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}
