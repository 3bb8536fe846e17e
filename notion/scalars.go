/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package notion

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/suparena/typedmodel/internal/isotime"
)

// ValidateTimezone checks that name is an IANA timezone.
func ValidateTimezone(name string) error {
	if name == "" || name == "Local" {
		return fmt.Errorf("invalid timezone: %q", name)
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("invalid timezone: %q", name)
	}
	return nil
}

// ParseDatetime parses an ISO 8601 datetime or date. A trailing "Z" means UTC;
// values without an offset are returned in UTC.
func ParseDatetime(value string) (time.Time, error) {
	return isotime.Parse(value)
}

// ValidateURL checks that value is an absolute http or https URL with a host.
func ValidateURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", value, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL %q: scheme must be http or https", value)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL %q: missing host", value)
	}
	return nil
}

// ValidateEmail checks that value is a bare address whose domain has at least two labels.
func ValidateEmail(value string) error {
	if !strfmt.IsEmail(value) || strings.ContainsAny(value, "<> ") {
		return fmt.Errorf("invalid email: %q", value)
	}
	at := strings.LastIndex(value, "@")
	local, domain := value[:at], value[at+1:]
	if local == "" || !strings.Contains(strings.Trim(domain, "."), ".") {
		return fmt.Errorf("invalid email: %q", value)
	}
	return nil
}

// ParseObjectID parses a Notion object ID, a version 4 UUID in dashed or plain hex form.
func ParseObjectID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid object id %q: %w", value, err)
	}
	if id.Version() != 4 || id.Variant() != uuid.RFC4122 {
		return uuid.Nil, fmt.Errorf("invalid object id %q: not a version 4 UUID", value)
	}
	return id, nil
}
