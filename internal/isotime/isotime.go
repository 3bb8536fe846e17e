/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package isotime parses the ISO 8601 forms accepted on the wire.
package isotime

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
)

// localLayouts are ISO 8601 forms without a UTC offset.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	strfmt.RFC3339FullDate,
}

// Parse accepts RFC 3339 date-times (with "Z" or a numeric offset), offset-less
// date-times and plain dates. Offset-less values are returned in UTC.
func Parse(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("invalid ISO 8601 format: %q", value)
	}
	if HasOffset(s) {
		dt, err := strfmt.ParseDateTime(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid ISO 8601 format: %q", value)
		}
		return time.Time(dt), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO 8601 format: %q", value)
}

// ParseIn parses an offset-less value as wall time in loc.
func ParseIn(value string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(value)
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO 8601 format: %q", value)
}

// HasOffset reports whether an ISO 8601 string carries a UTC offset.
func HasOffset(value string) bool {
	i := strings.IndexAny(value, "Tt ")
	if i < 0 {
		return false
	}
	clock := value[i+1:]
	return strings.ContainsAny(clock, "Zz+-")
}
