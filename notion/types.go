/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package notion

import (
	"fmt"
	"time"

	"github.com/suparena/typedmodel/internal/isotime"
)

// Link is a plain hyperlink.
type Link struct {
	URL string `json:"url"`
}

func (l *Link) Validate() error {
	return ValidateURL(l.URL)
}

// Equation is a KaTeX expression.
type Equation struct {
	Expression string `json:"expression"`
}

// Date is a date or date range. When TimeZone is set, Start and End are wall times in
// that zone and must not carry a UTC offset. Without it, offsets are allowed.
type Date struct {
	Start    string  `json:"start"`
	End      *string `json:"end,omitempty"`
	TimeZone *string `json:"time_zone,omitempty"`
}

func (d *Date) Validate() error {
	if d.TimeZone != nil && *d.TimeZone != "" {
		if err := ValidateTimezone(*d.TimeZone); err != nil {
			return err
		}
	}
	if err := d.checkDatetime("start", d.Start); err != nil {
		return err
	}
	if d.End != nil {
		if err := d.checkDatetime("end", *d.End); err != nil {
			return err
		}
	}
	return nil
}

func (d *Date) checkDatetime(name, value string) error {
	if d.zoned() && isotime.HasOffset(value) {
		return fmt.Errorf("%s should not have a UTC offset when time_zone is provided: %s", name, value)
	}
	if _, err := ParseDatetime(value); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (d *Date) zoned() bool {
	return d.TimeZone != nil && *d.TimeZone != ""
}

// StartTime returns Start, localized to TimeZone when set.
func (d Date) StartTime() (time.Time, error) {
	return d.resolve(d.Start)
}

// EndTime returns End, localized to TimeZone when set. The flag is false when the date has no end.
func (d Date) EndTime() (time.Time, bool, error) {
	if d.End == nil {
		return time.Time{}, false, nil
	}
	t, err := d.resolve(*d.End)
	return t, true, err
}

func (d Date) resolve(value string) (time.Time, error) {
	if !d.zoned() {
		return ParseDatetime(value)
	}
	loc, err := time.LoadLocation(*d.TimeZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone: %q", *d.TimeZone)
	}
	return isotime.ParseIn(value, loc)
}

// Text is the payload of a text rich-text object.
type Text struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

func (t *Text) Validate() error {
	if t.Link != nil {
		if err := t.Link.Validate(); err != nil {
			return fmt.Errorf("link: %w", err)
		}
	}
	return nil
}

// External is a file hosted outside Notion.
type External struct {
	URL string `json:"url"`
}

func (e *External) Validate() error {
	return ValidateURL(e.URL)
}

// File is a file hosted by Notion. Its URL expires at ExpiryTime.
type File struct {
	URL        string    `json:"url"`
	ExpiryTime time.Time `json:"expiry_time"`
}

func (f *File) Validate() error {
	if err := ValidateURL(f.URL); err != nil {
		return err
	}
	if f.ExpiryTime.IsZero() {
		return fmt.Errorf("expiry_time is required")
	}
	return nil
}
