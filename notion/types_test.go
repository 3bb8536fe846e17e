/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package notion

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	terrors "github.com/suparena/typedmodel/errors"
	"github.com/suparena/typedmodel/record"
	"github.com/suparena/typedmodel/registry"
)

func ptr[T any](v T) *T {
	return &v
}

func TestDate(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	tests := []struct {
		name      string
		input     map[string]any
		wantStart time.Time
		wantErr   bool
	}{
		{
			name:      "date only",
			input:     map[string]any{"start": "2023-05-17"},
			wantStart: time.Date(2023, 5, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "date in zone",
			input:     map[string]any{"start": "2023-05-17", "time_zone": "America/New_York"},
			wantStart: time.Date(2023, 5, 17, 0, 0, 0, 0, newYork),
		},
		{
			name:      "utc with fraction",
			input:     map[string]any{"start": "2023-05-17T15:30:00.123456Z"},
			wantStart: time.Date(2023, 5, 17, 15, 30, 0, 123456000, time.UTC),
		},
		{
			name:    "slashed date",
			input:   map[string]any{"start": "2023/05/17"},
			wantErr: true,
		},
		{
			name:    "numeric start",
			input:   map[string]any{"start": 12345},
			wantErr: true,
		},
		{
			name:    "offset with zone",
			input:   map[string]any{"start": "2023-05-17T15:30:00+00:00", "time_zone": "America/New_York"},
			wantErr: true,
		},
		{
			name:    "offset end with zone",
			input:   map[string]any{"start": "2023-05-17", "end": "2023-05-18T00:00:00Z", "time_zone": "America/New_York"},
			wantErr: true,
		},
		{
			name:    "unknown zone",
			input:   map[string]any{"start": "2023-05-17T15:30:00.123456", "time_zone": "Invalid Timezone"},
			wantErr: true,
		},
		{
			name:    "missing start",
			input:   map[string]any{"time_zone": "America/New_York"},
			wantErr: true,
		},
	}

	dateType := registry.Struct[Date]()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dateType.Validate(tt.input)
			if tt.wantErr {
				if !terrors.IsPayloadCoercionFailed(err) {
					t.Errorf("expected PayloadCoercionFailed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			date := got.(Date)
			start, err := date.StartTime()
			if err != nil {
				t.Fatalf("StartTime failed: %v", err)
			}
			if !start.Equal(tt.wantStart) {
				t.Errorf("StartTime() = %v, want %v", start, tt.wantStart)
			}
		})
	}
}

func TestDateKeepsWireForm(t *testing.T) {
	date, err := registry.Struct[Date]().Validate(map[string]any{
		"start":     "2023-05-17",
		"end":       "2023-05-18",
		"time_zone": "America/New_York",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Date{Start: "2023-05-17", End: ptr("2023-05-18"), TimeZone: ptr("America/New_York")}
	if diff := cmp.Diff(want, date); diff != "" {
		t.Errorf("date mismatch (-want +got):\n%s", diff)
	}

	end, ok, err := want.EndTime()
	if err != nil || !ok {
		t.Fatalf("EndTime() = %v, %v, %v", end, ok, err)
	}
	if end.Location().String() != "America/New_York" || end.Day() != 18 {
		t.Errorf("EndTime() = %v, want midnight May 18 in America/New_York", end)
	}

	if _, ok, _ := (Date{Start: "2023-05-17"}).EndTime(); ok {
		t.Error("a date without end should report no end time")
	}
}

func TestLinkAndEquation(t *testing.T) {
	if _, err := registry.Struct[Link]().Validate(map[string]any{"url": "https://notion.so"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := registry.Struct[Link]().Validate(map[string]any{"url": "invalid-url"}); err == nil {
		t.Error("expected invalid link to fail")
	}

	for _, expression := range []string{"E = mc^2", "a^2 + b^2 = c^2"} {
		got, err := registry.Struct[Equation]().Validate(map[string]any{"expression": expression})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.(Equation).Expression != expression {
			t.Errorf("got %q, want %q", got.(Equation).Expression, expression)
		}
	}
}

func TestRegister(t *testing.T) {
	reg := registry.New()
	if err := Register(reg); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second Register failed: %v", err)
	}

	tests := []struct {
		name  string
		input map[string]any
		want  any
		check func(error) bool
	}{
		{
			name: "text with link",
			input: map[string]any{
				"type": "text",
				"text": map[string]any{"content": "Hello", "link": map[string]any{"url": "https://notion.so"}},
			},
			want: Text{Content: "Hello", Link: &Link{URL: "https://notion.so"}},
		},
		{
			name: "text with bad link",
			input: map[string]any{
				"type": "text",
				"text": map[string]any{"content": "Hello", "link": map[string]any{"url": "notion.so"}},
			},
			check: terrors.IsPayloadCoercionFailed,
		},
		{
			name:  "equation",
			input: map[string]any{"type": "equation", "equation": map[string]any{"expression": "x^2"}},
			want:  Equation{Expression: "x^2"},
		},
		{
			name:  "mention",
			input: map[string]any{"type": "mention", "mention": "page"},
			want:  "page",
		},
		{
			name:  "mention outside the set",
			input: map[string]any{"type": "mention", "mention": "workspace"},
			check: terrors.IsPayloadNotInLiteralSet,
		},
		{
			name:  "external file",
			input: map[string]any{"type": "external", "external": map[string]any{"url": "https://example.com/a.png"}},
			want:  External{URL: "https://example.com/a.png"},
		},
		{
			name: "hosted file",
			input: map[string]any{"type": "file", "file": map[string]any{
				"url":         "https://files.notion.so/a.png",
				"expiry_time": "2024-01-01T00:00:00.000Z",
			}},
			want: File{URL: "https://files.notion.so/a.png", ExpiryTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := record.Construct(reg, tt.input)
			if tt.check != nil {
				if !tt.check(err) {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, r.Payload()); diff != "" {
				t.Errorf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
