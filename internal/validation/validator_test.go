// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type upstreamSettings struct {
	URL        string `koanf:"url" validate:"required,http_url"`
	MaxRetries int    `koanf:"max_retries" validate:"gte=0,lte=10"`
}

type testSettings struct {
	Level    string           `koanf:"level" validate:"loglevel"`
	Format   string           `koanf:"format" validate:"oneof=json console"`
	Count    int              `json:"count" validate:"min=1,max=100"`
	Upstream upstreamSettings `koanf:"upstream"`
	Plain    int              `validate:"gte=0"`
}

func validSettings() testSettings {
	return testSettings{
		Level:    "info",
		Format:   "json",
		Count:    4,
		Upstream: upstreamSettings{URL: "http://localhost:8080", MaxRetries: 3},
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	s := validSettings()
	if err := ValidateStruct(&s); err != nil {
		t.Errorf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*testSettings)
		wantField string
		wantTag   string
	}{
		{"bad log level", func(s *testSettings) { s.Level = "verbose" }, "level", "loglevel"},
		{"bad format", func(s *testSettings) { s.Format = "xml" }, "format", "oneof"},
		{"count too small", func(s *testSettings) { s.Count = 0 }, "count", "min"},
		{"count too large", func(s *testSettings) { s.Count = 101 }, "count", "max"},
		{"missing url", func(s *testSettings) { s.Upstream.URL = "" }, "url", "required"},
		{"non-http url", func(s *testSettings) { s.Upstream.URL = "ftp://example.com" }, "url", "http_url"},
		{"too many retries", func(s *testSettings) { s.Upstream.MaxRetries = 11 }, "max_retries", "lte"},
		{"untagged field", func(s *testSettings) { s.Plain = -1 }, "Plain", "gte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.modify(&s)

			err := ValidateStruct(&s)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors (%v), want 1", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	s := validSettings()
	s.Count = 0

	apiErr := ValidateStruct(&s).ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "count must be at least 1" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "count must be at least 1")
	}
	if apiErr.Details["field"] != "count" {
		t.Errorf("Details[field] = %v, want count", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	s := validSettings()
	s.Count = 0
	s.Format = "xml"

	apiErr := ValidateStruct(&s).ToAPIError()
	if !strings.Contains(apiErr.Message, "count") || !strings.Contains(apiErr.Message, "format") {
		t.Errorf("Message = %q, want both fields mentioned", apiErr.Message)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Errorf("Details[fields] = %#v, want 2 entries", apiErr.Details["fields"])
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*testSettings)
		want   string
	}{
		{"required", func(s *testSettings) { s.Upstream.URL = "" }, "url is required"},
		{"http_url", func(s *testSettings) { s.Upstream.URL = "not a url" }, "url must be a valid http or https URL"},
		{"loglevel", func(s *testSettings) { s.Level = "loud" }, "level must be one of: trace, debug, info, warn, error"},
		{"oneof", func(s *testSettings) { s.Format = "xml" }, "format must be one of: json console"},
		{"lte", func(s *testSettings) { s.Upstream.MaxRetries = 20 }, "max_retries must be less than or equal to 10"},
		{"max", func(s *testSettings) { s.Count = 500 }, "count must be at most 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.modify(&s)
			err := ValidateStruct(&s)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}
